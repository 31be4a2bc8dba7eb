package types

// RouteTier is the complexity bucket that determines default backend
// selection for a request.
type RouteTier string

const (
	TierExplicit RouteTier = "explicit"
	TierSimple   RouteTier = "simple"
	TierMedium   RouteTier = "medium"
	TierComplex  RouteTier = "complex"
)

// Rank returns a numeric rank for comparison. Higher values mean
// the request is harder. TierExplicit is outside the ordering.
func (t RouteTier) Rank() int {
	switch t {
	case TierSimple:
		return 0
	case TierMedium:
		return 1
	case TierComplex:
		return 2
	case TierExplicit:
		return 3
	default:
		return -1
	}
}

func ParseTier(s string) (RouteTier, bool) {
	switch RouteTier(s) {
	case TierExplicit, TierSimple, TierMedium, TierComplex:
		return RouteTier(s), true
	default:
		return "", false
	}
}
