package config

import "github.com/af-corp/relay/internal/types"

// RoutingConfig is the static tier-to-backend routing table plus the
// per-model pricing table (USD per 1,000 tokens, fully-qualified ids).
// The table is deliberately small and auditable: operators can read off
// exactly which backend each complexity tier resolves to.
type RoutingConfig struct {
	Routes  TierRoutes         `yaml:"routes"`
	Pricing map[string]float64 `yaml:"pricing"`
}

type TierRoutes struct {
	Simple  RouteTarget `yaml:"simple"`
	Medium  RouteTarget `yaml:"medium"`
	Complex RouteTarget `yaml:"complex"`
}

type RouteTarget struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// TargetFor returns the default backend for a tier. TierExplicit has no
// table entry: explicit requests carry their own provider and model.
func (r *RoutingConfig) TargetFor(tier types.RouteTier) (RouteTarget, bool) {
	var target RouteTarget
	switch tier {
	case types.TierSimple:
		target = r.Routes.Simple
	case types.TierMedium:
		target = r.Routes.Medium
	case types.TierComplex:
		target = r.Routes.Complex
	default:
		return RouteTarget{}, false
	}
	if target.Provider == "" || target.Model == "" {
		return RouteTarget{}, false
	}
	return target, true
}
