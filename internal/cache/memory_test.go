package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/af-corp/relay/internal/types"
)

func testResult(response string) *types.Result {
	return &types.Result{
		TraceID:    "t-orig",
		ModelUsed:  "openai/gpt-4o-mini",
		Response:   response,
		TokensUsed: 10,
		RouteTier:  types.TierSimple,
	}
}

func TestMakeKey_Deterministic(t *testing.T) {
	a := MakeKey("openai", "gpt-4o", "sys", "user")
	b := MakeKey("openai", "gpt-4o", "sys", "user")
	if a != b {
		t.Error("identical inputs must produce identical keys")
	}
	if len(a) != 64 {
		t.Errorf("expected 64-char hex digest, got %d chars", len(a))
	}
}

func TestMakeKey_FieldBoundaries(t *testing.T) {
	// Shifting bytes across field boundaries must change the key.
	a := MakeKey("openai", "gpt-4o", "ab", "c")
	b := MakeKey("openai", "gpt-4o", "a", "bc")
	if a == b {
		t.Error("field boundaries must be part of the key")
	}
	if MakeKey("openai", "gpt-4o", "s", "u") == MakeKey("anthropic", "gpt-4o", "s", "u") {
		t.Error("provider must be part of the key")
	}
}

func TestMemory_GetPut(t *testing.T) {
	m := NewMemory(time.Hour, 10)
	ctx := context.Background()
	key := MakeKey("openai", "gpt-4o", "sys", "user")

	if _, ok := m.Get(ctx, key); ok {
		t.Fatal("expected miss on empty cache")
	}

	m.Put(ctx, key, testResult("answer"))

	got, ok := m.Get(ctx, key)
	if !ok {
		t.Fatal("expected hit after put")
	}
	if got.Response != "answer" {
		t.Errorf("expected answer, got %q", got.Response)
	}
	if !got.Cached {
		t.Error("returned result must be flagged as a cache hit")
	}
}

func TestMemory_ReturnsCopy(t *testing.T) {
	m := NewMemory(time.Hour, 10)
	ctx := context.Background()
	key := "k"

	m.Put(ctx, key, testResult("answer"))

	first, _ := m.Get(ctx, key)
	first.Response = "mutated"
	first.TraceID = "t-other"

	second, _ := m.Get(ctx, key)
	if second.Response != "answer" {
		t.Error("callers must not be able to mutate the stored entry")
	}
	if second.TraceID != "t-orig" {
		t.Error("stored trace id must be untouched")
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	m := NewMemory(30*time.Millisecond, 10)
	ctx := context.Background()

	m.Put(ctx, "k", testResult("answer"))
	if _, ok := m.Get(ctx, "k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(40 * time.Millisecond)

	if _, ok := m.Get(ctx, "k"); ok {
		t.Error("expected miss after TTL elapsed")
	}
	if m.Len() != 0 {
		t.Errorf("expected expired entry swept, len=%d", m.Len())
	}
}

func TestMemory_CapacityBound(t *testing.T) {
	m := NewMemory(time.Hour, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		m.Put(ctx, fmt.Sprintf("k%d", i), testResult(fmt.Sprintf("r%d", i)))
	}

	if m.Len() != 3 {
		t.Fatalf("expected len 3, got %d", m.Len())
	}

	// Oldest-inserted entries are evicted first.
	for _, evicted := range []string{"k0", "k1"} {
		if _, ok := m.Get(ctx, evicted); ok {
			t.Errorf("expected %s evicted", evicted)
		}
	}
	for _, kept := range []string{"k2", "k3", "k4"} {
		if _, ok := m.Get(ctx, kept); !ok {
			t.Errorf("expected %s retained", kept)
		}
	}
}

func TestMemory_ReadDoesNotRefreshOrder(t *testing.T) {
	m := NewMemory(time.Hour, 2)
	ctx := context.Background()

	m.Put(ctx, "old", testResult("r-old"))
	m.Put(ctx, "mid", testResult("r-mid"))

	// Reading "old" must not protect it: eviction is insertion-order, not LRU.
	m.Get(ctx, "old")
	m.Put(ctx, "new", testResult("r-new"))

	if _, ok := m.Get(ctx, "old"); ok {
		t.Error("expected oldest-inserted entry evicted despite recent read")
	}
	if _, ok := m.Get(ctx, "mid"); !ok {
		t.Error("expected mid retained")
	}
}

func TestMemory_OverwriteCountsAsFreshInsertion(t *testing.T) {
	m := NewMemory(time.Hour, 2)
	ctx := context.Background()

	m.Put(ctx, "a", testResult("r-a"))
	m.Put(ctx, "b", testResult("r-b"))
	m.Put(ctx, "a", testResult("r-a2")) // moves a to the back
	m.Put(ctx, "c", testResult("r-c"))  // evicts b, now the oldest

	if _, ok := m.Get(ctx, "b"); ok {
		t.Error("expected b evicted")
	}
	got, ok := m.Get(ctx, "a")
	if !ok {
		t.Fatal("expected a retained after overwrite")
	}
	if got.Response != "r-a2" {
		t.Errorf("expected overwritten value, got %q", got.Response)
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := NewMemory(time.Hour, 100)
	ctx := context.Background()

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%50)
				if i%2 == 0 {
					m.Put(ctx, key, testResult("r"))
				} else {
					m.Get(ctx, key)
				}
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}

	if m.Len() > 100 {
		t.Errorf("capacity bound violated: %d", m.Len())
	}
}
