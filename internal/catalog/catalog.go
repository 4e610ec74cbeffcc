// AngelaMos | 2026
// catalog.go

package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmiplatform/rewards-backend/internal/config"
	"github.com/dmiplatform/rewards-backend/internal/core"
)

// Plan is one purchasable catalog entry.
type Plan struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	DurationDays    int     `json:"duration_days"`
	DailyEarning    float64 `json:"daily_earning"`
	BoostMultiplier float64 `json:"boost_multiplier"`
}

// Loader produces a fresh plan list, typically by re-reading the config
// file. It runs only on explicit Reload calls.
type Loader func(ctx context.Context) ([]config.PlanEntry, error)

// Catalog holds an immutable snapshot of the plan list plus a version token
// that bumps on every successful reload. Readers always see a complete
// snapshot; there is no partially applied state.
type Catalog struct {
	mu      sync.RWMutex
	byID    map[string]Plan
	ordered []Plan
	version int64
	loader  Loader
}

func New(entries []config.PlanEntry, loader Loader) *Catalog {
	c := &Catalog{loader: loader}
	c.install(entries)
	return c
}

func (c *Catalog) install(entries []config.PlanEntry) {
	byID := make(map[string]Plan, len(entries))
	ordered := make([]Plan, 0, len(entries))

	for _, e := range entries {
		p := Plan{
			ID:              e.ID,
			Name:            e.Name,
			Price:           e.Price,
			DurationDays:    e.DurationDays,
			DailyEarning:    e.DailyEarning,
			BoostMultiplier: e.BoostMultiplier,
		}
		byID[p.ID] = p
		ordered = append(ordered, p)
	}

	c.mu.Lock()
	c.byID = byID
	c.ordered = ordered
	c.version++
	c.mu.Unlock()
}

func (c *Catalog) Get(planID string) (Plan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.byID[planID]
	if !ok {
		return Plan{}, fmt.Errorf("catalog plan %q: %w", planID, core.ErrNotFound)
	}

	return p, nil
}

func (c *Catalog) List() []Plan {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Plan, len(c.ordered))
	copy(out, c.ordered)
	return out
}

func (c *Catalog) Version() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Reload swaps in a freshly loaded plan list and returns the new version
// token. On loader failure the current snapshot stays in effect.
func (c *Catalog) Reload(ctx context.Context) (int64, error) {
	if c.loader == nil {
		return 0, fmt.Errorf("catalog has no loader configured")
	}

	entries, err := c.loader(ctx)
	if err != nil {
		return 0, fmt.Errorf("reload catalog: %w", err)
	}

	c.install(entries)
	return c.Version(), nil
}
