package laa

import (
	"fmt"
	"math"
)

// ItemID identifies a cacheable item.
type ItemID uint32

// unpredicted is the next-access time assumed for items missing from the
// prediction map. It is the worst possible value, so those items are evicted first.
const unpredicted = math.MaxUint32

// Outcome classifies a single cache access.
type Outcome int

const (
	// OutcomeHit: the item was already resident.
	OutcomeHit Outcome = iota
	// OutcomeInsert: a miss served from spare capacity.
	OutcomeInsert
	// OutcomeEvict: a miss at full capacity that evicted a resident item.
	OutcomeEvict
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeInsert:
		return "insert"
	case OutcomeEvict:
		return "evict"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// CachingConfig configures a Caching engine.
type CachingConfig struct {
	// Capacity is the maximum number of resident items. Must be > 0.
	Capacity int

	// Predictions maps items to their predicted next-access time.
	// Lower values mean sooner access. The engine copies the map.
	Predictions map[ItemID]uint32

	// CountInsertAsHit reports misses served from spare capacity as hits.
	// Off by default: a cold insert is a miss.
	CountInsertAsHit bool
}

// AccessResult is the full result of Caching.Access.
type AccessResult struct {
	Outcome Outcome
	// Cache is the new cache contents. Always a fresh slice.
	Cache []ItemID
	// Evicted is the removed item; only meaningful when Outcome == OutcomeEvict.
	Evicted ItemID
}

// Caching is a predictive eviction policy over a caller-owned cache.
//
// On a miss at full capacity it evicts the resident item with the largest
// predicted next-access time (Belady's rule under perfect predictions). Ties
// go to the lowest position in the given order. Items without a prediction
// count as never needed again.
//
// The engine keeps no cache of its own: all state is the slice passed in, and
// the prediction map is immutable after construction.
type Caching struct {
	capacity         int
	predictions      map[ItemID]uint32
	countInsertAsHit bool
}

// NewCaching creates a predictive caching engine.
// Returns ErrInvalidConfiguration if Capacity <= 0.
func NewCaching(cfg CachingConfig) (*Caching, error) {
	if cfg.Capacity <= 0 {
		return nil, fmt.Errorf("cache_size must be positive, got %d: %w", cfg.Capacity, ErrInvalidConfiguration)
	}
	predictions := make(map[ItemID]uint32, len(cfg.Predictions))
	for k, v := range cfg.Predictions {
		predictions[k] = v
	}
	return &Caching{
		capacity:         cfg.Capacity,
		predictions:      predictions,
		countInsertAsHit: cfg.CountInsertAsHit,
	}, nil
}

// Capacity returns the configured cache size.
func (c *Caching) Capacity() int {
	return c.capacity
}

// Prediction returns the predicted next-access time of item, and whether one exists.
func (c *Caching) Prediction(item ItemID) (uint32, bool) {
	p, ok := c.predictions[item]
	return p, ok
}

// Decide processes an access to item and returns whether it was a hit and
// the new cache contents. The input slice is never modified.
func (c *Caching) Decide(item ItemID, cache []ItemID) (bool, []ItemID) {
	res := c.Access(item, cache)
	hit := res.Outcome == OutcomeHit || (res.Outcome == OutcomeInsert && c.countInsertAsHit)
	return hit, res.Cache
}

// Access processes an access to item and reports the outcome in detail.
// Order of resident items is preserved; there is no move-to-front on hit.
func (c *Caching) Access(item ItemID, cache []ItemID) AccessResult {
	next := make([]ItemID, len(cache), len(cache)+1)
	copy(next, cache)

	for _, resident := range next {
		if resident == item {
			return AccessResult{Outcome: OutcomeHit, Cache: next}
		}
	}

	if len(next) < c.capacity {
		return AccessResult{Outcome: OutcomeInsert, Cache: append(next, item)}
	}

	victim := c.victim(next)
	evicted := next[victim]
	next = append(next[:victim], next[victim+1:]...)
	return AccessResult{
		Outcome: OutcomeEvict,
		Cache:   append(next, item),
		Evicted: evicted,
	}
}

// victim returns the index of the resident with the largest predicted
// next-access time, lowest index on ties. cache must be non-empty.
func (c *Caching) victim(cache []ItemID) int {
	best := 0
	bestPred := c.nextAccess(cache[0])
	for i := 1; i < len(cache); i++ {
		if p := c.nextAccess(cache[i]); p > bestPred {
			best, bestPred = i, p
		}
	}
	return best
}

func (c *Caching) nextAccess(item ItemID) uint32 {
	if p, ok := c.predictions[item]; ok {
		return p
	}
	return unpredicted
}
