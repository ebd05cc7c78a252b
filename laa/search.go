package laa

import "fmt"

// SearchResult is the detailed result of Search.Find.
type SearchResult struct {
	// Index is the lowest index holding the maximum value.
	Index int
	// Probes is the number of positions scanned, starting at the seed,
	// until a maximum value was first seen. 1 means the prediction was exact.
	Probes int
}

// Search finds the index of a maximum value by scanning circularly from a
// predicted index. Every position is visited exactly once. Ties resolve to
// the lowest absolute index, so the result does not depend on the seed.
// An out-of-range prediction starts the scan at index 0.
type Search struct{}

// NewSearch creates a search engine.
func NewSearch() *Search {
	return &Search{}
}

// Decide returns the index of a maximum of values.
// Returns ErrEmptyInput if values is empty.
func (s *Search) Decide(values []int, prediction int) (int, error) {
	res, err := s.Find(values, prediction)
	if err != nil {
		return 0, err
	}
	return res.Index, nil
}

// Find is Decide with probe accounting.
func (s *Search) Find(values []int, prediction int) (SearchResult, error) {
	n := len(values)
	if n == 0 {
		return SearchResult{}, fmt.Errorf("search over no values: %w", ErrEmptyInput)
	}

	start := prediction
	if start < 0 || start >= n {
		start = 0
	}

	best := start
	probes := 1
	for step := 1; step < n; step++ {
		i := (start + step) % n
		switch {
		case values[i] > values[best]:
			best = i
			probes = step + 1
		case values[i] == values[best] && i < best:
			// Same maximum seen again after the scan wrapped past index 0.
			best = i
		}
	}
	return SearchResult{Index: best, Probes: probes}, nil
}
