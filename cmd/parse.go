package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/laa-platform/laa-core/laa"
)

// feedbackPair is one prediction:actual entry of --history.
type feedbackPair struct {
	Prediction float64
	Actual     float64
}

// parseFeedbackPairs parses "prediction:actual" entries.
func parseFeedbackPairs(entries []string) ([]feedbackPair, error) {
	pairs := make([]feedbackPair, 0, len(entries))
	for _, entry := range entries {
		pred, actual, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok {
			return nil, fmt.Errorf("history entry %q: want prediction:actual", entry)
		}
		p, err := strconv.ParseFloat(pred, 64)
		if err != nil {
			return nil, fmt.Errorf("history entry %q: prediction: %w", entry, err)
		}
		a, err := strconv.ParseFloat(actual, 64)
		if err != nil {
			return nil, fmt.Errorf("history entry %q: actual: %w", entry, err)
		}
		pairs = append(pairs, feedbackPair{Prediction: p, Actual: a})
	}
	return pairs, nil
}

// parseItemPredictions parses "item=next_access" entries. A repeated item
// keeps its last value.
func parseItemPredictions(entries []string) (map[laa.ItemID]uint32, error) {
	predictions := make(map[laa.ItemID]uint32, len(entries))
	for _, entry := range entries {
		item, next, ok := strings.Cut(strings.TrimSpace(entry), "=")
		if !ok {
			return nil, fmt.Errorf("prediction entry %q: want item=next_access", entry)
		}
		id, err := strconv.ParseUint(item, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("prediction entry %q: item: %w", entry, err)
		}
		at, err := strconv.ParseUint(next, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("prediction entry %q: next access: %w", entry, err)
		}
		predictions[laa.ItemID(id)] = uint32(at)
	}
	return predictions, nil
}

// toItemIDs converts flag values to item IDs, rejecting values above uint32.
func toItemIDs(values []uint) ([]laa.ItemID, error) {
	ids := make([]laa.ItemID, len(values))
	for i, v := range values {
		if uint64(v) > math.MaxUint32 {
			return nil, fmt.Errorf("item %d exceeds the 32-bit item range: %w", v, laa.ErrInvalidConfiguration)
		}
		ids[i] = laa.ItemID(v)
	}
	return ids, nil
}
