package reconcile

import (
	"sort"

	"github.com/numan98khan/igflow-simulator/internal/models"
)

// MergeEvents folds newly-seen events into the execution log. Events
// are keyed purely by id: re-seen ids are ignored, new ids appended,
// and the whole log re-sorted ascending by CreatedAt. The log never
// shrinks here; only an explicit reset discards it.
func MergeEvents(existing, incoming []models.Event) []models.Event {
	if len(incoming) == 0 {
		return existing
	}

	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[e.ID] = true
	}

	merged := append([]models.Event(nil), existing...)
	for _, e := range incoming {
		if seen[e.ID] {
			continue
		}
		merged = append(merged, e)
		seen[e.ID] = true
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.Before(merged[j].CreatedAt)
	})

	return merged
}
