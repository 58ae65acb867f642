package reconcile

import (
	"sort"
	"time"

	"github.com/numan98khan/igflow-simulator/internal/models"
)

// DefaultDuplicateWindow is how far apart an optimistic echo and the
// engine's authoritative copy of the same utterance may be timestamped
// and still be treated as one message.
const DefaultDuplicateWindow = 4 * time.Second

// MergeMessages folds an incoming batch into an already-ordered
// message list. For any id present in both lists the incoming version
// wins. A locally-created optimistic customer message is dropped when
// the merged list contains an authoritative message with the same
// sender and text stamped within window of the optimistic send time:
// the engine echoes the operator's own message back under a
// server-assigned id, and without this the conversation would show
// the utterance twice.
//
// The result is re-sorted ascending by CreatedAt. Ties and messages
// without timestamps keep their relative input order.
func MergeMessages(existing, incoming []models.Message, window time.Duration) []models.Message {
	if window <= 0 {
		window = DefaultDuplicateWindow
	}

	incomingByID := make(map[string]models.Message, len(incoming))
	for _, m := range incoming {
		incomingByID[m.ID] = m
	}

	merged := make([]models.Message, 0, len(existing)+len(incoming))
	seen := make(map[string]bool, len(existing)+len(incoming))

	for _, m := range existing {
		if replacement, ok := incomingByID[m.ID]; ok {
			m = replacement
		}
		if !seen[m.ID] {
			merged = append(merged, m)
			seen[m.ID] = true
		}
	}
	for _, m := range incoming {
		if !seen[m.ID] {
			merged = append(merged, m)
			seen[m.ID] = true
		}
	}

	merged = dropOptimisticDuplicates(merged, window)

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i].CreatedAt, merged[j].CreatedAt
		if a.IsZero() || b.IsZero() {
			return false
		}
		return a.Before(b)
	})

	return merged
}

func dropOptimisticDuplicates(msgs []models.Message, window time.Duration) []models.Message {
	out := msgs[:0:0]
	for _, m := range msgs {
		if m.IsOptimistic() && hasAuthoritativeTwin(msgs, m, window) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func hasAuthoritativeTwin(msgs []models.Message, opt models.Message, window time.Duration) bool {
	for _, other := range msgs {
		if other.IsOptimistic() || other.From != opt.From || other.Text != opt.Text {
			continue
		}
		if opt.CreatedAt.IsZero() || other.CreatedAt.IsZero() {
			// No send time to correlate on; same sender and text is
			// the best signal available.
			return true
		}
		delta := other.CreatedAt.Sub(opt.CreatedAt)
		if delta < 0 {
			delta = -delta
		}
		if delta <= window {
			return true
		}
	}
	return false
}
