package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numan98khan/igflow-simulator/internal/models"
)

func msg(id, from, text string, at time.Time) models.Message {
	return models.Message{ID: id, From: from, Text: text, CreatedAt: at}
}

func TestMergeMessagesIdempotent(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	existing := []models.Message{
		msg("m1", models.SenderCustomer, "hi", base),
		msg("m2", models.SenderAutomated, "hello!", base.Add(time.Second)),
	}

	assert.Equal(t, existing, MergeMessages(existing, nil, 0), "merging an empty batch must be a no-op")
	assert.Equal(t, existing, MergeMessages(existing, existing, 0), "merging a list with itself must fold by id")
}

func TestMergeMessagesIncomingWinsByID(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	existing := []models.Message{msg("m1", models.SenderAutomated, "draft reply", base)}
	incoming := []models.Message{msg("m1", models.SenderAutomated, "final reply", base)}

	merged := MergeMessages(existing, incoming, 0)
	require.Len(t, merged, 1)
	assert.Equal(t, "final reply", merged[0].Text)
}

func TestMergeMessagesDropsOptimisticDuplicate(t *testing.T) {
	sentAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	optimistic := models.NewOptimisticMessage("hello", sentAt)

	incoming := []models.Message{
		// Engine echo of the same utterance, stamped 2s later under a
		// server-assigned id.
		msg("srv-1", models.SenderCustomer, "hello", sentAt.Add(2*time.Second)),
		msg("srv-2", models.SenderAutomated, "hi there", sentAt.Add(3*time.Second)),
	}

	merged := MergeMessages([]models.Message{optimistic}, incoming, 4*time.Second)
	require.Len(t, merged, 2)
	assert.Equal(t, "srv-1", merged[0].ID, "the authoritative copy replaces the optimistic echo")
	assert.Equal(t, "srv-2", merged[1].ID)
}

func TestMergeMessagesKeepsOptimisticOutsideWindow(t *testing.T) {
	sentAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	optimistic := models.NewOptimisticMessage("hello", sentAt)

	// Same text but from a much earlier turn; not the echo of this send.
	incoming := []models.Message{
		msg("srv-1", models.SenderCustomer, "hello", sentAt.Add(-time.Minute)),
	}

	merged := MergeMessages([]models.Message{optimistic}, incoming, 4*time.Second)
	assert.Len(t, merged, 2)
}

func TestMergeMessagesSortsByTimestamp(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	existing := []models.Message{
		msg("m3", models.SenderAutomated, "third", base.Add(2*time.Second)),
	}
	// Out-of-order network response self-corrects.
	incoming := []models.Message{
		msg("m2", models.SenderAutomated, "second", base.Add(time.Second)),
		msg("m1", models.SenderCustomer, "first", base),
	}

	merged := MergeMessages(existing, incoming, 0)
	require.Len(t, merged, 3)
	assert.Equal(t, []string{"m1", "m2", "m3"}, []string{merged[0].ID, merged[1].ID, merged[2].ID})
}

func TestMergeMessagesTiesKeepInputOrder(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	existing := []models.Message{
		msg("m1", models.SenderAutomated, "a", base),
		msg("m2", models.SenderAutomated, "b", base),
	}

	merged := MergeMessages(existing, nil, 0)
	assert.Equal(t, "m1", merged[0].ID)
	assert.Equal(t, "m2", merged[1].ID)
}

func TestMergeMessagesMissingTimestampsKeepPosition(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	existing := []models.Message{
		msg("m1", models.SenderCustomer, "first", base),
		msg("m2", models.SenderAutomated, "no clock", time.Time{}),
		msg("m3", models.SenderAutomated, "third", base.Add(time.Second)),
	}

	merged := MergeMessages(existing, nil, 0)
	require.Len(t, merged, 3)
	assert.Equal(t, "m2", merged[1].ID, "untimestamped messages keep their relative slot")
}
