package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/models"
)

func TestReplacePendingSwapsInPlace(t *testing.T) {
	records := []Record{
		{Message: models.Message{ID: "m1", Content: "first"}},
		{Message: models.Message{ID: "temp-x", Content: "hello"}, TempID: "temp-x", Pending: true},
		{Message: models.Message{ID: "m2", Content: "last"}},
	}

	confirmed := models.Message{ID: "m3", Content: "hello"}
	require.True(t, replacePending(records, "temp-x", confirmed))

	require.Len(t, records, 3)
	assert.Equal(t, "m3", records[1].ID)
	assert.Equal(t, "hello", records[1].Content)
	assert.False(t, records[1].Pending)
	assert.Empty(t, records[1].TempID)
}

func TestReplacePendingUnknownTempID(t *testing.T) {
	records := []Record{{Message: models.Message{ID: "m1"}}}
	assert.False(t, replacePending(records, "temp-missing", models.Message{ID: "m2"}))
	assert.Equal(t, "m1", records[0].ID)
}

func TestReplacePendingIgnoresConfirmedRecords(t *testing.T) {
	// A confirmed record whose id happens to equal the temp id must not be
	// replaced; only pending records match.
	records := []Record{{Message: models.Message{ID: "temp-x"}}}
	assert.False(t, replacePending(records, "temp-x", models.Message{ID: "m2"}))
}

func TestRemovePending(t *testing.T) {
	records := []Record{
		{Message: models.Message{ID: "m1"}},
		{Message: models.Message{ID: "temp-x"}, TempID: "temp-x", Pending: true},
	}

	records = removePending(records, "temp-x")
	require.Len(t, records, 1)
	assert.Equal(t, "m1", records[0].ID)

	// Removing again is a no-op.
	records = removePending(records, "temp-x")
	assert.Len(t, records, 1)
}

func TestSortRecordsIsStableAndAscending(t *testing.T) {
	base := time.Now()
	records := []Record{
		{Message: models.Message{ID: "c", CreatedAt: base.Add(2 * time.Second)}},
		{Message: models.Message{ID: "a", CreatedAt: base}},
		{Message: models.Message{ID: "b", CreatedAt: base}},
	}

	sortRecords(records)

	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
	assert.Equal(t, "c", records[2].ID)
}

func TestGroupReactions(t *testing.T) {
	rows := []models.ReactionRow{
		{MessageID: "m1", UserName: "alice", Emoji: "👍"},
		{MessageID: "m1", UserName: "bob", Emoji: "👍"},
		{MessageID: "m1", UserName: "carol", Emoji: "🔥"},
		{MessageID: "m2", UserName: "alice", Emoji: "🔥"},
	}

	grouped := groupReactions(rows)

	require.Len(t, grouped["m1"], 2)
	assert.Equal(t, "👍", grouped["m1"][0].Emoji)
	assert.Equal(t, 2, grouped["m1"][0].Count)
	assert.Equal(t, []string{"alice", "bob"}, grouped["m1"][0].Users)
	assert.Equal(t, "🔥", grouped["m1"][1].Emoji)
	assert.Equal(t, 1, grouped["m1"][1].Count)

	require.Len(t, grouped["m2"], 1)
	assert.Equal(t, []string{"alice"}, grouped["m2"][0].Users)
}

func TestGroupReactionsEmpty(t *testing.T) {
	assert.Empty(t, groupReactions(nil))
}
