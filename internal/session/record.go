package session

import (
	"sort"

	"messaging-service/internal/models"
)

// Record is one entry in the visible message list. A pending record is the
// optimistic, client-only copy of a send awaiting confirmation; it carries a
// temporary id and is matched by that id, never by timestamp, when the
// authoritative row arrives.
type Record struct {
	models.Message
	TempID  string `json:"temp_id,omitempty"`
	Pending bool   `json:"pending"`
}

func confirmedRecord(msg models.Message) Record {
	return Record{Message: msg}
}

// replacePending swaps the pending record matching tempID for the confirmed
// message in place, preserving list position so nothing renders twice.
// Returns false when no record matches.
func replacePending(records []Record, tempID string, confirmed models.Message) bool {
	for i := range records {
		if records[i].Pending && records[i].TempID == tempID {
			records[i] = confirmedRecord(confirmed)
			return true
		}
	}
	return false
}

// removePending drops the pending record matching tempID, used for rollback
// after a failed send.
func removePending(records []Record, tempID string) []Record {
	for i := range records {
		if records[i].Pending && records[i].TempID == tempID {
			return append(records[:i], records[i+1:]...)
		}
	}
	return records
}

// sortRecords orders the list non-decreasing by creation time. The sort is
// stable so equal timestamps keep their arrival order.
func sortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}

// groupReactions folds raw per-user reaction rows into per-message emoji
// groups. Emoji order follows first appearance in the source rows; no further
// ordering is guaranteed.
func groupReactions(rows []models.ReactionRow) map[string][]models.ReactionSummary {
	grouped := make(map[string][]models.ReactionSummary)
	for _, row := range rows {
		summaries := grouped[row.MessageID]
		found := false
		for i := range summaries {
			if summaries[i].Emoji == row.Emoji {
				summaries[i].Count++
				summaries[i].Users = append(summaries[i].Users, row.UserName)
				found = true
				break
			}
		}
		if !found {
			summaries = append(summaries, models.ReactionSummary{
				Emoji: row.Emoji,
				Count: 1,
				Users: []string{row.UserName},
			})
		}
		grouped[row.MessageID] = summaries
	}
	return grouped
}
