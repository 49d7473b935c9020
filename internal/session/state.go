package session

import (
	"sync"

	"messaging-service/internal/models"
)

// sessionState is the mutable view state. Everything here is guarded by mu;
// methods suffixed Locked assume the caller holds it.
type sessionState struct {
	mu sync.Mutex

	conversations []models.ConversationSummary
	selected      string
	records       []Record
	sending       bool
	draft         string
	unreadTotal   int
}

func (st *sessionState) snapshotLocked() Snapshot {
	snap := Snapshot{
		Conversations:        make([]models.ConversationSummary, len(st.conversations)),
		SelectedConversation: st.selected,
		Messages:             make([]Record, len(st.records)),
		Sending:              st.sending,
		Draft:                st.draft,
		UnreadTotal:          st.unreadTotal,
	}
	copy(snap.Conversations, st.conversations)
	copy(snap.Messages, st.records)
	return snap
}

func (st *sessionState) recomputeUnreadLocked() {
	total := 0
	for _, c := range st.conversations {
		total += c.UnreadCount
	}
	st.unreadTotal = total
}

func (st *sessionState) zeroUnreadLocked(conversationID string) int {
	for i := range st.conversations {
		if st.conversations[i].ID == conversationID {
			prior := st.conversations[i].UnreadCount
			st.conversations[i].UnreadCount = 0
			st.recomputeUnreadLocked()
			return prior
		}
	}
	return 0
}
