package session

import (
	"context"
	"sync"
	"time"

	"messaging-service/internal/repositories"
)

// Manager owns one Session per authenticated user, created lazily on first
// use and kept for the life of the process.
type Manager struct {
	convRepo  repositories.ConversationRepository
	msgRepo   repositories.MessageRepository
	readRepo  repositories.ReadStateRepository
	directory Directory

	opts            []Option
	refreshInterval time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager constructs a Manager. A non-zero refreshInterval enables
// background polling for each session.
func NewManager(convRepo repositories.ConversationRepository, msgRepo repositories.MessageRepository, readRepo repositories.ReadStateRepository, dir Directory, refreshInterval time.Duration, opts ...Option) *Manager {
	return &Manager{
		convRepo:        convRepo,
		msgRepo:         msgRepo,
		readRepo:        readRepo,
		directory:       dir,
		opts:            opts,
		refreshInterval: refreshInterval,
		sessions:        make(map[string]*Session),
	}
}

// Get returns the user's session, creating and priming it on first call.
func (m *Manager) Get(ctx context.Context, userID string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[userID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	s, err := New(ctx, userID, m.convRepo, m.msgRepo, m.readRepo, m.directory, m.opts...)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if existing, ok := m.sessions[userID]; ok {
		// Lost a creation race; keep the first one.
		m.mu.Unlock()
		s.Close()
		return existing, nil
	}
	m.sessions[userID] = s
	m.mu.Unlock()

	s.Refresh(ctx)
	if m.refreshInterval > 0 {
		s.StartPolling(context.Background(), m.refreshInterval)
	}
	return s, nil
}

// Close stops every session's background refresh.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		s.Close()
	}
}
