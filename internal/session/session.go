package session

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

var (
	ErrEmptyContent           = errors.New("message content is empty")
	ErrSendInFlight           = errors.New("a send is already in flight")
	ErrNoConversationSelected = errors.New("no conversation selected")
)

// Directory is the profile lookup surface the session needs.
type Directory interface {
	Resolve(ctx context.Context, userID string) (models.UserProfile, error)
	Search(ctx context.Context, query, requesterID string) ([]models.UserProfile, error)
}

// EventSink receives domain events after state-changing operations. A nil
// sink disables publishing.
type EventSink interface {
	MessageSent(ctx context.Context, msg models.Message)
	ConversationRead(ctx context.Context, conversationID, userID string)
	ConversationStarted(ctx context.Context, conversationID, userID, peerID string)
}

// Snapshot is the reactive state the presentation layer binds to.
type Snapshot struct {
	Conversations        []models.ConversationSummary `json:"conversations"`
	SelectedConversation string                       `json:"selected_conversation,omitempty"`
	Messages             []Record                     `json:"messages"`
	Sending              bool                         `json:"sending"`
	Draft                string                       `json:"draft,omitempty"`
	UnreadTotal          int                          `json:"unread_total"`
}

// Session is the per-user state container for the messaging view: the
// conversation list, the open conversation's messages and the unread rollup.
// All mutation is serialized by the session mutex; backend calls never run
// under it. Cross-component consistency comes from explicit refreshes after
// each mutating action, not shared subscriptions.
type Session struct {
	userID  string
	profile models.UserProfile

	convRepo  repositories.ConversationRepository
	msgRepo   repositories.MessageRepository
	readRepo  repositories.ReadStateRepository
	directory Directory
	events    EventSink

	callTimeout time.Duration
	tracer      trace.Tracer
	poller      Refresher

	// notify pushes the refreshed snapshot to anything listening (ws hub).
	notify func(userID string, snap Snapshot)

	state sessionState
}

// Option configures a Session.
type Option func(*Session)

// WithCallTimeout overrides the per-call network timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(s *Session) { s.callTimeout = d }
}

// WithEventSink attaches a domain event publisher.
func WithEventSink(sink EventSink) Option {
	return func(s *Session) { s.events = sink }
}

// WithNotifier attaches a snapshot push callback.
func WithNotifier(fn func(userID string, snap Snapshot)) Option {
	return func(s *Session) { s.notify = fn }
}

// New constructs a Session for the user. The user's own profile is resolved
// once up front; optimistic sends reuse it rather than re-fetching.
func New(ctx context.Context, userID string, convRepo repositories.ConversationRepository, msgRepo repositories.MessageRepository, readRepo repositories.ReadStateRepository, dir Directory, opts ...Option) (*Session, error) {
	profile, err := dir.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	s := &Session{
		userID:      userID,
		profile:     profile,
		convRepo:    convRepo,
		msgRepo:     msgRepo,
		readRepo:    readRepo,
		directory:   dir,
		callTimeout: defaultCallTimeout,
		tracer:      otel.Tracer("messaging-service/session"),
		poller:      NewPoller(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// UserID returns the session owner.
func (s *Session) UserID() string { return s.userID }

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	return s.state.snapshotLocked()
}

// Search looks up profiles by display name, excluding the session owner.
func (s *Session) Search(ctx context.Context, query string) ([]models.UserProfile, error) {
	return withTimeout(ctx, s.callTimeout, func(ctx context.Context) ([]models.UserProfile, error) {
		return s.directory.Search(ctx, query, s.userID)
	})
}

// StartPolling schedules periodic conversation refreshes.
func (s *Session) StartPolling(ctx context.Context, interval time.Duration) {
	s.poller.Start(ctx, interval, func(ctx context.Context) {
		s.Refresh(ctx)
	})
}

// Close stops background refreshing.
func (s *Session) Close() {
	s.poller.Stop()
}

func (s *Session) publish() {
	if s.notify == nil {
		return
	}
	s.notify(s.userID, s.Snapshot())
}
