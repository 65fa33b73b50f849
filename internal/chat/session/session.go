// Package session binds transport, reconciler and cache to the lifetime
// of viewing one conversation as one user. All session state is mutated
// on a single event-loop goroutine; the UI reads immutable snapshots.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"chatlink/internal/api"
	"chatlink/internal/cache"
	"chatlink/internal/chat/reconcile"
	"chatlink/internal/chat/transport"
	"chatlink/internal/dbsqlite"
)

// API is the slice of the REST client the session consumes.
type API interface {
	Conversation(ctx context.Context, conversationID string) (*api.ConversationDetail, error)
	Messages(ctx context.Context, conversationID string) ([]api.MessageRow, error)
}

// Transport is the socket connection owned by this session.
type Transport interface {
	Connect(userID, conversationID string)
	Send(f transport.Frame) bool
	Disconnect()
	IsConnected() bool
}

// TransportFactory builds the session's transport around its event sink.
type TransportFactory func(ev transport.Events) Transport

// User identifies the viewer.
type User struct {
	ID       string
	Username string
}

// Snapshot is an immutable view of session state for rendering.
type Snapshot struct {
	State                   State
	ConversationID          string
	ConversationName        string
	ConversationDescription string
	Messages                []reconcile.Message
	Connected               bool
	ComposeEnabled          bool
	LastError               string
}

type Session struct {
	conversationID string
	user           User

	api       API
	cache     cache.Repository
	transport Transport
	rec       *reconcile.Reconciler
	log       zerolog.Logger

	tasks   chan func()
	done    chan struct{}
	updates chan struct{}

	// Loop-owned state. Only the run goroutine touches these.
	state        State
	convName     string
	convDesc     string
	connected    bool
	degraded     bool
	loadingHist  bool
	lastError    string
	currentEpoch uint64 // async completions from an older epoch are dropped
}

// New builds a session for (conversationID, user). The session is Idle
// until Start.
func New(conversationID string, user User, apiClient API, repo cache.Repository, newTransport TransportFactory, log zerolog.Logger) *Session {
	s := &Session{
		conversationID: conversationID,
		user:           user,
		api:            apiClient,
		cache:          repo,
		rec:            reconcile.New(user.ID, user.Username),
		log: log.With().
			Str("component", "session").
			Str("conversation_id", conversationID).
			Logger(),
		tasks:   make(chan func(), 64),
		done:    make(chan struct{}),
		updates: make(chan struct{}, 1),
		state:   StateIdle,
	}
	s.transport = newTransport(&transportEvents{s: s})

	go s.run()
	return s
}

func (s *Session) run() {
	for {
		select {
		case fn := <-s.tasks:
			fn()
		case <-s.done:
			return
		}
	}
}

// post schedules fn on the event loop. Posts after Close are dropped.
func (s *Session) post(fn func()) {
	select {
	case <-s.done:
	case s.tasks <- fn:
	}
}

// postEpoch is post for async completions: the task only runs if the
// session epoch has not moved since the operation started.
func (s *Session) postEpoch(epoch uint64, fn func()) {
	s.post(func() {
		if epoch != s.currentEpoch {
			s.log.Debug().Msg("dropping stale async completion")
			return
		}
		fn()
	})
}

// Updates signals that the snapshot changed. Receives are coalesced, and
// the channel closes when the session unmounts.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

// notify is called by tasks that changed loop-owned state. Read-only
// tasks (Snapshot, SendMessage rejections) stay silent, so a consumer
// that reads a snapshot per signal cannot feed itself.
func (s *Session) notify() {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// Start begins the mount sequence: conversation details, then message
// history, then the socket connection.
func (s *Session) Start() {
	s.post(s.loadDetails)
}

func (s *Session) loadDetails() {
	s.state = StateLoadingDetails
	s.notify()
	epoch := s.currentEpoch

	go func() {
		ctx := context.Background()
		conv, err := s.api.Conversation(ctx, s.conversationID)

		var cached *dbsqlite.Conversation
		if err != nil && !errors.Is(err, api.ErrUnauthorized) {
			cached, _ = s.cache.ConversationByID(ctx, s.conversationID)
		}
		s.postEpoch(epoch, func() { s.handleDetails(conv, cached, err) })
	}()
}

func (s *Session) handleDetails(conv *api.ConversationDetail, cached *dbsqlite.Conversation, err error) {
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		s.failAuth()
		return

	case err != nil:
		s.degraded = true
		s.lastError = "could not reach the server"
		if cached != nil {
			s.convName = cached.Name
			s.convDesc = cached.Description
		} else {
			s.convName = defaultConversationName(s.conversationID)
		}
		s.log.Warn().Err(err).Msg("conversation details unavailable, using cache")

	default:
		s.convName = conv.Name
		if s.convName == "" {
			s.convName = defaultConversationName(s.conversationID)
		}
		s.convDesc = conv.Description
		s.persistConversation(conv)
	}

	s.loadMessages()
}

func (s *Session) persistConversation(conv *api.ConversationDetail) {
	row := &dbsqlite.Conversation{
		ID:          s.conversationID,
		OwnerID:     conv.OwnerID,
		Name:        s.convName,
		Description: conv.Description,
		CreatedAt:   parseOr(conv.CreatedAt, time.Now().UTC()),
		UpdatedAt:   parseOr(conv.UpdatedAt, time.Now().UTC()),
	}
	if row.OwnerID == "" {
		row.OwnerID = s.user.ID
	}

	go func() {
		if err := s.cache.UpsertConversation(context.Background(), row); err != nil {
			s.log.Warn().Err(err).Msg("failed to cache conversation")
		}
	}()
}

func (s *Session) loadMessages() {
	s.state = StateLoadingMessages
	s.loadingHist = true
	s.notify()
	epoch := s.currentEpoch

	go func() {
		ctx := context.Background()
		rows, err := s.api.Messages(ctx, s.conversationID)

		var fallback []dbsqlite.Message
		if err != nil && !errors.Is(err, api.ErrUnauthorized) {
			fallback, _ = s.cache.MessagesByConversation(ctx, s.conversationID)
		}
		s.postEpoch(epoch, func() { s.handleMessages(rows, fallback, err) })
	}()
}

func (s *Session) handleMessages(rows []api.MessageRow, fallback []dbsqlite.Message, err error) {
	s.loadingHist = false

	switch {
	case errors.Is(err, api.ErrUnauthorized):
		s.failAuth()
		return

	case err != nil:
		// The fetch itself failed; an empty successful response would not
		// land here and must not trigger the fallback.
		s.degraded = true
		s.lastError = "could not load message history"
		s.rec.IngestCacheRows(fallback)
		s.log.Warn().Err(err).Int("cached", len(fallback)).Msg("history fetch failed, showing cache")

	default:
		s.degraded = false
		s.lastError = ""
		fresh := s.rec.IngestRESTHistory(rows)
		s.persistRows(fresh)
	}

	// Degraded still tries the socket; only auth failure stops us.
	if s.state != StateDegraded {
		s.state = StateConnecting
	}
	if s.degraded {
		s.state = StateDegraded
	}
	s.notify()
	s.transport.Connect(s.user.ID, s.conversationID)
}

func (s *Session) persistRows(rows []api.MessageRow) {
	if len(rows) == 0 {
		return
	}

	msgs := make([]dbsqlite.Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, dbsqlite.Message{
			ID:             row.ID,
			ConversationID: s.conversationID,
			SenderID:       row.SenderID,
			Content:        row.Content,
			SentFromClient: parseOr(row.SentFromClient, time.Now().UTC()),
			SentFromServer: parseOr(row.SentFromServer, time.Now().UTC()),
		})
	}

	go func() {
		if err := s.cache.UpsertMessages(context.Background(), msgs); err != nil {
			s.log.Warn().Err(err).Int("count", len(msgs)).Msg("failed to cache history")
		}
	}()
}

func (s *Session) persistMessage(msg reconcile.Message) {
	row := dbsqlite.Message{
		ID:             msg.ID,
		ConversationID: s.conversationID,
		SenderID:       msg.SenderID,
		Content:        msg.Content,
		SentFromClient: msg.Timestamp,
		SentFromServer: msg.Timestamp,
	}

	go func() {
		if err := s.cache.UpsertMessages(context.Background(), []dbsqlite.Message{row}); err != nil {
			s.log.Warn().Err(err).Str("message_id", msg.ID).Msg("failed to cache message")
		}
	}()
}

func (s *Session) failAuth() {
	s.state = StateAuthExpired
	s.lastError = "session expired, please log in again"
	s.notify()
	s.transport.Disconnect()
	s.log.Warn().Msg("auth failure, session stopped")
}

// SendMessage inserts the text optimistically and sends it. On a closed
// socket the optimistic message stays pending and ErrNotConnected is
// returned; the caller may retry.
func (s *Session) SendMessage(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	return s.call(func() error {
		switch {
		case s.state == StateAuthExpired, s.state == StateUnmounted:
			return ErrComposeDisabled
		case s.degraded:
			// No durable path to persist the send.
			return ErrComposeDisabled
		case s.loadingHist:
			return ErrComposeDisabled
		}

		msg := s.rec.InsertOptimistic(text)
		s.notify()
		frame := transport.NewChatFrame(msg.ID, s.user.ID, s.conversationID, text, s.user.Username, msg.Timestamp)
		if !s.transport.Send(frame) {
			s.log.Warn().Str("message_id", msg.ID).Msg("send failed, message left pending")
			return fmt.Errorf("send %s: %w", msg.ID, ErrNotConnected)
		}
		return nil
	})
}

// call runs fn on the event loop and waits for its result.
func (s *Session) call(fn func() error) error {
	result := make(chan error, 1)
	select {
	case <-s.done:
		return ErrClosed
	case s.tasks <- func() { result <- fn() }:
	}

	select {
	case err := <-result:
		return err
	case <-s.done:
		return ErrClosed
	}
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	out := make(chan Snapshot, 1)
	select {
	case <-s.done:
		return Snapshot{State: StateUnmounted, ConversationID: s.conversationID}
	case s.tasks <- func() { out <- s.snapshotLocked() }:
	}

	select {
	case snap := <-out:
		return snap
	case <-s.done:
		return Snapshot{State: StateUnmounted, ConversationID: s.conversationID}
	}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		State:                   s.state,
		ConversationID:          s.conversationID,
		ConversationName:        s.convName,
		ConversationDescription: s.convDesc,
		Messages:                s.rec.Timeline(),
		Connected:               s.connected,
		ComposeEnabled:          !s.degraded && !s.loadingHist && s.state != StateAuthExpired && s.state != StateUnmounted,
		LastError:               s.lastError,
	}
}

// Close unmounts the session: the socket is released on every path, any
// pending reconnect dies with it, and in-flight fetch results are
// discarded. Idempotent.
func (s *Session) Close() {
	select {
	case <-s.done:
		return
	case s.tasks <- func() {
		s.currentEpoch++
		s.state = StateUnmounted
		close(s.done)
		close(s.updates)
	}:
	case <-time.After(time.Second):
		// Loop wedged or already gone; fall through to the disconnect.
	}

	s.transport.Disconnect()
}

func defaultConversationName(conversationID string) string {
	if len(conversationID) > 8 {
		return "Chat " + conversationID[:8]
	}
	return "Chat " + conversationID
}

func parseOr(s string, fallback time.Time) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fallback
	}
	return t
}

// transportEvents forwards transport callbacks onto the event loop, which
// preserves arrival order and the single-writer rule.
type transportEvents struct {
	s *Session
}

func (ev *transportEvents) OnFrame(f transport.Frame) {
	ev.s.post(func() { ev.s.handleFrame(f) })
}

func (ev *transportEvents) OnError(msg string) {
	ev.s.post(func() {
		ev.s.lastError = msg
		ev.s.notify()
	})
}

func (ev *transportEvents) OnConnectionChange(connected bool) {
	ev.s.post(func() { ev.s.handleConnectionChange(connected) })
}

func (ev *transportEvents) OnUnavailable() {
	ev.s.post(func() {
		ev.s.log.Warn().Msg("realtime connection unavailable")
		ev.s.degraded = true
		ev.s.lastError = "realtime connection unavailable"
		ev.s.state = StateDegraded
		ev.s.notify()
	})
}

func (s *Session) handleFrame(f transport.Frame) {
	msg, grew := s.rec.IngestSocket(f)
	if msg.ID == "" {
		return
	}

	if grew {
		s.log.Debug().Str("message_id", msg.ID).Msg("message received")
	}
	// Persist incrementally, echoes of our own sends included, so the
	// cache is current long before teardown.
	s.persistMessage(msg)
	s.notify()
}

func (s *Session) handleConnectionChange(connected bool) {
	s.connected = connected

	switch {
	case connected:
		if s.state == StateConnecting || s.state == StateReconnecting || s.state == StateLive {
			s.state = StateLive
			s.lastError = ""
		}
	case s.state == StateLive:
		s.state = StateReconnecting
	}
	s.notify()
}
