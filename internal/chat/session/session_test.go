package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chatlink/internal/api"
	"chatlink/internal/chat/session/mocks"
	"chatlink/internal/chat/transport"
	"chatlink/internal/dbsqlite"
)

type harness struct {
	ctrl *gomock.Controller
	api  *mocks.MockAPI
	repo *mocks.MockRepository
	tr   *mocks.MockTransport
	ev   transport.Events
	sess *Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{ctrl: gomock.NewController(t)}
	h.api = mocks.NewMockAPI(h.ctrl)
	h.repo = mocks.NewMockRepository(h.ctrl)
	h.tr = mocks.NewMockTransport(h.ctrl)
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()

	h.sess = New("conv-1", User{ID: "user-1", Username: "ana"}, h.api, h.repo,
		func(ev transport.Events) Transport {
			h.ev = ev
			return h.tr
		}, zerolog.Nop())
	t.Cleanup(h.sess.Close)
	h.sess.Start()
}

func waitForState(t *testing.T, s *Session, want State) Snapshot {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	var snap Snapshot
	for time.Now().Before(deadline) {
		snap = s.Snapshot()
		if snap.State == want {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session never reached %v, last state %v", want, snap.State)
	return snap
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func detail() *api.ConversationDetail {
	return &api.ConversationDetail{
		ID:          "conv-1",
		OwnerID:     "user-9",
		Name:        "general",
		Description: "the general channel",
		CreatedAt:   "2025-06-01T10:00:00Z",
		UpdatedAt:   "2025-06-01T10:00:00Z",
	}
}

func TestSession_MountToLive(t *testing.T) {
	h := newHarness(t)

	convSaved := make(chan struct{})
	histSaved := make(chan struct{})

	h.api.EXPECT().Conversation(gomock.Any(), "conv-1").Return(detail(), nil)
	h.repo.EXPECT().UpsertConversation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, conv *dbsqlite.Conversation) error {
			assert.Equal(t, "conv-1", conv.ID)
			assert.Equal(t, "general", conv.Name)
			close(convSaved)
			return nil
		})

	// History arrives newest-first; the timeline must come out ascending.
	h.api.EXPECT().Messages(gomock.Any(), "conv-1").Return([]api.MessageRow{
		{ID: "m2", Content: "second", SenderID: "user-2", ConversationID: "conv-1", SentFromServer: "2025-06-01T11:00:00Z"},
		{ID: "m1", Content: "first", SenderID: "user-1", ConversationID: "conv-1", SentFromServer: "2025-06-01T10:30:00Z"},
	}, nil)
	h.repo.EXPECT().UpsertMessages(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, msgs []dbsqlite.Message) error {
			assert.Len(t, msgs, 2)
			close(histSaved)
			return nil
		})

	h.tr.EXPECT().Connect("user-1", "conv-1").Do(func(_, _ string) {
		go h.ev.OnConnectionChange(true)
	})
	h.tr.EXPECT().Disconnect().AnyTimes()

	h.start(t)

	snap := waitForState(t, h.sess, StateLive)
	assert.Equal(t, "general", snap.ConversationName)
	assert.Equal(t, "the general channel", snap.ConversationDescription)
	assert.True(t, snap.Connected)
	assert.True(t, snap.ComposeEnabled)
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, "m1", snap.Messages[0].ID)
	assert.Equal(t, "m2", snap.Messages[1].ID)
	// Self rows get the local username, others the placeholder.
	assert.Equal(t, "ana", snap.Messages[0].DisplayName)
	assert.Equal(t, "User", snap.Messages[1].DisplayName)

	<-convSaved
	<-histSaved
}

func TestSession_AuthFailureStopsSession(t *testing.T) {
	h := newHarness(t)

	h.api.EXPECT().Conversation(gomock.Any(), "conv-1").
		Return(nil, fmt.Errorf("GET /api/conversation/conv-1: %w", api.ErrUnauthorized))
	// No Messages expectation: a further REST call would fail the test.
	h.tr.EXPECT().Disconnect().MinTimes(1)

	h.start(t)

	snap := waitForState(t, h.sess, StateAuthExpired)
	assert.False(t, snap.ComposeEnabled)
	assert.NotEmpty(t, snap.LastError)

	err := h.sess.SendMessage("hello")
	assert.ErrorIs(t, err, ErrComposeDisabled)
}

func TestSession_RESTFailureFallsBackToCache(t *testing.T) {
	h := newHarness(t)

	netErr := errors.New("connection refused")

	h.api.EXPECT().Conversation(gomock.Any(), "conv-1").Return(nil, netErr)
	h.repo.EXPECT().ConversationByID(gomock.Any(), "conv-1").
		Return(&dbsqlite.Conversation{ID: "conv-1", Name: "general (cached)"}, nil)

	h.api.EXPECT().Messages(gomock.Any(), "conv-1").Return(nil, netErr)
	h.repo.EXPECT().MessagesByConversation(gomock.Any(), "conv-1").
		Return([]dbsqlite.Message{
			{ID: "a", ConversationID: "conv-1", SenderID: "user-2", Content: "hi", SentFromClient: time.Now().UTC()},
		}, nil)

	// Degraded mode still attempts the socket connection.
	h.tr.EXPECT().Connect("user-1", "conv-1")
	h.tr.EXPECT().Disconnect().AnyTimes()

	h.start(t)

	snap := waitForState(t, h.sess, StateDegraded)
	assert.Equal(t, "general (cached)", snap.ConversationName)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "hi", snap.Messages[0].Content)
	assert.False(t, snap.ComposeEnabled, "no durable path for sends in degraded mode")

	err := h.sess.SendMessage("hello")
	assert.ErrorIs(t, err, ErrComposeDisabled)
}

func TestSession_EmptyHistoryIsNotAFallbackTrigger(t *testing.T) {
	h := newHarness(t)

	h.api.EXPECT().Conversation(gomock.Any(), "conv-1").Return(detail(), nil)
	h.repo.EXPECT().UpsertConversation(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	h.api.EXPECT().Messages(gomock.Any(), "conv-1").Return([]api.MessageRow{}, nil)
	// No MessagesByConversation expectation: reading the cache here would
	// fail the test.

	h.tr.EXPECT().Connect("user-1", "conv-1").Do(func(_, _ string) {
		go h.ev.OnConnectionChange(true)
	})
	h.tr.EXPECT().Disconnect().AnyTimes()

	h.start(t)

	snap := waitForState(t, h.sess, StateLive)
	assert.Empty(t, snap.Messages)
	assert.True(t, snap.ComposeEnabled)
}

func TestSession_InboundFramePersistedIncrementally(t *testing.T) {
	h := newHarness(t)

	h.api.EXPECT().Conversation(gomock.Any(), "conv-1").Return(detail(), nil)
	h.repo.EXPECT().UpsertConversation(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	h.api.EXPECT().Messages(gomock.Any(), "conv-1").Return(nil, nil)

	saved := make(chan dbsqlite.Message, 1)
	h.repo.EXPECT().UpsertMessages(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, msgs []dbsqlite.Message) error {
			for _, m := range msgs {
				saved <- m
			}
			return nil
		}).AnyTimes()

	h.tr.EXPECT().Connect("user-1", "conv-1").Do(func(_, _ string) {
		go h.ev.OnConnectionChange(true)
	})
	h.tr.EXPECT().Disconnect().AnyTimes()

	h.start(t)
	waitForState(t, h.sess, StateLive)

	h.ev.OnFrame(transport.Frame{
		MessageType: transport.FrameChat,
		Payload:     &transport.Payload{Content: "hello", DisplayName: "bob"},
		Meta:        &transport.Meta{MessageID: "m1", SenderID: "user-2", ConversationID: "conv-1", Timestamp: "2025-06-01T12:00:00Z"},
	})

	select {
	case m := <-saved:
		assert.Equal(t, "m1", m.ID)
		assert.Equal(t, "hello", m.Content)
	case <-time.After(3 * time.Second):
		t.Fatal("inbound frame was never persisted")
	}

	snap := h.sess.Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "bob", snap.Messages[0].DisplayName)
}

func TestSession_SendAndEchoDoesNotDuplicate(t *testing.T) {
	h := newHarness(t)

	h.api.EXPECT().Conversation(gomock.Any(), "conv-1").Return(detail(), nil)
	h.repo.EXPECT().UpsertConversation(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	h.api.EXPECT().Messages(gomock.Any(), "conv-1").Return(nil, nil)
	h.repo.EXPECT().UpsertMessages(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	h.tr.EXPECT().Connect("user-1", "conv-1").Do(func(_, _ string) {
		go h.ev.OnConnectionChange(true)
	})
	h.tr.EXPECT().Disconnect().AnyTimes()

	var sent transport.Frame
	h.tr.EXPECT().Send(gomock.Any()).DoAndReturn(func(f transport.Frame) bool {
		sent = f
		return true
	})

	h.start(t)
	waitForState(t, h.sess, StateLive)

	require.NoError(t, h.sess.SendMessage("hi there"))

	snap := h.sess.Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "pending", string(snap.Messages[0].Origin))
	require.NotNil(t, sent.Meta)
	assert.Equal(t, snap.Messages[0].ID, sent.Meta.MessageID)

	// Server echoes the same id back; the entry is confirmed, not doubled.
	h.ev.OnFrame(transport.Frame{
		MessageType: transport.FrameChat,
		Payload:     sent.Payload,
		Meta:        sent.Meta,
	})

	waitFor(t, func() bool {
		msgs := h.sess.Snapshot().Messages
		return len(msgs) == 1 && string(msgs[0].Origin) == "socket"
	}, "echo confirmation")
}

func TestSession_SendWhileDisconnected(t *testing.T) {
	h := newHarness(t)

	h.api.EXPECT().Conversation(gomock.Any(), "conv-1").Return(detail(), nil)
	h.repo.EXPECT().UpsertConversation(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	h.api.EXPECT().Messages(gomock.Any(), "conv-1").Return(nil, nil)

	h.tr.EXPECT().Connect("user-1", "conv-1")
	h.tr.EXPECT().Disconnect().AnyTimes()
	h.tr.EXPECT().Send(gomock.Any()).Return(false)

	h.start(t)
	waitForState(t, h.sess, StateConnecting)

	err := h.sess.SendMessage("hello")
	assert.ErrorIs(t, err, ErrNotConnected)

	// The optimistic message stays visible, marked pending.
	snap := h.sess.Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "pending", string(snap.Messages[0].Origin))
}

func TestSession_ReconnectTransitions(t *testing.T) {
	h := newHarness(t)

	h.api.EXPECT().Conversation(gomock.Any(), "conv-1").Return(detail(), nil)
	h.repo.EXPECT().UpsertConversation(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	h.api.EXPECT().Messages(gomock.Any(), "conv-1").Return(nil, nil)

	h.tr.EXPECT().Connect("user-1", "conv-1").Do(func(_, _ string) {
		go h.ev.OnConnectionChange(true)
	})
	h.tr.EXPECT().Disconnect().AnyTimes()

	h.start(t)
	waitForState(t, h.sess, StateLive)

	h.ev.OnConnectionChange(false)
	waitForState(t, h.sess, StateReconnecting)

	h.ev.OnConnectionChange(true)
	waitForState(t, h.sess, StateLive)

	// Reconnect budget exhausted: terminal for realtime, degraded for us.
	h.ev.OnUnavailable()
	snap := waitForState(t, h.sess, StateDegraded)
	assert.False(t, snap.ComposeEnabled)
}

func TestSession_CloseDiscardsStaleCompletions(t *testing.T) {
	h := newHarness(t)

	release := make(chan struct{})
	h.api.EXPECT().Conversation(gomock.Any(), "conv-1").
		DoAndReturn(func(ctx context.Context, id string) (*api.ConversationDetail, error) {
			<-release
			return detail(), nil
		})
	// No Messages expectation: if the stale details completion ran, the
	// session would fetch history and fail the test.
	h.tr.EXPECT().Disconnect().MinTimes(1)

	h.start(t)
	waitForState(t, h.sess, StateLoadingDetails)

	h.sess.Close()
	close(release)

	time.Sleep(100 * time.Millisecond)
	snap := h.sess.Snapshot()
	assert.Equal(t, StateUnmounted, snap.State)
}

func TestSession_CloseIsIdempotentAndAlwaysDisconnects(t *testing.T) {
	h := newHarness(t)

	h.api.EXPECT().Conversation(gomock.Any(), "conv-1").Return(detail(), nil).AnyTimes()
	h.repo.EXPECT().UpsertConversation(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	h.api.EXPECT().Messages(gomock.Any(), "conv-1").Return(nil, nil).AnyTimes()
	h.tr.EXPECT().Connect(gomock.Any(), gomock.Any()).AnyTimes()
	h.tr.EXPECT().Disconnect().MinTimes(1)

	h.start(t)

	h.sess.Close()
	h.sess.Close()

	assert.Equal(t, StateUnmounted, h.sess.Snapshot().State)
	assert.ErrorIs(t, h.sess.SendMessage("late"), ErrClosed)
}

func TestSession_SnapshotReadsDoNotSignalUpdates(t *testing.T) {
	h := newHarness(t)

	h.api.EXPECT().Conversation(gomock.Any(), "conv-1").Return(detail(), nil)
	h.repo.EXPECT().UpsertConversation(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	h.api.EXPECT().Messages(gomock.Any(), "conv-1").Return(nil, nil)
	h.repo.EXPECT().UpsertMessages(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	h.tr.EXPECT().Connect("user-1", "conv-1").Do(func(_, _ string) {
		go h.ev.OnConnectionChange(true)
	})
	h.tr.EXPECT().Disconnect().AnyTimes()

	h.start(t)
	waitForState(t, h.sess, StateLive)

	// Drain whatever the mount sequence signalled.
	updates := h.sess.Updates()
	for {
		select {
		case <-updates:
			continue
		case <-time.After(50 * time.Millisecond):
		}
		break
	}

	// A consumer that re-reads the snapshot on every signal must not feed
	// itself: pure reads stay silent.
	for i := 0; i < 50; i++ {
		h.sess.Snapshot()
	}
	select {
	case <-updates:
		t.Fatal("read-only Snapshot calls produced an update signal")
	case <-time.After(100 * time.Millisecond):
	}

	// A real state change still signals.
	h.ev.OnFrame(transport.Frame{
		MessageType: transport.FrameChat,
		Payload:     &transport.Payload{Content: "ping", DisplayName: "bob"},
		Meta:        &transport.Meta{MessageID: "m1", SenderID: "user-2", ConversationID: "conv-1", Timestamp: "2025-06-01T12:00:00Z"},
	})
	select {
	case <-updates:
	case <-time.After(3 * time.Second):
		t.Fatal("inbound frame never signalled an update")
	}
}
