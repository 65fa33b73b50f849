package session

import "errors"

// State is the controller's position in the lifecycle of viewing one
// conversation.
type State int

const (
	StateIdle State = iota
	StateLoadingDetails
	StateLoadingMessages
	StateConnecting
	StateLive
	StateReconnecting
	// StateDegraded: the REST backend (or the socket, terminally) is
	// unreachable. History renders from cache, composition is disabled.
	StateDegraded
	// StateAuthExpired: the backend rejected our token. No further REST
	// calls are made for this conversation; the user must log in again.
	StateAuthExpired
	StateUnmounted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoadingDetails:
		return "loading_details"
	case StateLoadingMessages:
		return "loading_messages"
	case StateConnecting:
		return "connecting"
	case StateLive:
		return "live"
	case StateReconnecting:
		return "reconnecting"
	case StateDegraded:
		return "degraded"
	case StateAuthExpired:
		return "auth_expired"
	case StateUnmounted:
		return "unmounted"
	}
	return "unknown"
}

var (
	// ErrComposeDisabled: sending is not possible in the current state
	// (history still loading, degraded mode, or auth expired).
	ErrComposeDisabled = errors.New("message composition is disabled")

	// ErrNotConnected: the send failed because the socket is not open.
	// The optimistic message stays pending; the caller may retry.
	ErrNotConnected = errors.New("connection is not available")

	// ErrEmptyMessage: nothing to send.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrClosed: the session was unmounted.
	ErrClosed = errors.New("session is closed")
)
