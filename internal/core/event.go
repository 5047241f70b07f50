package core

import "github.com/UzumakiODZ/backEndChat/internal/store"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventMessageReceived delivers a chat message to a live connection.
	EventMessageReceived EventKind = iota
	// EventAuthenticated confirms a successful authenticate command.
	EventAuthenticated
	// EventJoined confirms presence registration.
	EventJoined
	// EventError notifies the client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind    EventKind
	UserID  int64
	Message *store.Message
	Error   *CoreError
}
