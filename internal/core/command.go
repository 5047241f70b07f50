package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandAuthenticate presents a bearer credential for the session.
	CommandAuthenticate CommandKind = iota
	// CommandJoin registers the session's identity in the presence registry.
	CommandJoin
	// CommandSendMessage routes a chat message to a receiver.
	CommandSendMessage
)

// Command represents an action requested by a client.
type Command struct {
	Kind       CommandKind
	Token      string
	UserID     int64 // join: client-declared identity, checked against the session
	ReceiverID int64
	Content    string
}
