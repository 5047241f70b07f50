package proto

import (
	"encoding/json"
	"time"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeAuthenticate = "authenticate"
	InboundTypeJoin         = "join"
	InboundTypeSendMessage  = "sendMessage"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventReceiveMessage = "receiveMessage"
	EventAuthenticated  = "authenticated"
	EventJoined         = "joined"
)

// AuthenticateData presents a bearer credential for the connection.
type AuthenticateData struct {
	Token string `json:"token"`
}

// JoinData requests presence registration. UserID is optional and, when
// present, must match the session's verified identity.
type JoinData struct {
	UserID int64 `json:"userId"`
}

// SendMessageData is a chat message from the client. Token is accepted for
// wire compatibility but the sender identity always comes from the session.
type SendMessageData struct {
	Token      string `json:"token,omitempty"`
	ReceiverID int64  `json:"receiverId"`
	Content    string `json:"content"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// MessagePayload is the wire form of a delivered or stored message.
type MessagePayload struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"senderId"`
	ReceiverID int64     `json:"receiverId"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AckPayload confirms an authenticate or join command.
type AckPayload struct {
	UserID int64 `json:"userId"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
