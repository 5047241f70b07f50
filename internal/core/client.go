package core

// Client is one live transport connection as seen by the core layer. UserID
// stays zero until the owning session authenticates.
type Client struct {
	ID     string
	UserID int64
	Events chan *Event
}

// NewClient constructs a client with an initialized event channel.
func NewClient(id string) *Client {
	return &Client{
		ID:     id,
		Events: make(chan *Event, 8),
	}
}

// Deliver hands an event to the connection's writer. A slow or dead consumer
// is dropped silently; durability lives in storage, not in the transport.
func (c *Client) Deliver(event *Event) bool {
	select {
	case c.Events <- event:
		return true
	default:
		return false
	}
}
