package store

import (
	"context"
	"errors"
	"time"

	"github.com/UzumakiODZ/backEndChat/internal/geo"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// User represents a registered user.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Location     *geo.Point // nil when the user never reported coordinates
	CreatedAt    time.Time
}

// Message represents a persisted chat message between two users.
type Message struct {
	ID         int64
	SenderID   int64
	ReceiverID int64
	Content    string
	CreatedAt  time.Time
}

// UserLocation pairs a user id with its last-known coordinates. Only users
// with stored coordinates appear in location listings.
type UserLocation struct {
	UserID   int64
	Username string
	Location geo.Point
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user. Location may be nil.
	CreateUser(ctx context.Context, username, email, passwordHash string, location *geo.Point) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// ListUsers lists all users.
	ListUsers(ctx context.Context) ([]*User, error)

	// DeleteUser removes a user and their messages.
	DeleteUser(ctx context.Context, id int64) error

	// UpdateUserLocation sets both coordinates of a user atomically.
	UpdateUserLocation(ctx context.Context, id int64, location geo.Point) error

	// ListUserLocations returns every user that has stored coordinates.
	ListUserLocations(ctx context.Context) ([]UserLocation, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// CreateMessage persists a message with a server-assigned timestamp.
	CreateMessage(ctx context.Context, senderID, receiverID int64, content string) (*Message, error)

	// ListMessagesBetween returns the conversation between two users,
	// ascending by creation time.
	ListMessagesBetween(ctx context.Context, userA, userB int64) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
