package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/UzumakiODZ/backEndChat/internal/store"
)

// UserFinder is the slice of the persistence service the router needs to
// check that sender and receiver exist.
type UserFinder interface {
	GetUserByID(ctx context.Context, id int64) (*store.User, error)
}

// MessageWriter persists messages durably.
type MessageWriter interface {
	CreateMessage(ctx context.Context, senderID, receiverID int64, content string) (*store.Message, error)
}

// Router accepts send requests, persists them, and fans them out to the live
// connections of sender and receiver. Messages are written to storage before
// any delivery attempt; if the write fails nothing is delivered.
type Router struct {
	users           UserFinder
	messages        MessageWriter
	registry        *Registry
	upstreamTimeout time.Duration
	log             *zerolog.Logger
}

// NewRouter constructs a message router. upstreamTimeout bounds persistence
// calls; zero disables the bound.
func NewRouter(users UserFinder, messages MessageWriter, registry *Registry, upstreamTimeout time.Duration, logger *zerolog.Logger) *Router {
	return &Router{
		users:           users,
		messages:        messages,
		registry:        registry,
		upstreamTimeout: upstreamTimeout,
		log:             logger,
	}
}

// Send validates the request, persists the message, and delivers it to every
// live connection of sender and receiver. Echoing to the sender's other
// devices is intentional; it keeps multi-device clients in sync.
func (r *Router) Send(ctx context.Context, senderID, receiverID int64, content string) (*store.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is empty", ErrValidation)
	}
	if senderID <= 0 || receiverID <= 0 {
		return nil, fmt.Errorf("%w: sender and receiver are required", ErrValidation)
	}

	// Both identities must exist. A deleted account can still hold a valid
	// token, so the verified sender id is checked the same as the receiver.
	if err := r.checkUser(ctx, senderID); err != nil {
		return nil, err
	}
	if receiverID != senderID {
		if err := r.checkUser(ctx, receiverID); err != nil {
			return nil, err
		}
	}

	opCtx, cancel := r.bound(ctx)
	defer cancel()

	msg, err := r.messages.CreateMessage(opCtx, senderID, receiverID, content)
	if err != nil {
		r.log.Error().Err(err).Int64("sender_id", senderID).Int64("receiver_id", receiverID).Msg("message persist failed")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Registry reads happen only after the durable write and never hold a
	// lock across I/O; each is a short snapshot read.
	delivered := r.fanOut(msg)
	r.log.Debug().
		Int64("message_id", msg.ID).
		Int64("sender_id", senderID).
		Int64("receiver_id", receiverID).
		Int("delivered", delivered).
		Msg("message routed")

	return msg, nil
}

func (r *Router) fanOut(msg *store.Message) int {
	event := &Event{Kind: EventMessageReceived, Message: msg}

	targets := r.registry.ConnectionsFor(msg.SenderID)
	if msg.ReceiverID != msg.SenderID {
		targets = append(targets, r.registry.ConnectionsFor(msg.ReceiverID)...)
	}

	delivered := 0
	for _, c := range targets {
		if c.Deliver(event) {
			delivered++
		}
	}
	return delivered
}

func (r *Router) checkUser(ctx context.Context, id int64) error {
	opCtx, cancel := r.bound(ctx)
	defer cancel()

	_, err := r.users.GetUserByID(opCtx, id)
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: unknown user %d", ErrValidation, id)
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}

func (r *Router) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.upstreamTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.upstreamTimeout)
}
