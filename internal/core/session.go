package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// SessionState tracks where a connection is in its lifecycle.
type SessionState int

const (
	// StateUnauthenticated is the initial state of every connection.
	StateUnauthenticated SessionState = iota
	// StateAuthenticated means the identity verifier accepted a credential.
	StateAuthenticated
	// StateClosed is terminal; no further commands are accepted.
	StateClosed
)

// TokenVerifier validates a bearer credential and extracts the caller's
// identity.
type TokenVerifier interface {
	Verify(credential string) (int64, error)
}

// Session is the per-connection state machine. It owns one transport
// connection and is driven by a single goroutine: commands arrive from the
// connection's read loop and Close runs after that loop exits.
type Session struct {
	client   *Client
	verifier TokenVerifier
	registry *Registry
	router   *Router
	state    SessionState
	log      *zerolog.Logger
}

// NewSession builds a session for a freshly accepted connection.
func NewSession(client *Client, verifier TokenVerifier, registry *Registry, router *Router, logger *zerolog.Logger) *Session {
	return &Session{
		client:   client,
		verifier: verifier,
		registry: registry,
		router:   router,
		state:    StateUnauthenticated,
		log:      logger,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	return s.state
}

// Identity returns the verified identity, zero until authenticated.
func (s *Session) Identity() int64 {
	return s.client.UserID
}

// Handle processes one command. A non-nil return means the session is no
// longer usable and the transport must terminate; recoverable failures are
// reported to the client as error events instead.
func (s *Session) Handle(ctx context.Context, cmd *Command) error {
	if s.state == StateClosed {
		return ErrSessionClosed
	}

	switch cmd.Kind {
	case CommandAuthenticate:
		return s.authenticate(cmd.Token)
	case CommandJoin:
		s.join(cmd.UserID)
		return nil
	case CommandSendMessage:
		return s.sendMessage(ctx, cmd)
	default:
		s.client.Deliver(&Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, "unknown command")})
		return nil
	}
}

// authenticate verifies the credential. An invalid credential ends the
// session rather than allowing retry on the same connection.
func (s *Session) authenticate(token string) error {
	identity, err := s.verifier.Verify(token)
	if err != nil {
		s.client.Deliver(&Event{Kind: EventError, Error: coreError(ErrCodeUnauthorized, "authentication failed")})
		s.Close()
		return fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	if s.state == StateAuthenticated && s.client.UserID != identity {
		s.client.Deliver(&Event{Kind: EventError, Error: coreError(ErrCodeValidation, "session already bound to another identity")})
		return nil
	}

	s.client.UserID = identity
	s.state = StateAuthenticated
	s.client.Deliver(&Event{Kind: EventAuthenticated, UserID: identity})
	s.log.Debug().Int64("user_id", identity).Str("conn_id", s.client.ID).Msg("session authenticated")
	return nil
}

// join registers the session's own verified identity in the presence
// registry. The client-declared id, when present, must match it; identity is
// never taken from client input.
func (s *Session) join(declared int64) {
	if s.state != StateAuthenticated {
		s.client.Deliver(&Event{Kind: EventError, Error: coreError(ErrCodeUnauthorized, "authenticate first")})
		return
	}
	if declared != 0 && declared != s.client.UserID {
		s.client.Deliver(&Event{Kind: EventError, Error: coreError(ErrCodeValidation, "cannot join as another user")})
		return
	}

	s.registry.Join(s.client.UserID, s.client)
	s.client.Deliver(&Event{Kind: EventJoined, UserID: s.client.UserID})
}

// sendMessage delegates to the message router. The sender id is the
// session's verified identity, never client-supplied input.
func (s *Session) sendMessage(ctx context.Context, cmd *Command) error {
	if s.state != StateAuthenticated {
		s.client.Deliver(&Event{Kind: EventError, Error: coreError(ErrCodeUnauthorized, "authenticate first")})
		s.Close()
		return ErrInvalidCredential
	}

	if _, err := s.router.Send(ctx, s.client.UserID, cmd.ReceiverID, cmd.Content); err != nil {
		s.client.Deliver(&Event{Kind: EventError, Error: coreError(codeFor(err), err.Error())})
	}
	return nil
}

// Close removes the connection from the presence registry and terminates the
// state machine. Safe to call more than once.
func (s *Session) Close() {
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	s.registry.Leave(s.client)
}
