package core

import (
	"context"
	"errors"
	"testing"
)

func newTestSession(fs *fakeStore, reg *Registry) (*Session, *Client) {
	client := NewClient("conn")
	verifier := &fakeVerifier{tokens: map[string]int64{"token-1": 1, "token-2": 2}}
	router := NewRouter(fs, fs, reg, 0, testLogger())
	return NewSession(client, verifier, reg, router, testLogger()), client
}

func TestSessionAuthenticateSuccess(t *testing.T) {
	sess, client := newTestSession(newFakeStore(1), NewRegistry())

	if err := sess.Handle(context.Background(), &Command{Kind: CommandAuthenticate, Token: "token-1"}); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if sess.State() != StateAuthenticated || sess.Identity() != 1 {
		t.Fatalf("expected authenticated identity 1, got state %d identity %d", sess.State(), sess.Identity())
	}
	ev := drainEvent(t, client, EventAuthenticated)
	if ev.UserID != 1 {
		t.Fatalf("unexpected ack: %+v", ev)
	}
}

func TestSessionAuthenticateFailureCloses(t *testing.T) {
	reg := NewRegistry()
	sess, client := newTestSession(newFakeStore(1), reg)

	err := sess.Handle(context.Background(), &Command{Kind: CommandAuthenticate, Token: "bogus"})
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if sess.State() != StateClosed {
		t.Fatalf("expected closed session, got state %d", sess.State())
	}
	ev := drainEvent(t, client, EventError)
	if ev.Error.Code != ErrCodeUnauthorized {
		t.Fatalf("unexpected error code: %s", ev.Error.Code)
	}

	// Closed is terminal.
	if err := sess.Handle(context.Background(), &Command{Kind: CommandJoin}); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}

func TestSessionJoinRegistersOwnIdentityOnly(t *testing.T) {
	reg := NewRegistry()
	sess, client := newTestSession(newFakeStore(1), reg)
	ctx := context.Background()

	// Join before authenticate is rejected.
	if err := sess.Handle(ctx, &Command{Kind: CommandJoin, UserID: 1}); err != nil {
		t.Fatalf("join: %v", err)
	}
	if ev := drainEvent(t, client, EventError); ev.Error.Code != ErrCodeUnauthorized {
		t.Fatalf("unexpected code: %s", ev.Error.Code)
	}

	if err := sess.Handle(ctx, &Command{Kind: CommandAuthenticate, Token: "token-1"}); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	drainEvent(t, client, EventAuthenticated)

	// Joining as another user is a validation error; nothing is registered.
	if err := sess.Handle(ctx, &Command{Kind: CommandJoin, UserID: 2}); err != nil {
		t.Fatalf("join: %v", err)
	}
	if ev := drainEvent(t, client, EventError); ev.Error.Code != ErrCodeValidation {
		t.Fatalf("unexpected code: %s", ev.Error.Code)
	}
	if reg.Online(2) {
		t.Fatal("foreign identity registered")
	}

	if err := sess.Handle(ctx, &Command{Kind: CommandJoin, UserID: 1}); err != nil {
		t.Fatalf("join: %v", err)
	}
	drainEvent(t, client, EventJoined)
	if !reg.Online(1) {
		t.Fatal("identity not registered after join")
	}

	// Idempotent re-join.
	if err := sess.Handle(ctx, &Command{Kind: CommandJoin}); err != nil {
		t.Fatalf("re-join: %v", err)
	}
	drainEvent(t, client, EventJoined)
	if got := len(reg.ConnectionsFor(1)); got != 1 {
		t.Fatalf("expected 1 connection, got %d", got)
	}
}

func TestSessionSendMessageUnauthenticated(t *testing.T) {
	fs := newFakeStore(1, 2)
	sess, client := newTestSession(fs, NewRegistry())

	err := sess.Handle(context.Background(), &Command{Kind: CommandSendMessage, ReceiverID: 2, Content: "hi"})
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if fs.messageCount() != 0 {
		t.Fatal("message persisted for unauthenticated sender")
	}
	if ev := drainEvent(t, client, EventError); ev.Error.Code != ErrCodeUnauthorized {
		t.Fatalf("unexpected code: %s", ev.Error.Code)
	}
	if sess.State() != StateClosed {
		t.Fatal("expected session closed after unauthenticated send")
	}
}

func TestSessionSendMessageUsesVerifiedSender(t *testing.T) {
	fs := newFakeStore(1, 2)
	reg := NewRegistry()
	sess, client := newTestSession(fs, reg)
	ctx := context.Background()

	if err := sess.Handle(ctx, &Command{Kind: CommandAuthenticate, Token: "token-1"}); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	drainEvent(t, client, EventAuthenticated)
	if err := sess.Handle(ctx, &Command{Kind: CommandJoin}); err != nil {
		t.Fatalf("join: %v", err)
	}
	drainEvent(t, client, EventJoined)

	if err := sess.Handle(ctx, &Command{Kind: CommandSendMessage, ReceiverID: 2, Content: "hi"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	// Sender's own connection gets the echo; sender id came from the session.
	ev := drainEvent(t, client, EventMessageReceived)
	if ev.Message.SenderID != 1 || ev.Message.ReceiverID != 2 {
		t.Fatalf("unexpected message: %+v", ev.Message)
	}
}

func TestSessionSendValidationKeepsSessionOpen(t *testing.T) {
	fs := newFakeStore(1, 2)
	sess, client := newTestSession(fs, NewRegistry())
	ctx := context.Background()

	if err := sess.Handle(ctx, &Command{Kind: CommandAuthenticate, Token: "token-1"}); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	drainEvent(t, client, EventAuthenticated)

	if err := sess.Handle(ctx, &Command{Kind: CommandSendMessage, ReceiverID: 2, Content: ""}); err != nil {
		t.Fatalf("expected recoverable error, got %v", err)
	}
	if ev := drainEvent(t, client, EventError); ev.Error.Code != ErrCodeValidation {
		t.Fatalf("unexpected code: %s", ev.Error.Code)
	}
	if sess.State() != StateAuthenticated {
		t.Fatal("validation error must not close the session")
	}
}

func TestSessionCloseLeavesRegistry(t *testing.T) {
	fs := newFakeStore(1)
	reg := NewRegistry()
	sess, client := newTestSession(fs, reg)
	ctx := context.Background()

	if err := sess.Handle(ctx, &Command{Kind: CommandAuthenticate, Token: "token-1"}); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	drainEvent(t, client, EventAuthenticated)
	if err := sess.Handle(ctx, &Command{Kind: CommandJoin}); err != nil {
		t.Fatalf("join: %v", err)
	}
	drainEvent(t, client, EventJoined)

	sess.Close()
	if reg.Online(1) {
		t.Fatal("connection still present after close")
	}
	sess.Close() // second close is a no-op
}
