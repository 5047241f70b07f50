package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/UzumakiODZ/backEndChat/internal/geo"
	"github.com/UzumakiODZ/backEndChat/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	loc := &geo.Point{Latitude: 40.7128, Longitude: -74.0060}
	user, err := s.CreateUser(ctx, "alice", "alice@example.com", "hash", loc)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected assigned user id")
	}
	if user.Location == nil || user.Location.Latitude != 40.7128 {
		t.Fatalf("expected stored location, got %+v", user.Location)
	}

	byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != user.ID || byEmail.Username != "alice" {
		t.Fatalf("unexpected user: %+v", byEmail)
	}

	if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUserWithoutLocation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "bob", "bob@example.com", "hash", nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Location != nil {
		t.Fatalf("expected nil location, got %+v", user.Location)
	}

	locations, err := s.ListUserLocations(ctx)
	if err != nil {
		t.Fatalf("list locations: %v", err)
	}
	if len(locations) != 0 {
		t.Fatalf("expected no stored locations, got %d", len(locations))
	}
}

func TestUpdateUserLocation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "carol", "carol@example.com", "hash", nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	pt := geo.Point{Latitude: 51.5074, Longitude: -0.1278}
	if err := s.UpdateUserLocation(ctx, user.ID, pt); err != nil {
		t.Fatalf("update location: %v", err)
	}

	locations, err := s.ListUserLocations(ctx)
	if err != nil {
		t.Fatalf("list locations: %v", err)
	}
	if len(locations) != 1 || locations[0].UserID != user.ID || locations[0].Location != pt {
		t.Fatalf("unexpected locations: %+v", locations)
	}

	if err := s.UpdateUserLocation(ctx, 9999, pt); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestMessagesBetween(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, _ := s.CreateUser(ctx, "alice", "a@example.com", "hash", nil)
	bob, _ := s.CreateUser(ctx, "bob", "b@example.com", "hash", nil)
	eve, _ := s.CreateUser(ctx, "eve", "e@example.com", "hash", nil)

	if _, err := s.CreateMessage(ctx, alice.ID, bob.ID, "hi bob"); err != nil {
		t.Fatalf("create message: %v", err)
	}
	if _, err := s.CreateMessage(ctx, bob.ID, alice.ID, "hi alice"); err != nil {
		t.Fatalf("create message: %v", err)
	}
	// Unrelated conversation must not leak in.
	if _, err := s.CreateMessage(ctx, alice.ID, eve.ID, "psst"); err != nil {
		t.Fatalf("create message: %v", err)
	}

	msgs, err := s.ListMessagesBetween(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "hi bob" || msgs[1].Content != "hi alice" {
		t.Fatalf("unexpected order: %q, %q", msgs[0].Content, msgs[1].Content)
	}
	if msgs[0].CreatedAt.After(msgs[1].CreatedAt) {
		t.Fatal("messages not ascending by creation time")
	}

	// Same conversation regardless of argument order.
	reversed, err := s.ListMessagesBetween(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("list messages reversed: %v", err)
	}
	if len(reversed) != 2 || reversed[0].ID != msgs[0].ID {
		t.Fatalf("expected identical conversation, got %+v", reversed)
	}
}

func TestDeleteUserRemovesMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, _ := s.CreateUser(ctx, "alice", "a@example.com", "hash", nil)
	bob, _ := s.CreateUser(ctx, "bob", "b@example.com", "hash", nil)
	if _, err := s.CreateMessage(ctx, alice.ID, bob.ID, "hello"); err != nil {
		t.Fatalf("create message: %v", err)
	}

	if err := s.DeleteUser(ctx, alice.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := s.GetUserByID(ctx, alice.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	msgs, err := s.ListMessagesBetween(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected messages removed with user, got %d", len(msgs))
	}

	if err := s.DeleteUser(ctx, alice.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for second delete, got %v", err)
	}
}
