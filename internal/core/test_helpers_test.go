package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/UzumakiODZ/backEndChat/internal/geo"
	"github.com/UzumakiODZ/backEndChat/internal/store"
)

// fakeStore is an in-memory stand-in for the persistence service.
type fakeStore struct {
	mu         sync.Mutex
	users      map[int64]*store.User
	messages   []*store.Message
	nextMsgID  int64
	failCreate bool
}

func newFakeStore(userIDs ...int64) *fakeStore {
	fs := &fakeStore{users: make(map[int64]*store.User)}
	for _, id := range userIDs {
		fs.users[id] = &store.User{ID: id, Username: "u", Email: "u@example.com"}
	}
	return fs
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeStore) CreateMessage(_ context.Context, senderID, receiverID int64, content string) (*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return nil, errors.New("storage unavailable")
	}
	f.nextMsgID++
	msg := &store.Message{
		ID:         f.nextMsgID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	f.messages = append(f.messages, msg)
	return msg, nil
}

func (f *fakeStore) UpdateUserLocation(_ context.Context, id int64, location geo.Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	pt := location
	user.Location = &pt
	return nil
}

func (f *fakeStore) ListUserLocations(_ context.Context) ([]store.UserLocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.UserLocation
	for id, u := range f.users {
		if u.Location != nil {
			out = append(out, store.UserLocation{UserID: id, Username: u.Username, Location: *u.Location})
		}
	}
	return out, nil
}

func (f *fakeStore) messageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

// fakeVerifier accepts tokens of the form it was configured with.
type fakeVerifier struct {
	tokens map[string]int64
}

func (v *fakeVerifier) Verify(credential string) (int64, error) {
	id, ok := v.tokens[credential]
	if !ok {
		return 0, errors.New("bad token")
	}
	return id, nil
}

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func drainEvent(t *testing.T, c *Client, want EventKind) *Event {
	t.Helper()
	select {
	case ev := <-c.Events:
		if ev.Kind != want {
			t.Fatalf("expected event kind %d, got %d (%+v)", want, ev.Kind, ev)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event kind %d", want)
		return nil
	}
}
