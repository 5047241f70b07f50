package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/UzumakiODZ/backEndChat/internal/geo"
	"github.com/UzumakiODZ/backEndChat/internal/store"
)

// LocationPersister is the slice of the persistence service behind the
// location cache.
type LocationPersister interface {
	UpdateUserLocation(ctx context.Context, id int64, location geo.Point) error
	ListUserLocations(ctx context.Context) ([]store.UserLocation, error)
}

// Locations caches each user's username and last-known coordinates in front
// of the persistence service. Reads copy whole entries under the lock, so a
// concurrent update can never produce a torn latitude/longitude pair, and
// proximity results carry the username from the same snapshot as the
// coordinates.
type Locations struct {
	mu     sync.RWMutex
	byUser map[int64]store.UserLocation
	store  LocationPersister
}

// NewLocations builds the cache over the given user store.
func NewLocations(userStore LocationPersister) *Locations {
	return &Locations{
		byUser: make(map[int64]store.UserLocation),
		store:  userStore,
	}
}

// Load seeds the cache from storage. Called once at startup.
func (l *Locations) Load(ctx context.Context) error {
	stored, err := l.store.ListUserLocations(ctx)
	if err != nil {
		return fmt.Errorf("load locations: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ul := range stored {
		l.byUser[ul.UserID] = ul
	}
	return nil
}

// Update persists the user's coordinates and then refreshes the cache. The
// cache is written only after the durable write succeeds.
func (l *Locations) Update(ctx context.Context, userID int64, username string, pt geo.Point) error {
	if err := l.store.UpdateUserLocation(ctx, userID, pt); err != nil {
		return err
	}

	l.Put(userID, username, pt)
	return nil
}

// Put refreshes the cache for coordinates that are already durable, such as
// those written during registration.
func (l *Locations) Put(userID int64, username string, pt geo.Point) {
	l.mu.Lock()
	l.byUser[userID] = store.UserLocation{UserID: userID, Username: username, Location: pt}
	l.mu.Unlock()
}

// Forget drops a user's cached entry (after account deletion).
func (l *Locations) Forget(userID int64) {
	l.mu.Lock()
	delete(l.byUser, userID)
	l.mu.Unlock()
}

// Get returns the user's coordinates, if known.
func (l *Locations) Get(userID int64) (geo.Point, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ul, ok := l.byUser[userID]
	return ul.Location, ok
}

// Snapshot returns a point-in-time copy of every cached entry.
func (l *Locations) Snapshot() []store.UserLocation {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]store.UserLocation, 0, len(l.byUser))
	for _, ul := range l.byUser {
		out = append(out, ul)
	}
	return out
}
