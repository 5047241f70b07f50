package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/UzumakiODZ/backEndChat/internal/auth"
	"github.com/UzumakiODZ/backEndChat/internal/config"
	"github.com/UzumakiODZ/backEndChat/internal/core"
	"github.com/UzumakiODZ/backEndChat/internal/store"
	"github.com/UzumakiODZ/backEndChat/internal/store/sqlite"
)

// testEnv bundles a fully wired server over an in-memory store.
type testEnv struct {
	ts        *httptest.Server
	auth      *auth.Service
	store     store.Store
	registry  *core.Registry
	locations *core.Locations
}

// newTestEnv wires the full stack the way internal/app does, over an
// in-memory SQLite store.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	logger := zerolog.Nop()

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}
	authService := auth.NewService(st, jwtConfig)

	registry := core.NewRegistry()
	locations := core.NewLocations(st)
	if err := locations.Load(context.Background()); err != nil {
		t.Fatalf("seed locations: %v", err)
	}
	proximity := core.NewProximity(locations)
	router := core.NewRouter(st, st, registry, time.Second, &logger)

	cfg := config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}
	server := NewServer(authService, st, registry, router, locations, proximity, &cfg, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{
		ts:        ts,
		auth:      authService,
		store:     st,
		registry:  registry,
		locations: locations,
	}
}

// registerUser creates a user directly through the auth service and returns
// the user and a valid token.
func (e *testEnv) registerUser(t *testing.T, username, email string) (*store.User, string) {
	t.Helper()

	user, token, err := e.auth.Register(context.Background(), username, email, "password123", nil)
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user, token
}
