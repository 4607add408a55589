// Package session keeps per-client planner settings for the HTTP API.
//
// A browser front-end creates a session, then adjusts miner tiers, purities
// and the display language through it; every layout or render request that
// names the session uses its settings. Sessions live in memory with an
// expiring LRU: they are scratch state, not saved configurations, and are
// lost when the server restarts.
//
// # Usage
//
//	store := session.NewMemoryStore(session.DefaultSize, session.DefaultTTL)
//
//	sess, err := store.Create(ctx, "de")
//	if err != nil {
//	    return err
//	}
//	sess.Settings.SetTier("iron-plate/0:iron-ingot/0:iron-ore", rates.MinerMk2)
//
//	sess, err = store.Get(ctx, sess.ID)
//	if errors.Is(err, session.ErrNotFound) {
//	    // Unknown or expired
//	}
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/prodgraph/pkg/settings"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Default store parameters.
const (
	// DefaultTTL is how long an idle session is kept.
	DefaultTTL = 2 * time.Hour

	// DefaultSize is the maximum number of live sessions.
	DefaultSize = 1024
)

// Session is one client's settings.
type Session struct {
	ID        string
	Settings  *settings.Store
	CreatedAt time.Time
}

// New creates a session with a fresh ID and an empty settings store.
func New(language string) *Session {
	return &Session{
		ID:        GenerateID(),
		Settings:  settings.NewStore(language),
		CreatedAt: time.Now(),
	}
}

// GenerateID creates a random session ID.
func GenerateID() string {
	return uuid.NewString()
}

// Store is the interface for session storage backends.
type Store interface {
	// Create starts a new session with the given language.
	Create(ctx context.Context, language string) (*Session, error)

	// Get retrieves a session by ID and extends its lifetime.
	// Returns ErrNotFound if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, id string) error

	// Len returns the number of live sessions.
	Len() int
}
