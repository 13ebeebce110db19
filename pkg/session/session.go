// Package session persists named diagram documents for the HTTP API.
//
// A [Session] is one document's text plus bookkeeping. Models are never
// stored: they are re-derived from the text on every read, so a stored
// session can never disagree with its own text.
//
// Backends:
//   - [MemoryStore]: in-process, for tests and single-instance servers
//   - [FileStore]: one JSON file per session, for local use
//   - [RedisStore]: shared across server replicas, optional expiry
//   - [MongoStore]: durable storage in a MongoDB collection
//
// # Usage
//
//	store := session.NewMemoryStore()
//	sess := session.New("orders", "ent ORDER (100, 100)")
//	if err := store.Put(ctx, sess); err != nil {
//	    return err
//	}
//	got, err := store.Get(ctx, sess.ID)
//	if errors.Is(err, session.ErrNotFound) {
//	    // 404
//	}
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperr "github.com/matzehuels/erdsync/pkg/errors"
)

// ErrNotFound is returned by every Store when no session has the given id.
// It carries ErrCodeSessionNotFound so API handlers map it to 404.
var ErrNotFound = apperr.New(apperr.ErrCodeSessionNotFound, "session not found")

// Session is a stored diagram document.
type Session struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// New returns a session with a fresh random id.
func New(name, text string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Name:      name,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetText replaces the document text and bumps UpdatedAt.
func (s *Session) SetText(text string) {
	s.Text = text
	s.UpdatedAt = time.Now().UTC()
}

// Clone returns a copy of s.
func (s *Session) Clone() *Session {
	c := *s
	return &c
}

// ValidID reports whether id has the shape New produces. Stores reject
// other ids before touching their backend.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Store persists sessions.
type Store interface {
	// Get returns the session or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Put creates or replaces a session.
	Put(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting a missing session returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// List returns all sessions, most recently updated first.
	List(ctx context.Context) ([]*Session, error)

	// Close releases backend resources.
	Close() error
}
