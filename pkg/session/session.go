// Package session holds the live viewer sessions behind the HTTP API.
//
// A [Session] owns one [viewer.Viewer] and the [interact.Panel] its
// controller writes to. Sessions expire after a TTL of inactivity; every
// successful [Registry.Get] extends the deadline.
//
// # Usage
//
//	reg := session.NewRegistry(30 * time.Minute)
//	sess := reg.Create(v, panel)
//	...
//	err := reg.With(sessionID, func(s *session.Session) error {
//	    return s.Viewer.Dispatch(ev)
//	})
//
// Events for a single session are serialized by the session's mutex;
// different sessions proceed in parallel.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/layerscape/pkg/errors"
	"github.com/matzehuels/layerscape/pkg/interact"
	"github.com/matzehuels/layerscape/pkg/viewer"
)

// DefaultTTL is the default idle lifetime of a session.
const DefaultTTL = 30 * time.Minute

// Session is one client's scene and inspector state.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time

	Viewer *viewer.Viewer
	Panel  *interact.Panel

	mu sync.Mutex
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Registry is an in-memory session store with idle expiry.
type Registry struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*Session
}

// NewRegistry creates an empty registry. A non-positive ttl means DefaultTTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{ttl: ttl, sessions: make(map[string]*Session)}
}

// Create registers a new session for v and returns it.
func (r *Registry) Create(v *viewer.Viewer, panel *interact.Panel) *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
		Viewer:    v,
		Panel:     panel,
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns a live session and extends its deadline. Unknown and expired
// sessions are NOT_FOUND; expired ones are removed.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return nil, errs.New(errs.ErrCodeNotFound, "scene %q not found", id)
	}
	if s.IsExpired() {
		delete(r.sessions, id)
		r.mu.Unlock()
		s.close()
		return nil, errs.New(errs.ErrCodeNotFound, "scene %q expired", id)
	}
	s.ExpiresAt = time.Now().Add(r.ttl)
	r.mu.Unlock()
	return s, nil
}

// With runs fn with the session locked.
func (r *Registry) With(id string, fn func(*Session) error) error {
	s, err := r.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// Delete removes a session and tears down its scene.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "scene %q not found", id)
	}
	s.close()
	return nil
}

// Cleanup removes expired sessions and returns how many were removed.
func (r *Registry) Cleanup() int {
	var expired []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.IsExpired() {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, s := range expired {
		s.close()
	}
	return len(expired)
}

// Run calls Cleanup every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Cleanup()
		}
	}
}

// Len returns the number of registered sessions, expired or not.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// TTL returns the idle lifetime of sessions.
func (r *Registry) TTL() time.Duration { return r.ttl }

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Viewer != nil {
		s.Viewer.Clear()
	}
}
