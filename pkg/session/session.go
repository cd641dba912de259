// Package session provides session management for interactive diagrams.
//
// A [Session] pairs one [flow.Engine] with the in-memory [flow.Document]
// that hosts it. Sessions are addressed by a random UUID and expire after a
// TTL that is refreshed on every access.
//
// # Architecture
//
// The [Store] interface supports:
//   - Get/Set/Delete operations
//   - Automatic expiration checking
//   - Cleanup of expired sessions
//
// [MemoryStore] is the only backend; diagrams live as long as the process.
//
// # Usage
//
//	store := session.NewMemoryStore()
//	sess, err := session.New(ctx, doc, session.DefaultTTL, flow.WithLogger(logger))
//	store.Set(ctx, sess)
//
//	err = sess.Do(func(d *flow.Document, e *flow.Engine) error {
//	    if err := e.Dispatch(ev); err != nil {
//	        return err
//	    }
//	    _, err := d.Commit(ctx, e)
//	    return err
//	})
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/graph"
)

// DefaultTTL is the default idle lifetime of a session.
const DefaultTTL = 30 * time.Minute

// Session is one live diagram.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	ttl    time.Duration
	mu     sync.Mutex
	doc    *flow.Document
	engine *flow.Engine

	watchMu  sync.Mutex
	watchers map[chan graph.Frame]struct{}
}

// watchBuffer is the per-watcher frame backlog; frames beyond it are dropped.
const watchBuffer = 16

// New validates doc, builds an engine hosted by a flow.Document holding it
// and runs the initial sync. Engine options are passed through; the host is
// always the session's document.
func New(ctx context.Context, doc *graph.Document, ttl time.Duration, opts ...flow.Option) (*Session, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	nodes, edges := doc.Flow()
	host := flow.NewDocument(nodes, edges)
	host.Generation = doc.Generation

	engine := flow.New(append(opts[:len(opts):len(opts)], flow.WithHost(host))...)
	if _, err := host.Commit(ctx, engine); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "initial sync")
	}

	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		ttl:       ttl,
		doc:       host,
		engine:    engine,
		watchers:  map[chan graph.Frame]struct{}{},
	}
	engine.Subscribe(func(flow.Change) { s.broadcast(graph.NewFrame(engine)) })
	return s, nil
}

// Watch returns a channel receiving a frame after every engine change. The
// channel closes when ctx is done. Slow readers miss frames rather than
// block the engine.
func (s *Session) Watch(ctx context.Context) <-chan graph.Frame {
	ch := make(chan graph.Frame, watchBuffer)
	s.watchMu.Lock()
	s.watchers[ch] = struct{}{}
	s.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		s.watchMu.Lock()
		delete(s.watchers, ch)
		close(ch)
		s.watchMu.Unlock()
	}()
	return ch
}

func (s *Session) broadcast(f graph.Frame) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for ch := range s.watchers {
		select {
		case ch <- f:
		default:
		}
	}
}

// Do runs fn with exclusive access to the session's document and engine.
func (s *Session) Do(fn func(doc *flow.Document, e *flow.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.doc, s.engine)
}

// Document returns the current host document in wire form.
func (s *Session) Document() *graph.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return graph.FromFlow(s.doc.Nodes, s.doc.Edges, s.doc.Generation)
}

// Frame captures what a renderer should draw right now.
func (s *Session) Frame() graph.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return graph.NewFrame(s.engine)
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Now().After(s.ExpiresAt)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ExpiresAt = now.Add(s.ttl)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a live session by ID and refreshes its expiry.
	// Missing and expired sessions yield errors.ErrCodeSessionNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and returns how many it removed.
	Cleanup(ctx context.Context) (int, error)
}

// MemoryStore keeps sessions in a map. Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]*Session{}, now: time.Now}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	now := m.now()
	sess.mu.Lock()
	expired := now.After(sess.ExpiresAt)
	sess.mu.Unlock()
	if expired {
		_ = m.Delete(ctx, id)
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q expired", id)
	}
	sess.touch(now)
	return sess, nil
}

func (m *MemoryStore) Set(ctx context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, sess := range m.sessions {
		sess.mu.Lock()
		expired := now.After(sess.ExpiresAt)
		sess.mu.Unlock()
		if expired {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

var _ Store = (*MemoryStore)(nil)
