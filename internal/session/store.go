package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Store is a thread-safe in-memory session registry with TTL eviction.
// Sessions idle past the TTL are closed and dropped; their ticks stop with
// them.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	created  int

	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *slog.Logger
}

// NewStore builds a session registry with the given idle TTL.
func NewStore(ttl time.Duration, log *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		log:      log,
	}
}

// Start launches the periodic eviction pass.
func (s *Store) Start(ctx context.Context) {
	cleanupCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}

// Stop halts eviction and closes every remaining session.
func (s *Store) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, id)
	}
}

// Put registers a session.
func (s *Store) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID()] = sess
	s.created++
}

// Get returns a session by id, or nil.
func (s *Store) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

// Delete closes and removes a session. It reports whether the id existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		sess.Close()
	}
	return ok
}

// Cleanup closes and evicts sessions idle past the TTL.
func (s *Store) Cleanup() {
	now := time.Now()
	s.mu.Lock()
	var expired []*Session
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUpdated()) > s.ttl {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Close()
		s.log.Info("session expired", "session", sess.ID())
	}
}

// Stats summarizes the registry for the stats endpoint.
type Stats struct {
	Active  int `json:"active_sessions"`
	Playing int `json:"playing_sessions"`
	Created int `json:"sessions_created"`
}

// Snapshot returns current registry counters.
func (s *Store) Snapshot() Stats {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	st := Stats{Active: len(sessions), Created: s.created}
	s.mu.Unlock()

	for _, sess := range sessions {
		if sess.sched.Playing() {
			st.Playing++
		}
	}
	return st
}
