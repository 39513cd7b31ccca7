package ws

import (
	"time"

	"tictactoe_server/internal/domain"
	"tictactoe_server/internal/game"
)

// SessionStore indexes live and recently finished sessions.
// Owned by the hub goroutine.
type SessionStore struct {
	byID     map[string]*game.Session
	byPlayer map[domain.Identity]string // active sessions only
	// participants of active sessions that lost their connection, and when
	gone map[domain.Identity]time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		byID:     make(map[string]*game.Session),
		byPlayer: make(map[domain.Identity]string),
		gone:     make(map[domain.Identity]time.Time),
	}
}

func (s *SessionStore) Add(sess *game.Session) {
	s.byID[sess.ID] = sess
	for _, p := range sess.Players {
		s.byPlayer[p] = sess.ID
	}
}

func (s *SessionStore) Get(id string) (*game.Session, bool) {
	sess, ok := s.byID[id]
	return sess, ok
}

// ActiveFor returns the active session id is playing in.
func (s *SessionStore) ActiveFor(id domain.Identity) (*game.Session, bool) {
	sid, ok := s.byPlayer[id]
	if !ok {
		return nil, false
	}
	sess, ok := s.byID[sid]
	if !ok || !sess.Active() {
		return nil, false
	}
	return sess, true
}

// Ended drops the player index of a session that left the active state.
func (s *SessionStore) Ended(sess *game.Session) {
	for _, p := range sess.Players {
		if s.byPlayer[p] == sess.ID {
			delete(s.byPlayer, p)
		}
		delete(s.gone, p)
	}
}

// MarkGone records that id lost its live connection at t.
func (s *SessionStore) MarkGone(id domain.Identity, t time.Time) {
	if _, ok := s.ActiveFor(id); ok {
		s.gone[id] = t
	}
}

// MarkBack clears a pending disconnect of id.
func (s *SessionStore) MarkBack(id domain.Identity) {
	delete(s.gone, id)
}

func (s *SessionStore) IsGone(id domain.Identity) bool {
	_, ok := s.gone[id]
	return ok
}

// Overdue returns active sessions with a participant gone for at least timeout.
func (s *SessionStore) Overdue(now time.Time, timeout time.Duration) []*game.Session {
	var out []*game.Session
	seen := make(map[string]bool)
	for id, since := range s.gone {
		if now.Sub(since) < timeout {
			continue
		}
		sess, ok := s.ActiveFor(id)
		if !ok || seen[sess.ID] {
			continue
		}
		seen[sess.ID] = true
		out = append(out, sess)
	}
	return out
}

// Expired removes and returns finished sessions older than retention.
func (s *SessionStore) Expired(now time.Time, retention time.Duration) []*game.Session {
	var out []*game.Session
	for id, sess := range s.byID {
		if sess.Active() || now.Sub(sess.EndedAt) < retention {
			continue
		}
		delete(s.byID, id)
		out = append(out, sess)
	}
	return out
}

func (s *SessionStore) Len() int {
	return len(s.byID)
}

func (s *SessionStore) ActiveCount() int {
	n := 0
	for _, sess := range s.byID {
		if sess.Active() {
			n++
		}
	}
	return n
}
