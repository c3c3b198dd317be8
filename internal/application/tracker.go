package application

import (
	"errors"
	"time"

	"github.com/bnema/sessionize/internal/domain"
	"github.com/google/btree"
)

const indexDegree = 32

var (
	ErrNoOpenSessions   = errors.New("no open sessions")
	ErrNoExpiredSession = errors.New("no expired session")
)

// sessionKey orders open sessions by a timestamp, then by the sequence of the
// event that opened the session, then by client id. Sources hand out unique
// sequences, but the client id keeps two keys from ever colliding.
type sessionKey struct {
	at       time.Time
	sequence int64
	clientID domain.ClientID
}

func lessSessionKey(a, b sessionKey) bool {
	if !a.at.Equal(b.at) {
		return a.at.Before(b.at)
	}

	if a.sequence != b.sequence {
		return a.sequence < b.sequence
	}

	return a.clientID < b.clientID
}

func firstKey(s *domain.Session) sessionKey {
	return sessionKey{at: s.Start, sequence: s.StartSequence, clientID: s.ClientID}
}

func lastKey(s *domain.Session) sessionKey {
	return sessionKey{at: s.LastActivity, sequence: s.StartSequence, clientID: s.ClientID}
}

// Tracker keeps one open session per active client and closes them either
// as they fall out of the inactivity window or, at end of input, in the
// order they were opened.
//
// sessions, byFirst and byLast always hold the same set of clients.
// Tracker is not safe for concurrent use.
type Tracker struct {
	window   domain.InactivityWindow
	clock    time.Time
	sessions map[domain.ClientID]*domain.Session
	byFirst  *btree.BTreeG[sessionKey]
	byLast   *btree.BTreeG[sessionKey]
}

func NewTracker(window domain.InactivityWindow) *Tracker {
	return &Tracker{
		window:   window,
		sessions: map[domain.ClientID]*domain.Session{},
		byFirst:  btree.NewG(indexDegree, lessSessionKey),
		byLast:   btree.NewG(indexDegree, lessSessionKey),
	}
}

// AdvanceClock moves the logical clock. Timestamps must not decrease over the
// lifetime of the tracker.
func (t *Tracker) AdvanceClock(now time.Time) {
	t.clock = now
}

func (t *Tracker) Clock() time.Time {
	return t.clock
}

func (t *Tracker) Record(event domain.Event) {
	session, ok := t.sessions[event.ClientID]
	if !ok {
		opened := domain.OpenSession(event)
		session = &opened
		t.sessions[event.ClientID] = session
		t.byFirst.ReplaceOrInsert(firstKey(session))
		t.byLast.ReplaceOrInsert(lastKey(session))
		return
	}

	t.byLast.Delete(lastKey(session))
	session.Touch(event)
	t.byLast.ReplaceOrInsert(lastKey(session))
}

func (t *Tracker) HasOpenSessions() bool {
	return len(t.sessions) > 0
}

func (t *Tracker) Len() int {
	return len(t.sessions)
}

// HasExpired reports whether the least recently active session has been idle
// for longer than the inactivity window at the current clock.
func (t *Tracker) HasExpired() bool {
	key, ok := t.byLast.Min()
	if !ok {
		return false
	}

	return t.window.Exceeded(t.sessions[key.clientID].IdleSeconds(t.clock))
}

// CloseExpired closes the least recently active session. Sessions leave in the
// same order in which they expire.
func (t *Tracker) CloseExpired() (domain.Session, error) {
	if !t.HasExpired() {
		return domain.Session{}, ErrNoExpiredSession
	}

	key, _ := t.byLast.Min()
	return t.close(key.clientID), nil
}

// CloseOldest closes the session that started first. It is used to drain the
// tracker once no more events will arrive.
func (t *Tracker) CloseOldest() (domain.Session, error) {
	key, ok := t.byFirst.Min()
	if !ok {
		return domain.Session{}, ErrNoOpenSessions
	}

	return t.close(key.clientID), nil
}

func (t *Tracker) close(clientID domain.ClientID) domain.Session {
	session := t.sessions[clientID]
	t.byFirst.Delete(firstKey(session))
	t.byLast.Delete(lastKey(session))
	delete(t.sessions, clientID)

	return *session
}
