package domain

import (
	"strconv"
	"strings"
	"time"
)

type Session struct {
	ClientID      ClientID
	Start         time.Time
	LastActivity  time.Time
	Requests      int
	StartSequence int64
}

func OpenSession(event Event) Session {
	return Session{
		ClientID:      event.ClientID,
		Start:         event.Timestamp,
		LastActivity:  event.Timestamp,
		Requests:      1,
		StartSequence: event.Sequence,
	}
}

// Touch folds another request into the session. Events must arrive with
// non-decreasing timestamps.
func (s *Session) Touch(event Event) {
	s.Requests++
	s.LastActivity = event.Timestamp
}

func (s Session) DurationSeconds() int64 {
	return wholeSeconds(s.LastActivity.Sub(s.Start))
}

// ReportedDuration counts seconds inclusively, so a single-request session
// lasts one second.
func (s Session) ReportedDuration() int64 {
	return s.DurationSeconds() + 1
}

// IdleSeconds returns the whole seconds elapsed between the last request and now.
func (s Session) IdleSeconds(now time.Time) int64 {
	return wholeSeconds(now.Sub(s.LastActivity))
}

func (s Session) Render() string {
	return strings.Join([]string{
		string(s.ClientID),
		s.Start.Format(TimestampLayout),
		s.LastActivity.Format(TimestampLayout),
		strconv.FormatInt(s.ReportedDuration(), 10),
		strconv.Itoa(s.Requests),
	}, ",")
}

func wholeSeconds(d time.Duration) int64 {
	return int64(d / time.Second)
}
