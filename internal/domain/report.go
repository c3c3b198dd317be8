package domain

import "time"

type RunID string

// RunReport summarizes one pass over an access log.
type RunReport struct {
	ID                RunID
	Input             string
	Output            string
	InactivitySeconds int64
	Events            int64
	Sessions          int64
	ClosedExpired     int64
	ClosedAtEnd       int64
	PeakOpenSessions  int
	StartedAt         time.Time
	FinishedAt        time.Time
}

func (r RunReport) Elapsed() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.Before(r.StartedAt) {
		return 0
	}

	return r.FinishedAt.Sub(r.StartedAt)
}

// RequestsPerSession is zero when no session was closed.
func (r RunReport) RequestsPerSession() float64 {
	if r.Sessions == 0 {
		return 0
	}

	return float64(r.Events) / float64(r.Sessions)
}
