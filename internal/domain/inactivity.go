package domain

import (
	"fmt"
	"time"
)

const (
	MinInactivitySeconds = 1
	MaxInactivitySeconds = 86_400
)

// InactivityWindow is the number of idle seconds after which a session is
// considered finished.
type InactivityWindow int64

func NewInactivityWindow(seconds int64) (InactivityWindow, error) {
	if seconds < MinInactivitySeconds || seconds > MaxInactivitySeconds {
		return 0, fmt.Errorf("%w: got %d, want %d..%d", ErrInactivityOutOfRange, seconds, MinInactivitySeconds, MaxInactivitySeconds)
	}

	return InactivityWindow(seconds), nil
}

func (w InactivityWindow) Seconds() int64 {
	return int64(w)
}

func (w InactivityWindow) Duration() time.Duration {
	return time.Duration(w) * time.Second
}

// Exceeded reports whether idleSeconds lies strictly beyond the window.
// Being idle for exactly the window length does not end a session.
func (w InactivityWindow) Exceeded(idleSeconds int64) bool {
	return idleSeconds > int64(w)
}
