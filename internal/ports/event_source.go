package ports

import (
	"context"

	"github.com/bnema/sessionize/internal/domain"
)

// EventSource yields access events in non-decreasing timestamp order and
// returns io.EOF once the input is exhausted.
type EventSource interface {
	Next(ctx context.Context) (domain.Event, error)
}
