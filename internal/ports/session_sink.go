package ports

import (
	"context"

	"github.com/bnema/sessionize/internal/domain"
)

type SessionSink interface {
	Write(ctx context.Context, session domain.Session) error
}
