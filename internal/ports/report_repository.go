package ports

import (
	"context"

	"github.com/bnema/sessionize/internal/domain"
)

type ReportRepository interface {
	GetByID(ctx context.Context, id domain.RunID) (domain.RunReport, error)
	List(ctx context.Context) ([]domain.RunReport, error)
	Save(ctx context.Context, report domain.RunReport) error
}
