package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/bnema/sessionize/internal/domain"
	"github.com/bnema/sessionize/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	reportsFileMode = 0o600
	reportsDirMode  = 0o700
	tempFilePattern = ".reports-*.toml.tmp"

	// DefaultMaxReports bounds the history; the oldest runs are dropped first.
	DefaultMaxReports = 100
)

type ReportRepository struct {
	reportsPath string
	maxReports  int
	mu          *sync.RWMutex
}

var historyLocks sync.Map

var _ ports.ReportRepository = (*ReportRepository)(nil)

func NewReportRepository(path string, maxReports int) (*ReportRepository, error) {
	if path == "" {
		return nil, errors.New("run history path is empty")
	}
	if maxReports <= 0 {
		maxReports = DefaultMaxReports
	}

	reportsPath, err := normalizeReportsPath(path)
	if err != nil {
		return nil, err
	}

	return &ReportRepository{
		reportsPath: reportsPath,
		maxReports:  maxReports,
		mu:          historyLock(reportsPath),
	}, nil
}

func (r *ReportRepository) Save(ctx context.Context, report domain.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	history, err := r.load()
	if err != nil {
		return err
	}

	entry := toSchema(report)
	if i := slices.IndexFunc(history.Reports, func(existing reportSchema) bool {
		return existing.ID == entry.ID
	}); i >= 0 {
		history.Reports[i] = entry
	} else {
		history.Reports = append(history.Reports, entry)
	}

	// Oldest runs sit at the front of the file.
	if overflow := len(history.Reports) - r.maxReports; overflow > 0 {
		history.Reports = slices.Delete(history.Reports, 0, overflow)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.store(history)
}

func (r *ReportRepository) GetByID(ctx context.Context, id domain.RunID) (domain.RunReport, error) {
	if err := ctx.Err(); err != nil {
		return domain.RunReport{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	history, err := r.load()
	if err != nil {
		return domain.RunReport{}, err
	}

	for _, entry := range history.Reports {
		if entry.ID == string(id) {
			return fromSchema(entry), nil
		}
	}

	return domain.RunReport{}, domain.ErrReportNotFound
}

func (r *ReportRepository) List(ctx context.Context) ([]domain.RunReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	history, err := r.load()
	if err != nil {
		return nil, err
	}

	reports := make([]domain.RunReport, 0, len(history.Reports))
	for _, entry := range history.Reports {
		reports = append(reports, fromSchema(entry))
	}

	return reports, nil
}

// load returns an empty history when the file does not exist yet.
func (r *ReportRepository) load() (fileSchema, error) {
	history := fileSchema{}

	data, err := os.ReadFile(r.reportsPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fileSchema{}, fmt.Errorf("load run history %s: %w", r.reportsPath, err)
	default:
		if err := toml.Unmarshal(data, &history); err != nil {
			return fileSchema{}, fmt.Errorf("parse run history %s: %w", r.reportsPath, err)
		}
		if err := history.validateVersion(); err != nil {
			return fileSchema{}, err
		}
	}

	history.applyDefaults()
	return history, nil
}

func (r *ReportRepository) store(history fileSchema) error {
	history.applyDefaults()

	data, err := toml.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal run history: %w", err)
	}

	if err := replaceFile(r.reportsPath, data); err != nil {
		return fmt.Errorf("store run history %s: %w", r.reportsPath, err)
	}

	return nil
}

// replaceFile stages data next to path and renames it into place, so readers
// see either the previous history or the new one.
func replaceFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, reportsDirMode); err != nil {
		return err
	}

	staged, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = staged.Close()
			_ = os.Remove(staged.Name())
		}
	}()

	if err = staged.Chmod(reportsFileMode); err != nil {
		return err
	}
	if _, err = staged.Write(data); err != nil {
		return err
	}
	if err = staged.Sync(); err != nil {
		return err
	}
	if err = staged.Close(); err != nil {
		return err
	}

	return os.Rename(staged.Name(), path)
}

func normalizeReportsPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve run history path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

// historyLock hands every repository on the same file the same mutex.
func historyLock(path string) *sync.RWMutex {
	mu, _ := historyLocks.LoadOrStore(path, &sync.RWMutex{})
	return mu.(*sync.RWMutex)
}

func toSchema(report domain.RunReport) reportSchema {
	return reportSchema{
		ID:                string(report.ID),
		Input:             report.Input,
		Output:            report.Output,
		InactivitySeconds: report.InactivitySeconds,
		Events:            report.Events,
		Sessions:          report.Sessions,
		ClosedInactive:    report.ClosedExpired,
		ClosedEndOfInput:  report.ClosedAtEnd,
		PeakOpenSessions:  report.PeakOpenSessions,
		StartedAt:         formatTime(report.StartedAt),
		FinishedAt:        formatTime(report.FinishedAt),
	}
}

func fromSchema(entry reportSchema) domain.RunReport {
	return domain.RunReport{
		ID:                domain.RunID(entry.ID),
		Input:             entry.Input,
		Output:            entry.Output,
		InactivitySeconds: entry.InactivitySeconds,
		Events:            entry.Events,
		Sessions:          entry.Sessions,
		ClosedExpired:     entry.ClosedInactive,
		ClosedAtEnd:       entry.ClosedEndOfInput,
		PeakOpenSessions:  entry.PeakOpenSessions,
		StartedAt:         parseTime(entry.StartedAt),
		FinishedAt:        parseTime(entry.FinishedAt),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339Nano)
}
