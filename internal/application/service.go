package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/bnema/sessionize/internal/domain"
	"github.com/bnema/sessionize/internal/ports"
	"github.com/google/uuid"
)

type closeReason string

const (
	closeReasonExpired     closeReason = "inactive"
	closeReasonEndOfStream closeReason = "end_of_input"
)

type Service struct {
	reports  ports.ReportRepository
	clock    ports.Clock
	logger   *slog.Logger
	newRunID func() domain.RunID
}

func NewService(reports ports.ReportRepository, clock ports.Clock, logger *slog.Logger) *Service {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Service{
		reports: reports,
		clock:   clock,
		logger:  logger,
		newRunID: func() domain.RunID {
			return domain.RunID(uuid.NewString())
		},
	}
}

// Sessionize reads every event from source, writes each finished session to
// sink and returns a summary of the run. Sessions that go idle are written as
// soon as a later event proves it; the rest are written oldest first once the
// source is exhausted. Any read, write or context error stops the run.
func (s *Service) Sessionize(ctx context.Context, cmd SessionizeCommand, source ports.EventSource, sink ports.SessionSink) (domain.RunReport, error) {
	report := domain.RunReport{
		ID:                s.newRunID(),
		Input:             cmd.Input,
		Output:            cmd.Output,
		InactivitySeconds: cmd.Window.Seconds(),
		StartedAt:         s.clock.Now(),
	}
	logger := s.logger.With(slog.String("run_id", string(report.ID)))
	logger.Info("sessionize started",
		slog.String("input", cmd.Input),
		slog.String("output", cmd.Output),
		slog.Int64("inactivity_seconds", cmd.Window.Seconds()),
	)

	tracker := NewTracker(cmd.Window)
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		event, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, fmt.Errorf("read event: %w", err)
		}
		report.Events++

		tracker.AdvanceClock(event.Timestamp)
		for tracker.HasExpired() {
			session, err := tracker.CloseExpired()
			if err != nil {
				return report, err
			}
			if err := s.emit(ctx, logger, sink, session, closeReasonExpired); err != nil {
				return report, err
			}
			report.ClosedExpired++
		}

		tracker.Record(event)
		if open := tracker.Len(); open > report.PeakOpenSessions {
			report.PeakOpenSessions = open
		}
	}

	for tracker.HasOpenSessions() {
		session, err := tracker.CloseOldest()
		if err != nil {
			return report, err
		}
		if err := s.emit(ctx, logger, sink, session, closeReasonEndOfStream); err != nil {
			return report, err
		}
		report.ClosedAtEnd++
	}

	report.Sessions = report.ClosedExpired + report.ClosedAtEnd
	report.FinishedAt = s.clock.Now()

	if s.reports != nil && !cmd.SkipReport {
		if err := s.reports.Save(ctx, report); err != nil {
			return report, fmt.Errorf("save run report: %w", err)
		}
	}

	logger.Info("sessionize finished",
		slog.Int64("events", report.Events),
		slog.Int64("sessions", report.Sessions),
		slog.Int64("closed_inactive", report.ClosedExpired),
		slog.Int64("closed_end_of_input", report.ClosedAtEnd),
		slog.Int("peak_open_sessions", report.PeakOpenSessions),
		slog.Duration("elapsed", report.Elapsed()),
	)

	return report, nil
}

func (s *Service) emit(ctx context.Context, logger *slog.Logger, sink ports.SessionSink, session domain.Session, reason closeReason) error {
	if err := sink.Write(ctx, session); err != nil {
		return fmt.Errorf("write session for %s: %w", session.ClientID, err)
	}

	logger.Debug("session closed",
		slog.String("client_id", string(session.ClientID)),
		slog.String("reason", string(reason)),
		slog.Int("requests", session.Requests),
		slog.Int64("duration_seconds", session.ReportedDuration()),
	)

	return nil
}

// ListReports returns stored run reports, newest first.
func (s *Service) ListReports(ctx context.Context) ([]domain.RunReport, error) {
	if s.reports == nil {
		return nil, nil
	}

	reports, err := s.reports.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list run reports: %w", err)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].StartedAt.After(reports[j].StartedAt)
	})

	return reports, nil
}

func (s *Service) GetReport(ctx context.Context, id domain.RunID) (domain.RunReport, error) {
	if s.reports == nil {
		return domain.RunReport{}, domain.ErrReportNotFound
	}

	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			return domain.RunReport{}, err
		}
		return domain.RunReport{}, fmt.Errorf("get run report: %w", err)
	}

	return report, nil
}
