package summary

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/sessionize/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const closeBarWidth = 24

type RenderOptions struct {
	Now time.Time
}

func renderView(reports []domain.RunReport, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Sessionize Runs"),
		s.header.Render(fmt.Sprintf("runs: %d", len(reports))),
	}

	if len(reports) == 0 {
		lines = append(lines, s.empty.Render("No runs recorded."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, report := range reports {
		lines = append(lines, s.section.Render(renderReport(report, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderReport(report domain.RunReport, opts RenderOptions, s styles) string {
	title := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.run.Render(fmt.Sprintf("Run %s", report.ID)),
		" ",
		s.meta.Render(fmt.Sprintf("(%s)", formatStarted(report.StartedAt, opts.Now))),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		s.detail.Render(fmt.Sprintf("%s -> %s", pathLabel(report.Input), pathLabel(report.Output))),
		s.detail.Render(fmt.Sprintf("inactivity: %ds  events: %d  sessions: %d  requests/session: %.1f",
			report.InactivitySeconds, report.Events, report.Sessions, report.RequestsPerSession())),
		closeLine(report, s),
		s.meta.Render(fmt.Sprintf("peak open: %d  elapsed: %s", report.PeakOpenSessions, formatElapsed(report.Elapsed()))),
	)
}

func closeLine(report domain.RunReport, s styles) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.key.Render("closed:"),
		" ",
		renderCloseBar(report.ClosedExpired, report.Sessions, closeBarWidth, s),
		" ",
		s.meta.Render(fmt.Sprintf("%d inactive / %d end of input", report.ClosedExpired, report.ClosedAtEnd)),
	)
}

func renderCloseBar(expired, total int64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := 0
	if total > 0 {
		filled = int(math.Round(float64(width) * float64(expired) / float64(total)))
	}
	filled = min(max(filled, 0), width)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barExpired.Render(strings.Repeat("=", filled)),
		s.barAtEnd.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func pathLabel(path string) string {
	switch strings.TrimSpace(path) {
	case "":
		return "unknown"
	case "-":
		return "stdout"
	default:
		return path
	}
}

func formatStarted(startedAt, now time.Time) string {
	if startedAt.IsZero() {
		return "start unknown"
	}

	stamp := startedAt.Format("2006-01-02 15:04")
	if now.IsZero() || startedAt.After(now) {
		return stamp
	}

	ago := now.Sub(startedAt)
	switch {
	case ago < time.Minute:
		return stamp + ", just now"
	case ago < time.Hour:
		return fmt.Sprintf("%s, %s ago", stamp, plural(int(ago.Minutes()), "minute"))
	case ago < 24*time.Hour:
		return fmt.Sprintf("%s, %s ago", stamp, plural(int(ago.Hours()), "hour"))
	default:
		return fmt.Sprintf("%s, %s ago", stamp, plural(int(ago.Hours()/24), "day"))
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}

	return fmt.Sprintf("%d %ss", n, unit)
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "n/a"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}

	return d.Round(10 * time.Millisecond).String()
}
