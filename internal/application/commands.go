package application

import "github.com/bnema/sessionize/internal/domain"

type SessionizeCommand struct {
	Window domain.InactivityWindow
	// Input and Output only label the run report.
	Input  string
	Output string
	// SkipReport leaves the run out of the report history.
	SkipReport bool
}
