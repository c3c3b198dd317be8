package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int            `toml:"version"`
	Reports []reportSchema `toml:"reports"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("run history schema v%d is newer than supported v%d", s.Version, currentSchemaVersion)
	}

	return nil
}

type reportSchema struct {
	ID                string `toml:"id"`
	Input             string `toml:"input"`
	Output            string `toml:"output"`
	InactivitySeconds int64  `toml:"inactivity_seconds"`
	Events            int64  `toml:"events"`
	Sessions          int64  `toml:"sessions"`
	ClosedInactive    int64  `toml:"closed_inactive"`
	ClosedEndOfInput  int64  `toml:"closed_end_of_input"`
	PeakOpenSessions  int    `toml:"peak_open_sessions"`
	StartedAt         string `toml:"started_at"`
	FinishedAt        string `toml:"finished_at"`
}
