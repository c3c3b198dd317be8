package domain

import "errors"

var (
	ErrInactivityOutOfRange = errors.New("inactivity threshold out of range")
	ErrReportNotFound       = errors.New("run report not found")
)
