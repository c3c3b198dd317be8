package domain

import "time"

// TimestampLayout is the second-resolution layout used for both parsing
// access-log records and rendering session boundaries.
const TimestampLayout = "2006-01-02 15:04:05"

type ClientID string

// Event is a single request taken from the access log. Sequence orders events
// that share a timestamp; it is assigned by the parser in ingestion order.
type Event struct {
	ClientID  ClientID
	Timestamp time.Time
	Sequence  int64
	Resource  string
}
