package csvlog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bnema/sessionize/internal/domain"
	"github.com/bnema/sessionize/internal/ports"
)

const (
	columnIP        = "ip"
	columnDate      = "date"
	columnTime      = "time"
	columnCIK       = "cik"
	columnAccession = "accession"
	columnExtension = "extention"

	byteOrderMark = "\ufeff"
)

var (
	ErrMissingHeader = errors.New("missing header")
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyClientID = errors.New("empty client id")
	ErrShortRecord   = errors.New("record has fewer fields than the header requires")
)

var resourceColumns = []string{columnCIK, columnAccession, columnExtension}

// Reader turns a header-led, comma separated access log into events.
// Columns are located by name, so their order in the file does not matter.
type Reader struct {
	csv       *csv.Reader
	ip        int
	date      int
	time      int
	resource  []int
	minFields int
	sequence  int64
}

var _ ports.EventSource = (*Reader)(nil)

func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingHeader
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	positions := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, byteOrderMark)
		}
		positions[strings.TrimSpace(name)] = i
	}

	reader := &Reader{csv: cr}
	for _, required := range []struct {
		name   string
		target *int
	}{
		{name: columnIP, target: &reader.ip},
		{name: columnDate, target: &reader.date},
		{name: columnTime, target: &reader.time},
	} {
		pos, ok := positions[required.name]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, required.name)
		}
		*required.target = pos
	}

	for _, name := range resourceColumns {
		if pos, ok := positions[name]; ok {
			reader.resource = append(reader.resource, pos)
		}
	}

	reader.minFields = max(reader.ip, reader.date, reader.time) + 1
	for _, pos := range reader.resource {
		reader.minFields = max(reader.minFields, pos+1)
	}

	return reader, nil
}

// Next returns the following event, or io.EOF after the last record.
// Sequence numbers start at 1 and grow by one per returned event.
func (r *Reader) Next(ctx context.Context) (domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return domain.Event{}, err
	}

	record, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Event{}, io.EOF
		}
		return domain.Event{}, fmt.Errorf("read record: %w", err)
	}
	line, _ := r.csv.FieldPos(0)

	if len(record) < r.minFields {
		return domain.Event{}, fmt.Errorf("line %d: %w (got %d, want %d)", line, ErrShortRecord, len(record), r.minFields)
	}

	clientID := strings.TrimSpace(record[r.ip])
	if clientID == "" {
		return domain.Event{}, fmt.Errorf("line %d: %w", line, ErrEmptyClientID)
	}

	raw := strings.TrimSpace(record[r.date]) + " " + strings.TrimSpace(record[r.time])
	timestamp, err := time.ParseInLocation(domain.TimestampLayout, raw, time.UTC)
	if err != nil {
		return domain.Event{}, fmt.Errorf("line %d: parse timestamp %q: %w", line, raw, err)
	}

	r.sequence++

	return domain.Event{
		ClientID:  domain.ClientID(clientID),
		Timestamp: timestamp,
		Sequence:  r.sequence,
		Resource:  r.resourceOf(record),
	}, nil
}

func (r *Reader) resourceOf(record []string) string {
	if len(r.resource) == 0 {
		return ""
	}

	parts := make([]string, 0, len(r.resource))
	for _, pos := range r.resource {
		parts = append(parts, record[pos])
	}

	return strings.Join(parts, " ")
}
