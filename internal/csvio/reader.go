package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sheikh-saqib/transaction-processing-engine/internal/models"
)

// ErrMalformedRow is returned for a row that cannot be split into the
// expected columns. Callers skip the row and continue.
var ErrMalformedRow = errors.New("malformed csv row")

// Reader pulls raw transaction rows from a CSV stream. Columns are matched
// by header name in any order; fields are whitespace-trimmed. The amount
// column may be absent entirely for inputs that carry only references.
type Reader struct {
	reader  *csv.Reader
	columns map[string]int
	line    int
}

// NewReader wraps r and consumes the header row.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"type", "client", "tx"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("read csv header: missing %q column", required)
		}
	}

	return &Reader{reader: cr, columns: columns, line: 1}, nil
}

// Next returns the next raw record, or io.EOF when the input is exhausted.
// A row-level parse problem is reported as ErrMalformedRow so the caller can
// skip it; any other error is an input-source failure.
func (r *Reader) Next() (models.RawRecord, error) {
	row, err := r.reader.Read()
	r.line++
	if err != nil {
		if err == io.EOF {
			return models.RawRecord{}, io.EOF
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return models.RawRecord{}, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, r.line, err)
		}
		return models.RawRecord{}, err
	}

	return models.RawRecord{
		Type:   r.field(row, "type"),
		Client: r.field(row, "client"),
		Tx:     r.field(row, "tx"),
		Amount: r.field(row, "amount"),
	}, nil
}

// Line is the input line number of the most recently returned record.
func (r *Reader) Line() int {
	return r.line
}

func (r *Reader) field(row []string, name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
