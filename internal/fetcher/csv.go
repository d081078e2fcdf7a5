package fetcher

import (
	"context"
	"encoding/csv"
	"errors"
	"io"

	"github.com/rotisserie/eris"
)

// CSVOptions configures ReadCSV. The zero value reads comma-separated
// records with strict quoting and no header.
type CSVOptions struct {
	Comma      rune
	LazyQuotes bool
	SkipHeader bool
}

// ErrStopRows ends ReadCSV early without an error.
var ErrStopRows = errors.New("fetcher: stop reading rows")

// ReadCSV calls fn with every record of r, in file order. Records may have
// differing field counts. fn owns the slice it receives. ctx is checked
// before each record.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions, fn func(line int, record []string) error) error {
	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1

	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "csv: context cancelled")
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return eris.Wrapf(err, "csv: read line %d", line)
		}
		if line == 1 && opts.SkipHeader {
			continue
		}

		if err := fn(line, record); err != nil {
			if errors.Is(err, ErrStopRows) {
				return nil
			}
			return err
		}
	}
}

// ReadAllCSV collects every record of r. The records read before a failure
// are returned along with the error.
func ReadAllCSV(ctx context.Context, r io.Reader, opts CSVOptions) ([][]string, error) {
	var rows [][]string
	err := ReadCSV(ctx, r, opts, func(_ int, record []string) error {
		rows = append(rows, record)
		return nil
	})
	return rows, err
}
