// Package dataload imports the sample financial datasets shipped as CSV files.
package dataload

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Sink receives converted rows. Implemented by the postgres dataset repository.
type Sink interface {
	Count(ctx context.Context, table string) (int64, error)
	Copy(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
}

type Loader struct {
	dir  string
	sink Sink
	log  *slog.Logger
	now  func() time.Time
}

func New(dir string, sink Sink, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{dir: dir, sink: sink, log: log.With("component", "dataload"), now: time.Now}
}

// Result is the number of rows imported per table. Tables that already held
// data or had no file are reported with 0.
type Result map[string]int64

// Load imports every dataset whose table is empty. A failing dataset is
// logged and does not stop the remaining ones.
func (l *Loader) Load(ctx context.Context) (Result, error) {
	res := Result{}
	var errs []error
	for _, ds := range Datasets() {
		n, err := l.loadOne(ctx, ds)
		if err != nil {
			l.log.Error("import dataset", "file", ds.File, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", ds.File, err))
			continue
		}
		res[ds.Table] = n
	}
	return res, errors.Join(errs...)
}

func (l *Loader) loadOne(ctx context.Context, ds Dataset) (int64, error) {
	path := filepath.Join(l.dir, ds.File)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		l.log.Warn("dataset file not found", "path", path)
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()

	existing, err := l.sink.Count(ctx, ds.Table)
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		l.log.Info("table already populated, skipping", "table", ds.Table, "rows", existing)
		return 0, nil
	}

	rows, err := l.convert(ds, f)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		l.log.Warn("no rows in dataset", "path", path)
		return 0, nil
	}
	n, err := l.sink.Copy(ctx, ds.Table, ds.Columns(), rows)
	if err != nil {
		return 0, err
	}
	l.log.Info("dataset imported", "table", ds.Table, "rows", n)
	return n, nil
}

func (l *Loader) convert(ds Dataset, r io.Reader) ([][]any, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))] = i
	}

	now := l.now().UTC()
	var out [][]any
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		cell := func(name string) string {
			if i, ok := index[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		row, ok := l.row(ds, line, cell, now)
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (l *Loader) row(ds Dataset, line int, cell func(string) string, now time.Time) ([]any, bool) {
	row := make([]any, len(ds.columns))
	for i, c := range ds.columns {
		v := cell(c.csv)
		switch c.kind {
		case kindText:
			row[i] = v
		case kindInt:
			row[i] = l.number(ds, line, c.csv, v, true)
		case kindFloat:
			row[i] = l.number(ds, line, c.csv, v, false)
		case kindDate:
			if t, ok := parseTime(v); ok {
				row[i] = t
			} else {
				if v != "" {
					l.log.Warn("malformed date", "file", ds.File, "line", line, "column", c.csv, "value", v)
				}
				row[i] = nil
			}
		case kindTimestamp:
			t, ok := parseTime(v)
			if !ok {
				l.log.Warn("skipping row with malformed date", "file", ds.File, "line", line, "column", c.csv, "value", v)
				return nil, false
			}
			row[i] = t
		case kindList:
			row[i] = parseList(v)
		case kindInvestmentType:
			row[i] = investmentType(v)
		case kindNewUUID:
			row[i] = newID(v)
		case kindNow:
			row[i] = now
		case kindEmptyObject:
			row[i] = map[string]any{}
		}
	}
	return row, true
}

// number parses a numeric cell; malformed values become 0 and are logged.
// Thousands separators and a leading "$" are tolerated.
func (l *Loader) number(ds Dataset, line int, column, v string, integer bool) any {
	clean := strings.NewReplacer(",", "", "$", "").Replace(v)
	if clean == "" {
		if integer {
			return 0
		}
		return 0.0
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		l.log.Warn("malformed number, using 0", "file", ds.File, "line", line, "column", column, "value", v)
		f = 0
	}
	if integer {
		return int(f)
	}
	return f
}
