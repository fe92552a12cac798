// Package records reads delimiter-separated relationship records.
//
// Each non-header line of the input becomes one [Record]: the raw fields of the
// line split on a fixed delimiter. There is no quoting or escaping; a value
// that contains the delimiter corrupts its line. The first line of every input
// is a header and is always discarded.
//
// [Scan] yields records lazily. [Read] and [ReadFile] materialize them into a
// [Table] so that every consumer (graph aggregation, category tallies) derives
// its view from exactly the same record set after a single read.
package records

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
	"unicode"

	"github.com/matzehuels/conet/pkg/errors"
)

// DefaultDelimiter separates fields when [Format.Delimiter] is empty.
const DefaultDelimiter = ","

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// Record is the ordered tuple of fields from one input line.
type Record []string

// Field returns the field at index i, or ok=false if the record is too short.
// A negative index counts from the end, so -1 is the last field.
func (r Record) Field(i int) (string, bool) {
	if i < 0 {
		i += len(r)
	}
	if i < 0 || i >= len(r) {
		return "", false
	}
	return r[i], true
}

// Format describes how lines are split into fields.
type Format struct {
	Delimiter string
}

func (f Format) delimiter() string {
	if f.Delimiter == "" {
		return DefaultDelimiter
	}
	return f.Delimiter
}

// Table is a fully read input: its records plus the line number each one came
// from, for error reporting.
type Table struct {
	Records []Record
	Lines   []int
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.Records) }

// Required returns the minimum field count needed to address all indices,
// i.e. max(indices)+1. Negative indices are ignored.
func Required(indices ...int) int {
	n := 0
	for _, i := range indices {
		n = max(n, i+1)
	}
	return n
}

// Line is a record with its 1-based line number in the source.
type Line struct {
	Number int
	Record Record
}

// Scan returns a lazy sequence over the data lines of r.
//
// The header line is skipped, each line is trimmed of surrounding whitespace
// other than the delimiter (which also strips a trailing \r), and blank lines
// are skipped. The sequence
// yields a non-nil error at most once, as its final element, if reading fails.
// Scan does not close r.
func Scan(r io.Reader, f Format) iter.Seq2[Line, error] {
	delim := f.delimiter()
	trim := func(r rune) bool { return unicode.IsSpace(r) && !strings.ContainsRune(delim, r) }
	return func(yield func(Line, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		n := 0
		for sc.Scan() {
			n++
			if n == 1 {
				continue
			}
			line := strings.TrimFunc(sc.Text(), trim)
			if line == "" {
				continue
			}
			if !yield(Line{Number: n, Record: strings.Split(line, delim)}, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(Line{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read line %d", n+1))
		}
	}
}

// Read materializes all data lines of r into a Table.
//
// Every record must have at least minFields fields; the first short line fails
// the whole read with [errors.ErrCodeInvalidInput] naming its line number.
func Read(r io.Reader, f Format, minFields int) (*Table, error) {
	if err := errors.ValidateDelimiter(f.delimiter()); err != nil {
		return nil, err
	}

	t := &Table{}
	for line, err := range Scan(r, f) {
		if err != nil {
			return nil, err
		}
		if len(line.Record) < minFields {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"line %d: want at least %d fields, got %d", line.Number, minFields, len(line.Record))
		}
		t.Records = append(t.Records, line.Record)
		t.Lines = append(t.Lines, line.Number)
	}
	return t, nil
}

// ReadFile opens path, reads it with [Read], and closes it on every path.
// A missing file is reported as [errors.ErrCodeFileNotFound].
func ReadFile(path string, f Format, minFields int) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer file.Close()

	t, err := Read(file, f, minFields)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}
