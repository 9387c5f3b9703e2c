package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var ErrNoRows = errors.New("dataset has no rows")

// ParseError reports where reading the CSV failed.
type ParseError struct {
	Stage  string // "open", "header", "read" or "cast"
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Column != "":
		return fmt.Sprintf("parse error at %s stage (line %d, column %q): %v", e.Stage, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("parse error at %s stage (line %d): %v", e.Stage, e.Line, e.Err)
	default:
		return fmt.Sprintf("parse error at %s stage: %v", e.Stage, e.Err)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads a dataset from a CSV file.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Stage: "open", Err: err}
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a CSV with a header row. Columns are matched by name;
// unknown columns are ignored.
func Parse(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, &ParseError{Stage: "header", Line: 1, Err: err}
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	required := []string{"state", "abbr"}
	for _, v := range Variables {
		required = append(required, string(v))
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, &ParseError{Stage: "header", Line: 1, Column: name, Err: errors.New("missing column")}
		}
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			pe := &ParseError{Stage: "read", Err: err}
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				pe.Line = csvErr.Line
			}
			return nil, pe
		}
		line, _ := reader.FieldPos(0)

		row := Row{
			State: strings.TrimSpace(record[index["state"]]),
			Abbr:  strings.TrimSpace(record[index["abbr"]]),
		}
		for _, v := range Variables {
			cell := strings.TrimSpace(record[index[string(v)]])
			f, err := strconv.ParseFloat(cell, 64)
			if err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
				err = fmt.Errorf("non-finite value %q", cell)
			}
			if err != nil {
				return nil, &ParseError{Stage: "cast", Line: line, Column: string(v), Err: err}
			}
			row.set(v, f)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return &Dataset{rows: rows}, nil
}
