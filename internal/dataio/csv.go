// Package dataio reads the heterogeneous source tables of the pipeline:
// DVF transaction extracts, the quarterly price index, the zonage ABC
// workbook, school results, IRIS socio-economic values and contours, and
// the amenities register. Readers guarantee schema: a missing file or a
// missing required column is a fatal configuration error.
package dataio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// ExpandPatterns resolves glob patterns to concrete file paths. An empty
// pattern list or a pattern matching nothing is a configuration error,
// never silently skipped: a run with no input must not write an empty
// output and exit cleanly.
func ExpandPatterns(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no input patterns configured")
	}
	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no file matches %q", pattern)
		}
		sort.Strings(matches)
		paths = append(paths, matches...)
	}
	return paths, nil
}

// table is a parsed delimited file: a header index plus data rows.
type table struct {
	path   string
	header map[string]int
	rows   [][]string
}

// readTable parses a delimited file, skipping preamble lines ahead of the
// header row.
func readTable(path string, comma rune, skipLines int) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1

	for i := 0; i < skipLines; i++ {
		if _, err := r.Read(); err != nil {
			return nil, fmt.Errorf("skip preamble of %s: %w", path, err)
		}
	}

	headerRow, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	header := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		header[trimBOM(name)] = i
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		rows = append(rows, row)
	}

	return &table{path: path, header: header, rows: rows}, nil
}

// columns resolves required column names to indices. Any absence is a
// schema violation reported with the file name.
func (t *table) columns(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		pos, ok := t.header[name]
		if !ok {
			return nil, fmt.Errorf("%s: missing required column %q", t.path, name)
		}
		idx[i] = pos
	}
	return idx, nil
}

func (t *table) cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return row[col]
}

func trimBOM(s string) string {
	if len(s) >= 3 && s[0] == 0xEF && s[1] == 0xBB && s[2] == 0xBF {
		return s[3:]
	}
	return s
}
