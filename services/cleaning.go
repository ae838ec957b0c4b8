// services/cleaning.go
package services

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PhilHen99/InplayBasketSourceFinder/models"
	"github.com/PhilHen99/InplayBasketSourceFinder/source"
	"github.com/jszwec/csvutil"
)

// tableReader feeds table rows to csvutil, padding or truncating each row
// to the header width.
type tableReader struct {
	rows  [][]string
	width int
	next  int
}

func (r *tableReader) Read() ([]string, error) {
	if r.next >= len(r.rows) {
		return nil, io.EOF
	}
	row := r.rows[r.next]
	r.next++

	record := make([]string, r.width)
	copy(record, row)
	return record, nil
}

// normalizeHeader trims header names and renames blank or repeated ones so
// that they cannot collide with, or shadow, a known column.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" || seen[name] {
			name = "_unnamed_" + strconv.Itoa(i)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

// CleanTable projects a raw table onto models.Team. Unknown columns are
// dropped, missing columns leave their fields empty, and empty cells map to
// the empty string.
func CleanTable(table *source.Table) ([]models.Team, error) {
	if table == nil || len(table.Header) == 0 {
		return nil, errors.New("table has no header row")
	}

	header := normalizeHeader(table.Header)
	dec, err := csvutil.NewDecoder(&tableReader{rows: table.Rows, width: len(header)}, header...)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder for teams table: %w", err)
	}

	teams := make([]models.Team, 0, len(table.Rows))
	for {
		var t models.Team
		if err := dec.Decode(&t); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to decode teams table: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, nil
}
