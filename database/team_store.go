// database/team_store.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidTableName reports whether name can be interpolated as a table identifier.
func ValidTableName(name string) bool {
	return identifierPattern.MatchString(name)
}

// quoteColumn quotes a spreadsheet header (which may contain spaces) as a MySQL identifier.
func quoteColumn(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// SelectTeamTableQuery returns the SELECT statement used by LoadTeamTable.
func SelectTeamTableQuery(table string, columns []string) (string, error) {
	if !ValidTableName(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("no columns requested from %s", table)
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteColumn(c)
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), table), nil
}

// KnownColumns returns the entries of wanted that appear in available,
// compared case-insensitively, in wanted order and with wanted's spelling.
func KnownColumns(available, wanted []string) []string {
	out := []string{}
	for _, w := range wanted {
		for _, a := range available {
			if strings.EqualFold(strings.TrimSpace(a), w) {
				out = append(out, w)
				break
			}
		}
	}
	return out
}

// TableColumns lists the columns of table without reading any rows.
func TableColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	if !ValidTableName(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+table+" LIMIT 0")
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	return columns, nil
}

// LoadTeamTable reads every row of table, returning the header and the rows
// as strings. Only the columns of wanted that the table has are selected, and
// the header uses wanted's spelling. NULL values are returned as "".
func LoadTeamTable(ctx context.Context, db *sql.DB, table string, wanted []string) ([]string, [][]string, error) {
	if db == nil {
		return nil, nil, fmt.Errorf("database connection is not initialized")
	}
	available, err := TableColumns(ctx, db, table)
	if err != nil {
		return nil, nil, err
	}
	header := KnownColumns(available, wanted)
	if len(header) == 0 {
		return nil, nil, fmt.Errorf("table %s has none of the known columns", table)
	}
	if len(header) < len(wanted) {
		log.Printf("WARN Database: %s has %d of %d known columns", table, len(header), len(wanted))
	}
	query, err := SelectTeamTableQuery(table, header)
	if err != nil {
		return nil, nil, err
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		values := make([]sql.NullString, len(header))
		dest := make([]any, len(header))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan row of %s: %w", table, err)
		}
		record := make([]string, len(header))
		for i, v := range values {
			if v.Valid {
				record[i] = v.String
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating rows of %s: %w", table, err)
	}

	log.Printf("Database: loaded %d rows from %s", len(records), table)
	return header, records, nil
}
