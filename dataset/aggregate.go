package dataset

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// CountColumn is the y token requesting a frequency tally instead of a sum.
const CountColumn = "count"

// Row is one (category, value) pair of an aggregated series.
type Row struct {
	Category string
	Value    float64
}

// Series is the aggregation result rendered into a chart.
type Series struct {
	XCol     string
	ValueCol string
	Rows     []Row
}

// ResolveColumn validates x against the dataset columns, applying the
// keyword auto-correction heuristics when there is no exact match. The
// heuristics are deliberately naive substring checks; their order matters
// ("winner" is checked before "toss", so "Toss Winner" maps to winner).
func (s *Store) ResolveColumn(x string) (string, error) {
	if s.hasColumn(x) {
		return x, nil
	}

	lower := strings.ToLower(x)
	var candidate string
	switch {
	case strings.Contains(lower, "team"):
		candidate = "team1"
	case strings.Contains(lower, "winner"):
		candidate = "winner"
	case strings.Contains(lower, "toss"):
		candidate = "toss_winner"
	}
	if candidate != "" && s.hasColumn(candidate) {
		s.logf("auto-corrected column %q to %q", x, candidate)
		return candidate, nil
	}

	return "", fmt.Errorf("column %q not found; available columns: %s", x, strings.Join(s.columns, ", "))
}

// Aggregate computes the (category, value) series for the requested x and y.
// y == "count" tallies occurrences of each distinct x value in descending
// order. A numeric y column is summed per category; a non-numeric or unknown
// y silently falls back to the count tally. limit > 0 keeps only the top
// rows (sums are re-ordered descending before truncation).
func (s *Store) Aggregate(x, y string, limit int) (*Series, error) {
	col, err := s.ResolveColumn(x)
	if err != nil {
		return nil, err
	}

	if y != CountColumn && s.hasColumn(y) && s.IsNumeric(y) {
		return s.sumBy(col, y, limit)
	}
	return s.countBy(col, limit)
}

func (s *Store) countBy(x string, limit int) (*Series, error) {
	query := fmt.Sprintf(
		"SELECT %[1]s, COUNT(*) AS cnt FROM %[2]s WHERE %[1]s IS NOT NULL AND TRIM(CAST(%[1]s AS TEXT)) <> '' GROUP BY %[1]s ORDER BY cnt DESC, %[1]s ASC",
		quoteIdent(x), tableName)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return s.querySeries(query, x, CountColumn)
}

func (s *Store) sumBy(x, y string, limit int) (*Series, error) {
	order := fmt.Sprintf("ORDER BY %s ASC", quoteIdent(x))
	if limit > 0 {
		// Top-N by summed value
		order = "ORDER BY total DESC"
	}
	query := fmt.Sprintf(
		"SELECT %[1]s, SUM(%[3]s) AS total FROM %[2]s WHERE %[1]s IS NOT NULL AND TRIM(CAST(%[1]s AS TEXT)) <> '' GROUP BY %[1]s %[4]s",
		quoteIdent(x), tableName, quoteIdent(y), order)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return s.querySeries(query, x, y)
}

func (s *Store) querySeries(query, xCol, valueCol string) (*Series, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("aggregation query failed: %w", err)
	}
	defer rows.Close()

	series := &Series{XCol: xCol, ValueCol: valueCol}
	for rows.Next() {
		var category interface{}
		var value sql.NullFloat64
		if err := rows.Scan(&category, &value); err != nil {
			return nil, fmt.Errorf("failed to scan aggregation row: %w", err)
		}
		series.Rows = append(series.Rows, Row{
			Category: formatCategory(category),
			Value:    value.Float64,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("aggregation scan failed: %w", err)
	}
	return series, nil
}

func formatCategory(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
