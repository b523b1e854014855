package dataset

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	_ "modernc.org/sqlite"
)

// tableName is the single table the dataset is imported into.
const tableName = "matches"

// Store holds the match dataset imported into a local SQLite database.
// It is loaded once at startup and read-only thereafter.
type Store struct {
	db      *sql.DB
	columns []string
	types   map[string]string // column -> INTEGER | REAL | TEXT
	log     func(string)
}

// Open imports the dataset file (.csv or .xlsx) into a fresh SQLite database
// under cacheDir and returns the ready-to-query store.
func Open(datasetPath, cacheDir string, logFunc func(string)) (*Store, error) {
	rows, err := readRows(datasetPath)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows found in %s", datasetPath)
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	dbPath := filepath.Join(cacheDir, "odireport.db")
	// Fresh import on every startup; the dataset file is the source of truth.
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to reset dataset cache: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset cache: %w", err)
	}

	s := &Store{db: db, types: map[string]string{}, log: logFunc}
	if err := s.importRows(rows); err != nil {
		db.Close()
		return nil, err
	}
	s.logf("imported %s: %d columns", datasetPath, len(s.columns))
	return s, nil
}

func (s *Store) logf(format string, args ...interface{}) {
	if s.log != nil {
		s.log(fmt.Sprintf(format, args...))
	}
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Columns returns the sanitized column names in file order.
func (s *Store) Columns() []string {
	cols := make([]string, len(s.columns))
	copy(cols, s.columns)
	return cols
}

// IsNumeric reports whether the column was inferred as INTEGER or REAL.
func (s *Store) IsNumeric(col string) bool {
	t := s.types[col]
	return t == "INTEGER" || t == "REAL"
}

func (s *Store) hasColumn(col string) bool {
	_, ok := s.types[col]
	return ok
}

// readRows loads the raw string grid from a delimited text file or the first
// sheet of a workbook.
func readRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readExcelRows(path)
	default:
		return readCSVRows(path)
	}
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate ragged rows
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// importRows infers the schema from the grid and bulk-inserts the data.
func (s *Store) importRows(rows [][]string) error {
	maxCols := 0
	for _, row := range rows {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}
	if maxCols == 0 {
		return fmt.Errorf("dataset has no columns")
	}

	dataRows := rows
	var headers []string
	if isHeaderRow(rows[0]) {
		headers = rows[0]
		dataRows = rows[1:]
	}

	s.columns = buildColumnNames(headers, maxCols)

	// Infer each column's type from its data values. Any non-numeric value
	// demotes the column to TEXT; integers promote to REAL when a float
	// appears.
	for i, col := range s.columns {
		s.types[col] = inferColumnType(dataRows, i)
	}

	defs := make([]string, len(s.columns))
	for i, col := range s.columns {
		defs[i] = fmt.Sprintf("%s %s", quoteIdent(col), s.types[col])
	}
	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", tableName, strings.Join(defs, ", "))
	if _, err := s.db.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(s.columns)), ",")
	insertSQL := fmt.Sprintf("INSERT INTO %s VALUES (%s)", tableName, placeholders)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range dataRows {
		args := make([]interface{}, len(s.columns))
		for i, col := range s.columns {
			var cell string
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			if cell == "" && s.IsNumeric(col) {
				args[i] = nil
				continue
			}
			args[i] = cell
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

// isHeaderRow checks if the row is likely a header row.
func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	for _, cell := range row {
		if cell == "" {
			continue
		}
		// If it's a number, it's likely data, not a header
		if _, err := strconv.ParseFloat(cell, 64); err == nil {
			return false
		}
	}
	return true
}

// buildColumnNames sanitizes the header names (or generates col_N names when
// no header row exists) and deduplicates collisions.
func buildColumnNames(headers []string, maxCols int) []string {
	names := make([]string, 0, maxCols)
	seen := map[string]bool{}
	for i := 0; i < maxCols; i++ {
		var name string
		if i < len(headers) && strings.TrimSpace(headers[i]) != "" {
			name = sanitizeName(headers[i])
		}
		if name == "" {
			name = fmt.Sprintf("col_%d", i+1)
		}
		base := name
		for n := 2; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// sanitizeName makes a header safe to use as a SQL identifier.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	var result strings.Builder
	for _, r := range name {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_':
			result.WriteRune(r)
		case r > 127:
			result.WriteRune(r)
		default:
			result.WriteRune('_')
		}
	}
	out := result.String()
	if out == "" {
		return "unknown"
	}
	return out
}

// inferColumnType scans a column's values: INTEGER and REAL only when every
// non-empty value parses; otherwise TEXT.
func inferColumnType(rows [][]string, colIdx int) string {
	inferred := ""
	for _, row := range rows {
		if colIdx >= len(row) {
			continue
		}
		val := strings.TrimSpace(row[colIdx])
		if val == "" {
			continue
		}
		t := inferValueType(val)
		switch {
		case t == "TEXT":
			return "TEXT"
		case inferred == "" || inferred == t:
			inferred = t
		default:
			// INTEGER and REAL mixed
			inferred = "REAL"
		}
	}
	if inferred == "" {
		return "TEXT"
	}
	return inferred
}

func inferValueType(val string) string {
	if _, err := strconv.ParseInt(val, 10, 64); err == nil {
		return "INTEGER"
	}
	if _, err := strconv.ParseFloat(val, 64); err == nil {
		return "REAL"
	}
	return "TEXT"
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
