package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dshills/gridstorm/internal/item"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// OpenSQLite opens a SQLite database file. An in-memory database is bound
// to a single connection so every query sees the same data.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := path
	if path != MemoryDSN {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == MemoryDSN {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// LoadSQL runs query and returns one item.Record per result row, keyed by
// column name. BLOB and TEXT values come back as strings.
func LoadSQL(ctx context.Context, db *sql.DB, query string, args ...any) (*Table, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	t := &Table{Fields: cols}

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(t.Items), err)
		}
		rec := make(item.Record, len(cols))
		for i, c := range cols {
			rec[c] = sqlValue(vals[i])
		}
		t.Items = append(t.Items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return t, nil
}

// LoadTable loads every row of table.
func LoadTable(ctx context.Context, db *sql.DB, table string) (*Table, error) {
	if table == "" {
		return nil, ErrNoTable
	}
	return LoadSQL(ctx, db, "SELECT * FROM "+quoteIdent(table))
}

func sqlValue(v any) any {
	switch v := v.(type) {
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	}
	return v
}

// UpdateField writes one field of an edited item back to table, matching
// the row by idField.
func UpdateField(ctx context.Context, db *sql.DB, table, idField string, it item.Item, field string) error {
	if table == "" {
		return ErrNoTable
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?",
		quoteIdent(table), quoteIdent(field), quoteIdent(idField))
	res, err := db.ExecContext(ctx, stmt, it.Get(field), it.Get(idField))
	if err != nil {
		return fmt.Errorf("update %s.%s: %w", table, field, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update %s.%s: no row with %s = %v", table, field, idField, it.Get(idField))
	}
	return nil
}

// InsertItem appends an item to table using the given fields. Fields the
// item does not carry are inserted as NULL.
func InsertItem(ctx context.Context, db *sql.DB, table string, fields []string, it item.Item) error {
	if table == "" {
		return ErrNoTable
	}
	names := make([]string, len(fields))
	marks := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, f := range fields {
		names[i] = quoteIdent(f)
		marks[i] = "?"
		args[i] = it.Get(f)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(names, ", "), strings.Join(marks, ", "))
	if _, err := db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
