// Package sqlite exports result tables to a SQLite file so they can be
// queried alongside the workbook.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"csreport/internal/artifact"
	"csreport/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

const catalogTable = "csreport_tables"

// Export writes every table into a fresh database at path. The database is
// built under a temp name and renamed into place, so a rerun replaces the
// previous export instead of appending to it.
func Export(path string, tables []domain.Table) error {
	var b artifact.Batch
	if err := Stage(&b, path, tables); err != nil {
		return err
	}
	return b.Commit()
}

// Stage builds the database into b; it reaches path on b.Commit.
func Stage(b *artifact.Batch, path string, tables []domain.Table) error {
	return b.StageFile(path, func(tmpPath string) error {
		return writeTables(tmpPath, tables)
	})
}

func writeTables(path string, tables []domain.Table) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TABLE ` + catalogTable + ` (
		position INTEGER PRIMARY KEY,
		name     TEXT NOT NULL UNIQUE,
		columns  TEXT NOT NULL,
		row_count INTEGER NOT NULL
	)`); err != nil {
		return err
	}

	for i, t := range tables {
		if err := createTable(tx, t); err != nil {
			return fmt.Errorf("table %q: %w", t.Name, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO `+catalogTable+` (position, name, columns, row_count) VALUES (?, ?, ?, ?)`,
			i+1, t.Name, strings.Join(t.Columns, "\t"), len(t.Rows),
		); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return db.Close()
}

func createTable(tx *sql.Tx, t domain.Table) error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("no columns")
	}
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = quote(c) + " " + columnType(t, i)
	}
	if _, err := tx.Exec(`CREATE TABLE ` + quote(t.Name) + ` (` + strings.Join(defs, ", ") + `)`); err != nil {
		return err
	}
	if len(t.Rows) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.Columns)), ", ")
	stmt, err := tx.Prepare(`INSERT INTO ` + quote(t.Name) + ` VALUES (` + placeholders + `)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]any, len(t.Columns))
	for _, row := range t.Rows {
		for i := range args {
			args[i] = nil
			if i < len(row) {
				args[i] = row[i]
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}
	return nil
}

// columnType picks the narrowest affinity that holds every value in the
// column.
func columnType(t domain.Table, col int) string {
	kind := "INTEGER"
	for _, row := range t.Rows {
		if col >= len(row) {
			continue
		}
		switch row[col].(type) {
		case int, int64:
		case float64, float32:
			kind = "REAL"
		default:
			return "TEXT"
		}
	}
	if len(t.Rows) == 0 {
		return "TEXT"
	}
	return kind
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
