package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"csreport/internal/domain"
)

func sampleTables() []domain.Table {
	return []domain.Table{
		{Name: "일자별 집계", Columns: []string{"날짜", "전체 건수", "비율"}, Rows: [][]any{
			{"20240315", 2, 100.0},
			{"20240316", 1, 0.0},
		}},
		{Name: `odd "name"`, Columns: []string{"k"}},
	}
}

func openExport(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestExportWritesTablesAndCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.db")
	if err := Export(path, sampleTables()); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	db := openExport(t, path)

	var total int
	if err := db.QueryRow(`SELECT SUM("전체 건수") FROM "일자별 집계"`).Scan(&total); err != nil {
		t.Fatalf("query table: %v", err)
	}
	if total != 3 {
		t.Fatalf("sum = %d, want 3", total)
	}

	var typ string
	if err := db.QueryRow(`SELECT type FROM pragma_table_info('일자별 집계') WHERE name = '비율'`).Scan(&typ); err != nil {
		t.Fatalf("pragma_table_info failed: %v", err)
	}
	if typ != "REAL" {
		t.Fatalf("column type = %q, want REAL", typ)
	}

	rows, err := db.Query(`SELECT name, row_count FROM csreport_tables ORDER BY position`)
	if err != nil {
		t.Fatalf("query catalog: %v", err)
	}
	defer rows.Close()
	var names []string
	var counts []int
	for rows.Next() {
		var n string
		var c int
		if err := rows.Scan(&n, &c); err != nil {
			t.Fatalf("scan: %v", err)
		}
		names = append(names, n)
		counts = append(counts, c)
	}
	if len(names) != 2 || names[1] != `odd "name"` || counts[0] != 2 || counts[1] != 0 {
		t.Fatalf("unexpected catalog names=%v counts=%v", names, counts)
	}
}

func TestExportReplacesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.db")
	for i := 0; i < 2; i++ {
		if err := Export(path, sampleTables()); err != nil {
			t.Fatalf("Export #%d failed: %v", i+1, err)
		}
	}
	db := openExport(t, path)
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM "일자별 집계"`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows after rerun = %d, want 2", n)
	}
}

func TestExportDuplicateTableNameFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.db")
	tables := []domain.Table{
		{Name: "a", Columns: []string{"x"}},
		{Name: "a", Columns: []string{"y"}},
	}
	if err := Export(path, tables); err == nil {
		t.Fatal("expected error for duplicate table names")
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".*.tmp"))
	if len(matches) != 0 {
		t.Fatalf("temp files left behind: %v", matches)
	}
}

func TestColumnType(t *testing.T) {
	tbl := domain.Table{Columns: []string{"i", "f", "s"}, Rows: [][]any{{1, 1.5, "x"}, {2, 2, "y"}}}
	for col, want := range []string{"INTEGER", "REAL", "TEXT"} {
		if got := columnType(tbl, col); got != want {
			t.Errorf("columnType(%d) = %s, want %s", col, got, want)
		}
	}
}
