package sheet

import (
	"errors"
	"path/filepath"
	"testing"

	"csreport/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeFixture creates a workbook whose sheets hold the given rows,
// header first, in the given order.
func writeFixture(t *testing.T, sheets []string, rows map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, name := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range rows[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(name, cell, &values))
		}
	}
	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

var header = []any{"Advice ID", "Title", "Category", "Extra", "질문내용", "답변내용", "메모", "상태", "요약 결과"}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.xlsx"))
	var dae *domain.DataAccessError
	require.True(t, errors.As(err, &dae), "got %v", err)
}

func TestSelectAndLoad(t *testing.T) {
	path := writeFixture(t, []string{"월", "화"}, map[string][][]any{
		"월": {header, {"20240315A", "t", "c", "", "q1", "a1", "", "", "r1"}},
		"화": {header},
	})
	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()

	require.Equal(t, []string{"월", "화"}, wb.SheetNames())

	names, err := wb.Select(nil)
	require.NoError(t, err)
	require.Equal(t, []string{"월", "화"}, names)

	first, err := wb.First(nil)
	require.NoError(t, err)
	require.Equal(t, "월", first)

	_, err = wb.Select([]string{"수"})
	var dae *domain.DataAccessError
	require.True(t, errors.As(err, &dae))
	require.Equal(t, "수", dae.Sheet)

	tables, err := wb.Load(nil)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	require.Equal(t, 1, tables[0].Len())
	require.Equal(t, 0, tables[1].Len())
	require.Equal(t, "q1", tables[0].Cell(0, 4))
	require.Equal(t, "", tables[0].Cell(0, 40), "short rows read as empty cells")
}

func TestLoadCoercesNumericIDsAndSkipsBlankRows(t *testing.T) {
	path := writeFixture(t, []string{"data"}, map[string][][]any{
		"data": {
			{"Advice ID", "요약 결과"},
			{20240315001, 42},
			{"", ""},
			{20240316.0, "x"},
		},
	})
	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()

	tbl, err := wb.LoadSheet("data")
	require.NoError(t, err)
	require.Equal(t, [][]string{{"20240315001", "42"}, {"20240316", "x"}}, tbl.Rows)
	require.Equal(t, []int{2, 4}, tbl.Lines)
}

func TestLoadKeepsExponentLikeText(t *testing.T) {
	path := writeFixture(t, []string{"data"}, map[string][][]any{
		"data": {
			{"Advice ID", "질문내용", "요약 결과"},
			{int64(20240315001), "3E5", "1e2"},
			{"20240315002", "1E5", "Inf"},
		},
	})
	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()

	tbl, err := wb.LoadSheet("data")
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"20240315001", "3E5", "1e2"},
		{"20240315002", "1E5", "Inf"},
	}, tbl.Rows)
}

func TestNormalizeNumber(t *testing.T) {
	cases := map[string]string{
		"2.0240315001E10": "20240315001",
		"1e2":             "100",
		"20240315001":     "20240315001",
		"Excel":           "Excel",
	}
	for in, want := range cases {
		if got := normalizeNumber(in); got != want {
			t.Errorf("normalizeNumber(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBindByNameAndLetter(t *testing.T) {
	tbl := newTable("s", [][]string{
		{"Advice ID", "Title", "Category", "Extra", "질문내용", "답변내용", "메모", "상태", "요약 결과"},
		{" 20240315A ", "t", " 게임 ", "", "q", "a", "", "", `{"value":{"result":"x"}}`},
	})
	b, err := Bind(tbl, map[domain.Role]string{
		domain.RoleID:       "Advice ID",
		domain.RoleQuestion: "@E",
		domain.RoleAnswer:   "@f",
		domain.RoleResult:   "@I",
		domain.RoleCategory: "Category",
	}, []domain.Role{domain.RoleQuestion, domain.RoleAnswer, domain.RoleResult})
	require.NoError(t, err)

	want := domain.TicketRow{Sheet: "s", Line: 2, ID: "20240315A", Question: "q", Answer: "a", Result: `{"value":{"result":"x"}}`, Category: "게임"}
	if diff := cmp.Diff([]domain.TicketRow{want}, b.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "요약 결과", b.Columns[domain.RoleResult])
	require.Equal(t, "질문내용", b.Columns[domain.RoleQuestion])
	require.True(t, b.Has(domain.RoleCategory))
	require.False(t, b.Has(domain.RoleTitle))
}

func TestBindMissingRequiredColumnNamesIt(t *testing.T) {
	tbl := newTable("broken", [][]string{{"Advice ID", "질문"}, {"20240101", "q"}})

	_, err := Bind(tbl, map[domain.Role]string{
		domain.RoleID:     "Advice ID",
		domain.RoleResult: "요약 결과",
	}, []domain.Role{domain.RoleID, domain.RoleResult})

	var se *domain.SchemaError
	require.True(t, errors.As(err, &se), "got %v", err)
	require.Equal(t, "broken", se.Sheet)
	require.Equal(t, domain.RoleResult, se.Role)
	require.Equal(t, "요약 결과", se.Column)
	require.Contains(t, err.Error(), `"요약 결과"`)
}

func TestBindLetterOutsideHeader(t *testing.T) {
	tbl := newTable("short", [][]string{{"a", "b"}})
	_, err := Bind(tbl, map[domain.Role]string{domain.RoleResult: "@I"}, []domain.Role{domain.RoleResult})
	var se *domain.SchemaError
	require.True(t, errors.As(err, &se))
	require.Contains(t, se.Reason, "only 2 columns")
}

func TestBindOptionalColumnAbsent(t *testing.T) {
	tbl := newTable("s", [][]string{{"Advice ID", "요약 결과"}, {"20240101", "r"}})
	b, err := Bind(tbl, map[domain.Role]string{
		domain.RoleID:     "Advice ID",
		domain.RoleTitle:  "Title",
		domain.RoleResult: "요약 결과",
	}, []domain.Role{domain.RoleResult})
	require.NoError(t, err)
	require.Equal(t, []domain.Role{domain.RoleTitle}, b.Absent)
	require.Equal(t, "", b.Rows[0].Title)
}

func TestUniqueSheetNames(t *testing.T) {
	got := UniqueSheetNames([]string{
		"Report",
		"Report ",
		"report",
		"a/b:c",
		"",
		"이 시트 이름은 서른한 글자를 넘어가도록 아주 길게 지었습니다_추출",
		"이 시트 이름은 서른한 글자를 넘어가도록 아주 길게 지었습니다_추출",
	})
	want := []string{
		"Report",
		"Report (2)",
		"report (3)",
		"a_b_c",
		"Sheet",
		"이 시트 이름은 서른한 글자를 넘어가도록 아주 길게 지었",
		"이 시트 이름은 서른한 글자를 넘어가도록 아주 길 (2)",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("UniqueSheetNames (-want +got):\n%s", diff)
	}
}

func TestWriteWorkbookKeepsCollidingSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.xlsx")
	names, err := WriteWorkbook(path, []domain.Table{
		{Name: "Report", Columns: []string{"k", "n"}, Rows: [][]any{{"a", 1}}},
		{Name: "Report ", Columns: []string{"k", "ratio"}, Rows: [][]any{{"b", 12.5}, {"c", 0.0}}},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Report", "Report (2)"}, names)

	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()
	require.Equal(t, names, wb.SheetNames())

	first, err := wb.LoadSheet("Report")
	require.NoError(t, err)
	require.Equal(t, []string{"k", "n"}, first.Header)
	require.Equal(t, [][]string{{"a", "1"}}, first.Rows)

	second, err := wb.LoadSheet("Report (2)")
	require.NoError(t, err)
	require.Equal(t, [][]string{{"b", "12.5"}, {"c", "0"}}, second.Rows)
}

func TestWriteWorkbookWithoutTables(t *testing.T) {
	_, err := WriteWorkbook(filepath.Join(t.TempDir(), "x.xlsx"), nil)
	var oe *domain.OutputError
	require.True(t, errors.As(err, &oe))
}
