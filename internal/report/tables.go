package report

import (
	"csreport/internal/aggregate"
	"csreport/internal/domain"
)

// Sheet and column names of the result workbooks.
const (
	SheetSummaryName   = "시트별 집계"
	DatePivotName      = "일자별 집계"
	CategoryTotalsName = "전체 요약"
	ExtractSuffix      = "_추출"
	DailyRatioName     = "일자별 분석"
	ExtractedName      = "자동답변"

	colSheet        = "시트명"
	colSheetTotal   = "전체 데이터"
	colSheetMatched = "추출된 데이터"
	colDate         = "날짜"
	colDateTotal    = "전체 건수"
	colCategory     = "자동답변 항목"
	colCategoryN    = "총 건수"
	colDailyTotal   = "전체_건수"
	colDailyMatched = "자동답변_건수"
	colDailyRatio   = "자동답변_비율"
	colQuestion     = "질문내용"
	colAnswer       = "답변내용"
)

type SheetCount struct {
	Sheet   string
	Total   int
	Matched int
}

func SheetSummaryTable(counts []SheetCount) domain.Table {
	t := domain.Table{Name: SheetSummaryName, Columns: []string{colSheet, colSheetTotal, colSheetMatched}}
	for _, c := range counts {
		t.Rows = append(t.Rows, []any{c.Sheet, c.Total, c.Matched})
	}
	return t
}

// DatePivotTable has one row per date: the total row count followed by one
// column per canonical category.
func DatePivotTable(s aggregate.Summary) domain.Table {
	t := domain.Table{Name: DatePivotName, Columns: append([]string{colDate, colDateTotal}, s.Categories...)}
	for _, d := range s.Days {
		row := []any{d.Date, d.Total}
		for _, n := range d.ByCategory {
			row = append(row, n)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func CategoryTotalsTable(s aggregate.Summary) domain.Table {
	t := domain.Table{Name: CategoryTotalsName, Columns: []string{colCategory, colCategoryN}}
	for _, c := range s.CategoryTotals {
		t.Rows = append(t.Rows, []any{c.Label, c.Count})
	}
	return t
}

// ExtractSheetTable lists the matched rows of one source sheet under their
// source header names. Roles missing from columns are left out.
func ExtractSheetTable(sheet string, rows []domain.TicketRow, columns map[domain.Role]string) domain.Table {
	roles := []domain.Role{domain.RoleID, domain.RoleTitle, domain.RoleQuestion, domain.RoleResult}
	t := domain.Table{Name: sheet + ExtractSuffix}
	var kept []domain.Role
	for _, r := range roles {
		if name, ok := columns[r]; ok {
			t.Columns = append(t.Columns, name)
			kept = append(kept, r)
		}
	}
	for _, row := range rows {
		out := make([]any, 0, len(kept))
		for _, r := range kept {
			out = append(out, field(row, r))
		}
		t.Rows = append(t.Rows, out)
	}
	return t
}

func DailyRatioTable(s aggregate.Summary) domain.Table {
	t := domain.Table{Name: DailyRatioName, Columns: []string{colDate, colDailyTotal, colDailyMatched, colDailyRatio}}
	for _, d := range s.Days {
		t.Rows = append(t.Rows, []any{d.Date, d.Total, d.Matched, d.Ratio})
	}
	return t
}

// QATable holds question and answer of each extracted row, optionally
// preceded by the identifier under idColumn.
func QATable(rows []domain.TicketRow, idColumn string) domain.Table {
	t := domain.Table{Name: ExtractedName, Columns: []string{colQuestion, colAnswer}}
	if idColumn != "" {
		t.Columns = append([]string{idColumn}, t.Columns...)
	}
	for _, r := range rows {
		if idColumn != "" {
			t.Rows = append(t.Rows, []any{r.ID, r.Question, r.Answer})
			continue
		}
		t.Rows = append(t.Rows, []any{r.Question, r.Answer})
	}
	return t
}

func field(row domain.TicketRow, r domain.Role) string {
	switch r {
	case domain.RoleID:
		return row.ID
	case domain.RoleTitle:
		return row.Title
	case domain.RoleQuestion:
		return row.Question
	case domain.RoleAnswer:
		return row.Answer
	case domain.RoleResult:
		return row.Result
	case domain.RoleCategory:
		return row.Category
	}
	return ""
}
