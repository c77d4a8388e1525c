// Package sheet loads ticket exports from xlsx workbooks and writes result
// tables back out as multi-sheet workbooks.
package sheet

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"csreport/internal/domain"

	"github.com/xuri/excelize/v2"
)

type Workbook struct {
	path   string
	file   *excelize.File
	sheets []string
}

// Open reads the workbook at path. Callers must Close it.
func Open(path string) (*Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &domain.DataAccessError{Path: path, Err: err}
	}
	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &domain.DataAccessError{Path: path, Err: err}
	}
	return &Workbook{path: path, file: f, sheets: f.GetSheetList()}, nil
}

func (w *Workbook) Path() string { return w.path }

func (w *Workbook) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	return w.file.Close()
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return append([]string(nil), w.sheets...)
}

// Select resolves a sheet selector. An empty selector means every sheet.
func (w *Workbook) Select(selector []string) ([]string, error) {
	if len(selector) == 0 {
		if len(w.sheets) == 0 {
			return nil, &domain.DataAccessError{Path: w.path, Err: errors.New("workbook has no sheets")}
		}
		return w.SheetNames(), nil
	}
	out := make([]string, 0, len(selector))
	for _, name := range selector {
		if !w.has(name) {
			return nil, &domain.DataAccessError{Path: w.path, Sheet: name, Err: errors.New("no such sheet")}
		}
		out = append(out, name)
	}
	return out, nil
}

// First returns the sheet named in selector, or the first sheet when the
// selector is empty.
func (w *Workbook) First(selector []string) (string, error) {
	names, err := w.Select(selector)
	if err != nil {
		return "", err
	}
	return names[0], nil
}

// Load reads every selected sheet, stopping at the first failure.
func (w *Workbook) Load(selector []string) ([]*Table, error) {
	names, err := w.Select(selector)
	if err != nil {
		return nil, err
	}
	tables := make([]*Table, 0, len(names))
	for _, name := range names {
		t, err := w.LoadSheet(name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func (w *Workbook) LoadSheet(name string) (*Table, error) {
	if !w.has(name) {
		return nil, &domain.DataAccessError{Path: w.path, Sheet: name, Err: errors.New("no such sheet")}
	}
	rows, err := w.file.GetRows(name)
	if err != nil {
		return nil, &domain.DataAccessError{Path: w.path, Sheet: name, Err: err}
	}
	for r := 1; r < len(rows); r++ {
		for c, v := range rows[r] {
			if !exponentForm(v) {
				continue
			}
			numeric, err := w.numericCell(name, r, c)
			if err != nil {
				return nil, &domain.DataAccessError{Path: w.path, Sheet: name, Err: err}
			}
			if numeric {
				rows[r][c] = normalizeNumber(v)
			}
		}
	}
	return newTable(name, rows), nil
}

// numericCell reports whether the cell at zero-based row and col is stored
// as a number. Text cells keep their literal value.
func (w *Workbook) numericCell(sheet string, row, col int) (bool, error) {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return false, err
	}
	typ, err := w.file.GetCellType(sheet, cell)
	if err != nil {
		return false, err
	}
	// numbers usually carry no type attribute at all
	return typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset, nil
}

func (w *Workbook) has(name string) bool {
	for _, s := range w.sheets {
		if s == name {
			return true
		}
	}
	return false
}

type Table struct {
	Sheet  string
	Header []string
	Rows   [][]string
	Lines  []int // worksheet line of each entry in Rows
	index  map[string]int
}

func newTable(sheet string, raw [][]string) *Table {
	t := &Table{Sheet: sheet, index: map[string]int{}}
	if len(raw) == 0 {
		return t
	}
	for i, h := range raw[0] {
		h = strings.TrimSpace(h)
		t.Header = append(t.Header, h)
		if _, dup := t.index[h]; !dup && h != "" {
			t.index[h] = i
		}
	}
	for i, r := range raw[1:] {
		if blank(r) {
			continue
		}
		t.Rows = append(t.Rows, append([]string(nil), r...))
		t.Lines = append(t.Lines, i+2)
	}
	return t
}

// Column returns the index of the header called name.
func (t *Table) Column(name string) (int, error) {
	idx, ok := t.index[strings.TrimSpace(name)]
	if !ok {
		return -1, &domain.SchemaError{Sheet: t.Sheet, Column: name}
	}
	return idx, nil
}

// Resolve maps a column reference to its header name and index. "@I" is a
// column letter; anything else is a header name.
func (t *Table) Resolve(ref string) (string, int, error) {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, "@") {
		idx, err := t.Column(ref)
		if err != nil {
			return "", -1, err
		}
		return t.Header[idx], idx, nil
	}
	letter := strings.ToUpper(strings.TrimPrefix(ref, "@"))
	n, err := excelize.ColumnNameToNumber(letter)
	if err != nil {
		return "", -1, &domain.SchemaError{Sheet: t.Sheet, Column: ref, Reason: "invalid column letter"}
	}
	idx := n - 1
	if idx >= len(t.Header) {
		return "", -1, &domain.SchemaError{Sheet: t.Sheet, Column: ref, Reason: fmt.Sprintf("header has only %d columns", len(t.Header))}
	}
	if t.Header[idx] == "" {
		return "", -1, &domain.SchemaError{Sheet: t.Sheet, Column: ref, Reason: "column has no header"}
	}
	return t.Header[idx], idx, nil
}

// Cell returns "" for cells past the end of a short row.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

func (t *Table) Len() int { return len(t.Rows) }

func blank(r []string) bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// normalizeNumber rewrites raw numeric cells stored in exponent form
// ("2.0240315001E10") as plain digits so identifiers keep their date prefix.
func normalizeNumber(v string) string {
	if !exponentForm(v) {
		return v
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func exponentForm(v string) bool {
	if !strings.ContainsAny(v, "eE") {
		return false
	}
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}
