package sheet

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"csreport/internal/artifact"
	"csreport/internal/domain"

	"github.com/xuri/excelize/v2"
)

const maxSheetNameLen = 31

// WriteWorkbook writes tables as sheets of a new workbook at path, in order,
// and returns the sheet names actually used. Nothing is written unless every
// sheet was built.
func WriteWorkbook(path string, tables []domain.Table) ([]string, error) {
	var b artifact.Batch
	names, err := StageWorkbook(&b, path, tables)
	if err != nil {
		return nil, err
	}
	if err := b.Commit(); err != nil {
		return nil, err
	}
	return names, nil
}

// StageWorkbook builds the workbook into b; it reaches path on b.Commit.
func StageWorkbook(b *artifact.Batch, path string, tables []domain.Table) ([]string, error) {
	if len(tables) == 0 {
		return nil, &domain.OutputError{Path: path, Err: errors.New("no tables to write")}
	}
	names := UniqueSheetNames(tableNames(tables))

	f := excelize.NewFile()
	defer f.Close()
	first := f.GetSheetName(0)

	for i, t := range tables {
		name := names[i]
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return nil, &domain.OutputError{Path: path, Err: fmt.Errorf("sheet %q: %w", name, err)}
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, &domain.OutputError{Path: path, Err: fmt.Errorf("sheet %q: %w", name, err)}
		}
		if err := writeTable(f, name, t); err != nil {
			return nil, &domain.OutputError{Path: path, Err: fmt.Errorf("sheet %q: %w", name, err)}
		}
	}
	f.SetActiveSheet(0)

	if err := b.Stage(path, func(w io.Writer) error {
		return f.Write(w)
	}); err != nil {
		return nil, err
	}
	return names, nil
}

func writeTable(f *excelize.File, sheet string, t domain.Table) error {
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for r, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := append([]any(nil), row...)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func tableNames(tables []domain.Table) []string {
	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = t.Name
	}
	return out
}

// UniqueSheetNames makes every name a valid worksheet name and resolves
// collisions, which Excel checks case-insensitively, by suffixing " (2)",
// " (3)" and so on in input order.
func UniqueSheetNames(names []string) []string {
	used := map[string]bool{}
	out := make([]string, len(names))
	for i, n := range names {
		base := SanitizeSheetName(n)
		candidate := base
		for k := 2; used[strings.ToLower(candidate)]; k++ {
			suffix := fmt.Sprintf(" (%d)", k)
			candidate = truncateRunes(base, maxSheetNameLen-len(suffix)) + suffix
		}
		used[strings.ToLower(candidate)] = true
		out[i] = candidate
	}
	return out
}

func SanitizeSheetName(s string) string {
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	s = strings.Trim(strings.TrimSpace(replacer.Replace(s)), "'")
	s = strings.Trim(strings.TrimSpace(truncateRunes(s, maxSheetNameLen)), "'")
	if s == "" {
		return "Sheet"
	}
	return s
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
