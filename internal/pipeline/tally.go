package pipeline

import (
	"context"
	"errors"
	"fmt"

	"csreport/internal/aggregate"
	"csreport/internal/config"
	"csreport/internal/domain"
	"csreport/internal/report"
	"csreport/internal/sheet"

	"go.uber.org/zap"
)

// ErrAllSheetsFailed is returned by Tally when no sheet could be processed.
var ErrAllSheetsFailed = errors.New("no sheet could be processed")

type SheetFailure struct {
	Sheet string
	Err   error
}

type TallyReport struct {
	Input     string
	Sheets    []report.SheetCount
	Failures  []SheetFailure
	Summary   aggregate.Summary
	Stats     Stats
	Published report.Published
}

// Tally classifies every selected sheet in exact mode and writes the sheet
// summary, the date pivot, the category totals and one extract sheet per
// source sheet with matches. A sheet that cannot be read or bound is
// recorded as a failure and skipped.
func (r *Runner) Tally(ctx context.Context) (*TallyReport, error) {
	job := r.cfg.Tally
	c, err := r.classifier("tally", job.Match)
	if err != nil {
		return nil, err
	}

	wb, err := sheet.Open(job.Input)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	names := job.Sheets
	if len(names) == 0 {
		names = wb.SheetNames()
	}

	rep := &TallyReport{Input: job.Input}
	var all []classified
	var extracts []domain.Table
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := r.bindSheet(wb, name)
		if err != nil {
			rep.Failures = append(rep.Failures, SheetFailure{Sheet: name, Err: err})
			r.log.Warn("sheet skipped", zap.String("sheet", name), zap.Error(err))
			continue
		}
		var st Stats
		items := r.classifyRows(c, b.Rows, &st)
		all = append(all, items...)
		rep.Sheets = append(rep.Sheets, report.SheetCount{Sheet: name, Total: st.Rows, Matched: st.Matched})
		if hits := matchedOnly(items); len(hits) > 0 {
			extracts = append(extracts, report.ExtractSheetTable(name, rowsOf(hits), b.Columns))
		}
		r.log.Info("sheet processed", zap.String("sheet", name), zap.Int("rows", st.Rows), zap.Int("matched", st.Matched))
	}
	if len(rep.Sheets) == 0 {
		return rep, fmt.Errorf("%s: %w", job.Input, ErrAllSheetsFailed)
	}

	for _, it := range all {
		rep.Stats.Rows++
		if it.result.Matched {
			rep.Stats.Matched++
		}
		if it.result.ParseErr != nil {
			rep.Stats.EnvelopeFallbacks++
		}
	}
	rep.Summary = aggregate.Build(records(all), c.Categories())
	rep.Stats.Undated = rep.Summary.Undated

	tables := []domain.Table{
		report.SheetSummaryTable(rep.Sheets),
		report.DatePivotTable(rep.Summary),
		report.CategoryTotalsTable(rep.Summary),
	}
	tables = append(tables, extracts...)

	rep.Published, err = r.pub.Publish(ctx, report.Bundle{
		Title:     "CS auto-response tally",
		Comment:   fmt.Sprintf("%d of %d tickets matched an auto-response template", rep.Stats.Matched, rep.Stats.Rows),
		Workbooks: []report.Workbook{{Path: r.cfg.OutputPath(job.Output), Tables: tables}},
	})
	if err != nil {
		return rep, err
	}
	return rep, nil
}

func (r *Runner) bindSheet(wb *sheet.Workbook, name string) (*sheet.Bound, error) {
	t, err := wb.LoadSheet(name)
	if err != nil {
		return nil, err
	}
	b, err := sheet.Bind(t, refs(r.cfg.Tally.Columns), config.TallyRoles)
	if err != nil {
		return nil, err
	}
	r.logBound(b)
	return b, nil
}
