package pipeline

import (
	"context"
	"fmt"

	"csreport/internal/aggregate"
	"csreport/internal/config"
	"csreport/internal/domain"
	"csreport/internal/report"

	"go.uber.org/zap"
)

type ExtractReport struct {
	Input    string
	Sheet    string
	Patterns []aggregate.TermCount
	Question aggregate.TextStats
	Answer   aggregate.TextStats
	// Dates counts extracted rows per date; empty without an id column.
	Dates      []aggregate.Day
	Categories []aggregate.ValueCount
	Samples    []domain.TicketRow
	HasID      bool
	Stats      Stats
	Published  report.Published
}

// Extract selects the rows whose summary result starts with an
// auto-response prefix and writes their question and answer. Nothing is
// written when no row matched.
func (r *Runner) Extract(ctx context.Context) (*ExtractReport, error) {
	job := r.cfg.Extract
	c, err := r.classifier("extract", job.Match)
	if err != nil {
		return nil, err
	}
	b, err := r.loadOne(job.JobConfig, config.ExtractRoles)
	if err != nil {
		return nil, err
	}

	rep := &ExtractReport{Input: job.Input, Sheet: b.Sheet, HasID: b.Has(domain.RoleID)}
	items := r.classifyRows(c, b.Rows, &rep.Stats)
	hits := matchedOnly(items)
	rep.Patterns = termHits(hits, c.Terms())
	r.log.Info("rows extracted", zap.String("sheet", b.Sheet), zap.Int("rows", rep.Stats.Rows), zap.Int("matched", len(hits)))
	if len(hits) == 0 {
		return rep, nil
	}

	rows := rowsOf(hits)
	questions := make([]string, len(rows))
	answers := make([]string, len(rows))
	for i, row := range rows {
		questions[i] = row.Question
		answers[i] = row.Answer
	}
	rep.Question = aggregate.LengthStats(questions)
	rep.Answer = aggregate.LengthStats(answers)
	if len(rows) > job.SampleSize {
		rep.Samples = rows[:job.SampleSize]
	} else {
		rep.Samples = rows
	}

	if rep.HasID {
		s := aggregate.Build(records(hits), nil)
		rep.Dates = s.Days
		rep.Stats.Undated = s.Undated
	}
	if b.Has(domain.RoleCategory) && job.TopCategories > 0 {
		cats := make([]string, len(rows))
		for i, row := range rows {
			cats[i] = row.Category
		}
		rep.Categories = aggregate.TopCounts(cats, job.TopCategories)
	}

	workbooks := []report.Workbook{{Path: r.cfg.OutputPath(job.Output), Tables: []domain.Table{report.QATable(rows, "")}}}
	if rep.HasID && job.OutputWithID != "" {
		workbooks = append(workbooks, report.Workbook{
			Path:   r.cfg.OutputPath(job.OutputWithID),
			Tables: []domain.Table{report.QATable(rows, b.Columns[domain.RoleID])},
		})
	}
	rep.Published, err = r.pub.Publish(ctx, report.Bundle{
		Title:     "CS auto-response extract",
		Comment:   fmt.Sprintf("%d of %d tickets answered with an auto-response", len(hits), rep.Stats.Rows),
		Workbooks: workbooks,
	})
	if err != nil {
		return rep, err
	}
	return rep, nil
}
