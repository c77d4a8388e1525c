package pipeline

import (
	"context"
	"fmt"

	"csreport/internal/aggregate"
	"csreport/internal/chart"
	"csreport/internal/config"
	"csreport/internal/domain"
	"csreport/internal/report"

	"go.uber.org/zap"
)

type DailyReport struct {
	Input    string
	Sheet    string
	Summary  aggregate.Summary
	Keywords []aggregate.TermCount
	// Samples are the raw summary results of the first matched rows.
	Samples   []string
	Stats     Stats
	Published report.Published
}

// Daily computes the per-date auto-response ratio of one sheet in
// substring mode and writes the ratio table and, when configured, the
// four-panel chart.
func (r *Runner) Daily(ctx context.Context) (*DailyReport, error) {
	job := r.cfg.Daily
	c, err := r.classifier("daily", job.Match)
	if err != nil {
		return nil, err
	}
	b, err := r.loadOne(job.JobConfig, config.DailyRoles)
	if err != nil {
		return nil, err
	}

	rep := &DailyReport{Input: job.Input, Sheet: b.Sheet}
	items := r.classifyRows(c, b.Rows, &rep.Stats)
	rep.Summary = aggregate.Build(records(items), nil)
	rep.Stats.Undated = rep.Summary.Undated

	hits := matchedOnly(items)
	rep.Keywords = termHits(hits, c.Terms())
	for _, it := range hits {
		if len(rep.Samples) >= job.SampleSize {
			break
		}
		rep.Samples = append(rep.Samples, it.row.Result)
	}
	r.log.Info("daily ratio computed",
		zap.String("sheet", b.Sheet),
		zap.Int("rows", rep.Stats.Rows),
		zap.Int("matched", rep.Stats.Matched),
		zap.Int("dates", len(rep.Summary.Days)),
	)

	bundle := report.Bundle{
		Title:     "CS auto-response daily ratio",
		Comment:   fmt.Sprintf("auto-response ratio %.2f%% (%d of %d)", rep.Summary.Ratio(), rep.Stats.Matched, rep.Stats.Rows),
		Workbooks: []report.Workbook{{Path: r.cfg.OutputPath(job.Output), Tables: []domain.Table{report.DailyRatioTable(rep.Summary)}}},
	}
	if job.Chart != "" {
		if len(rep.Summary.Days) == 0 {
			r.log.Warn("chart skipped: no dated rows", zap.String("sheet", b.Sheet))
		} else {
			png, err := chart.Render(rep.Summary.Days, chartTitles(job.ChartTitles))
			if err != nil {
				return rep, &domain.OutputError{Path: r.cfg.OutputPath(job.Chart), Err: err}
			}
			bundle.Images = append(bundle.Images, report.Image{Path: r.cfg.OutputPath(job.Chart), Data: png})
		}
	}

	rep.Published, err = r.pub.Publish(ctx, bundle)
	if err != nil {
		return rep, err
	}
	return rep, nil
}

func chartTitles(t config.ChartTitles) chart.Titles {
	return chart.Titles{
		Counts:        t.Counts,
		Ratio:         t.Ratio,
		Matched:       t.Matched,
		Share:         t.Share,
		TotalSeries:   t.TotalSeries,
		MatchedSeries: t.MatchedSeries,
		OtherSlice:    t.OtherSlice,
	}
}
