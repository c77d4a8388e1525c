// Package pipeline runs the three jobs: load a workbook, classify the
// summary results, aggregate, and publish the result artifacts.
package pipeline

import (
	"context"
	"fmt"

	"csreport/internal/aggregate"
	"csreport/internal/classify"
	"csreport/internal/config"
	"csreport/internal/domain"
	"csreport/internal/report"
	"csreport/internal/sheet"

	"go.uber.org/zap"
)

// Publisher is satisfied by *report.Publisher.
type Publisher interface {
	Publish(ctx context.Context, b report.Bundle) (report.Published, error)
}

type Runner struct {
	cfg config.Config
	pub Publisher
	log *zap.Logger
}

func NewRunner(cfg config.Config, pub Publisher, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{cfg: cfg, pub: pub, log: log}
}

// Stats are the row counts every job reports.
type Stats struct {
	Rows    int
	Matched int
	// EnvelopeFallbacks counts results that looked like a JSON envelope but
	// could not be unwrapped and were compared as plain text.
	EnvelopeFallbacks int
	Undated           int
}

type classified struct {
	row    domain.TicketRow
	result classify.Result
}

func refs(c config.Columns) map[domain.Role]string {
	out := make(map[domain.Role]string, len(domain.AllRoles))
	for _, r := range domain.AllRoles {
		if v := c.Ref(r); v != "" {
			out[r] = v
		}
	}
	return out
}

func (r *Runner) classifier(job string, m config.MatchConfig) (*classify.Classifier, error) {
	c, err := classify.New(m.Profile())
	if err != nil {
		return nil, fmt.Errorf("%s match profile: %w", job, err)
	}
	return c, nil
}

// loadOne binds the single sheet a daily or extract run reads.
func (r *Runner) loadOne(job config.JobConfig, required []domain.Role) (*sheet.Bound, error) {
	wb, err := sheet.Open(job.Input)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	name, err := wb.First(job.Sheets)
	if err != nil {
		return nil, err
	}
	t, err := wb.LoadSheet(name)
	if err != nil {
		return nil, err
	}
	b, err := sheet.Bind(t, refs(job.Columns), required)
	if err != nil {
		return nil, err
	}
	r.logBound(b)
	return b, nil
}

func (r *Runner) logBound(b *sheet.Bound) {
	for role, name := range b.Columns {
		r.log.Debug("column bound", zap.String("sheet", b.Sheet), zap.String("role", string(role)), zap.String("column", name))
	}
	for _, role := range b.Absent {
		r.log.Info("optional column not found", zap.String("sheet", b.Sheet), zap.String("role", string(role)))
	}
}

func (r *Runner) classifyRows(c *classify.Classifier, rows []domain.TicketRow, stats *Stats) []classified {
	out := make([]classified, 0, len(rows))
	for _, row := range rows {
		res := c.Classify(row.Result)
		if res.ParseErr != nil {
			stats.EnvelopeFallbacks++
			r.log.Debug("result envelope fallback",
				zap.String("sheet", row.Sheet),
				zap.Int("line", row.Line),
				zap.String("reason", res.ParseErr.Reason),
			)
		}
		stats.Rows++
		if res.Matched {
			stats.Matched++
		}
		out = append(out, classified{row: row, result: res})
	}
	return out
}

func records(items []classified) []aggregate.Record {
	out := make([]aggregate.Record, len(items))
	for i, it := range items {
		out[i] = aggregate.Record{ID: it.row.ID, Matched: it.result.Matched, Category: it.result.Category}
	}
	return out
}

func matchedOnly(items []classified) []classified {
	var out []classified
	for _, it := range items {
		if it.result.Matched {
			out = append(out, it)
		}
	}
	return out
}

func rowsOf(items []classified) []domain.TicketRow {
	out := make([]domain.TicketRow, len(items))
	for i, it := range items {
		out[i] = it.row
	}
	return out
}

func termHits(items []classified, terms []string) []aggregate.TermCount {
	hits := make([][]string, len(items))
	for i, it := range items {
		hits[i] = it.result.Terms
	}
	return aggregate.TermHits(hits, terms)
}
