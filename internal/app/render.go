package app

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"csreport/internal/aggregate"
	"csreport/internal/pipeline"
	"csreport/internal/report"
)

const sampleWidth = 100

func renderTally(w io.Writer, rep *pipeline.TallyReport) {
	fmt.Fprintf(w, "input: %s\n", rep.Input)
	if len(rep.Sheets) == 0 {
		fmt.Fprintln(w, "no sheet processed")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "sheet\trows\tmatched")
	for _, s := range rep.Sheets {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", s.Sheet, s.Total, s.Matched)
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "by category:")
	for _, c := range rep.Summary.CategoryTotals {
		fmt.Fprintf(w, "  %s: %d\n", c.Label, c.Count)
	}
	renderStats(w, rep.Stats, len(rep.Summary.Days))
	renderPublished(w, rep.Published)
}

func renderDaily(w io.Writer, rep *pipeline.DailyReport) {
	fmt.Fprintf(w, "input: %s (sheet %s)\n", rep.Input, rep.Sheet)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "date\ttotal\tmatched\tratio")
	for _, d := range rep.Summary.Days {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f%%\n", d.Date, d.Total, d.Matched, d.Ratio)
	}
	tw.Flush()
	fmt.Fprintf(w, "\noverall: %d of %d (%.2f%%)\n", rep.Summary.MatchedRows, rep.Summary.TotalRows, rep.Summary.Ratio())

	renderTerms(w, "keyword hits:", rep.Keywords)
	if len(rep.Samples) > 0 {
		fmt.Fprintln(w, "samples:")
		for i, s := range rep.Samples {
			fmt.Fprintf(w, "  %d. %s\n", i+1, truncate(s, sampleWidth))
		}
	}
	renderStats(w, rep.Stats, len(rep.Summary.Days))
	renderPublished(w, rep.Published)
}

func renderExtract(w io.Writer, rep *pipeline.ExtractReport) {
	fmt.Fprintf(w, "input: %s (sheet %s)\n", rep.Input, rep.Sheet)
	fmt.Fprintf(w, "extracted: %d of %d\n", rep.Stats.Matched, rep.Stats.Rows)
	if rep.Stats.Matched == 0 {
		fmt.Fprintln(w, "no auto-responded rows, nothing written")
		return
	}
	renderTerms(w, "prefix hits:", rep.Patterns)

	fmt.Fprintln(w, "text length (characters):")
	for _, s := range []struct {
		name string
		st   aggregate.TextStats
	}{{"question", rep.Question}, {"answer", rep.Answer}} {
		fmt.Fprintf(w, "  %s: mean %.1f, max %d, min %d\n", s.name, s.st.Mean, s.st.Max, s.st.Min)
	}
	if len(rep.Dates) > 0 {
		fmt.Fprintln(w, "by date:")
		for _, d := range rep.Dates {
			fmt.Fprintf(w, "  %s: %d\n", d.Date, d.Total)
		}
	}
	if len(rep.Categories) > 0 {
		fmt.Fprintln(w, "top categories:")
		for _, c := range rep.Categories {
			fmt.Fprintf(w, "  %s: %d\n", c.Value, c.Count)
		}
	}
	if len(rep.Samples) > 0 {
		fmt.Fprintln(w, "samples:")
		for i, r := range rep.Samples {
			if rep.HasID {
				fmt.Fprintf(w, "  %d. [%s]\n", i+1, r.ID)
			} else {
				fmt.Fprintf(w, "  %d.\n", i+1)
			}
			fmt.Fprintf(w, "     Q: %s\n", truncate(r.Question, sampleWidth))
			fmt.Fprintf(w, "     A: %s\n", truncate(r.Answer, sampleWidth))
		}
	}
	if rep.Stats.EnvelopeFallbacks > 0 {
		fmt.Fprintf(w, "envelope fallbacks: %d\n", rep.Stats.EnvelopeFallbacks)
	}
	renderPublished(w, rep.Published)
}

func renderTerms(w io.Writer, title string, terms []aggregate.TermCount) {
	if len(terms) == 0 {
		return
	}
	fmt.Fprintln(w, title)
	for _, t := range terms {
		fmt.Fprintf(w, "  %q: %d\n", t.Term, t.Count)
	}
}

func renderStats(w io.Writer, st pipeline.Stats, dates int) {
	fmt.Fprintf(w, "rows: %d, matched: %d, dates: %d\n", st.Rows, st.Matched, dates)
	if st.Undated > 0 {
		fmt.Fprintf(w, "undated rows (not in date tables): %d\n", st.Undated)
	}
	if st.EnvelopeFallbacks > 0 {
		fmt.Fprintf(w, "envelope fallbacks: %d\n", st.EnvelopeFallbacks)
	}
}

func renderPublished(w io.Writer, p report.Published) {
	for _, f := range p.Files {
		fmt.Fprintf(w, "wrote %s\n", f)
	}
	if p.SQLitePath != "" {
		fmt.Fprintf(w, "wrote %s\n", p.SQLitePath)
	}
	if p.Delivered {
		fmt.Fprintln(w, "delivered to slack")
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
