package aggregate

import (
	"sort"
	"unicode/utf8"
)

type TermCount struct {
	Term  string
	Count int
}

// TermHits counts, per configured term, the rows whose hit list contains it.
// Terms with no hits are kept so the output shape does not depend on data.
func TermHits(hits [][]string, terms []string) []TermCount {
	counts := make(map[string]int, len(terms))
	for _, row := range hits {
		seen := map[string]bool{}
		for _, t := range row {
			if !seen[t] {
				counts[t]++
				seen[t] = true
			}
		}
	}
	out := make([]TermCount, 0, len(terms))
	for _, t := range terms {
		out = append(out, TermCount{Term: t, Count: counts[t]})
	}
	return out
}

type TextStats struct {
	Count int
	Mean  float64
	Max   int
	Min   int
}

// LengthStats measures text length in characters, not bytes.
func LengthStats(values []string) TextStats {
	var st TextStats
	if len(values) == 0 {
		return st
	}
	sum := 0
	for i, v := range values {
		n := utf8.RuneCountInString(v)
		sum += n
		if i == 0 || n > st.Max {
			st.Max = n
		}
		if i == 0 || n < st.Min {
			st.Min = n
		}
	}
	st.Count = len(values)
	st.Mean = Round(float64(sum)/float64(len(values)), 1)
	return st
}

type ValueCount struct {
	Value string
	Count int
}

// TopCounts returns value frequencies, most frequent first with ties in
// first-seen order, limited to n entries when n > 0. Empty values are skipped.
func TopCounts(values []string, n int) []ValueCount {
	counts := map[string]int{}
	var order []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}
	out := make([]ValueCount, 0, len(order))
	for _, v := range order {
		out = append(out, ValueCount{Value: v, Count: counts[v]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
