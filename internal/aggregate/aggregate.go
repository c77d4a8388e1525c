// Package aggregate turns classified ticket rows into date and category
// count tables.
package aggregate

import (
	"math"
	"sort"
	"strings"
	"time"
)

const dateKeyLayout = "20060102"

type Record struct {
	ID       string
	Matched  bool
	Category string
}

type Day struct {
	Date       string
	Total      int
	Matched    int
	ByCategory []int // aligned with Summary.Categories
	Ratio      float64
}

type CategoryCount struct {
	Label string
	Count int
}

type Summary struct {
	Categories     []string
	Days           []Day
	CategoryTotals []CategoryCount
	TotalRows      int
	MatchedRows    int
	// Undated rows have an identifier whose first 8 characters are not a
	// YYYYMMDD date. They count toward the totals but not toward Days.
	Undated int
}

// DateKey returns the first 8 characters of id when they form a valid
// YYYYMMDD calendar date.
func DateKey(id string) (string, bool) {
	id = strings.TrimSpace(id)
	if len(id) < len(dateKeyLayout) {
		return "", false
	}
	key := id[:len(dateKeyLayout)]
	if _, err := time.Parse(dateKeyLayout, key); err != nil {
		return "", false
	}
	return key, true
}

// Ratio returns part/total as a percentage rounded to 2 decimals, or 0 when
// total is not positive.
func Ratio(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return Round(float64(part)/float64(total)*100, 2)
}

func Round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}

func Build(records []Record, categories []string) Summary {
	s := Summary{Categories: append([]string(nil), categories...)}
	catIndex := make(map[string]int, len(categories))
	for i, c := range s.Categories {
		catIndex[c] = i
	}

	totals := map[string]int{}
	matched := map[string]int{}
	byCat := map[string]map[string]int{}
	grand := map[string]int{}

	for _, r := range records {
		s.TotalRows++
		if r.Matched {
			s.MatchedRows++
		}
		if r.Category != "" {
			if _, ok := catIndex[r.Category]; !ok {
				catIndex[r.Category] = len(s.Categories)
				s.Categories = append(s.Categories, r.Category)
			}
			grand[r.Category]++
		}

		key, ok := DateKey(r.ID)
		if !ok {
			s.Undated++
			continue
		}
		totals[key]++
		if r.Matched {
			matched[key]++
		}
		if r.Category != "" {
			if byCat[key] == nil {
				byCat[key] = map[string]int{}
			}
			byCat[key][r.Category]++
		}
	}

	// outer join of the two count sources, missing side zero-filled
	dates := make(map[string]struct{}, len(totals))
	for d := range totals {
		dates[d] = struct{}{}
	}
	for d := range byCat {
		dates[d] = struct{}{}
	}
	keys := make([]string, 0, len(dates))
	for d := range dates {
		keys = append(keys, d)
	}
	// keys are validated fixed-width YYYYMMDD, so byte order is date order
	sort.Strings(keys)

	for _, d := range keys {
		day := Day{
			Date:       d,
			Total:      totals[d],
			Matched:    matched[d],
			ByCategory: make([]int, len(s.Categories)),
		}
		for c, n := range byCat[d] {
			day.ByCategory[catIndex[c]] = n
		}
		day.Ratio = Ratio(day.Matched, day.Total)
		s.Days = append(s.Days, day)
	}

	for _, c := range s.Categories {
		s.CategoryTotals = append(s.CategoryTotals, CategoryCount{Label: c, Count: grand[c]})
	}
	sort.SliceStable(s.CategoryTotals, func(i, j int) bool {
		return s.CategoryTotals[i].Count > s.CategoryTotals[j].Count
	})
	return s
}

// Ratio of matched rows over every row, dated or not.
func (s Summary) Ratio() float64 {
	return Ratio(s.MatchedRows, s.TotalRows)
}
