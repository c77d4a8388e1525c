package aggregate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const spam = "auto-response: spam/ad content"

func TestBuildDatePivotScenario(t *testing.T) {
	records := []Record{
		{ID: "20240315ABC", Matched: true, Category: spam},
		{ID: "20240316XYZ"},
		{ID: "20240315ABC", Matched: true, Category: spam},
	}
	s := Build(records, []string{"auto-response: profanity", spam})

	want := []Day{
		{Date: "20240315", Total: 2, Matched: 2, ByCategory: []int{0, 2}, Ratio: 100},
		{Date: "20240316", Total: 1, Matched: 0, ByCategory: []int{0, 0}, Ratio: 0},
	}
	if diff := cmp.Diff(want, s.Days); diff != "" {
		t.Fatalf("Days mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, 3, s.TotalRows)
	require.Equal(t, 2, s.MatchedRows)
	require.Equal(t, 0, s.Undated)
	require.Equal(t, []CategoryCount{{Label: spam, Count: 2}, {Label: "auto-response: profanity", Count: 0}}, s.CategoryTotals)
}

func TestCategorySumNeverExceedsDayTotal(t *testing.T) {
	cats := []string{"a", "b", "c"}
	var records []Record
	for i := 0; i < 60; i++ {
		r := Record{ID: []string{"20240101-1", "20240102-2", "20240103-3"}[i%3]}
		if i%4 != 0 {
			r.Matched = true
			r.Category = cats[i%len(cats)]
		}
		records = append(records, r)
	}
	s := Build(records, cats)
	require.Len(t, s.Days, 3)
	for _, d := range s.Days {
		sum := 0
		for _, n := range d.ByCategory {
			sum += n
		}
		require.LessOrEqualf(t, sum, d.Total, "date %s", d.Date)
		require.Equal(t, d.Matched, sum, "every exact match carries one category")
	}
}

func TestCategorySumEqualsTotalWhenEveryRowMatches(t *testing.T) {
	s := Build([]Record{
		{ID: "20240101a", Matched: true, Category: "a"},
		{ID: "20240101b", Matched: true, Category: "b"},
	}, []string{"a", "b"})
	require.Len(t, s.Days, 1)
	require.Equal(t, 2, s.Days[0].Total)
	require.Equal(t, []int{1, 1}, s.Days[0].ByCategory)
}

func TestBuildSortsDatesChronologically(t *testing.T) {
	s := Build([]Record{
		{ID: "20241201x"},
		{ID: "20240102x"},
		{ID: "20231231x"},
		{ID: "20240315x"},
	}, nil)
	var got []string
	for _, d := range s.Days {
		got = append(got, d.Date)
	}
	require.Equal(t, []string{"20231231", "20240102", "20240315", "20241201"}, got)
}

func TestUndatedRowsStayOutOfDateTables(t *testing.T) {
	s := Build([]Record{
		{ID: "2024", Matched: true, Category: "a"},
		{ID: "ABCDEFGH123", Matched: true, Category: "a"},
		{ID: "20241345zz"},
		{ID: "20240101ok", Matched: true, Category: "a"},
	}, []string{"a"})
	require.Equal(t, 3, s.Undated)
	require.Equal(t, 4, s.TotalRows)
	require.Len(t, s.Days, 1)
	require.Equal(t, 3, s.CategoryTotals[0].Count, "grand totals include undated rows")
}

func TestDateKey(t *testing.T) {
	tests := []struct {
		id   string
		want string
		ok   bool
	}{
		{id: "20240315ABC", want: "20240315", ok: true},
		{id: " 20240229001 ", want: "20240229", ok: true},
		{id: "20230229001"},
		{id: "2024031"},
		{id: "2024-03-15"},
		{id: ""},
	}
	for _, tt := range tests {
		got, ok := DateKey(tt.id)
		if got != tt.want || ok != tt.ok {
			t.Errorf("DateKey(%q) = (%q, %v), want (%q, %v)", tt.id, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRatio(t *testing.T) {
	require.Equal(t, 33.33, Ratio(1, 3))
	require.Equal(t, 66.67, Ratio(2, 3))
	require.Equal(t, 100.0, Ratio(5, 5))
	require.Equal(t, 0.0, Ratio(3, 0), "zero total is defined as 0")
	require.Equal(t, 0.0, Summary{}.Ratio())
}

func TestUnknownCategoryIsAppended(t *testing.T) {
	s := Build([]Record{{ID: "20240101", Matched: true, Category: "extra"}}, []string{"a"})
	require.Equal(t, []string{"a", "extra"}, s.Categories)
	require.Equal(t, []int{0, 1}, s.Days[0].ByCategory)
}

func TestTermHits(t *testing.T) {
	got := TermHits([][]string{
		{"자동답변", "자동답변 :"},
		{"자동답변"},
		nil,
		{"자동답변", "자동답변"},
	}, []string{"자동답변", "자동답변 :", "스펨처리"})
	want := []TermCount{{"자동답변", 3}, {"자동답변 :", 1}, {"스펨처리", 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("TermHits (-want +got):\n%s", diff)
	}
}

func TestLengthStatsCountsCharacters(t *testing.T) {
	st := LengthStats([]string{"가나다", "abcdef", ""})
	require.Equal(t, TextStats{Count: 3, Mean: 3, Max: 6, Min: 0}, st)
	require.Equal(t, TextStats{}, LengthStats(nil))
}

func TestTopCounts(t *testing.T) {
	got := TopCounts([]string{"게임", "결제", "게임", "", "계정", "결제", "게임"}, 2)
	require.Equal(t, []ValueCount{{"게임", 3}, {"결제", 2}}, got)
	require.Len(t, TopCounts([]string{"a", "b", "c"}, 0), 3)
}
