package config

import "csreport/internal/domain"

// Roles each job cannot run without. Other configured roles are optional.
var (
	TallyRoles   = []domain.Role{domain.RoleID, domain.RoleQuestion, domain.RoleResult}
	DailyRoles   = []domain.Role{domain.RoleID, domain.RoleResult}
	ExtractRoles = []domain.Role{domain.RoleQuestion, domain.RoleAnswer, domain.RoleResult}
)

// The three profiles were maintained separately and differ on purpose; do
// not merge their label lists.
var (
	tallyCategories = []CategoryConfig{
		{Label: "자동답변: 욕설 및 비속어 표현이 90% 이상 포함된 문의"},
		{Label: "자동답변: 광고와 홍보 스팸 문의 처리"},
	}

	dailyKeywords = []string{
		"자동답변",
		"자동답변 :",
		"욕설 및 비속어 표현이 포함된 문의",
		"게임 결과 불만 문의",
		"스펨처리",
		"짜고 치기 신고 답변",
	}

	extractPrefixes = []string{
		"자동답변:",
		"자동답변 :",
		"자동답변 : ",
		"자동답변: ",
	}
)

func Defaults() Config {
	return Config{
		OutputDir:                  ".",
		LogLevel:                   "info",
		ExternalHTTPTimeoutSeconds: defaultExternalHTTPTimeoutSeconds,
		Tally: JobConfig{
			Input:  "./cs자동답변_3차.xlsx",
			Output: "CS_자동답변_집계결과.xlsx",
			Columns: Columns{
				ID:       "Advice ID",
				Title:    "Title",
				Question: "질문내용",
				Result:   "요약 결과",
			},
			Match: MatchConfig{
				Mode:       string(domain.ModeExact),
				Categories: cloneCategories(tallyCategories),
			},
		},
		Daily: DailyConfig{
			JobConfig: JobConfig{
				Input:  "shevano7/CS_자동답변_데이터.xlsx",
				Output: "일자별_자동답변_분석결과.xlsx",
				Columns: Columns{
					ID:     "Advice ID",
					Result: "요약 결과",
				},
				Match: MatchConfig{
					Mode:  string(domain.ModeSubstring),
					Terms: append([]string(nil), dailyKeywords...),
				},
			},
			Chart: "자동답변_분석_차트.png",
			ChartTitles: ChartTitles{
				Counts:        "Daily tickets vs auto-responses",
				Ratio:         "Daily auto-response ratio (%)",
				Matched:       "Daily auto-responses",
				Share:         "Overall auto-response share",
				TotalSeries:   "All tickets",
				MatchedSeries: "Auto-responses",
				OtherSlice:    "Other replies",
			},
			SampleSize: 5,
		},
		Extract: ExtractConfig{
			JobConfig: JobConfig{
				Input:  "shevano7/CS_자동답변_데이터.xlsx",
				Output: "자동답변_질문_답변_추출결과.xlsx",
				Columns: Columns{
					ID:       "Advice ID",
					Question: "질문내용",
					Answer:   "답변내용",
					Result:   "요약 결과",
					Category: "Category",
				},
				Match: MatchConfig{
					Mode:  string(domain.ModePrefix),
					Terms: append([]string(nil), extractPrefixes...),
				},
			},
			OutputWithID:  "자동답변_AdviceID_포함.xlsx",
			SampleSize:    5,
			TopCategories: 10,
		},
	}
}

func cloneCategories(in []CategoryConfig) []CategoryConfig {
	out := make([]CategoryConfig, len(in))
	for i, c := range in {
		out[i] = CategoryConfig{Label: c.Label, Aliases: append([]string(nil), c.Aliases...)}
	}
	return out
}
