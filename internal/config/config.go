package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"csreport/internal/classify"
	"csreport/internal/domain"

	"gopkg.in/yaml.v3"
)

const defaultExternalHTTPTimeout = 90 * time.Second
const defaultExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)

type Config struct {
	OutputDir  string `yaml:"output_dir"`
	SQLitePath string `yaml:"sqlite_path"`
	LogLevel   string `yaml:"log_level"`

	SlackBotToken              string `yaml:"slack_bot_token"`
	SlackChannelID             string `yaml:"slack_channel_id"`
	ExternalHTTPTimeoutSeconds int    `yaml:"external_http_timeout_seconds"`

	Tally   JobConfig     `yaml:"tally"`
	Daily   DailyConfig   `yaml:"daily"`
	Extract ExtractConfig `yaml:"extract"`

	Path string `yaml:"-"` // file the config was read from, empty when defaults only
}

// Columns maps each role to a header name. A value of the form "@I" names a
// worksheet column letter instead and is resolved against the header when
// the sheet is loaded.
type Columns struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
	Result   string `yaml:"result"`
	Category string `yaml:"category"`
}

func (c Columns) Ref(role domain.Role) string {
	switch role {
	case domain.RoleID:
		return c.ID
	case domain.RoleTitle:
		return c.Title
	case domain.RoleQuestion:
		return c.Question
	case domain.RoleAnswer:
		return c.Answer
	case domain.RoleResult:
		return c.Result
	case domain.RoleCategory:
		return c.Category
	}
	return ""
}

type CategoryConfig struct {
	Label   string   `yaml:"label"`
	Aliases []string `yaml:"aliases"`
}

type MatchConfig struct {
	Mode       string           `yaml:"mode"`
	Categories []CategoryConfig `yaml:"categories"`
	Terms      []string         `yaml:"terms"`
	LabelsPath string           `yaml:"labels_path"`
}

func (m MatchConfig) Profile() classify.Profile {
	p := classify.Profile{
		Mode:  domain.MatchMode(m.Mode),
		Terms: append([]string(nil), m.Terms...),
	}
	for _, c := range m.Categories {
		p.Categories = append(p.Categories, classify.Category{Label: c.Label, Aliases: append([]string(nil), c.Aliases...)})
	}
	return p
}

type JobConfig struct {
	Input   string      `yaml:"input"`
	Sheets  []string    `yaml:"sheets"`
	Output  string      `yaml:"output"`
	Columns Columns     `yaml:"columns"`
	Match   MatchConfig `yaml:"match"`
}

type DailyConfig struct {
	JobConfig   `yaml:",inline"`
	Chart       string      `yaml:"chart"`
	ChartTitles ChartTitles `yaml:"chart_titles"`
	SampleSize  int         `yaml:"sample_size"`
}

type ChartTitles struct {
	Counts        string `yaml:"counts"`
	Ratio         string `yaml:"ratio"`
	Matched       string `yaml:"matched"`
	Share         string `yaml:"share"`
	TotalSeries   string `yaml:"total_series"`
	MatchedSeries string `yaml:"matched_series"`
	OtherSlice    string `yaml:"other_slice"`
}

type ExtractConfig struct {
	JobConfig     `yaml:",inline"`
	OutputWithID  string `yaml:"output_with_id"`
	SampleSize    int    `yaml:"sample_size"`
	TopCategories int    `yaml:"top_categories"`
}

// Load reads path (or CONFIG_PATH, or ./config.yaml) over the built-in
// defaults, applies environment overrides and validates the result. A path
// passed in must exist; the CONFIG_PATH and default files are optional.
func Load(path string) (Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		path = "config.yaml"
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			path = envPath
		}
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.Path = path
	case explicit || !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	envOverride(&cfg.OutputDir, "OUTPUT_DIR")
	envOverrideAllowEmpty(&cfg.SQLitePath, "SQLITE_PATH")
	envOverride(&cfg.LogLevel, "LOG_LEVEL")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	if err := envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS"); err != nil {
		return Config{}, err
	}
	envOverride(&cfg.Tally.Input, "TALLY_INPUT")
	envOverride(&cfg.Daily.Input, "DAILY_INPUT")
	envOverride(&cfg.Extract.Input, "EXTRACT_INPUT")

	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}

	for _, m := range []*MatchConfig{&cfg.Tally.Match, &cfg.Daily.Match, &cfg.Extract.Match} {
		if err := applyLabelSet(m); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level '%s': must be debug, info, warn or error", c.LogLevel)
	}
	if (c.SlackBotToken == "") != (c.SlackChannelID == "") {
		return errors.New("slack_bot_token and slack_channel_id must be set together")
	}
	if c.ExternalHTTPTimeoutSeconds < 5 {
		return fmt.Errorf("invalid external_http_timeout_seconds '%d': must be >= 5", c.ExternalHTTPTimeoutSeconds)
	}

	jobs := []struct {
		name     string
		job      JobConfig
		required []domain.Role
	}{
		{"tally", c.Tally, TallyRoles},
		{"daily", c.Daily.JobConfig, DailyRoles},
		{"extract", c.Extract.JobConfig, ExtractRoles},
	}
	for _, j := range jobs {
		if err := j.job.validate(j.required); err != nil {
			return fmt.Errorf("%s: %w", j.name, err)
		}
	}
	if len(c.Daily.Sheets) > 1 {
		return fmt.Errorf("daily: reads a single sheet, got %d", len(c.Daily.Sheets))
	}
	if len(c.Extract.Sheets) > 1 {
		return fmt.Errorf("extract: reads a single sheet, got %d", len(c.Extract.Sheets))
	}
	if c.Daily.Chart != "" && !strings.EqualFold(filepath.Ext(c.Daily.Chart), ".png") {
		return fmt.Errorf("daily: chart '%s' must be a .png file", c.Daily.Chart)
	}
	if c.Extract.OutputWithID != "" && !strings.EqualFold(filepath.Ext(c.Extract.OutputWithID), ".xlsx") {
		return fmt.Errorf("extract: output_with_id '%s' must be a .xlsx file", c.Extract.OutputWithID)
	}
	if c.Daily.SampleSize < 0 || c.Extract.SampleSize < 0 || c.Extract.TopCategories < 0 {
		return errors.New("sample_size and top_categories must be >= 0")
	}
	return nil
}

func (j JobConfig) validate(required []domain.Role) error {
	if _, err := classify.New(j.Match.Profile()); err != nil {
		return fmt.Errorf("match: %w", err)
	}
	if !strings.EqualFold(filepath.Ext(j.Output), ".xlsx") {
		return fmt.Errorf("output '%s' must be a .xlsx file", j.Output)
	}
	for _, role := range required {
		if strings.TrimSpace(j.Columns.Ref(role)) == "" {
			return fmt.Errorf("columns.%s is required", role)
		}
	}
	return nil
}

// OutputPath resolves a configured output file against OutputDir.
func (c Config) OutputPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.OutputDir, name)
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.SlackChannelID != ""
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideAllowEmpty(field *string, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}
