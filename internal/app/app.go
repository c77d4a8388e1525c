package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"csreport/internal/config"
	"csreport/internal/httpx"
	slackbot "csreport/internal/integrations/slack"
	"csreport/internal/pipeline"
	"csreport/internal/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	configPath string
	outputDir  string
	verbose    bool

	input   string
	sheets  []string
	sqlite  string
	noChart bool
}

type cli struct {
	opts   options
	cfg    config.Config
	log    *zap.Logger
	stdout io.Writer
	stderr io.Writer
}

// Main runs the command line and exits 1 on any failure.
func Main() {
	cmd := NewRootCommand(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:   "csreport",
		Short: "Classify CS auto-responses in ticket exports and tabulate them",
		Long: `csreport reads customer-support ticket exports (.xlsx), decides for every
row whether its summary result is an auto-response template, and writes
count tables by date and category.

  tally    exact template labels across every sheet
  daily    auto-response ratio per date, with a chart
  extract  question and answer of auto-responded tickets`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&c.opts.configPath, "config", "", "config file (default $CONFIG_PATH or ./config.yaml)")
	root.PersistentFlags().StringVar(&c.opts.outputDir, "output-dir", "", "directory for result files")
	root.PersistentFlags().BoolVarP(&c.opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(c.tallyCommand(), c.dailyCommand(), c.extractCommand())
	return root
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.opts.configPath)
	if err != nil {
		return err
	}
	if c.opts.outputDir != "" {
		cfg.OutputDir = c.opts.outputDir
	}
	if cmd.Flags().Changed("sqlite") {
		cfg.SQLitePath = c.opts.sqlite
	}

	zc := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.opts.verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	c.log, err = zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	timeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
	c.log.Debug("config loaded",
		zap.String("path", cfg.Path),
		zap.String("output_dir", cfg.OutputDir),
		zap.String("sqlite_path", cfg.SQLitePath),
		zap.Bool("slack", cfg.SlackConfigured()),
		zap.Duration("http_timeout", timeout),
	)
	c.cfg = cfg
	return nil
}

func (c *cli) runner() *pipeline.Runner {
	var d report.Deliverer
	if c.cfg.SlackConfigured() {
		d = slackbot.NewNotifier(c.cfg.SlackBotToken, c.cfg.SlackChannelID, httpx.Client(), c.log)
	}
	return pipeline.NewRunner(c.cfg, report.NewPublisher(c.cfg.SQLitePath, d, c.log), c.log)
}

func (c *cli) jobFlags(cmd *cobra.Command, multiSheet bool) {
	cmd.Flags().StringVarP(&c.opts.input, "input", "i", "", "input workbook (.xlsx)")
	if multiSheet {
		cmd.Flags().StringArrayVar(&c.opts.sheets, "sheet", nil, "sheet to read, repeatable (default all sheets)")
	} else {
		cmd.Flags().StringArrayVar(&c.opts.sheets, "sheet", nil, "sheet to read (default the first sheet)")
	}
	cmd.Flags().StringVar(&c.opts.sqlite, "sqlite", "", "also export every result table to this SQLite file")
}

// applyJob overrides the job's input and sheet selection from flags.
func (c *cli) applyJob(job *config.JobConfig, multiSheet bool) error {
	if c.opts.input != "" {
		job.Input = c.opts.input
	}
	if len(c.opts.sheets) > 0 {
		if !multiSheet && len(c.opts.sheets) > 1 {
			return fmt.Errorf("--sheet: reads a single sheet, got %d", len(c.opts.sheets))
		}
		job.Sheets = c.opts.sheets
	}
	return nil
}

func (c *cli) tallyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tally",
		Short: "Count exact auto-response labels per sheet, date and category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.applyJob(&c.cfg.Tally, true); err != nil {
				return err
			}
			rep, err := c.runner().Tally(cmd.Context())
			if rep != nil {
				renderTally(c.stdout, rep)
				for _, f := range rep.Failures {
					fmt.Fprintf(c.stderr, "error: sheet %q: %v\n", f.Sheet, f.Err)
				}
				c.deliveryWarning(rep.Published)
			}
			return err
		},
	}
	c.jobFlags(cmd, true)
	return cmd
}

func (c *cli) dailyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Compute the auto-response ratio per date and draw the chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.applyJob(&c.cfg.Daily.JobConfig, false); err != nil {
				return err
			}
			if c.opts.noChart {
				c.cfg.Daily.Chart = ""
			}
			rep, err := c.runner().Daily(cmd.Context())
			if err != nil {
				return err
			}
			renderDaily(c.stdout, rep)
			c.deliveryWarning(rep.Published)
			return nil
		},
	}
	c.jobFlags(cmd, false)
	cmd.Flags().BoolVar(&c.opts.noChart, "no-chart", false, "skip the PNG chart")
	return cmd
}

func (c *cli) extractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract question and answer of auto-responded tickets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.applyJob(&c.cfg.Extract.JobConfig, false); err != nil {
				return err
			}
			rep, err := c.runner().Extract(cmd.Context())
			if err != nil {
				return err
			}
			renderExtract(c.stdout, rep)
			c.deliveryWarning(rep.Published)
			return nil
		},
	}
	c.jobFlags(cmd, false)
	return cmd
}

func (c *cli) deliveryWarning(p report.Published) {
	if p.DeliveryErr != nil {
		fmt.Fprintf(c.stderr, "warning: slack delivery: %v\n", p.DeliveryErr)
	}
}
