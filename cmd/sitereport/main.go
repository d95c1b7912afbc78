// Package main provides the CLI entrypoint for sitereport.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/verte-zerg/sitereport/internal/config"
	"github.com/verte-zerg/sitereport/internal/latest"
	"github.com/verte-zerg/sitereport/internal/model"
	"github.com/verte-zerg/sitereport/internal/pdfreport"
	"github.com/verte-zerg/sitereport/internal/reportui"
	"github.com/verte-zerg/sitereport/internal/stats"
	"github.com/verte-zerg/sitereport/internal/store"
	"github.com/verte-zerg/sitereport/internal/usage"
)

const defaultHistoryLimit = 20

var (
	reportInput      string
	reportPrefix     string
	reportUsageRows  int
	reportChunkWeeks int
	reportStrict     bool
	verbose          bool

	reportOutput string
	reportBasic  bool
	reportRecord bool

	summaryFormat string

	historyLimit int
	historyDB    string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sitereport",
		Short:         "Summarize site analytics exports into a PDF report",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runReportCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&reportInput, "input", stats.DefaultInputDir, "directory with analytics exports")
	pf.StringVar(&reportPrefix, "prefix", latest.DefaultPrefix, "file name prefix of dated exports")
	pf.IntVar(&reportUsageRows, "usage-rows", usage.DefaultWindow, "number of trailing device usage rows")
	pf.IntVar(&reportChunkWeeks, "chunk-weeks", usage.DefaultChunkWeeks, "weeks per heatmap page")
	pf.BoolVar(&reportStrict, "strict", false, "fail on unreadable workbooks instead of skipping them")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	addRenderFlags(rootCmd)

	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newViewCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&reportOutput, "output", stats.DefaultOutput, "output PDF path (overwritten)")
	cmd.Flags().BoolVar(&reportBasic, "basic", false, "single heatmap page without device heatmaps or timeframe chart")
	cmd.Flags().BoolVar(&reportRecord, "record", false, "record the run in the history database")
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the PDF report (default command)",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	addRenderFlags(cmd)
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "output", &reportOutput, fileCfg.Report.Output)
	applyBoolConfig(cmd, "basic", &reportBasic, fileCfg.Report.Basic)
	applyBoolConfig(cmd, "record", &reportRecord, fileCfg.History.Record)

	log, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	opts := reportOptions()
	opts.OutputPath = reportOutput
	opts.Extended = !reportBasic
	if err := validateOptions(opts); err != nil {
		return err
	}

	ctx := context.Background()
	report, err := stats.BuildReport(ctx, opts, log)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	pages := pdfreport.Plan(report, opts)
	if err := pdfreport.WriteFile(opts.OutputPath, report, opts); err != nil {
		return err
	}
	log.Info("wrote report",
		zap.String("path", opts.OutputPath),
		zap.Int("pages", len(pages)),
		zap.Int("records", len(report.Content.Records)),
	)
	if len(pages) == 0 {
		logErrf("No data found in %s; wrote a placeholder page.\n", opts.InputDir)
	}

	if !reportRecord {
		return nil
	}
	st, err := openStore(fileCfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	id, err := st.InsertRun(ctx, report, opts.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	log.Debug("recorded run", zap.String("id", id))
	return nil
}

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the report as text or YAML",
		Args:  cobra.NoArgs,
		RunE:  runSummaryCmd,
	}
	cmd.Flags().StringVar(&summaryFormat, "format", "text", "output format: text or yaml")
	return cmd
}

func runSummaryCmd(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(strings.TrimSpace(summaryFormat))
	if format != "text" && format != "yaml" {
		return fmt.Errorf("--format must be text or yaml")
	}
	report, err := buildFromFlags(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if format == "yaml" {
		return stats.WriteYAML(out, report)
	}
	if err := stats.RenderSummary(out, report, 0); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Browse the report in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runViewCmd,
	}
}

func runViewCmd(cmd *cobra.Command, _ []string) error {
	report, err := buildFromFlags(cmd)
	if err != nil {
		return err
	}
	program := tea.NewProgram(reportui.NewModel(report), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run report viewer: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded report runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLimit, "limit", defaultHistoryLimit, "number of runs to show (0 for all)")
	cmd.PersistentFlags().StringVar(&historyDB, "db", "", "history database path")
	cmd.AddCommand(newHistoryShowCmd())
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLimit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}
	st, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	runs, err := st.ListRuns(context.Background(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		logErrln("No recorded runs. Record one with: sitereport --record")
		return nil
	}
	for _, line := range formatRuns(runs) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the content totals of a recorded run",
		Long:  "Show the content totals of a recorded run. Any unique prefix of the run id is accepted.",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}
}

func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	st, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	return showRun(context.Background(), st, args[0], cmd.OutOrStdout())
}

func showRun(ctx context.Context, st *store.Store, prefix string, w io.Writer) error {
	prefix = strings.TrimSpace(prefix)
	id, err := st.ResolveRunID(ctx, prefix)
	switch {
	case errors.Is(err, store.ErrRunNotFound):
		return fmt.Errorf("no recorded run matches %q", prefix)
	case errors.Is(err, store.ErrAmbiguousRun):
		return fmt.Errorf("run id %q matches several runs; give more characters", prefix)
	case err != nil:
		return fmt.Errorf("failed to resolve run: %w", err)
	}
	records, err := st.RunContent(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", id, err)
	}

	sec := stats.ContentSection(model.Report{Content: model.ContentSummary{Records: records}})
	lines := append([]string{"Run " + id, "", sec.Title}, sec.Lines...)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// openHistoryStore opens the database named by --db, the config file or the
// default data path, in that order.
func openHistoryStore(cmd *cobra.Command) (*store.Store, error) {
	fileCfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	applyStringConfig(cmd, "db", &historyDB, fileCfg.History.DB)
	path := historyDB
	if path == "" {
		path = config.DefaultDBPath()
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func formatRuns(runs []model.RunSummary) []string {
	lines := make([]string, 0, len(runs))
	for _, run := range runs {
		latestFile := run.LatestFile
		if latestFile == "" {
			latestFile = "-"
		}
		lines = append(lines, fmt.Sprintf("%s  %s  files=%d records=%d usage=%d  latest=%s  %s",
			run.ID[:8],
			run.GeneratedAt.Local().Format("2006-01-02 15:04"),
			run.Files,
			run.Records,
			run.UsageRows,
			latestFile,
			run.OutputPath,
		))
	}
	return lines
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// loadConfig reads the config file and applies the shared report settings
// to any flag the user did not set.
func loadConfig(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "input", &reportInput, fileCfg.Report.Input)
	applyStringConfig(cmd, "prefix", &reportPrefix, fileCfg.Report.Prefix)
	applyIntConfig(cmd, "usage-rows", &reportUsageRows, fileCfg.Report.UsageRows)
	applyIntConfig(cmd, "chunk-weeks", &reportChunkWeeks, fileCfg.Report.ChunkWeeks)
	applyBoolConfig(cmd, "strict", &reportStrict, fileCfg.Report.Strict)
	return fileCfg, nil
}

func buildFromFlags(cmd *cobra.Command) (model.Report, error) {
	if _, err := loadConfig(cmd); err != nil {
		return model.Report{}, err
	}
	opts := reportOptions()
	if err := validateOptions(opts); err != nil {
		return model.Report{}, err
	}
	log, err := newLogger(verbose)
	if err != nil {
		return model.Report{}, err
	}
	defer func() {
		_ = log.Sync()
	}()
	report, err := stats.BuildReport(context.Background(), opts, log)
	if err != nil {
		return model.Report{}, fmt.Errorf("failed to build report: %w", err)
	}
	return report, nil
}

func reportOptions() model.Options {
	opts := stats.DefaultOptions()
	opts.InputDir = reportInput
	opts.FilePrefix = reportPrefix
	opts.UsageRows = reportUsageRows
	opts.ChunkWeeks = reportChunkWeeks
	opts.Strict = reportStrict
	return opts
}

func validateOptions(opts model.Options) error {
	if strings.TrimSpace(opts.InputDir) == "" {
		return fmt.Errorf("--input must not be empty")
	}
	if strings.TrimSpace(opts.OutputPath) == "" {
		return fmt.Errorf("--output must not be empty")
	}
	if strings.TrimSpace(opts.FilePrefix) == "" {
		return fmt.Errorf("--prefix must not be empty")
	}
	if opts.UsageRows <= 0 {
		return fmt.Errorf("--usage-rows must be > 0")
	}
	if opts.ChunkWeeks <= 0 {
		return fmt.Errorf("--chunk-weeks must be > 0")
	}
	return nil
}

func openStore(fileCfg config.FileConfig) (*store.Store, error) {
	path := config.DefaultDBPath()
	if fileCfg.History.DB != nil && *fileCfg.History.DB != "" {
		path = *fileCfg.History.DB
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# sitereport configuration
# Uncomment a value to enable it. CLI flags override config values.

[report]
# input = %q          # Directory with analytics exports
# output = %q  # Output PDF path (overwritten on each run)
# prefix = %q   # File name prefix of dated exports
# usage-rows = %d              # Trailing rows of the device usage sheet
# chunk-weeks = %d              # Weeks per heatmap page
# basic = false                # Single heatmap, no device heatmaps or timeframe chart
# strict = false               # Fail on unreadable workbooks

[history]
# record = false               # Record each run in the history database
# db = %q
`,
		stats.DefaultInputDir,
		stats.DefaultOutput,
		latest.DefaultPrefix,
		usage.DefaultWindow,
		usage.DefaultChunkWeeks,
		config.DefaultDBPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
