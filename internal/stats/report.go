// Package stats builds analytics reports and renders them as text.
package stats

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/sitereport/internal/content"
	"github.com/verte-zerg/sitereport/internal/latest"
	"github.com/verte-zerg/sitereport/internal/model"
	"github.com/verte-zerg/sitereport/internal/source"
	"github.com/verte-zerg/sitereport/internal/usage"
)

const (
	DefaultInputDir = "BSREPORTS"
	DefaultOutput   = "report_viewers_summary.pdf"
)

// DefaultOptions returns the fixed run settings.
func DefaultOptions() model.Options {
	return model.Options{
		InputDir:   DefaultInputDir,
		OutputPath: DefaultOutput,
		FilePrefix: latest.DefaultPrefix,
		Extension:  source.DefaultExtension,
		UsageRows:  usage.DefaultWindow,
		ChunkWeeks: usage.DefaultChunkWeeks,
		Extended:   true,
	}
}

// BuildReport scans the input directory and prepares data for rendering.
func BuildReport(ctx context.Context, opts model.Options, log *zap.Logger) (model.Report, error) {
	opts = withDefaults(opts)
	if log == nil {
		log = zap.NewNop()
	}
	report := model.Report{
		GeneratedAt: time.Now(),
		InputDir:    opts.InputDir,
	}

	paths, err := source.ListWorkbooks(opts.InputDir, opts.Extension)
	if err != nil {
		return model.Report{}, err
	}
	log.Info("scanning exports", zap.String("dir", opts.InputDir), zap.Int("files", len(paths)))

	agg := content.New()
	readable := make([]string, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return model.Report{}, err
		}
		ok, err := readContent(path, agg, opts.Strict, log)
		if err != nil {
			return model.Report{}, err
		}
		if !ok {
			report.SkippedFiles = append(report.SkippedFiles, filepath.Base(path))
			continue
		}
		readable = append(readable, path)
		report.Files = append(report.Files, filepath.Base(path))
	}
	report.Content = agg.Finalize()

	sel, found := latest.Select(readable, opts.FilePrefix, opts.Extension)
	for _, name := range sel.Rejected {
		log.Debug("ignoring export with unparseable date", zap.String("file", name))
	}
	if !found {
		log.Info("no dated export found; skipping device and time usage", zap.String("prefix", opts.FilePrefix))
		return report, nil
	}
	report.LatestFile = filepath.Base(sel.Path)
	report.LatestDate = sel.Date
	if err := readUsage(sel.Path, opts, &report, log); err != nil {
		return model.Report{}, err
	}
	return report, nil
}

func readContent(path string, agg *content.Aggregator, strict bool, log *zap.Logger) (bool, error) {
	wb, err := source.Open(path)
	if err != nil {
		if strict || !errors.Is(err, source.ErrUnreadable) {
			return false, err
		}
		log.Warn("skipping unreadable file", zap.String("file", filepath.Base(path)), zap.Error(err))
		return false, nil
	}
	defer func() {
		if cerr := wb.Close(); cerr != nil {
			log.Debug("failed to close workbook", zap.Error(cerr))
		}
	}()
	log.Info("processing file", zap.String("file", wb.Name()), zap.Strings("sheets", wb.SheetNames()))

	tally, err := content.ReadWorkbook(wb, agg)
	if err != nil {
		return false, err
	}
	if tally.Found {
		log.Debug("read popular content",
			zap.String("file", wb.Name()),
			zap.String("sheet", tally.Sheet),
			zap.Int("accepted", tally.Accepted()),
			zap.Int("skipped", tally.Skipped()),
			zap.Int("last_row", tally.LastRow),
		)
	}
	return true, nil
}

func readUsage(path string, opts model.Options, report *model.Report, log *zap.Logger) error {
	wb, err := source.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open latest export: %w", err)
	}
	defer func() {
		if cerr := wb.Close(); cerr != nil {
			log.Debug("failed to close workbook", zap.Error(cerr))
		}
	}()
	log.Info("processing usage from latest file", zap.String("file", wb.Name()))

	devices, err := usage.ReadDeviceUsage(wb, opts.UsageRows)
	if err != nil {
		return err
	}
	if devices.Found {
		report.Usage = devices.Rows
		report.TotalPivot = usage.TotalPivot(devices.Rows)
		report.DevicePivots = usage.DevicePivots(devices.Rows)
		log.Debug("read device usage",
			zap.Int("read", devices.Read),
			zap.Int("rows", len(devices.Rows)),
			zap.Int("skipped", devices.Skipped),
		)
	} else {
		log.Info("sheet not found", zap.String("sheet", usage.DeviceSheet))
	}

	times, err := usage.ReadTimeUsage(wb)
	if err != nil {
		return err
	}
	report.HasTimeSheet = times.Found
	report.Timeframes = times.Totals
	if n := times.Outcomes[usage.TimeSkipBadLabel]; n > 0 {
		log.Warn("skipped rows with unrecognized hour labels", zap.String("sheet", usage.TimeSheet), zap.Int("rows", n))
	}
	return nil
}

func withDefaults(opts model.Options) model.Options {
	def := DefaultOptions()
	if opts.InputDir == "" {
		opts.InputDir = def.InputDir
	}
	if opts.OutputPath == "" {
		opts.OutputPath = def.OutputPath
	}
	if opts.FilePrefix == "" {
		opts.FilePrefix = def.FilePrefix
	}
	if opts.Extension == "" {
		opts.Extension = def.Extension
	}
	if opts.UsageRows <= 0 {
		opts.UsageRows = def.UsageRows
	}
	if opts.ChunkWeeks <= 0 {
		opts.ChunkWeeks = def.ChunkWeeks
	}
	return opts
}
