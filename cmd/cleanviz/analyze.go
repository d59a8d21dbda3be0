package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"cleanviz/internal/charts"
	"cleanviz/internal/config"
	"cleanviz/internal/dataset"
	"cleanviz/internal/exporter"
	"cleanviz/internal/infrastructure"
	"cleanviz/internal/services"
	"cleanviz/internal/session"
	"cleanviz/pkg/contracts/domain"
)

type analyzeOptions struct {
	delimiter        string
	dropEmptyRows    bool
	dropEmptyColumns bool
	renames          map[string]string
	outDir           string
	excelBOM         bool
	tsv              bool
}

func newAnalyzeCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	opts := analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Clean a file and write the CSV, report and plots",
		Long: `Analyze loads FILE, applies the cleaning flags and writes into --out:

  cleaned_data.csv    the cleaned table (cleaned_data.tsv with --tsv)
  summary_report.md   the Markdown summary, including PCA when it can run
  <kind>.png          every plot the data supports

The descriptive statistics are printed to stdout.`,
		Example: `  cleanviz analyze genes.csv --drop-empty-rows --rename score=expression --out results`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
			return runAnalyze(cmd, cfg, logger, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.delimiter, "delimiter", string(dataset.DelimiterAuto), "delimiter for text files: auto, comma or tab")
	f.BoolVar(&opts.dropEmptyRows, "drop-empty-rows", false, "drop rows where every cell is missing")
	f.BoolVar(&opts.dropEmptyColumns, "drop-empty-columns", false, "drop columns where every cell is missing")
	f.StringToStringVar(&opts.renames, "rename", nil, "rename a column, as old=new (repeatable)")
	f.StringVarP(&opts.outDir, "out", "o", ".", "output directory")
	f.BoolVar(&opts.excelBOM, "excel-bom", false, "start the cleaned table with a UTF-8 byte order mark for Excel")
	f.BoolVar(&opts.tsv, "tsv", false, "write the cleaned table tab separated")
	return cmd
}

func runAnalyze(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, path string, opts analyzeOptions) error {
	ctx := cmd.Context()

	hint := dataset.Delimiter(opts.delimiter)
	switch hint {
	case dataset.DelimiterAuto, dataset.DelimiterComma, dataset.DelimiterTab:
	default:
		return fmt.Errorf("unknown delimiter %q: must be auto, comma or tab", opts.delimiter)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	store := session.NewStore(0, 0, 1)
	defer store.Flush()
	ws := services.NewWorkspaceService(store, charts.NewRenderer(charts.Options{
		Width:  cfg.Charts.Width,
		Height: cfg.Charts.Height,
	}), services.WorkspaceConfig{PreviewRows: cfg.Upload.PreviewRows}, nil, logger)

	view, err := ws.Upload(ctx, filepath.Base(path), content, hint)
	if err != nil {
		return err
	}
	id := view.SessionID

	if opts.dropEmptyRows || opts.dropEmptyColumns || len(opts.renames) > 0 {
		view, err = ws.Clean(ctx, id, dataset.CleanOptions{
			DropEmptyRows:    opts.dropEmptyRows,
			DropEmptyColumns: opts.dropEmptyColumns,
			Renames:          opts.renames,
		})
		if err != nil {
			return err
		}
	}

	tableName, writeOpts := "cleaned_data.csv", exporter.WriteOptions{BOMPrefix: opts.excelBOM}
	if opts.tsv {
		tableName, writeOpts.Delimiter = "cleaned_data.tsv", '\t'
	}
	if err := ws.SaveCSV(ctx, id, filepath.Join(opts.outDir, tableName), writeOpts); err != nil {
		return fmt.Errorf("failed to write %s: %w", tableName, err)
	}

	written := 0
	for _, kind := range charts.Kinds {
		chart, err := ws.RenderPlot(ctx, id, services.PlotRequest{Kind: kind})
		if err != nil {
			if services.IsRefusal(err) {
				logger.Warn("plot skipped", slog.String("kind", string(kind)), slog.String("reason", err.Error()))
				continue
			}
			return err
		}
		if err := writeOutput(opts.outDir, chart.FileName, chart.PNG); err != nil {
			return err
		}
		written++
	}

	// after the plots so the report carries the PCA result
	md, err := ws.Report(ctx, id)
	if err != nil {
		return err
	}
	if err := writeOutput(opts.outDir, "summary_report.md", []byte(md)); err != nil {
		return err
	}

	stats, err := ws.Summary(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows, %d columns\n", view.FileName, view.Rows, len(view.Columns))
	printStats(cmd.OutOrStdout(), stats)

	logger.Info("analysis complete",
		slog.String("input", path),
		slog.String("out", opts.outDir),
		slog.Int("plots", written))
	return nil
}

func writeOutput(dir, name string, data []byte) error {
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func printStats(w io.Writer, stats []domain.ColumnStats) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "No numeric columns.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"})
	table.SetAutoFormatHeaders(false)
	for _, s := range stats {
		table.Append([]string{
			s.Column,
			fmt.Sprint(s.Count),
			formatStat(s.Mean),
			formatStat(s.Std),
			formatStat(s.Min),
			formatStat(s.Q25),
			formatStat(s.Q50),
			formatStat(s.Q75),
			formatStat(s.Max),
		})
	}
	table.Render()
}

func formatStat(v *float64) string {
	if v == nil {
		return "NaN"
	}
	return fmt.Sprintf("%.4g", *v)
}
