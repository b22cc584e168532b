package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sumee7/project1autoinsight/internal/model"
	"github.com/Sumee7/project1autoinsight/pkg/clean"
	"github.com/Sumee7/project1autoinsight/pkg/drill"
	"github.com/Sumee7/project1autoinsight/pkg/errors"
	"github.com/Sumee7/project1autoinsight/pkg/export"
	"github.com/Sumee7/project1autoinsight/pkg/profile"
	"github.com/Sumee7/project1autoinsight/pkg/query"
	"github.com/Sumee7/project1autoinsight/pkg/querybuilder"
	"github.com/Sumee7/project1autoinsight/pkg/tui"
	"github.com/Sumee7/project1autoinsight/pkg/watch"
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	analyzeCmd.Flags().BoolVar(&showCorrelations, "correlations", false, "include pairwise correlations between numeric columns")

	cleanCmd.Flags().StringVar(&cleanMode, "mode", "auto", "cleaning mode: auto, missing or invalid")
	cleanCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the cleaned CSV here")

	queryCmd.Flags().StringSliceVar(&selectCols, "select", nil, "columns to keep in the output")
	queryCmd.Flags().StringVar(&groupByCol, "group-by", "", "column to group rows by")
	queryCmd.Flags().StringSliceVar(&aggFlags, "agg", nil, "aggregations, e.g. sum:Revenue or count")
	queryCmd.Flags().StringVar(&orderByCol, "order-by", "", "column or aggregation to sort by")
	queryCmd.Flags().BoolVar(&orderDesc, "desc", false, "sort descending")
	queryCmd.Flags().IntVar(&limitFlag, "limit", 0, "maximum rows to return (0 = all)")
	queryCmd.Flags().StringSliceVar(&whereFlags, "where", nil, "filters, e.g. Region=East, Name~mike, Revenue>100")

	compareCmd.Flags().StringVar(&segmentA, "a", "", "first segment as Column=Value")
	compareCmd.Flags().StringVar(&segmentB, "b", "", "second segment as Column=Value")
	compareCmd.MarkFlagRequired("a")
	compareCmd.MarkFlagRequired("b")

	exportCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "output format: csv, json, html or xlsx")
	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("autoinsight %s (%s)\n", version, commit)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.csv>",
	Short: "Profile a CSV file and score its quality",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	s, err := loadDataset(args[0])
	if err != nil {
		return err
	}

	p := profile.FromConfig(s.cfg)
	summary := p.Summarize(s.dataset, s.columns)
	report := p.Score(s.dataset)

	tui.PrintHeader(version)
	tui.PrintSummary(summary, report)
	tui.PrintIssues(profile.DeriveIssues(summary))

	if showCorrelations {
		pairs, err := p.Correlations(cmd.Context(), s.dataset, s.columns)
		if err != nil {
			return err
		}
		tui.PrintCorrelations(pairs)
	}
	if verbose {
		tui.PrintTrust(s.lineage)
	}
	return nil
}

var askCmd = &cobra.Command{
	Use:   "ask <file.csv> <question>",
	Short: "Answer a plain-language question about the data",
	Long: `Ask answers questions like "how many duplicates?", "total revenue
by category" or "top customers where region is east". The answer always
includes the steps taken to reach it.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	s, err := loadDataset(args[0])
	if err != nil {
		return err
	}

	question := strings.Join(args[1:], " ")
	answer := query.FromConfig(s.cfg).Answer(question, s.dataset, s.columns)
	tui.PrintAnswer(answer)
	return nil
}

var cleanCmd = &cobra.Command{
	Use:   "clean <file.csv>",
	Short: "Fill missing values, fix invalid cells, drop duplicates",
	Args:  cobra.ExactArgs(1),
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	s, err := loadDataset(args[0])
	if err != nil {
		return err
	}

	before := s.dataset.NumRows()
	res, err := clean.FromConfig(s.cfg).Clean(s.dataset, s.columns, clean.Mode(cleanMode))
	if err != nil {
		return err
	}
	s.lineage.Record("clean:"+cleanMode,
		fmt.Sprintf("%d filled, %d coerced, %d duplicates removed",
			res.MissingFilled, res.InvalidCoerced, res.DuplicatesRemoved),
		before, res.Dataset.NumRows())

	tui.PrintCleanResult(res)
	tui.PrintTrust(s.lineage)

	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return errors.Wrap(err, errors.CodeExportFailed, "creating "+outputFile)
		}
		defer f.Close()
		if err := export.FromConfig(s.cfg).CSV(f, res.Dataset); err != nil {
			return err
		}
		fmt.Printf("  wrote %s (%d rows)\n\n", outputFile, res.Dataset.NumRows())
	}
	return nil
}

var queryCmd = &cobra.Command{
	Use:   "query <file.csv>",
	Short: "Run a structured query: filter, group, aggregate, sort",
	Long: `Query runs a fixed pipeline over the rows: filters, then grouping,
then column selection, then ordering, then the limit.

Examples:
  autoinsight query orders.csv --where Region=East --limit 10
  autoinsight query orders.csv --group-by Category --agg sum:Revenue --order-by revenue_sum --desc`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	s, err := loadDataset(args[0])
	if err != nil {
		return err
	}

	cfg := querybuilder.Config{
		Select:  selectCols,
		GroupBy: groupByCol,
		Limit:   limitFlag,
	}
	for _, spec := range aggFlags {
		agg, err := parseAggregation(spec)
		if err != nil {
			return err
		}
		cfg.Aggregations = append(cfg.Aggregations, agg)
	}
	for _, spec := range whereFlags {
		f, err := parseWhere(spec)
		if err != nil {
			return err
		}
		cfg.Filters = append(cfg.Filters, f)
	}
	if orderByCol != "" {
		cfg.OrderBy = &querybuilder.OrderBy{Column: orderByCol, Desc: orderDesc}
	}

	res := querybuilder.Execute(s.dataset, cfg)
	tui.PrintQueryResult(res, resultColumns(cfg, s.dataset.Columns))
	return nil
}

// parseAggregation turns "sum:Revenue" into an Aggregation. A bare
// function name is allowed for count, which needs no column.
func parseAggregation(spec string) (querybuilder.Aggregation, error) {
	fn, col, found := strings.Cut(spec, ":")
	fn = strings.ToLower(strings.TrimSpace(fn))
	switch fn {
	case "count":
		return querybuilder.Aggregation{Fn: fn, Column: strings.TrimSpace(col)}, nil
	case "sum", "avg", "min", "max":
		if !found || strings.TrimSpace(col) == "" {
			return querybuilder.Aggregation{}, errors.New(errors.CodeConfigInvalid,
				fmt.Sprintf("aggregation %q needs a column, e.g. %s:Revenue", spec, fn))
		}
		return querybuilder.Aggregation{Fn: fn, Column: strings.TrimSpace(col)}, nil
	default:
		return querybuilder.Aggregation{}, errors.New(errors.CodeConfigInvalid,
			fmt.Sprintf("unknown aggregation %q (want count, sum, avg, min or max)", fn))
	}
}

// parseWhere turns a flag like "Region=East", "Name~mike" or
// "Revenue>100" into a filter.
func parseWhere(spec string) (model.Filter, error) {
	for _, op := range []struct {
		sep string
		op  model.Operator
	}{
		{"!=", ""}, // explicit reject, = is the only equality form
		{">=", ""},
		{"<=", ""},
		{"=", model.OpEquals},
		{"~", model.OpContains},
		{">", model.OpGreater},
		{"<", model.OpLess},
	} {
		col, val, found := strings.Cut(spec, op.sep)
		if !found {
			continue
		}
		if op.op == "" {
			return model.Filter{}, errors.New(errors.CodeConfigInvalid,
				fmt.Sprintf("unsupported operator in %q (use =, ~, > or <)", spec))
		}
		col = strings.TrimSpace(col)
		val = strings.TrimSpace(val)
		if col == "" || val == "" {
			return model.Filter{}, errors.New(errors.CodeConfigInvalid,
				fmt.Sprintf("malformed filter %q (want Column%sValue)", spec, op.sep))
		}
		return model.Filter{Column: col, Op: op.op, Value: val}, nil
	}
	return model.Filter{}, errors.New(errors.CodeConfigInvalid,
		fmt.Sprintf("malformed filter %q (want Column=Value, Column~Value, Column>N or Column<N)", spec))
}

// resultColumns picks the display order: grouped queries show the group
// key then each aggregation, plain queries show the selection or every
// dataset column.
func resultColumns(cfg querybuilder.Config, all []string) []string {
	if cfg.GroupBy != "" {
		cols := []string{cfg.GroupBy}
		aggs := cfg.Aggregations
		if len(aggs) == 0 {
			aggs = []querybuilder.Aggregation{{Column: cfg.GroupBy, Fn: "count"}}
		}
		for _, agg := range aggs {
			cols = append(cols, agg.Name())
		}
		return cols
	}
	if len(cfg.Select) > 0 {
		return cfg.Select
	}
	return all
}

var compareCmd = &cobra.Command{
	Use:   "compare <file.csv> --a Column=Value --b Column=Value",
	Short: "Compare two data segments side by side",
	Long: `Compare splits the rows into two segments and reports per-column
statistics for each, with the differences between them.

Example:
  autoinsight compare orders.csv --a Region=East --b Region=West`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func runCompare(cmd *cobra.Command, args []string) error {
	s, err := loadDataset(args[0])
	if err != nil {
		return err
	}

	selA, err := parseSelector(segmentA)
	if err != nil {
		return err
	}
	selB, err := parseSelector(segmentB)
	if err != nil {
		return err
	}

	tui.PrintComparison(drill.Compare(s.dataset, s.columns, selA, selB))
	return nil
}

func parseSelector(spec string) (drill.Selector, error) {
	col, val, found := strings.Cut(spec, "=")
	col = strings.TrimSpace(col)
	val = strings.TrimSpace(val)
	if !found || col == "" || val == "" {
		return drill.Selector{}, errors.New(errors.CodeConfigInvalid,
			fmt.Sprintf("malformed segment %q (want Column=Value)", spec))
	}
	return drill.Selector{Column: col, Value: val}, nil
}

var exportCmd = &cobra.Command{
	Use:   "export <file.csv>",
	Short: "Export the dataset as CSV, JSON, HTML or XLSX",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := loadDataset(args[0])
	if err != nil {
		return err
	}

	format := formatFlag
	if format == "" {
		format = s.cfg.Export.Format
	}
	// Infer the format from the output extension when not given.
	if formatFlag == "" && outputFile != "" {
		if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(outputFile)), "."); ext != "" {
			format = ext
		}
	}

	summary := profile.FromConfig(s.cfg).Summarize(s.dataset, s.columns)

	var out io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return errors.Wrap(err, errors.CodeExportFailed, "creating "+outputFile)
		}
		defer f.Close()
		// Track written bytes on the terminal while the file fills.
		bar := tui.ShowProgress(-1, "exporting")
		defer bar.Finish()
		out = io.MultiWriter(f, bar)
	}

	if err := export.FromConfig(s.cfg).Export(out, format, s.dataset, summary); err != nil {
		return err
	}
	if outputFile != "" {
		tui.ClearLine()
		fmt.Fprintf(os.Stderr, "wrote %s (%s, %d rows)\n", outputFile, format, s.dataset.NumRows())
	}
	return nil
}

var watchCmd = &cobra.Command{
	Use:   "watch <file.csv>",
	Short: "Re-analyze a file whenever it changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	// Analyze once up front so the watcher starts from a known state.
	first, err := watch.Analyze(args[0], cfg)
	if err != nil {
		return err
	}

	tui.PrintHeader(version)
	tui.PrintWatchUpdate(first.Path, first.Summary, first.Report, nil, first.At)

	w, err := watch.New(cfg)
	if err != nil {
		return err
	}
	defer w.Close()

	prev := first.Report
	w.OnUpdate = func(u watch.Update) {
		last := prev
		tui.PrintWatchUpdate(u.Path, u.Summary, u.Report, &last, u.At)
		prev = u.Report
	}
	w.OnError = func(path string, err error) {
		fmt.Fprintf(os.Stderr, "  %s: %v\n", path, err)
	}

	if err := w.Watch(args[0]); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n  stopping")
		cancel()
	}()

	fmt.Println("  watching for changes, ctrl-c to stop")
	return w.Run(ctx)
}
