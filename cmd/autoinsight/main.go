// AutoInsight - CSV analysis from the command line.
// Profiles data quality, answers plain-language questions, cleans
// datasets and exports the results.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumee7/project1autoinsight/internal/model"
	"github.com/Sumee7/project1autoinsight/pkg/config"
	"github.com/Sumee7/project1autoinsight/pkg/errors"
	"github.com/Sumee7/project1autoinsight/pkg/lineage"
	"github.com/Sumee7/project1autoinsight/pkg/parser"
	"github.com/Sumee7/project1autoinsight/pkg/schema"
	"github.com/Sumee7/project1autoinsight/pkg/tui"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// CLI flags
var (
	verbose    bool
	outputFile string
	formatFlag string

	// Analyze flags
	showCorrelations bool

	// Clean flags
	cleanMode string

	// Query flags
	selectCols []string
	groupByCol string
	aggFlags   []string
	orderByCol string
	orderDesc  bool
	limitFlag  int
	whereFlags []string

	// Compare flags
	segmentA string
	segmentB string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "autoinsight",
	Short: "AutoInsight - profile, query and clean CSV data",
	Long: `AutoInsight analyzes CSV files: it infers column types, scores data
quality, finds duplicates and outliers, answers plain-language
questions, and cleans the data for export.

Examples:
  autoinsight analyze orders.csv
  autoinsight ask orders.csv "how many duplicates?"
  autoinsight clean orders.csv --mode auto -o cleaned.csv
  autoinsight query orders.csv --group-by Category --agg sum:Revenue
  autoinsight watch orders.csv`,
	Version:       fmt.Sprintf("%s (%s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadConfig loads configuration from all sources, falling back to
// defaults when no file exists.
func loadConfig() *config.Config {
	m := config.NewManager()
	if err := m.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v (using defaults)\n", err)
		return config.Default()
	}
	return m.Get()
}

// session is everything the commands need about a loaded file.
type session struct {
	cfg     *config.Config
	dataset *model.Dataset
	columns []schema.Column
	lineage *lineage.Context
}

// loadDataset reads and parses a CSV file. File reading is the only
// hard failure; everything downstream degrades gracefully.
func loadDataset(path string) (*session, error) {
	cfg := loadConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.FileRead(path, err)
	}

	// Inference samples every column, so big files take a moment.
	var done chan bool
	if len(data) > 4<<20 {
		done = make(chan bool)
		go tui.Spinner("analyzing "+path, done)
	}

	table := parser.Parse(data)
	cols := schema.InferTable(table, schema.OptionsFrom(cfg))
	ds := schema.BuildDataset(table, cols)

	if done != nil {
		close(done)
	}

	return &session{
		cfg:     cfg,
		dataset: ds,
		columns: cols,
		lineage: lineage.NewContext(path, ds.NumRows()),
	}, nil
}
