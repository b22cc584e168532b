// Package tui renders analysis results to the terminal. Simple,
// streaming output with clean prompts - no full-screen TUI.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"

	"github.com/Sumee7/project1autoinsight/pkg/clean"
	"github.com/Sumee7/project1autoinsight/pkg/drill"
	"github.com/Sumee7/project1autoinsight/pkg/lineage"
	"github.com/Sumee7/project1autoinsight/pkg/profile"
	"github.com/Sumee7/project1autoinsight/pkg/query"
	"github.com/Sumee7/project1autoinsight/pkg/querybuilder"
)

// Colors (Swiss minimal)
var (
	accent  = lipgloss.Color("#FF6600")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	warning = lipgloss.Color("#FFCC00")
	danger  = lipgloss.Color("#FF3333")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(warning).Bold(true)
	dangerStyle  = lipgloss.NewStyle().Foreground(danger).Bold(true)
)

const rule = "  ─────────────────────────────────────"

// PrintHeader prints the application banner.
func PrintHeader(version string) {
	fmt.Println()
	fmt.Println(titleStyle.Render("  AUTOINSIGHT") + mutedStyle.Render(" v"+version))
	fmt.Println(mutedStyle.Render("  CSV profiling, cleaning and plain-language queries"))
	fmt.Println()
}

// PrintSummary prints the dataset profile and quality score.
func PrintSummary(s profile.Summary, r profile.Report) {
	fmt.Println()
	fmt.Println(accentStyle.Render("▸ DATASET"))
	fmt.Printf("  %s %s rows, %s columns\n",
		mutedStyle.Render("Shape:"),
		titleStyle.Render(fmt.Sprintf("%d", s.RowCount)),
		titleStyle.Render(fmt.Sprintf("%d", s.ColumnCount)))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Duplicates:"),
		titleStyle.Render(fmt.Sprintf("%d", s.DuplicateRowCount)))

	fmt.Println()
	fmt.Println(accentStyle.Render("▸ QUALITY"))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Overall:"), scoreStyle(r.Overall).Render(fmt.Sprintf("%.0f/100", r.Overall)))
	fmt.Printf("  %s completeness %.0f%%  uniqueness %.0f%%  validity %.0f%%\n",
		mutedStyle.Render("Parts:"), r.Completeness, r.Uniqueness, r.Validity)

	fmt.Println()
	fmt.Println(mutedStyle.Render(rule))
	fmt.Printf("  %-20s %-8s %8s %8s %8s\n",
		mutedStyle.Render("COLUMN"), mutedStyle.Render("TYPE"),
		mutedStyle.Render("MISSING"), mutedStyle.Render("INVALID"), mutedStyle.Render("OUTLIER"))
	for _, col := range s.Columns {
		fmt.Printf("  %-20s %-8s %8d %8d %8d\n",
			truncate(col.Name, 20), col.Type, col.MissingCount, col.InvalidCount, col.OutlierCount)
	}
	fmt.Println(mutedStyle.Render(rule))
}

// PrintIssues prints the cleaning issues view.
func PrintIssues(issues profile.Issues) {
	total := len(issues.MissingValues) + len(issues.InvalidTypes) + len(issues.Outliers)
	if total == 0 && issues.Duplicates == 0 {
		fmt.Println(successStyle.Render("  ✓ No quality issues found"))
		return
	}

	fmt.Println()
	fmt.Println(accentStyle.Render("▸ ISSUES"))
	for _, col := range issues.MissingValues {
		fmt.Printf("  %s %s has %d missing values\n", warnStyle.Render("•"), col.Name, col.MissingCount)
	}
	for _, col := range issues.InvalidTypes {
		fmt.Printf("  %s %s has %d invalid values\n", dangerStyle.Render("•"), col.Name, col.InvalidCount)
	}
	for _, col := range issues.Outliers {
		fmt.Printf("  %s %s has %d outliers\n", warnStyle.Render("•"), col.Name, col.OutlierCount)
	}
	if issues.Duplicates > 0 {
		fmt.Printf("  %s %d duplicate rows\n", warnStyle.Render("•"), issues.Duplicates)
	}
}

// PrintAnswer prints a query answer with its audit trail.
func PrintAnswer(a query.Answer) {
	fmt.Println()
	fmt.Println("  " + titleStyle.Render(a.Text))
	fmt.Printf("  %s %s\n", mutedStyle.Render("confidence:"), confidenceStyle(a.Confidence).Render(a.Confidence))
	for _, step := range a.How {
		fmt.Println(mutedStyle.Render("    · " + step))
	}
	fmt.Println()
}

// PrintCleanResult prints what a cleaning run changed.
func PrintCleanResult(res clean.Result) {
	fmt.Println()
	fmt.Println(successStyle.Render("  ✓ CLEANING COMPLETE"))
	fmt.Printf("  %s %d filled, %d coerced, %d duplicates removed\n",
		mutedStyle.Render("Changes:"), res.MissingFilled, res.InvalidCoerced, res.DuplicatesRemoved)
	fmt.Printf("  %s %d rows remain\n", mutedStyle.Render("Result:"), res.Summary.RowCount)
	fmt.Println()
}

// PrintComparison prints a segment comparison.
func PrintComparison(c drill.Comparison) {
	fmt.Println()
	fmt.Println(accentStyle.Render("▸ SEGMENTS"))
	fmt.Printf("  %s=%s: %d rows   %s=%s: %d rows\n",
		c.A.Column, c.A.Value, c.RowsA, c.B.Column, c.B.Value, c.RowsB)

	marker := mutedStyle.Render("not significant")
	if c.Significant {
		marker = accentStyle.Render("significant")
	}
	fmt.Printf("  %s %+.1f%% rows (%s)\n", mutedStyle.Render("Difference:"), c.RowCountDiff.Percent, marker)

	for name, d := range c.MeanDiffs {
		a := c.StatsA[name]
		b := c.StatsB[name]
		fmt.Printf("  %s mean %.2f → %.2f (%+.1f%%)\n", titleStyle.Render(name), a.Mean, b.Mean, d.Percent)
		if tt, ok := c.Tests[name]; ok && !tt.Insufficient {
			note := fmt.Sprintf("    t=%.2f p=%.3f d=%.2f (%s effect)", tt.TStatistic, tt.PValue, tt.CohensD, tt.EffectSize)
			fmt.Println(mutedStyle.Render(note))
		}
	}
	fmt.Println()
}

// PrintCorrelations prints pairwise correlations between numeric
// columns in column order, flagging significant pairs.
func PrintCorrelations(pairs []profile.ColumnPair) {
	fmt.Println(accentStyle.Render("▸ CORRELATIONS"))
	if len(pairs) == 0 {
		fmt.Println(mutedStyle.Render("  fewer than two numeric columns"))
		fmt.Println()
		return
	}
	for _, p := range pairs {
		marker := mutedStyle.Render("·")
		if p.Result.Significant {
			marker = accentStyle.Render("*")
		}
		fmt.Printf("  %s %s ↔ %s  r=%.2f (%s, p=%.3f)\n",
			marker, p.ColumnA, p.ColumnB, p.Result.R, p.Result.Strength, p.Result.PValue)
	}
	fmt.Println()
}

// PrintQueryResult prints structured query output: the rows, the SQL
// rendering of the executed config, and timing.
func PrintQueryResult(res querybuilder.Result, columns []string) {
	fmt.Println()
	if len(res.Results) == 0 {
		fmt.Println(mutedStyle.Render("  no rows matched"))
	}
	for i, row := range res.Results {
		if i >= 50 {
			fmt.Println(mutedStyle.Render(fmt.Sprintf("  … %d more rows", len(res.Results)-i)))
			break
		}
		parts := make([]string, 0, len(columns))
		for _, col := range columns {
			parts = append(parts, fmt.Sprintf("%s=%s", mutedStyle.Render(col), formatCell(row[col])))
		}
		fmt.Println("  " + strings.Join(parts, "  "))
	}
	fmt.Println()
	fmt.Println(mutedStyle.Render("  " + res.SQL))
	fmt.Println(mutedStyle.Render(fmt.Sprintf("  %d rows in %s", res.RowCount, res.ExecutionTime.Round(time.Microsecond))))
	fmt.Println()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return mutedStyle.Render("∅")
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%.0f", x)
		}
		return fmt.Sprintf("%.2f", x)
	default:
		return fmt.Sprint(x)
	}
}

// PrintWatchUpdate prints one re-analysis from watch mode. prev, when
// non-nil, is the report from the previous run so the score movement
// shows next to the fresh value.
func PrintWatchUpdate(path string, s profile.Summary, r profile.Report, prev *profile.Report, at time.Time) {
	line := fmt.Sprintf("  %s %s  %d rows  %s",
		mutedStyle.Render(at.Format("15:04:05")),
		titleStyle.Render(path),
		s.RowCount,
		scoreStyle(r.Overall).Render(fmt.Sprintf("score %.0f", r.Overall)))
	if prev != nil && prev.Overall != r.Overall {
		line += mutedStyle.Render(fmt.Sprintf(" (%+.0f)", r.Overall-prev.Overall))
	}
	fmt.Println(line)
}

// PrintTrust prints the lineage trust score and history.
func PrintTrust(ctx *lineage.Context) {
	score := ctx.TrustScore()
	fmt.Println()
	fmt.Printf("  %s %s\n", mutedStyle.Render("Trust score:"), scoreStyle(score).Render(fmt.Sprintf("%.0f/100", score)))
	fmt.Printf("  %s %s, %d transformations\n",
		mutedStyle.Render("Source:"), ctx.Source, len(ctx.Transformations))
	for _, tr := range ctx.Transformations {
		fmt.Println(mutedStyle.Render(fmt.Sprintf("    · %s (%d → %d rows)", tr.Kind, tr.RowsBefore, tr.RowsAfter)))
	}
	fmt.Println()
}

func scoreStyle(v float64) lipgloss.Style {
	switch {
	case v >= 80:
		return successStyle
	case v >= 50:
		return warnStyle
	default:
		return dangerStyle
	}
}

func confidenceStyle(c string) lipgloss.Style {
	switch c {
	case query.ConfidenceHigh:
		return successStyle
	case query.ConfidenceMedium:
		return warnStyle
	default:
		return dangerStyle
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

// ShowProgress creates a progress bar for long operations.
func ShowProgress(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// Spinner shows a simple loading indicator until done closes.
func Spinner(message string, done chan bool) {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	i := 0
	for {
		select {
		case <-done:
			fmt.Printf("\r%s %s\n", successStyle.Render("✓"), message)
			return
		default:
			fmt.Printf("\r%s %s", accentStyle.Render(frames[i]), message)
			i = (i + 1) % len(frames)
			time.Sleep(80 * time.Millisecond)
		}
	}
}

// ClearLine clears the current line.
func ClearLine() {
	fmt.Print("\r\033[K")
}
