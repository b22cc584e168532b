// Package export writes datasets to CSV, JSON, HTML and XLSX.
package export

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/Sumee7/project1autoinsight/internal/model"
	"github.com/Sumee7/project1autoinsight/pkg/config"
	"github.com/Sumee7/project1autoinsight/pkg/errors"
	"github.com/Sumee7/project1autoinsight/pkg/profile"
)

// Exporter writes datasets in the supported formats.
type Exporter struct {
	// CommentFooter appends a "# exported ..." trailer to CSV output.
	// The parser skips comment lines, so round-tripping is unaffected.
	CommentFooter bool

	now func() time.Time
}

// New returns an exporter with default settings.
func New() *Exporter {
	return &Exporter{CommentFooter: true, now: time.Now}
}

// FromConfig builds an exporter from loaded configuration.
func FromConfig(cfg *config.Config) *Exporter {
	return &Exporter{CommentFooter: cfg.Export.CommentFooter, now: time.Now}
}

// Export dispatches on format: csv, json, html or xlsx.
func (e *Exporter) Export(w io.Writer, format string, ds *model.Dataset, s profile.Summary) error {
	switch strings.ToLower(format) {
	case "csv":
		return e.CSV(w, ds)
	case "json":
		return e.JSON(w, ds, s)
	case "html":
		return e.HTML(w, ds, s)
	case "xlsx":
		return e.XLSX(w, ds, s)
	default:
		return errors.New(errors.CodeExportFailed, "unsupported export format "+format)
	}
}

// CSV writes the dataset as comma-separated text. Values containing a
// comma, quote or newline are quoted with internal quotes doubled, so
// the output parses back to the same cells.
func (e *Exporter) CSV(w io.Writer, ds *model.Dataset) error {
	var b strings.Builder

	writeRecord := func(fields []string) {
		for i, f := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(csvField(f))
		}
		b.WriteByte('\n')
	}

	writeRecord(ds.Columns)
	fields := make([]string, len(ds.Columns))
	for i := range ds.Rows {
		for j, c := range ds.Rows[i] {
			fields[j] = c.String()
		}
		writeRecord(fields)
	}

	if e.CommentFooter {
		fmt.Fprintf(&b, "# exported by autoinsight on %s\n", e.now().Format("2006-01-02"))
	}

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return errors.Wrap(err, errors.CodeExportFailed, "writing csv")
	}
	return nil
}

func csvField(v string) string {
	if !strings.ContainsAny(v, ",\"\n\r") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// jsonDocument is the JSON export shape.
type jsonDocument struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Summary profile.Summary  `json:"summary"`
}

// JSON writes the dataset plus its profile as an indented document.
// Numbers export as JSON numbers, missing cells as null.
func (e *Exporter) JSON(w io.Writer, ds *model.Dataset, s profile.Summary) error {
	doc := jsonDocument{Columns: ds.Columns, Rows: make([]map[string]any, 0, len(ds.Rows)), Summary: s}
	for i := range ds.Rows {
		row := make(map[string]any, len(ds.Columns))
		for j, col := range ds.Columns {
			row[col] = cellValue(ds.Rows[i][j])
		}
		doc.Rows = append(doc.Rows, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, errors.CodeExportFailed, "encoding json")
	}
	return nil
}

func cellValue(c model.Cell) any {
	if v, ok := c.Float(); ok {
		return v
	}
	if c.IsMissing() {
		return nil
	}
	return c.String()
}

var htmlPage = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>AutoInsight Report</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 8px; }
th { background: #f0f0f0; }
</style>
</head>
<body>
<h1>AutoInsight Report</h1>
<p>{{.Summary.RowCount}} rows, {{.Summary.ColumnCount}} columns, {{.Summary.DuplicateRowCount}} duplicate rows.</p>
<table>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
</body>
</html>
`))

// HTML writes a self-contained report page.
func (e *Exporter) HTML(w io.Writer, ds *model.Dataset, s profile.Summary) error {
	rows := make([][]string, 0, len(ds.Rows))
	for i := range ds.Rows {
		row := make([]string, len(ds.Rows[i]))
		for j, c := range ds.Rows[i] {
			row[j] = c.String()
		}
		rows = append(rows, row)
	}

	err := htmlPage.Execute(w, struct {
		Columns []string
		Rows    [][]string
		Summary profile.Summary
	}{ds.Columns, rows, s})
	if err != nil {
		return errors.Wrap(err, errors.CodeExportFailed, "rendering html")
	}
	return nil
}
