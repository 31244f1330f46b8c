package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"github.com/aidensmith24/shopifyscraper/internal/snapshot"
	"github.com/aidensmith24/shopifyscraper/internal/stats"
)

var summaryTemplate = template.Must(template.New("summary").Parse(
	`Store     {{.Store}}
Products  {{.Sum.Products}}
Variants  {{.Sum.Variants}} ({{.Sum.Stock.Available}} available / {{.Sum.Stock.Unavailable}} unavailable)
{{- if gt .Sum.Price.Count 0}}
Prices    n={{.Sum.Price.Count}} min={{printf "%.2f" .Sum.Price.Min}} max={{printf "%.2f" .Sum.Price.Max}} mean={{printf "%.2f" .Sum.Price.Mean}} median={{printf "%.2f" .Sum.Price.Median}}
{{- else}}
Prices    none
{{- end}}
{{- if .Sum.Vendors}}

Top vendors
{{- range .Sum.Vendors}}
  {{printf "%-28s" .Name}}{{.Count}}
{{- end}}
{{- end}}
{{- if .Sum.Types}}

Top product types
{{- range .Sum.Types}}
  {{printf "%-28s" .Name}}{{.Count}}
{{- end}}
{{- end}}
{{- if .Sum.Tags}}

Top tags
{{- range .Sum.Tags}}
  {{printf "%-28s" .Name}}{{.Count}}
{{- end}}
{{- end}}
`))

var diffTemplate = template.Must(template.New("diff").Parse(
	`Comparing {{.Old}} -> {{.New}}
{{- if .Diff.Empty}}
No catalog changes.
{{- else}}
Added ({{len .Diff.Added}})
{{- range .Diff.Added}}
  + {{.ID}}  {{.Title}}
{{- end}}
Removed ({{len .Diff.Removed}})
{{- range .Diff.Removed}}
  - {{.ID}}  {{.Title}}
{{- end}}
Changed ({{len .Diff.Changed}})
{{- range .Diff.Changed}}
  ~ {{.ID}}  {{.Title}}
{{- end}}
{{- end}}
`))

type summaryView struct {
	Store string
	Sum   stats.Summary
}

func printSummary(w io.Writer, store string, sum stats.Summary) error {
	if err := summaryTemplate.Execute(w, summaryView{Store: store, Sum: sum}); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	return nil
}

type diffView struct {
	Old  string
	New  string
	Diff snapshot.DiffResult
}

func printDiff(w io.Writer, oldName, newName string, result snapshot.DiffResult) error {
	if err := diffTemplate.Execute(w, diffView{Old: oldName, New: newName, Diff: result}); err != nil {
		return fmt.Errorf("render diff: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
