package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ahrav/go-compare/internal/domain"
)

const (
	formatTable = "table"
	formatJSON  = "json"

	maxCellWidth = 28
)

func checkFormat(format string) error {
	if format != formatTable && format != formatJSON {
		return fmt.Errorf("unsupported format %q: must be table or json", format)
	}
	return nil
}

// scoreReport is the JSON shape printed by score and show.
type scoreReport struct {
	ID            string                          `json:"id,omitempty"`
	Title         string                          `json:"title,omitempty"`
	ScoringMethod domain.ScoringMethod            `json:"scoring_method"`
	Version       int64                           `json:"version,omitempty"`
	WinnerID      string                          `json:"winner_id,omitempty"`
	Items         []domain.Item                   `json:"items"`
	Warnings      []domain.DegenerateInputWarning `json:"warnings,omitempty"`
}

func newScoreReport(c domain.Comparative, res domain.ScoreResult) scoreReport {
	return scoreReport{
		ID:            c.ID,
		Title:         c.Title,
		ScoringMethod: c.ScoringMethod,
		Version:       c.Version,
		WinnerID:      res.WinnerID,
		Items:         res.Items,
		Warnings:      res.Warnings,
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printScores renders the ranked items with one column per visible
// criterion, in criterion order. The winner is marked with "*".
func printScores(w io.Writer, c domain.Comparative, res domain.ScoreResult) {
	if c.Title != "" {
		rule := strings.Repeat("=", runewidth.StringWidth(c.Title))
		fmt.Fprintf(w, "%s\n%s\n\n", c.Title, rule) //nolint:errcheck
	}

	criteria := visibleCriteria(c.Criteria)
	header := []string{"", "RANK", "ITEM", "SCORE"}
	for _, cr := range criteria {
		header = append(header, cr.Name)
	}

	rows := make([][]string, 0, len(res.Items))
	for _, it := range res.Items {
		marker := ""
		if it.ID == res.WinnerID {
			marker = "*"
		}
		name := it.Name
		if name == "" {
			name = it.ID
		}
		row := []string{marker, fmt.Sprintf("%d", it.Rank), name, fmt.Sprintf("%.2f", it.Score)}
		for _, cr := range criteria {
			cell := "-"
			if v, ok := it.Value(cr.ID); ok && v.DisplayValue != "" {
				cell = v.DisplayValue
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}

	printTable(w, header, rows)

	if len(res.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings:\n") //nolint:errcheck
		for _, warn := range res.Warnings {
			fmt.Fprintf(w, "  - %s\n", warn) //nolint:errcheck
		}
	}
}

// printTable writes a left-aligned table sized by terminal display width, so
// wide runes and emoji keep the columns straight.
func printTable(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	measure := func(cells []string) {
		for i, cell := range cells {
			widths[i] = max(widths[i], runewidth.StringWidth(truncateCell(cell)))
		}
	}
	measure(header)
	for _, row := range rows {
		measure(row)
	}

	writeRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = padRight(truncateCell(cell), widths[i])
		}
		fmt.Fprintf(w, "%s\n", strings.TrimRight(strings.Join(parts, "  "), " ")) //nolint:errcheck
	}

	writeRow(header)
	rules := make([]string, len(widths))
	for i, width := range widths {
		rules[i] = strings.Repeat("-", width)
	}
	writeRow(rules)
	for _, row := range rows {
		writeRow(row)
	}
}

// truncateCell shortens a cell to maxCellWidth display columns.
func truncateCell(s string) string {
	return runewidth.Truncate(s, maxCellWidth, "…")
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func visibleCriteria(criteria []domain.Criterion) []domain.Criterion {
	out := make([]domain.Criterion, 0, len(criteria))
	for _, cr := range sortedByOrder(criteria) {
		if cr.IsVisible {
			out = append(out, cr)
		}
	}
	return out
}

func sortedByOrder(criteria []domain.Criterion) []domain.Criterion {
	out := append([]domain.Criterion(nil), criteria...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
