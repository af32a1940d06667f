package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lukemcguire/reflink/result"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true)
	successStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	categoryStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dimStyle         = lipgloss.NewStyle().Faint(true)
	cellStyle        = lipgloss.NewStyle()
	statusErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// categoryOrder defines the display order for error categories (most to least actionable).
var categoryOrder = []result.ErrorCategory{
	result.Category4xx,
	result.Category5xx,
	result.CategoryTimeout,
	result.CategoryDNSFailure,
	result.CategoryConnectionRefused,
	result.CategoryRedirectLoop,
	result.CategoryUnknown,
}

// RenderSummary produces a Lip Gloss styled summary of a rewrite report.
func RenderSummary(report *result.Report) string {
	if report == nil {
		return errorStyle.Render("No results available.")
	}

	var builder strings.Builder
	elapsed := report.Stats.Duration.Round(1_000_000) // round to ms

	unresolved := report.Unresolved()
	if len(unresolved) == 0 {
		builder.WriteString(successStyle.Render(fmt.Sprintf("All %d references linked!", report.Stats.Found)))
		builder.WriteString("\n")
		builder.WriteString(dimStyle.Render(fmt.Sprintf(
			"%d probes, %d cache hits in %s",
			report.Stats.Probes, report.Stats.CacheHits, elapsed,
		)))
		builder.WriteString("\n")
		return builder.String()
	}

	grouped := make(map[result.ErrorCategory][]result.Reference)
	for _, ref := range unresolved {
		cat := ref.ErrorCategory
		if cat == "" {
			cat = result.CategoryUnknown
		}
		grouped[cat] = append(grouped[cat], ref)
	}

	for _, cat := range categoryOrder {
		refs := grouped[cat]
		if len(refs) == 0 {
			continue
		}

		builder.WriteString(categoryStyle.Render(fmt.Sprintf("## %s (%d)", result.FormatCategory(cat), len(refs))))
		builder.WriteString("\n")

		rows := make([][]string, 0, len(refs))
		for _, ref := range refs {
			status := strconv.Itoa(ref.StatusCode)
			if ref.StatusCode == 0 {
				status = string(ref.ErrorCategory)
			}
			rows = append(rows, []string{strconv.Itoa(ref.Line), ref.Text, ref.URL, status})
		}

		catTable := table.New().
			Border(lipgloss.RoundedBorder()).
			Headers("Line", "Reference", "URL", "Status").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				if col == 3 {
					return statusErrorStyle
				}
				return cellStyle
			}).
			Rows(rows...)

		builder.WriteString(catTable.Render())
		builder.WriteString("\n\n")
	}

	builder.WriteString(titleStyle.Render(fmt.Sprintf(
		"Linked %d of %d references, %d left unchanged (%s)",
		report.Stats.Rewritten,
		report.Stats.Found,
		report.Stats.Unresolved,
		elapsed,
	)))
	builder.WriteString("\n")

	return builder.String()
}
