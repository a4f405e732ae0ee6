package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	domain "contenttest/internal/domain/contenttest"
	"contenttest/internal/output"
	"contenttest/internal/usecase/contenttest"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	passStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	snapshotBox  = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("241")).Padding(0, 1)
)

func renderVerdict(verdict domain.Verdict) string {
	switch verdict {
	case domain.VerdictPass:
		return passStyle.Render(string(verdict))
	case domain.VerdictFail, domain.VerdictError:
		return failStyle.Render(string(verdict))
	default:
		return dimStyle.Render(string(verdict))
	}
}

func renderDetail(detail contenttest.TestDetail) string {
	var builder strings.Builder
	builder.WriteString(titleStyle.Render(detail.TestRef))
	builder.WriteString(" ")
	builder.WriteString(renderVerdict(detail.Verdict))
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(fmt.Sprintf(
		"location=%s should_be=%s created=%s updated=%s",
		detail.Location,
		detail.ShouldBe,
		detail.CreatedAt,
		detail.UpdatedAt,
	)))
	builder.WriteString("\n")
	if detail.Rematch.Changed() {
		builder.WriteString(dimStyle.Render(fmt.Sprintf(
			"rematched: path=%s renamed=%d refreshed=%d deleted=%d created=%d",
			detail.Rematch.Path,
			detail.Rematch.Renamed,
			detail.Rematch.Refreshed,
			detail.Rematch.Deleted,
			detail.Rematch.Created,
		)))
		builder.WriteString("\n")
	}

	for _, component := range detail.Components {
		builder.WriteString("\n")
		builder.WriteString(sectionStyle.Render(component.ComponentID))
		builder.WriteString("\n")
		for _, field := range component.Fields {
			builder.WriteString(fmt.Sprintf("  %s = %s\n", field.FieldID, answerOrNotSet(field.Answer)))
		}
		builder.WriteString(snapshotBox.Render(strings.TrimSpace(component.XML)))
		builder.WriteString("\n")
	}
	return builder.String()
}

func renderSummary(summary contenttest.TestSummary) string {
	var builder strings.Builder
	builder.WriteString(titleStyle.Render(summary.TestRef))
	builder.WriteString(" ")
	builder.WriteString(renderVerdict(summary.Verdict))
	builder.WriteString(dimStyle.Render(" should_be=" + string(summary.ShouldBe)))
	builder.WriteString("\n")
	for i, answer := range summary.Answers {
		builder.WriteString(fmt.Sprintf("  %d. %s\n", i+1, answer))
	}
	return builder.String()
}

func renderRunResult(result contenttest.RunResult) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%s %s\n", result.TestRef, renderVerdict(result.Verdict)))
	if result.Rematch.Changed() {
		builder.WriteString(dimStyle.Render(fmt.Sprintf("  rematched: path=%s", result.Rematch.Path)))
		builder.WriteString("\n")
	}
	if result.GradeError != "" {
		builder.WriteString(dimStyle.Render("  grading error: " + result.GradeError))
		builder.WriteString("\n")
	}

	ids := make([]string, 0, len(result.Grades))
	for id := range result.Grades {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		builder.WriteString(fmt.Sprintf("  %s: %s\n", id, result.Grades[id]))
	}
	return builder.String()
}

func answerOrNotSet(answer string) string {
	if answer == "" {
		return contenttest.NotSetAnswer
	}
	return answer
}

type testListView []contenttest.TestListItem

func (v testListView) Table() output.Table {
	table := output.Table{Headers: []string{"Test", "Verdict", "Should Be", "Location", "Updated"}}
	for _, item := range v {
		table.Rows = append(table.Rows, []string{
			item.TestRef,
			string(item.Verdict),
			string(item.ShouldBe),
			item.Location,
			item.UpdatedAt,
		})
	}
	return table
}

type runResultsView []contenttest.RunResult

func (v runResultsView) Table() output.Table {
	table := output.Table{Headers: []string{"Test", "Verdict", "Rematch", "Grading Error"}}
	for _, result := range v {
		rematch := "-"
		if result.Rematch.Changed() {
			rematch = string(result.Rematch.Path)
		}
		table.Rows = append(table.Rows, []string{
			result.TestRef,
			string(result.Verdict),
			rematch,
			firstNonEmpty(result.GradeError, "-"),
		})
	}
	return table
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
