package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/model"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/wizard"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4A9EFF"))
	stepDoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D787"))
	stepHereStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4A9EFF"))
	stepTodoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD700"))
	mappedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D787"))
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("VersaTex Upload Wizard"))
	b.WriteString("\n\n")
	b.WriteString(m.renderStepBar())
	b.WriteString("\n\n")

	switch m.session.Step() {
	case wizard.StepSelectFile:
		b.WriteString(m.renderSelectFile())
	case wizard.StepPreview:
		b.WriteString(m.renderPreview())
	case wizard.StepMapColumns:
		b.WriteString(m.renderMapping())
	case wizard.StepValidate:
		b.WriteString(m.renderValidation())
	case wizard.StepUpload:
		b.WriteString(m.renderUpload())
	}

	if m.lastErr != nil {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("✗ " + m.lastErr.Error()))
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderStepBar() string {
	steps := []wizard.Step{
		wizard.StepSelectFile,
		wizard.StepPreview,
		wizard.StepMapColumns,
		wizard.StepValidate,
		wizard.StepUpload,
	}

	parts := make([]string, 0, len(steps))
	current := m.session.Step()
	for _, step := range steps {
		label := fmt.Sprintf("%d %s", int(step), step)
		switch {
		case step < current:
			parts = append(parts, stepDoneStyle.Render("✓ "+label))
		case step == current:
			parts = append(parts, stepHereStyle.Render("▸ "+label))
		default:
			parts = append(parts, stepTodoStyle.Render("  "+label))
		}
	}
	return strings.Join(parts, mutedStyle.Render("  │  "))
}

func (m Model) renderSelectFile() string {
	if m.session.FilePath() == "" {
		return mutedStyle.Render("No file selected.")
	}
	return fmt.Sprintf("File: %s", m.session.FilePath())
}

func (m Model) renderPreview() string {
	if m.busy {
		return m.spinner.View() + " Reading file..."
	}

	headers := m.session.Headers()
	if len(headers) == 0 {
		return mutedStyle.Render("File is empty.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d data rows\n\n", m.session.RowCount())
	b.WriteString(stepHereStyle.Render(strings.Join(headers, " │ ")))
	for _, row := range m.session.PreviewRows(5) {
		b.WriteString("\n")
		b.WriteString(strings.Join(row, " │ "))
	}
	return b.String()
}

func (m Model) renderMapping() string {
	headers := m.session.Headers()
	mapping := m.session.Mapping()

	var b strings.Builder
	for i, h := range headers {
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("▸") + " "
		}
		line := prefix + fmt.Sprintf("%-24s → ", h)
		switch target := mapping[h]; target {
		case "":
			line += mutedStyle.Render("(unmapped)")
		case model.IgnoredField:
			line += mutedStyle.Render("(ignored)")
		default:
			line += mappedStyle.Render(target)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if missing := mapping.MissingTargets(); len(missing) > 0 {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Missing: " + strings.Join(missing, ", ")))
	}

	if m.mapping {
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "Map %q to: %s", headers[m.cursor], m.input.View())
	}
	return b.String()
}

func (m Model) renderValidation() string {
	if m.busy {
		return m.spinner.View() + " Validating with server..."
	}

	result := m.session.Validation()
	if result == nil {
		return mutedStyle.Render("Not validated yet.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %d valid rows\n", mappedStyle.Render("✓"), result.ValidRows)
	if result.InvalidRows > 0 {
		fmt.Fprintf(&b, "%s %d invalid rows\n", errorStyle.Render("✗"), result.InvalidRows)
		for i, rowErr := range result.Errors {
			if i >= 5 {
				fmt.Fprintf(&b, "  ... and %d more\n", len(result.Errors)-5)
				break
			}
			fmt.Fprintf(&b, "  row %d: %s\n", rowErr.Row, rowErr.Message)
		}
		skip := "off"
		if m.session.SkipInvalid() {
			skip = "on"
		}
		fmt.Fprintf(&b, "\nSkip invalid rows: %s", stepHereStyle.Render(skip))
	}
	return b.String()
}

func (m Model) renderUpload() string {
	job := m.lastJob
	if m.result != nil {
		job = m.result
	}
	if job == nil {
		return m.spinner.View() + " Submitting upload..."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Job %s\n", job.ID)
	switch job.Status {
	case model.JobCompleted:
		fmt.Fprintf(&b, "%s Completed: %d rows imported", mappedStyle.Render("✓"), job.ProcessedRows)
	case model.JobFailed:
		fmt.Fprintf(&b, "%s Failed: %s", errorStyle.Render("✗"), job.Error)
	default:
		fmt.Fprintf(&b, "%s %s: %d/%d rows", m.spinner.View(), job.Status, job.ProcessedRows, job.TotalRows)
	}
	return b.String()
}

func (m Model) renderHelp() string {
	if m.mapping {
		return mutedStyle.Render("enter apply · esc cancel")
	}

	switch m.session.Step() {
	case wizard.StepMapColumns:
		return mutedStyle.Render("↑/↓ select · m map · i ignore · enter next · b back · q quit")
	case wizard.StepValidate:
		return mutedStyle.Render("s toggle skip-invalid · enter upload · b back · q quit")
	case wizard.StepUpload:
		return mutedStyle.Render("ctrl+x cancel · q quit")
	default:
		return mutedStyle.Render("enter next · b back · q quit")
	}
}
