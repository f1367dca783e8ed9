package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/churn/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// View renders the current state.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.state {
	case StateScoring:
		body = m.renderScoring()
	case StateResult:
		body = m.renderResult()
	default:
		body = m.renderForm()
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, "", m.help.View(m.keymap))
}

// renderForm renders the input form, scrolled so the focused field is visible.
func (m Model) renderForm() string {
	header := []string{m.theme.Title.Render("🏦 Customer Churn Prediction")}
	if m.config.Notice != "" {
		header = append(header, m.theme.Subtitle.Render(m.config.Notice))
	}

	var lines []string
	focusLine := 0
	group := ""
	for i, f := range m.fields {
		if f.field.Group != group {
			group = f.field.Group
			if len(lines) > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, m.theme.Bold.Render(group))
		}
		if i == m.focus {
			focusLine = len(lines)
		}
		lines = append(lines, m.renderField(i, f))
	}

	footer := m.renderStatus()

	// title, optional notice, status, and help each take space
	visible := m.height - len(header) - 6
	if visible > 0 && visible < len(lines) {
		start := focusLine - visible/2
		if start < 0 {
			start = 0
		}
		if start+visible > len(lines) {
			start = len(lines) - visible
		}
		lines = lines[start : start+visible]
	}

	parts := append(header, lines...)
	if footer != "" {
		parts = append(parts, "", footer)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderField(i int, f formField) string {
	focused := i == m.focus

	label := m.theme.Label.Render("  " + f.field.Label)
	if focused {
		label = m.theme.FocusedLabel.Render("▸ " + f.field.Label)
	}

	var value string
	if f.field.Kind == model.InputChoice {
		choices := make([]string, len(f.field.Choices))
		for j, c := range f.field.Choices {
			if j == f.choice {
				choices[j] = m.theme.Selected.Render(c)
			} else {
				choices[j] = m.theme.Choice.Render(c)
			}
		}
		value = strings.Join(choices, " ")
	} else {
		value = f.input.View()
	}

	line := label + value
	if m.fieldErrors[f.field.Name] {
		line += " " + m.theme.StatusError.Render("✗")
	}
	if focused {
		if hint := f.field.Hint(); hint != "" {
			line += "  " + m.theme.Hint.Render(hint)
		}
	}
	return line
}

func (m Model) renderStatus() string {
	if m.lastError == nil {
		return ""
	}
	msgs := strings.Split(m.lastError.Error(), "\n")
	for i, s := range msgs {
		msgs[i] = "✗ " + s
	}
	return m.theme.StatusError.Render(strings.Join(msgs, "\n"))
}

func (m Model) renderScoring() string {
	return fmt.Sprintf("%s Scoring customer...", m.spinner.View())
}

func (m Model) renderResult() string {
	p := m.result
	if p == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", m.theme.Bold.Render("Customer:"), p.CustomerID)
	fmt.Fprintf(&b, "%s %.2f%%\n", m.theme.Bold.Render("Churn Probability:"), p.Probability*100)
	fmt.Fprintf(&b, "%s %.3f\n\n", m.theme.Subtitle.Render("Threshold:"), p.Threshold)
	if p.Churn {
		b.WriteString(m.theme.RiskHigh.Render("⚠ HIGH RISK: customer is likely to churn"))
	} else {
		b.WriteString(m.theme.RiskLow.Render("✓ LOW RISK: customer is likely to stay"))
	}

	if m.showDetails {
		b.WriteString("\n\n" + m.theme.Bold.Render("Features") + "\n")
		for _, f := range p.Features.Features() {
			fmt.Fprintf(&b, "  %-20s %s\n", f.Name, f.String())
		}
	}

	box := m.theme.RoundedBox.Render(strings.TrimRight(b.String(), "\n"))
	session := m.theme.Subtitle.Render(fmt.Sprintf("Predictions this session: %d", len(m.predictions)))
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render("📊 Prediction Result"),
		box,
		"",
		session,
	)
}
