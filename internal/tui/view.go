package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/hardhatdesk/internal/app/orchestrator"
)

// View renders the current state of the model. Finished models render
// nothing so the caller can print the result itself.
func (m Model) View() string {
	if m.finished {
		return ""
	}
	if m.cancelled {
		return mutedStyle.Render(fmt.Sprintf("%s cancelled", m.label)) + "\n"
	}
	elapsed := m.now.Sub(m.startedAt).Truncate(time.Second)
	return fmt.Sprintf("%s %s %s\n", m.spinner.View(), m.label, mutedStyle.Render(elapsed.String()))
}

// RenderResult formats an operation outcome as a status line followed by its output.
func RenderResult(label, output string, err error) string {
	if err != nil {
		return failureStyle.Render("✗ "+label+" failed") + "\n" + outputStyle.Render(err.Error())
	}
	line := successStyle.Render("✓ " + label)
	if strings.TrimSpace(output) == "" {
		return line
	}
	return line + "\n" + outputStyle.Render(output)
}

// RenderStatus formats a toolchain status snapshot.
func RenderStatus(s orchestrator.Status) string {
	version := "not installed"
	if s.Version != nil {
		version = *s.Version
	}
	project := "not detected"
	if s.ProjectDetected && s.ProjectPath != nil {
		project = *s.ProjectPath
	}

	rows := []string{
		titleStyle.Render("Hardhat environment"),
		fmt.Sprintf(" %s toolchain  %s", icon(s.Installed), version),
		fmt.Sprintf(" %s project    %s", icon(s.ProjectDetected), project),
		fmt.Sprintf(" %s network    %s", icon(s.NetworkReachable), reachability(s.NetworkReachable)),
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// RenderContracts formats contract records as an aligned table.
func RenderContracts(contracts []orchestrator.Contract) string {
	if len(contracts) == 0 {
		return mutedStyle.Render("no contracts found")
	}

	width := len("CONTRACT")
	for _, c := range contracts {
		if len(c.Name) > width {
			width = len(c.Name)
		}
	}

	lines := []string{sectionStyle.Render(fmt.Sprintf("%-*s  %-10s  %s", width, "CONTRACT", "STATUS", "SOURCE"))}
	for _, c := range contracts {
		status := mutedStyle.Render(fmt.Sprintf("%-10s", "pending"))
		if c.IsCompiled {
			status = successStyle.Render(fmt.Sprintf("%-10s", "compiled"))
		}
		source := filepath.Base(c.SourcePath)
		if c.SizeBytes != nil {
			source = fmt.Sprintf("%s (%d bytes)", source, *c.SizeBytes)
		}
		lines = append(lines, fmt.Sprintf("%-*s  %s  %s", width, c.Name, status, source))
	}
	return strings.Join(lines, "\n")
}

func icon(ok bool) string {
	if ok {
		return successStyle.Render("✓")
	}
	return failureStyle.Render("✗")
}

func reachability(ok bool) string {
	if ok {
		return "reachable"
	}
	return "unreachable"
}
