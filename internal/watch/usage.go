package watch

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const usageBullet = "›"

var (
	usageHeaderStyle = lipgloss.NewStyle().Bold(true)
	usageDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	usageKeyStyle    = lipgloss.NewStyle().Bold(true)
	filterStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
)

// builtinUsage lists the fixed usage lines for built-in actions, in
// display order. Plugin lines are appended separately, sorted by
// prompt text.
var builtinUsage = []PromptLine{
	{Key: KeyWatchAll, Prompt: "run all tests"},
	{Key: KeyOnlyChanged, Prompt: "only run tests related to changed files"},
	{Key: KeyPathPattern, Prompt: "filter by a filename regex pattern"},
	{Key: KeyNamePattern, Prompt: "filter by a test name regex pattern"},
	{Key: KeyUpdateSnapshot, Prompt: "update failing snapshots"},
	{Key: KeyClearFilters, Prompt: "clear active filters"},
	{Key: KeyShowUsage, Prompt: "show watch usage"},
	{Key: KeyQuit, Prompt: "quit watch mode"},
}

// Usage renders the watch usage footer. The interactive variant lists
// one line per built-in action plus one per plugin; the non-interactive
// variant is a minimal plain summary with no per-key prompts and no
// ANSI sequences.
func Usage(registry *Registry, cfg RunConfig, interactive bool) string {
	var b strings.Builder

	if !interactive {
		b.WriteString("\nWatch mode is active.\n")
		if cfg.HasFilters() {
			b.WriteString(activeFilters(cfg) + "\n")
		}
		return b.String()
	}

	b.WriteString("\n")
	if cfg.HasFilters() {
		b.WriteString(filterStyle.Render(activeFilters(cfg)) + "\n\n")
	}
	b.WriteString(usageHeaderStyle.Render("Watch Usage") + "\n")

	for _, line := range builtinUsage {
		writeUsageLine(&b, line)
	}
	if registry != nil {
		for _, line := range registry.Prompts() {
			writeUsageLine(&b, line)
		}
	}
	b.WriteString(fmt.Sprintf(" %s Press %s to trigger a test run.\n",
		usageDimStyle.Render(usageBullet), usageKeyStyle.Render("Enter")))

	return b.String()
}

func writeUsageLine(b *strings.Builder, line PromptLine) {
	b.WriteString(fmt.Sprintf(" %s Press %s to %s.\n",
		usageDimStyle.Render(usageBullet), usageKeyStyle.Render(line.Key), line.Prompt))
}

// activeFilters formats the current pattern filters for display.
func activeFilters(cfg RunConfig) string {
	var parts []string
	if cfg.TestPathPattern != "" {
		parts = append(parts, fmt.Sprintf("filename /%s/", cfg.TestPathPattern))
	}
	if cfg.TestNamePattern != "" {
		parts = append(parts, fmt.Sprintf("test name /%s/", cfg.TestNamePattern))
	}
	return "Active Filters: " + strings.Join(parts, ", ")
}
