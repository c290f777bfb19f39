package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/mfdcache/pkg/provider"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleMemory   = lipgloss.NewStyle().Foreground(colorYellow)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
	iconMemory  = "memory"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Artifact Output
// =============================================================================

// artifactStats counts artifacts by how they were produced. Aliases of one
// composite are counted once.
type artifactStats struct {
	cached, fresh, memory int
}

func countArtifacts(arts provider.Artifacts) artifactStats {
	var s artifactStats
	seen := make(map[string]bool)
	for _, a := range arts {
		if seen[a.Key] {
			continue
		}
		seen[a.Key] = true
		switch {
		case a.Cached:
			s.cached++
		case a.Persisted:
			s.fresh++
		default:
			s.memory++
		}
	}
	return s
}

func (s artifactStats) total() int {
	return s.cached + s.fresh + s.memory
}

// String renders the counts on a single line, e.g. "3 fresh · 2 cached".
func (s artifactStats) String() string {
	var parts []string
	if s.fresh > 0 {
		parts = append(parts, styleComputed.Render(fmt.Sprintf("%d %s", s.fresh, iconFresh)))
	}
	if s.cached > 0 {
		parts = append(parts, styleCached.Render(fmt.Sprintf("%d %s", s.cached, iconCached)))
	}
	if s.memory > 0 {
		parts = append(parts, styleMemory.Render(fmt.Sprintf("%d %s", s.memory, iconMemory)))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

// artifactTable renders one row per lookup key, sorted by key.
func artifactTable(arts provider.Artifacts) string {
	keys := make([]string, 0, len(arts))
	for k := range arts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		a := arts[k]
		status := iconFresh
		switch {
		case a.Cached:
			status = iconCached
		case !a.Persisted:
			status = iconMemory
		}
		path := a.Path
		if path == "" {
			path = "—"
		}
		rows = append(rows, []string{k, fmt.Sprintf("%dx%d", a.Width, a.Height), status, path})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Key", "Size", "Status", "File").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col != 2 || row < 0 || row >= len(rows) {
				return lipgloss.NewStyle()
			}
			switch rows[row][2] {
			case iconCached:
				return styleCached
			case iconMemory:
				return styleMemory
			default:
				return styleComputed
			}
		})
	return t.Render()
}
