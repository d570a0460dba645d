package terminal

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/credsweep/credsweep/pkg/cache"
	"github.com/credsweep/credsweep/pkg/scan"
)

// Colors
var (
	Blue   = color.New(color.FgCyan).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	White  = color.New(color.FgWhite).SprintFunc()
	Gray   = color.New(color.FgHiBlack).SprintFunc()
	Bold   = color.New(color.Bold).SprintFunc()
)

// PrintSectionHeader prints a section header with arrows.
func PrintSectionHeader(title string) {
	arrows := strings.Repeat("→", 60)
	fmt.Println()
	fmt.Println(Blue(arrows))
	fmt.Printf("%s%s\n", strings.Repeat(" ", 20), Bold(title))
	fmt.Println(Blue(arrows))
	fmt.Println()
}

// PrintProgress prints a simple progress message.
func PrintProgress(message string) {
	fmt.Printf("%s %s\n", Blue("→"), message)
}

// PrintSuccess prints a success message.
func PrintSuccess(message string) {
	fmt.Printf("%s %s\n", Green("✓"), message)
}

// PrintWarning prints a warning message.
func PrintWarning(message string) {
	fmt.Printf("%s %s\n", Yellow("⚠"), message)
}

// PrintError prints an error message.
func PrintError(message string) {
	fmt.Printf("%s %s\n", Red("✗"), message)
}

func severityColor(severity string) func(a ...interface{}) string {
	switch severity {
	case "critical":
		return Red
	case "high":
		return Yellow
	default:
		return Blue
	}
}

// PrintFindings prints findings grouped by severity, most severe first.
// Only redacted values are ever printed.
func PrintFindings(matches []scan.TokenMatch) {
	if len(matches) == 0 {
		PrintSuccess("No credentials found")
		return
	}

	bySeverity := map[string][]scan.TokenMatch{}
	for _, m := range matches {
		bySeverity[m.Severity] = append(bySeverity[m.Severity], m)
	}

	for _, severity := range []string{"critical", "high", "medium"} {
		group := bySeverity[severity]
		if len(group) == 0 {
			continue
		}
		paint := severityColor(severity)
		fmt.Printf("\n%s\n", paint(Bold(fmt.Sprintf("[%s] %d finding(s)", strings.ToUpper(severity), len(group)))))
		for _, m := range group {
			fmt.Printf("  %s %s  %s\n", paint("●"), Bold(m.Type), m.RedactedValue)
			fmt.Printf("    %s\n", White(formatLocation(m.Location)))
			fmt.Printf("    %s\n", Gray(m.Remediation))
		}
	}
	fmt.Println()
}

func formatLocation(loc scan.Location) string {
	switch l := loc.(type) {
	case scan.SettingsLocation:
		if l.ProjectPath != "" {
			return fmt.Sprintf("settings (%s) %s at %q", l.Scope, l.ProjectPath, l.SettingsKey)
		}
		return fmt.Sprintf("settings (%s) at %q", l.Scope, l.SettingsKey)
	case scan.DiscussionLocation:
		return fmt.Sprintf("discussion %s / session %s", l.ProjectName, l.SessionID)
	default:
		return "unknown"
	}
}

// PrintCacheSummary prints the scan-status block of the cache.
func PrintCacheSummary(c *cache.Cache) {
	fmt.Println(Bold("Scan status:"))
	fmt.Printf("   ├── Status: %s\n", statusColored(c.ScanStatus))
	if !c.LastScanTimestamp.IsZero() {
		fmt.Printf("   ├── Last scan: %s (%s)\n",
			c.LastScanTimestamp.Format(time.RFC3339),
			White(fmt.Sprintf("%dms", c.LastScanDurationMs)))
	}
	fmt.Printf("   ├── Settings scanned: %v\n", c.SettingsScanned)
	fmt.Printf("   ├── Discussions scanned: %v (%d files)\n", c.DiscussionsScanned, c.DiscussionCount)
	if c.ScanError != "" {
		fmt.Printf("   ├── Last error: %s\n", Red(c.ScanError))
	}
	fmt.Printf("   └── Findings: %s\n", Bold(fmt.Sprintf("%d", len(c.Tokens))))
}

func statusColored(status string) string {
	switch status {
	case cache.StatusCompleted:
		return Green(status)
	case cache.StatusRunning:
		return Yellow(status)
	case cache.StatusError:
		return Red(status)
	default:
		return White(status)
	}
}
