package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/credsweep/credsweep/pkg/scan"
)

// TXTFormatter writes a plain-text report.
type TXTFormatter struct {
	OutputPath string
}

// NewTXTFormatter creates a new TXT formatter writing into outputPath.
func NewTXTFormatter(outputPath string) *TXTFormatter {
	return &TXTFormatter{OutputPath: outputPath}
}

// Format writes the findings to findings.txt grouped by severity.
func (t *TXTFormatter) Format(report *Report) error {
	var out strings.Builder

	out.WriteString("=== CREDSWEEP FINDINGS ===\n\n")
	out.WriteString(fmt.Sprintf("Generated: %s\n", report.Metadata.GeneratedAt.Format("2006-01-02 15:04:05")))
	out.WriteString(fmt.Sprintf("Findings: %d\n\n", report.Metadata.FindingCount))

	bySeverity := map[string][]Finding{}
	for _, f := range report.Findings {
		bySeverity[f.Severity] = append(bySeverity[f.Severity], f)
	}

	for _, severity := range []string{"critical", "high", "medium"} {
		group := bySeverity[severity]
		if len(group) == 0 {
			continue
		}
		out.WriteString(fmt.Sprintf("[%s]\n", strings.ToUpper(severity)))
		for _, f := range group {
			out.WriteString(fmt.Sprintf("  %s: %s\n", f.Type, f.RedactedValue))
			out.WriteString(fmt.Sprintf("    Where: %s\n", describeLocation(f.Location)))
			out.WriteString(fmt.Sprintf("    Fix: %s\n\n", f.Remediation))
		}
	}

	outputFile := filepath.Join(t.OutputPath, "findings.txt")
	return os.WriteFile(outputFile, []byte(out.String()), 0o644)
}

func describeLocation(loc scan.Location) string {
	switch l := loc.(type) {
	case scan.SettingsLocation:
		if l.ProjectPath != "" {
			return fmt.Sprintf("settings (%s scope) %s key %s", l.Scope, l.ProjectPath, l.SettingsKey)
		}
		return fmt.Sprintf("settings (%s scope) key %s", l.Scope, l.SettingsKey)
	case scan.DiscussionLocation:
		return fmt.Sprintf("discussion %s session %s (%s)", l.ProjectName, l.SessionID, l.FilePath)
	default:
		return "unknown"
	}
}
