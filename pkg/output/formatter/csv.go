package formatter

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/credsweep/credsweep/pkg/scan"
)

// CSVFormatter writes the findings table as CSV.
type CSVFormatter struct {
	OutputPath string
}

// NewCSVFormatter creates a new CSV formatter writing into outputPath.
func NewCSVFormatter(outputPath string) *CSVFormatter {
	return &CSVFormatter{OutputPath: outputPath}
}

// Format writes the findings to findings.csv, one row per finding.
func (c *CSVFormatter) Format(report *Report) error {
	outputFile := filepath.Join(c.OutputPath, "findings.csv")

	file, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := []string{"id", "type", "severity", "redacted_value", "source", "scope", "project", "settings_key", "session_id", "file_path"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, f := range report.Findings {
		row := []string{f.ID, f.Type, f.Severity, f.RedactedValue}
		switch loc := f.Location.(type) {
		case scan.SettingsLocation:
			row = append(row, "settings", loc.Scope, loc.ProjectPath, loc.SettingsKey, "", "")
		case scan.DiscussionLocation:
			row = append(row, "discussion", "", loc.ProjectName, "", loc.SessionID, loc.FilePath)
		default:
			row = append(row, "", "", "", "", "", "")
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
