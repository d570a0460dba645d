package formatter

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// JSONFormatter writes the report as indented JSON.
type JSONFormatter struct {
	OutputPath string
}

// NewJSONFormatter creates a new JSON formatter writing into outputPath.
func NewJSONFormatter(outputPath string) *JSONFormatter {
	return &JSONFormatter{OutputPath: outputPath}
}

// Format writes the report to findings.json.
func (j *JSONFormatter) Format(report *Report) error {
	outputFile := filepath.Join(j.OutputPath, "findings.json")

	file, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
