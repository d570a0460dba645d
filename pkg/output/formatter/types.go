package formatter

import (
	"time"

	"github.com/credsweep/credsweep/pkg/cache"
	"github.com/credsweep/credsweep/pkg/scan"
)

// Report is the exportable view of a scan. Findings carry redacted values
// only; the raw token never leaves the cache file.
type Report struct {
	Metadata ReportMetadata `json:"metadata"`
	Findings []Finding      `json:"findings"`
}

// ReportMetadata describes the scan the report came from.
type ReportMetadata struct {
	GeneratedAt        time.Time `json:"generated_at"`
	ScanStatus         string    `json:"scan_status"`
	LastScanTimestamp  time.Time `json:"last_scan_timestamp"`
	LastScanDurationMs int64     `json:"last_scan_duration_ms"`
	SettingsScanned    bool      `json:"settings_scanned"`
	DiscussionsScanned bool      `json:"discussions_scanned"`
	DiscussionCount    int       `json:"discussion_count"`
	FindingCount       int       `json:"finding_count"`
}

// Finding is one display-safe match.
type Finding struct {
	ID            string        `json:"id"`
	Type          string        `json:"type"`
	Severity      string        `json:"severity"`
	Description   string        `json:"description"`
	Remediation   string        `json:"remediation"`
	RedactedValue string        `json:"redacted_value"`
	Location      scan.Location `json:"location"`
}

// BuildReport converts the cache into an exportable report.
func BuildReport(c *cache.Cache) *Report {
	findings := make([]Finding, 0, len(c.Tokens))
	for _, m := range c.Tokens {
		findings = append(findings, Finding{
			ID:            m.ID,
			Type:          m.Type,
			Severity:      m.Severity,
			Description:   m.Description,
			Remediation:   m.Remediation,
			RedactedValue: m.RedactedValue,
			Location:      m.Location,
		})
	}
	return &Report{
		Metadata: ReportMetadata{
			GeneratedAt:        time.Now(),
			ScanStatus:         c.ScanStatus,
			LastScanTimestamp:  c.LastScanTimestamp,
			LastScanDurationMs: c.LastScanDurationMs,
			SettingsScanned:    c.SettingsScanned,
			DiscussionsScanned: c.DiscussionsScanned,
			DiscussionCount:    c.DiscussionCount,
			FindingCount:       len(findings),
		},
		Findings: findings,
	}
}
