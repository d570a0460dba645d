// Package notify sends desktop notifications about finished background
// scans. Notification failures are logged and swallowed; a missing desktop
// environment must not fail a scan.
package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/credsweep/credsweep/pkg/logging"
)

const title = "credsweep"

// ScanCompleted notifies about a finished background scan.
func ScanCompleted(findings int) {
	var body string
	if findings == 0 {
		body = "Background scan finished: no credentials found"
	} else {
		body = fmt.Sprintf("Background scan finished: %d potential credential(s) found", findings)
	}
	if err := beeep.Notify(title, body, ""); err != nil {
		logging.Logger.Debugw("desktop notification failed", "error", err)
	}
}

// ScanFailed notifies about a failed background scan.
func ScanFailed(scanErr error) {
	body := fmt.Sprintf("Background scan failed: %v", scanErr)
	if err := beeep.Alert(title, body, ""); err != nil {
		logging.Logger.Debugw("desktop notification failed", "error", err)
	}
}
