// Package scanner coordinates scans: the synchronous settings pass, the
// background discussion pass with its cache-status state machine, and
// finding removal.
package scanner

import (
	"context"
	"time"

	"github.com/credsweep/credsweep/pkg/cache"
	"github.com/credsweep/credsweep/pkg/config"
	"github.com/credsweep/credsweep/pkg/logging"
	"github.com/credsweep/credsweep/pkg/scan"
)

// Orchestrator owns the scan cache. All cache writes go through it; request
// handlers and commands never write the cache file directly, which keeps the
// read-modify-write of the whole document single-writer.
type Orchestrator struct {
	Store *cache.Store
	Cfg   *config.Config

	// Progress, when set, is forwarded to the discussion scanner.
	Progress scan.ProgressFunc
}

// New returns an orchestrator over the given store and configuration.
func New(store *cache.Store, cfg *config.Config) *Orchestrator {
	return &Orchestrator{Store: store, Cfg: cfg}
}

// RunBackgroundScan runs the full discussion scan and updates the cache.
//
// State machine on ScanStatus: idle -> running -> completed, or
// running -> error with ScanError populated. If the persisted cache already
// reports a running scan the call is a logged no-op; at most one scan runs
// at a time. The guard is the serialized cache field, not a cross-process
// lock, which is accepted for a single-instance desktop tool.
func (o *Orchestrator) RunBackgroundScan(ctx context.Context) error {
	c := o.Store.Load()
	if c.ScanStatus == cache.StatusRunning {
		logging.Logger.Infow("background scan already running, ignoring request")
		return nil
	}

	c.ScanStatus = cache.StatusRunning
	c.ScanError = ""
	if err := o.Store.Save(c); err != nil {
		return err
	}

	start := time.Now()

	ds := scan.NewDiscussionScanner(config.ProjectsDir(o.Cfg.DataDir))
	ds.ProjectBatchSize = o.Cfg.Scan.ProjectBatchSize
	ds.FileBatchSize = o.Cfg.Scan.FileBatchSize
	ds.Progress = o.Progress

	matches, fileCount, err := ds.Scan(ctx)
	if err != nil {
		logging.Logger.Errorw("background scan failed", "error", err)
		c.ScanStatus = cache.StatusError
		c.ScanError = err.Error()
		if saveErr := o.Store.Save(c); saveErr != nil {
			return saveErr
		}
		return err
	}

	// Full replacement of the findings list; matches are never merged
	// across scans. The settings flag stays as-is: the settings scan is a
	// separate, synchronous entry point.
	c.Tokens = matches
	c.ScanStatus = cache.StatusCompleted
	c.LastScanTimestamp = start
	c.LastScanDurationMs = time.Since(start).Milliseconds()
	c.DiscussionsScanned = true
	c.DiscussionCount = fileCount
	if err := o.Store.Save(c); err != nil {
		return err
	}

	logging.Logger.Infow("background scan completed",
		"files", fileCount, "matches", len(matches),
		"duration", time.Since(start))
	return nil
}

// RunSettingsScan runs the synchronous settings pass and folds the results
// into the cache: settings-sourced entries are replaced, discussion-sourced
// entries are kept.
func (o *Orchestrator) RunSettingsScan() ([]scan.TokenMatch, error) {
	matches := scan.ScanSettings(o.Cfg.DataDir)

	c := o.Store.Load()
	kept := c.Tokens[:0]
	for _, m := range c.Tokens {
		if m.Location == nil || m.Location.Source() != "settings" {
			kept = append(kept, m)
		}
	}
	c.Tokens = append(kept, matches...)
	c.SettingsScanned = true
	if err := o.Store.Save(c); err != nil {
		return matches, err
	}
	return matches, nil
}
