package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/credsweep/credsweep/pkg/cache"
	"github.com/credsweep/credsweep/pkg/config"
	"github.com/credsweep/credsweep/pkg/logging"
	"github.com/credsweep/credsweep/pkg/notify"
	"github.com/credsweep/credsweep/pkg/output/formatter"
	"github.com/credsweep/credsweep/pkg/output/terminal"
	"github.com/credsweep/credsweep/pkg/scanner"
	"github.com/credsweep/credsweep/pkg/server"
)

const (
	version = "1.0.0"
)

// printBanner prints the colored banner.
func printBanner() {
	cyan := color.New(color.FgCyan, color.Bold)
	blue := color.New(color.FgBlue, color.Bold)
	green := color.New(color.FgGreen)

	cyan.Println(`
                  _
  ___ _ __ ___  __| |_____      _____  ___ _ __
 / __| '__/ _ \/ _' / __\ \ /\ / / _ \/ _ \ '_ \
| (__| | |  __/ (_| \__ \\ V  V /  __/  __/ |_) |
 \___|_|  \___|\__,_|___/ \_/\_/ \___|\___| .__/
                                          |_|`)

	blue.Println("\nCredential scanner for assistant settings and chat transcripts")
	fmt.Println()
	green.Printf("Version: %s\n\n", version)
}

var (
	// Global flags
	dataDir         string
	debug           bool
	outputFormats   string
	outputDir       string
	notifyDesktop   bool
	settingsOnly    bool
	discussionsOnly bool

	// Serve flags
	listenAddr string
)

func loadSetup() (*config.Config, *cache.Store, *scanner.Orchestrator, error) {
	if err := logging.Init(debug); err != nil {
		return nil, nil, nil, err
	}
	if err := config.InitializeDefaultConfig(); err != nil {
		terminal.PrintWarning(fmt.Sprintf("Failed to initialize config: %v", err))
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if notifyDesktop {
		cfg.Notify = true
	}

	cachePath, err := config.GetCachePath()
	if err != nil {
		return nil, nil, nil, err
	}
	store := cache.NewStore(cachePath)
	return cfg, store, scanner.New(store, cfg), nil
}

var rootCmd = &cobra.Command{
	Use:   "credsweep",
	Short: "Scan assistant settings and chat transcripts for leaked credentials",
	Run: func(cmd *cobra.Command, args []string) {
		printBanner()
		cmd.Help()
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan settings documents and discussion transcripts",
	Long:  "Scan the assistant data directory for credential-shaped strings: settings documents synchronously, transcripts in a batched background pass.",
	RunE: func(cmd *cobra.Command, args []string) error {
		printBanner()
		cfg, store, orch, err := loadSetup()
		if err != nil {
			return err
		}

		fmt.Printf("Data directory: %s\n", cfg.DataDir)

		if !discussionsOnly {
			terminal.PrintSectionHeader("Settings scan")
			matches, err := orch.RunSettingsScan()
			if err != nil {
				terminal.PrintWarning(fmt.Sprintf("Failed to update cache: %v", err))
			}
			terminal.PrintFindings(matches)
		}

		if !settingsOnly {
			terminal.PrintSectionHeader("Discussion scan")

			bar := progressbar.NewOptions(-1,
				progressbar.OptionSetDescription("Scanning transcripts"),
				progressbar.OptionSpinnerType(14),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			orch.Progress = func(encodedDir, sessionID string) {
				bar.Add(1)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err := orch.RunBackgroundScan(ctx)
			bar.Finish()
			c := store.Load()
			if err != nil {
				terminal.PrintError(fmt.Sprintf("Discussion scan failed: %v", err))
				if cfg.Notify {
					notify.ScanFailed(err)
				}
			} else {
				terminal.PrintSuccess(fmt.Sprintf("Scanned %d transcript file(s)", c.DiscussionCount))
				var discussionMatches int
				for _, m := range c.Tokens {
					if m.Location != nil && m.Location.Source() == "discussion" {
						discussionMatches++
					}
				}
				terminal.PrintFindings(c.Tokens)
				if cfg.Notify {
					notify.ScanCompleted(discussionMatches)
				}
			}
		}

		if outputFormats != "" {
			if err := writeReports(store.Load()); err != nil {
				return err
			}
		}
		return nil
	},
}

func writeReports(c *cache.Cache) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %v", err)
	}
	report := formatter.BuildReport(c)

	formats := map[string]bool{}
	if outputFormats == "all" {
		formats["json"], formats["csv"], formats["txt"] = true, true, true
	} else {
		for _, f := range splitComma(outputFormats) {
			formats[f] = true
		}
	}

	if formats["json"] {
		if err := formatter.NewJSONFormatter(outputDir).Format(report); err != nil {
			return err
		}
	}
	if formats["csv"] {
		if err := formatter.NewCSVFormatter(outputDir).Format(report); err != nil {
			return err
		}
	}
	if formats["txt"] {
		if err := formatter.NewTXTFormatter(outputDir).Format(report); err != nil {
			return err
		}
	}
	terminal.PrintSuccess(fmt.Sprintf("Reports written to %s", outputDir))
	return nil
}

func splitComma(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last scan's status and findings",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, _, err := loadSetup()
		if err != nil {
			return err
		}
		c := store.Load()
		terminal.PrintCacheSummary(c)
		terminal.PrintFindings(c.Tokens)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove [match-id]",
	Short: "Remove a finding",
	Long:  "Remove a finding by id: deletes the owning transcript file for discussion findings, or the exact settings value for settings findings.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, orch, err := loadSetup()
		if err != nil {
			return err
		}
		if err := orch.RemoveMatch(args[0]); err != nil {
			return err
		}
		terminal.PrintSuccess("Finding removed")
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local scan API",
	Long:  "Serve the HTTP API: trigger background scans, query status, remove findings, and stream scan progress over a websocket.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, orch, err := loadSetup()
		if err != nil {
			return err
		}
		addr := cfg.Server.ListenAddr
		if listenAddr != "" {
			addr = listenAddr
		}
		terminal.PrintProgress(fmt.Sprintf("Listening on %s", addr))
		return server.New(orch, store, addr).Run()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		printBanner()
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Assistant data directory (default: ~/.assistant)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	scanCmd.Flags().BoolVar(&settingsOnly, "settings-only", false, "Scan settings documents only")
	scanCmd.Flags().BoolVar(&discussionsOnly, "discussions-only", false, "Scan discussion transcripts only")
	scanCmd.Flags().StringVarP(&outputFormats, "format", "f", "", "Report format [json|csv|txt|all]")
	scanCmd.Flags().StringVar(&outputDir, "output-dir", "./outputs", "Report output directory")
	scanCmd.Flags().BoolVar(&notifyDesktop, "notify", false, "Send a desktop notification when the scan finishes")

	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default: from config)")

	rootCmd.SetUsageTemplate(usageTemplate)
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		cmd.Print(cmd.UsageString())
	})
}

const usageTemplate = `
USAGE:
  credsweep scan [flags]             Scan settings and transcripts
  credsweep [command]                Run a command

COMMANDS:
  scan                 Scan settings documents and discussion transcripts
  status               Show the last scan's status and findings
  remove [match-id]    Remove a finding
  serve                Serve the local scan API
  version              Show version information

SCAN:
  --settings-only                Scan settings documents only
  --discussions-only             Scan discussion transcripts only
  -f, --format STRING            Report format [json|csv|txt|all]
  --output-dir STRING            Report output directory (default: ./outputs)
  --notify                       Desktop notification when the scan finishes

GLOBAL:
  --data-dir STRING              Assistant data directory (default: ~/.assistant)
  --debug                        Enable debug logging

EXAMPLES:
  # Full scan
  credsweep scan

  # Transcripts only, with desktop notification
  credsweep scan --discussions-only --notify

  # Export reports
  credsweep scan -f json,csv --output-dir ./reports

  # Run the local API
  credsweep serve --listen 127.0.0.1:7465
`

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
