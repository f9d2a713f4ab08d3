package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	dbcmd "github.com/dtnitsch/sof-extractor/internal/db"
	"github.com/dtnitsch/sof-extractor/internal/process"
	"github.com/dtnitsch/sof-extractor/internal/recap"
	"github.com/dtnitsch/sof-extractor/pkg/help"
)

var version = "dev"

// Flags shared by process and reprocess output handling.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "format", Value: "yaml", Usage: "Summary output format (yaml|json)"},
		&cli.StringFlag{Name: "summary-version", Value: "v2", Usage: "Summary schema (v1=full field names, v2=terse)"},
		&cli.StringFlag{Name: "summary-fields", Usage: "Comma-separated fields to include in summary output"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Suppress progress logging"},
	}
}

func extractionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "mode", Value: "accuracy", Usage: "Processing mode (accuracy|cost-saving)"},
		&cli.StringFlag{Name: "port-timezone", Value: "UTC", Usage: "IANA timezone of the port (e.g. Europe/Rotterdam)"},
		&cli.StringFlag{Name: "config", Usage: "Pipeline config YAML path"},
		&cli.StringFlag{Name: "vocabulary", Usage: "Event vocabulary YAML path (overrides config)"},
		&cli.StringFlag{Name: "db", Usage: "SQLite database path (default: sof-extractor.db)"},
		&cli.StringFlag{Name: "output-dir", Value: "sof-results", Usage: "Artifact and session output directory"},
	}
}

func main() {
	app := &cli.App{
		Name:    "sof-extractor",
		Usage:   "Extract port events from Statement of Facts documents",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:   "process",
				Usage:  "Process SoF documents from files or URLs",
				Action: process.ProcessAction,
				Flags: append(append([]cli.Flag{
					&cli.StringFlag{Name: "files", Usage: "Comma-separated document paths"},
					&cli.StringFlag{Name: "urls", Usage: "Comma-separated document URLs"},
					&cli.IntFlag{Name: "workers", Value: 4, Usage: "Concurrent document workers"},
					&cli.BoolFlag{Name: "enable-ocr", Usage: "Run OCR on scanned pages (accuracy mode only)"},
					&cli.StringFlag{Name: "ocr-languages", Value: "eng", Usage: "Tesseract language codes"},
					&cli.StringFlag{Name: "max-age", Value: "0s", Usage: "Artifact staleness cutoff (0s = never stale)"},
					&cli.BoolFlag{Name: "force-fetch", Usage: "Bypass the download cache for URLs"},
					&cli.StringFlag{Name: "download-cache-dir", Value: "sof-cache", Usage: "Directory for cached downloads"},
					&cli.StringFlag{Name: "redis", Usage: "Redis address for the result cache (e.g. localhost:6379)"},
					&cli.DurationFlag{Name: "redis-ttl", Value: 24 * time.Hour, Usage: "Result cache TTL"},
					&cli.StringFlag{Name: "output-mode", Value: "session", Usage: "Output mode (session|summary|minimal)"},
				}, extractionFlags()...), outputFlags()...),
			},
			{
				Name:   "reprocess",
				Usage:  "Re-run extraction from stored page artifacts (no reload, no OCR)",
				Action: process.ReprocessAction,
				Flags: append(append([]cli.Flag{
					&cli.StringFlag{Name: "hashes", Usage: "Comma-separated document content hashes"},
					&cli.IntFlag{Name: "session", Usage: "Reprocess every document of a session"},
				}, extractionFlags()...), outputFlags()...),
			},
			{
				Name:      "recap",
				Usage:     "Extract structured fixture data from a free-text recap",
				ArgsUsage: "[file]",
				Action:    recap.RecapAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "Recap text file (default: stdin)"},
					&cli.StringFlag{Name: "format", Value: "json", Usage: "Output format (json|yaml)"},
				},
			},
			{
				Name:   "sessions",
				Usage:  "List processing sessions",
				Action: dbcmd.SessionsAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "db", Usage: "SQLite database path"},
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "Max sessions to list"},
				},
				Subcommands: []*cli.Command{
					{
						Name:      "show",
						Usage:     "Show per-document outcomes for a session",
						ArgsUsage: "<session_id>",
						Action:    dbcmd.SessionAction,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "db", Usage: "SQLite database path"},
						},
					},
				},
			},
			{
				Name:  "db",
				Usage: "Query extracted events and stored artifacts",
				Subcommands: []*cli.Command{
					{
						Name:   "events",
						Usage:  "Query events across all documents",
						Action: dbcmd.EventsAction,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "db", Usage: "SQLite database path"},
							&cli.StringFlag{Name: "name", Usage: "Filter by event name substring"},
							&cli.Float64Flag{Name: "max-confidence", Usage: "Only events at or below this confidence"},
							&cli.BoolFlag{Name: "unparsed", Usage: "Only events with unparseable timestamps"},
							&cli.IntFlag{Name: "limit", Value: 100, Usage: "Max rows"},
						},
					},
					{
						Name:      "show",
						Usage:     "Show events and anomalies for a document",
						ArgsUsage: "<document_id_or_hash>",
						Action:    dbcmd.ShowAction,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "db", Usage: "SQLite database path"},
						},
					},
					{
						Name:      "pages",
						Usage:     "Show stored page text for a document",
						ArgsUsage: "<document_id_or_hash>",
						Action:    dbcmd.PagesAction,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "db", Usage: "SQLite database path"},
							&cli.StringFlag{Name: "output-dir", Value: "sof-results", Usage: "Artifact directory"},
						},
					},
					{
						Name:   "init",
						Usage:  "Initialize the database schema",
						Action: dbcmd.InitAction,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "db", Usage: "SQLite database path"},
						},
					},
				},
			},
			{
				Name:  "coldstart",
				Usage: "Print a machine-readable quick start reference",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
