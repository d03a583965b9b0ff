// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/qaren/internal/formatter"
	"github.com/desertthunder/qaren/internal/tasks"
	"github.com/urfave/cli/v3"
)

func serverFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "Search through a running qaren server (e.g. http://127.0.0.1:3000) instead of the upstream API",
	}
}

// serveCommand starts the HTTP proxy
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the flight search proxy",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "Listen address (host:port), overrides config",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not record searches to the history database",
			},
		},
		Action: r.Serve,
	}
}

// searchCommand runs searches from the command line
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search flight offers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "from",
				Usage: "Origin IATA code",
			},
			&cli.StringFlag{
				Name:  "to",
				Usage: "Destination IATA code",
			},
			&cli.StringFlag{
				Name:  "date",
				Usage: "Departure date (YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:  "adults",
				Usage: "Number of adult passengers",
				Value: "1",
			},
			&cli.StringFlag{
				Name:  "return-date",
				Usage: "Return date for a round trip (YYYY-MM-DD)",
			},
			&cli.BoolFlag{
				Name:  "non-stop",
				Usage: "Only direct flights",
			},
			&cli.StringFlag{
				Name:  "currency",
				Usage: "ISO 4217 currency for prices",
			},
			serverFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the raw upstream JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
		},
		Action: r.Search,
		Commands: []*cli.Command{
			{
				Name:  "batch",
				Usage: "Run many searches from a CSV file (from,to,date[,adults[,returnDate]])",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "file",
					},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Concurrent searches (max 10)",
						Value:   tasks.DefaultWorkers,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Searches dispatched per second",
						Value: tasks.DefaultRateLimit,
					},
					serverFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output results as JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.SearchBatch,
			},
		},
	}
}

// tokenCommand inspects the client-credentials token
func tokenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Obtain an access token and show its expiry",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Print only the unmasked token",
			},
		},
		Action: r.Token,
	}
}

// historyCommand reads back recorded searches
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect recorded searches",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List recent searches",
				Flags:  append(historyFilters(), &cli.BoolFlag{Name: "json", Usage: "Output as JSON"}),
				Action: r.HistoryList,
			},
			{
				Name:  "export",
				Usage: "Export searches to a file",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: " + strings.Join(formatter.Formats, ", "),
						Value:   formatter.FormatCSV,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (stdout when empty)",
					},
				}, historyFilters()...),
				Action: r.HistoryExport,
			},
			{
				Name:  "clear",
				Usage: "Delete recorded searches",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Only delete searches older than this (e.g. 720h)",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Delete every search",
					},
				},
				Action: r.HistoryClear,
			},
		},
	}
}

// historyFilters returns fresh filter flags; flag values are stateful so commands cannot share them.
func historyFilters() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "from",
			Usage: "Only searches from this origin",
		},
		&cli.StringFlag{
			Name:  "to",
			Usage: "Only searches to this destination",
		},
		&cli.StringFlag{
			Name:  "status",
			Usage: "Only searches with this outcome (ok, error)",
		},
		&cli.DurationFlag{
			Name:  "since",
			Usage: "Only searches newer than this (e.g. 24h)",
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "Maximum number of searches",
			Value:   50,
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the history database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "status",
						Usage: "Only show which migrations are applied",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}
