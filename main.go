package main

import (
	"fmt"
	"os"

	"github.com/mdekker/subject-tally/internal/run"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "subject-tally",
		Usage: "count events per (location, subject) pair in daily event exports",
		Commands: []*cli.Command{
			{
				Name:   "aggregate",
				Usage:  "sample a daily export and count subjects by location",
				Action: run.AggregateAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "date",
						Usage: "export date (yyyyMMdd), defaults to today; only used to derive input/output defaults",
					},
					&cli.StringFlag{
						Name:  "input",
						Usage: "record source: local path or http(s) URL (overrides the date-derived default)",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "report destination prefix (default: <tmp>/gdelt-<date>)",
					},
					&cli.IntFlag{
						Name:  "sample-bound",
						Usage: "reservoir sample size",
						Value: 10000,
					},
					&cli.StringFlag{
						Name:  "strategy",
						Usage: "aggregation strategy: perkey, grouped, or both (both compares their timings over one sample)",
						Value: "perkey",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "aggregation partitions (default: GOMAXPROCS)",
					},
					&cli.IntFlag{
						Name:  "arena-cap",
						Usage: "grouped strategy: max buffered subjects per location",
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "YAML config file; CLI flags override it",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "only log errors",
					},
				},
			},
			{
				Name:   "runs",
				Usage:  "list recent runs from the history database",
				Action: run.RunsAction,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "max runs to list",
						Value: 20,
					},
				},
			},
			{
				Name:      "show",
				Usage:     "show one recorded run",
				ArgsUsage: "<run-id>",
				Action:    run.ShowRunAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
