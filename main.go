package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-page-leveler/internal/level"
)

func main() {
	app := &cli.App{
		Name:  "leveler",
		Usage: "Rewrite or summarize web pages at a target CEFR reading level",
		Commands: []*cli.Command{
			{
				Name:  "rewrite",
				Usage: "Rewrite the visible text of pages at the target level",
				Flags: append(commonFlags(),
					&cli.BoolFlag{
						Name:  "verify-restore",
						Usage: "After rewriting, restore the page and check it matches the original byte for byte",
					},
				),
				Action: level.RewriteAction,
			},
			{
				Name:   "summarize",
				Usage:  "Produce a single leveled summary of each page",
				Flags:  commonFlags(),
				Action: level.SummarizeAction,
			},
			{
				Name:  "sessions",
				Usage: "List recent recorded runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 20,
					},
				},
				Action: level.SessionsAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "urls",
			Usage: "Comma-separated list of page URLs",
		},
		&cli.StringFlag{
			Name:  "files",
			Usage: "Comma-separated list of local HTML files",
		},
		&cli.StringFlag{
			Name:  "level",
			Usage: "Target CEFR level (A1, A2, B1, B2, C1, C2)",
			Value: "B1",
		},
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "Text-generation backend URL",
		},
		&cli.StringFlag{
			Name:  "model",
			Usage: "Backend model identifier",
		},
		&cli.StringFlag{
			Name:  "api-key",
			Usage: "Bearer token for the backend",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to YAML config file",
			Value: "config.yaml",
		},
		&cli.StringFlag{
			Name:  "output-dir",
			Usage: "Directory for rewritten pages, summaries, and run artifacts",
			Value: "results",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Number of pages processed concurrently",
			Value: 4,
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Only log errors",
		},
	}
}
