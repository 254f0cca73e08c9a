package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const version = "0.1.0"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "postoffice",
		Usage:   "Threaded two-party messaging over a column store",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Aliases: []string{"e"},
				Usage:   "Load environment variables from `FILE` before reading configuration",
				Value:   ".env",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			populateCommand(),
			compactCommand(),
		},
	}
}
