package main

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"
	"github.com/welldanyogia/postoffice/internal/services"
)

const maxPopulateCount = 100000

func populateCommand() *cli.Command {
	return &cli.Command{
		Name:  "populate",
		Usage: "Seed the store with conversations between two owners",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Usage: "sending owner", Required: true},
			&cli.StringFlag{Name: "to", Usage: "receiving owner", Required: true},
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "number of conversations", Value: 10},
		},
		Action: func(c *cli.Context) error {
			count := c.Int("count")
			if count <= 0 || count > maxPopulateCount {
				return fmt.Errorf("count must be between 1 and %d", maxPopulateCount)
			}

			e, err := openEngine(c)
			if err != nil {
				return err
			}
			defer e.Close()

			messenger := services.NewPostoffice(e.messages, e.folders, nil, e.logger)
			discriminators, err := services.Populate(c.Context, messenger, c.String("from"), c.String("to"), count)
			for _, d := range discriminators {
				fmt.Fprintln(c.App.Writer, d)
			}
			if err != nil {
				return err
			}

			e.logger.Info("populated conversations",
				slog.String("from", c.String("from")),
				slog.String("to", c.String("to")),
				slog.Int("count", len(discriminators)))
			return nil
		},
	}
}
