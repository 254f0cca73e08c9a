package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	apperrors "github.com/welldanyogia/postoffice/internal/errors"
	"github.com/welldanyogia/postoffice/internal/models"
	"github.com/welldanyogia/postoffice/internal/services"
	"github.com/welldanyogia/postoffice/internal/validator"
)

func compactCommand() *cli.Command {
	return &cli.Command{
		Name:  "compact",
		Usage: "Delete shadowed entries from a folder, keeping the newest per conversation",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "owner", Required: true},
			&cli.StringFlag{Name: "folder", Value: models.FolderInbox},
		},
		Action: func(c *cli.Context) error {
			key := models.FolderKey{Owner: c.String("owner"), Name: c.String("folder")}
			if err := validator.ValidateOwnerID(key.Owner); err != nil {
				return apperrors.Wrap(err, "owner")
			}
			if err := validator.ValidateFolderName(key.Name); err != nil {
				return apperrors.Wrap(err, "folder")
			}

			e, err := openEngine(c)
			if err != nil {
				return err
			}
			defer e.Close()

			removed, err := services.NewFolderService(e.folders, e.messages, e.logger).Compact(c.Context, key)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "removed %d entries from %s\n", removed, key)
			return nil
		},
	}
}
