package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func deleteCommand() *cli.Command {
	var (
		cfg    config
		userID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "User the memory belongs to",
			Sources:     cli.EnvVars("ENGRAM_USER"),
			Destination: &userID,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete one memory",
		ArgsUsage: "<memory-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return goerr.New("memory ID argument is required")
			}

			uc, err := cfg.useCase(ctx)
			if err != nil {
				return err
			}

			removed, err := uc.Delete(ctx, model.MemoryID(id), userID)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(c.Root().Writer, "Memory not found: %s\n", id)
				return nil
			}

			fmt.Fprintf(c.Root().Writer, "Memory deleted: %s\n", id)
			return nil
		},
	}
}
