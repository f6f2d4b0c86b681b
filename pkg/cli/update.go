package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func updateCommand() *cli.Command {
	var (
		cfg     config
		userID  string
		content string
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
		&cli.StringFlag{
			Name:        "content",
			Aliases:     []string{"c"},
			Usage:       "Replacement content",
			Destination: &content,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, embeddingFlags(&cfg)...)

	return &cli.Command{
		Name:      "update",
		Usage:     "Replace the content of an existing memory",
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

			if err := uc.Update(ctx, model.MemoryID(id), userID, content); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Memory updated: %s\n", id)
			return nil
		},
	}
}
