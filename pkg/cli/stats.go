package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func statsCommand() *cli.Command {
	var (
		cfg    config
		userID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "User to report on",
			Sources:     cli.EnvVars("ENGRAM_USER"),
			Destination: &userID,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "stats",
		Usage: "Show memory counts per tier",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, err := cfg.useCase(ctx)
			if err != nil {
				return err
			}

			stats, err := uc.Stats(ctx, userID)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "short: %d\nlong: %d\ntotal: %d\n",
				stats.Short, stats.Long, stats.Total)
			return nil
		},
	}
}
