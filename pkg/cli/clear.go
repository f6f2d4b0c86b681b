package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/urfave/cli/v3"
)

func clearCommand() *cli.Command {
	var (
		cfg      config
		userID   string
		tierName string
		force    bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "User whose memories are cleared",
			Sources:     cli.EnvVars("ENGRAM_USER"),
			Destination: &userID,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "tier",
			Aliases:     []string{"t"},
			Usage:       "Restrict the clear to one tier (short or long)",
			Destination: &tierName,
		},
		&cli.BoolFlag{
			Name:        "force",
			Aliases:     []string{"f"},
			Usage:       "Actually delete; without it the command only reports what would go",
			Destination: &force,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "clear",
		Usage: "Delete all memories of a user, optionally one tier",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			var tier *model.Tier
			if tierName != "" {
				parsed, err := parseTier(tierName)
				if err != nil {
					return err
				}
				tier = &parsed
			}

			uc, err := cfg.useCase(ctx)
			if err != nil {
				return err
			}

			if !force {
				stats, err := uc.Stats(ctx, userID)
				if err != nil {
					return err
				}
				affected := stats.Total
				if tier != nil {
					if *tier == model.TierShort {
						affected = stats.Short
					} else {
						affected = stats.Long
					}
				}
				fmt.Fprintf(c.Root().Writer, "%d memories would be deleted; rerun with --force\n", affected)
				return nil
			}

			count, err := uc.Clear(ctx, userID, tier)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "%d memories deleted\n", count)
			return nil
		},
	}
}
