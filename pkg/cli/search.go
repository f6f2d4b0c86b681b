package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/urfave/cli/v3"
)

func searchCommand() *cli.Command {
	var (
		cfg      config
		userID   string
		tierName string
		query    string
		limit    int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "User whose memories are searched",
			Sources:     cli.EnvVars("ENGRAM_USER"),
			Destination: &userID,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "tier",
			Aliases:     []string{"t"},
			Usage:       "Memory tier (short or long)",
			Value:       string(model.TierShort),
			Sources:     cli.EnvVars("ENGRAM_TIER"),
			Destination: &tierName,
		},
		&cli.StringFlag{
			Name:        "query",
			Aliases:     []string{"q"},
			Usage:       "Natural language query",
			Destination: &query,
			Required:    true,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of memories to return",
			Value:       10,
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, embeddingFlags(&cfg)...)
	flags = append(flags, rankingFlags(&cfg)...)

	return &cli.Command{
		Name:  "search",
		Usage: "Retrieve memories by semantic similarity",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			tier, err := parseTier(tierName)
			if err != nil {
				return err
			}

			uc, err := cfg.useCase(ctx)
			if err != nil {
				return err
			}

			results, err := uc.Search(ctx, memory.SearchInput{
				UserID: userID,
				Tier:   tier,
				Query:  query,
				TopK:   int(limit),
			})
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintf(c.Root().Writer, "No memories found\n")
				return nil
			}

			for _, r := range results {
				fmt.Fprintf(c.Root().Writer, "%.4f  %s  %s\n", r.Score, r.ID, r.Content)
			}
			return nil
		},
	}
}
