package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/urfave/cli/v3"
)

func writeCommand() *cli.Command {
	var (
		cfg        config
		userID     string
		tierName   string
		content    string
		id         string
		importance float64
		source     string
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
			Name:        "tier",
			Aliases:     []string{"t"},
			Usage:       "Memory tier (short or long)",
			Value:       string(model.TierShort),
			Sources:     cli.EnvVars("ENGRAM_TIER"),
			Destination: &tierName,
		},
		&cli.StringFlag{
			Name:        "content",
			Aliases:     []string{"c"},
			Usage:       "Memory content",
			Destination: &content,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "id",
			Usage:       "Memory ID (generated when empty)",
			Destination: &id,
		},
		&cli.FloatFlag{
			Name:        "importance",
			Usage:       "Importance score attached to the memory",
			Destination: &importance,
		},
		&cli.StringFlag{
			Name:        "source",
			Usage:       "Origin tag of the memory",
			Destination: &source,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, embeddingFlags(&cfg)...)
	flags = append(flags, rankingFlags(&cfg)...)

	return &cli.Command{
		Name:  "write",
		Usage: "Store a memory, merging near-duplicates",
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

			input := memory.WriteInput{
				UserID:  userID,
				Tier:    tier,
				Content: content,
				ID:      model.MemoryID(id),
				Source:  source,
			}
			if c.IsSet("importance") {
				input.Importance = &importance
			}

			memoryID, err := uc.Write(ctx, input)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Memory stored: %s\n", memoryID)
			return nil
		},
	}
}
