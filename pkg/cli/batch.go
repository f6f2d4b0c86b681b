package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

type batchFileEntry struct {
	Tier       string  `json:"tier"`
	Content    string  `json:"content"`
	Importance float64 `json:"importance,omitempty"`
}

func batchCommand() *cli.Command {
	var (
		cfg       config
		userID    string
		inputPath string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "User the memories belong to",
			Sources:     cli.EnvVars("ENGRAM_USER"),
			Destination: &userID,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to JSON file with an array of {tier, content, importance}",
			Sources:     cli.EnvVars("ENGRAM_BATCH_INPUT"),
			Destination: &inputPath,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, embeddingFlags(&cfg)...)

	return &cli.Command{
		Name:  "batch",
		Usage: "Store up to 50 memories from a JSON file in one call",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if inputPath == "" {
				return goerr.New("input file path is required")
			}

			data, err := os.ReadFile(inputPath)
			if err != nil {
				return goerr.Wrap(err, "failed to read input file", goerr.V("path", inputPath))
			}

			var fileEntries []batchFileEntry
			if err := json.Unmarshal(data, &fileEntries); err != nil {
				return goerr.Wrap(err, "failed to parse JSON")
			}

			entries := make([]memory.BatchEntry, len(fileEntries))
			for i, e := range fileEntries {
				entries[i] = memory.BatchEntry{
					Tier:       model.Tier(e.Tier),
					Content:    e.Content,
					Importance: e.Importance,
				}
			}

			uc, err := cfg.useCase(ctx)
			if err != nil {
				return err
			}

			ids, writeErr := uc.BatchWrite(ctx, userID, entries)
			for _, id := range ids {
				fmt.Fprintf(c.Root().Writer, "Memory stored: %s\n", id)
			}
			if writeErr != nil {
				return goerr.Wrap(writeErr, "batch incomplete", goerr.V("committed", len(ids)))
			}

			fmt.Fprintf(c.Root().Writer, "%d memories stored\n", len(ids))
			return nil
		},
	}
}
