package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "engram",
		Usage: "Tiered memory engine for AI agents",
		Commands: []*cli.Command{
			writeCommand(),
			batchCommand(),
			searchCommand(),
			updateCommand(),
			deleteCommand(),
			clearCommand(),
			statsCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
