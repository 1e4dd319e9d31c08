package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// ClearCommandAction removes every cached favicon.
func ClearCommandAction(ctx context.Context, cmd *cli.Command) error {
	store, closer, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer closer()

	if err := store.Clear(ctx); err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, "cache cleared")
	return nil
}

// ClearCommandBuilder constructs the "clear" command.
func ClearCommandBuilder() *cli.Command {
	return &cli.Command{
		Name:      "clear",
		Usage:     "clear the favicon cache",
		UsageText: "notefavicon clear [options]",
		Action:    ClearCommandAction,
	}
}
