package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	notefavicon "github.com/dgduncan/go-note-favicon"
)

// ResolveCommandAction prints one line per VALUE: the embeddable image, or an
// empty line when nothing could be resolved.
func ResolveCommandAction(ctx context.Context, cmd *cli.Command) error {
	values := cmd.Args().Slice()
	if len(values) == 0 {
		return errors.New("at least one VALUE is required")
	}

	store, closer, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer closer()

	resolver := notefavicon.NewResolver(store)
	w := cmd.Root().Writer
	for _, v := range values {
		fmt.Fprintln(w, resolver.Resolve(ctx, v))
	}
	return nil
}

// ResolveCommandBuilder constructs the "resolve" command.
func ResolveCommandBuilder() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "resolve favicon values to data URIs",
		UsageText: "notefavicon resolve [options] VALUE...",
		ArgsUsage: "VALUE...",
		Action:    ResolveCommandAction,
	}
}
