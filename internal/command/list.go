package command

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// ListCommandAction prints the cached origins with their state, image size
// and age.
func ListCommandAction(ctx context.Context, cmd *cli.Command) error {
	store, closer, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer closer()

	records := store.Entries(ctx)
	w := cmd.Root().Writer
	if len(records) == 0 {
		fmt.Fprintln(w, "cache is empty")
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Origin,
			r.State.String(),
			imageSize(r.Entry.Image),
			humanize.Time(time.UnixMilli(r.Entry.Timestamp)),
		})
	}

	TableWriter(w, []string{"ORIGIN", "STATE", "SIZE", "CACHED"}, rows)
	return nil
}

// ListCommandBuilder constructs the "list" command.
func ListCommandBuilder() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "list cached origins",
		UsageText: "notefavicon list [options]",
		Action:    ListCommandAction,
	}
}
