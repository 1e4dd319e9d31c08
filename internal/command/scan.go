package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	notefavicon "github.com/dgduncan/go-note-favicon"
	"github.com/dgduncan/go-note-favicon/internal/notes"
)

type scanResult struct {
	path  string
	kind  string
	image string
	err   error
}

// ScanCommandAction resolves the favicon of every note below DIR and prints a
// table with one row per note carrying a favicon value.
func ScanCommandAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return errors.New("exactly one DIR is required")
	}

	found, err := notes.Walk(ctx, cmd.Args().First())
	if err != nil {
		return err
	}

	store, closer, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer closer()

	resolver := notefavicon.NewResolver(store)
	key := cmd.String("key")

	results := make([]scanResult, 0, len(found))
	values := make([]string, 0, len(found))
	for _, n := range found {
		if n.Err != nil {
			log.WithField("note", n.Path).Warnf("skipping note: %v", n.Err)
			results = append(results, scanResult{path: n.Path, err: n.Err})
			values = append(values, "")
			continue
		}
		v, ok := notes.FaviconValue(n.Meta, key)
		if !ok {
			continue
		}
		results = append(results, scanResult{path: n.Path, kind: notefavicon.Classify(v).String()})
		values = append(values, v)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cmd.Int("concurrency"))
	for i := range results {
		if results[i].err != nil {
			continue
		}
		g.Go(func() error {
			results[i].image = resolver.Resolve(gctx, values[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rows := make([][]string, 0, len(results))
	withValue, resolved := 0, 0
	for _, r := range results {
		if r.err == nil {
			withValue++
		}
		switch {
		case r.err != nil:
			rows = append(rows, []string{r.path, "-", "invalid front matter", "-"})
		case r.image == "":
			rows = append(rows, []string{r.path, r.kind, "none", "-"})
		default:
			resolved++
			rows = append(rows, []string{r.path, r.kind, "image", imageSize(r.image)})
		}
	}

	w := cmd.Root().Writer
	TableWriter(w, []string{"NOTE", "KIND", "RESULT", "SIZE"}, rows)
	fmt.Fprintf(w, "%d notes, %d with favicon values, %d resolved\n", len(found), withValue, resolved)
	return nil
}

// ScanCommandBuilder constructs the "scan" command.
func ScanCommandBuilder(cfgPath string) *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "resolve the favicons of every markdown note in a vault",
		UsageText: "notefavicon scan [options] DIR",
		ArgsUsage: "DIR",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "key",
				Aliases: []string{"k"},
				Usage:   "front matter key holding the favicon value",
				Sources: sources("NOTEFAVICON_KEY", "scan", "key", cfgPath),
				Value:   notes.DefaultKey,
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Usage:   "notes resolved in parallel",
				Sources: sources("NOTEFAVICON_CONCURRENCY", "scan", "concurrency", cfgPath),
				Value:   4,
				Validator: func(v int) error {
					if v < 1 {
						return fmt.Errorf("concurrency must be at least 1, got %d", v)
					}
					return nil
				},
			},
		},
		Action: ScanCommandAction,
	}
}
