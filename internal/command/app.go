// Package command implements the notefavicon CLI.
package command

import (
	"sort"

	"github.com/urfave/cli/v3"
)

// InitApp builds the notefavicon command tree. Flag defaults are read from
// the YAML file at cfgPath, if any; cfgPath may be empty.
func InitApp(cfgPath string) *cli.Command {
	app := &cli.Command{
		Name:  "notefavicon",
		Usage: "resolve and cache favicons for markdown notes",
		Flags: NewGlobalFlags(cfgPath),
		Commands: []*cli.Command{
			ResolveCommandBuilder(),
			ScanCommandBuilder(cfgPath),
			ListCommandBuilder(),
			ClearCommandBuilder(),
			ServeCommandBuilder(cfgPath),
		},
	}

	// Make sure flags are sorted for the --help text.
	sort.Slice(app.Flags, func(i, j int) bool {
		return app.Flags[i].Names()[0] < app.Flags[j].Names()[0]
	})
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app
}
