package command

import (
	"fmt"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	notefavicon "github.com/dgduncan/go-note-favicon"
	"github.com/dgduncan/go-note-favicon/caches"
	"github.com/dgduncan/go-note-favicon/caches/file"
)

const (
	backendFile     = "file"
	backendMemory   = "memory"
	backendPostgres = "postgres"
	backendDynamoDB = "dynamodb"
)

// sources builds the value chain for a flag: env var first, then the
// command-namespaced config key, then the top-level config key.
func sources(env, ns, key, cfgPath string) cli.ValueSourceChain {
	chain := cli.NewValueSourceChain(cli.EnvVar(env))
	if cfgPath == "" {
		return chain
	}
	if ns != "" {
		chain.Chain = append(chain.Chain, yaml.YAML(ns+"."+key, altsrc.StringSourcer(cfgPath)))
	}
	chain.Chain = append(chain.Chain, yaml.YAML(key, altsrc.StringSourcer(cfgPath)))
	return chain
}

// NewGlobalFlags returns the flags shared by every subcommand. They are
// persistent, so they may be given before or after the subcommand name.
func NewGlobalFlags(cfgPath string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "cache document backend: file, memory, postgres or dynamodb",
			Sources: sources("NOTEFAVICON_BACKEND", "", "backend", cfgPath),
			Value:   backendFile,
			Validator: func(value string) error {
				switch value {
				case backendFile, backendMemory, backendPostgres, backendDynamoDB:
					return nil
				}
				return fmt.Errorf("unknown backend %q", value)
			},
		},
		&cli.StringFlag{
			Name:    "cache-dir",
			Usage:   "directory holding the cache document for the file backend",
			Sources: sources(file.EnvCacheDir, "", "cache-dir", cfgPath),
		},
		&cli.StringFlag{
			Name:    "document",
			Usage:   "cache document name for the postgres and dynamodb backends",
			Sources: sources("NOTEFAVICON_DOCUMENT", "", "document", cfgPath),
			Value:   caches.DefaultDocumentName,
		},
		&cli.StringFlag{
			Name:    "dsn",
			Usage:   "PostgreSQL connection string",
			Sources: sources("NOTEFAVICON_DSN", "", "dsn", cfgPath),
		},
		&cli.StringFlag{
			Name:    "table",
			Usage:   "DynamoDB table",
			Sources: sources("NOTEFAVICON_TABLE", "", "table", cfgPath),
			Value:   "note-favicons",
		},
		&cli.StringFlag{
			Name:    "region",
			Usage:   "AWS region for the dynamodb backend",
			Sources: sources("AWS_REGION", "", "region", cfgPath),
		},
		&cli.StringFlag{
			Name:    "endpoint",
			Usage:   "DynamoDB endpoint override, e.g. DynamoDB Local",
			Sources: sources("NOTEFAVICON_DYNAMODB_ENDPOINT", "", "endpoint", cfgPath),
		},
		&cli.BoolFlag{
			Name:    "create-table",
			Usage:   "create the DynamoDB table when it does not exist",
			Sources: sources("NOTEFAVICON_CREATE_TABLE", "", "create-table", cfgPath),
		},
		&cli.StringFlag{
			Name:    "provider",
			Aliases: []string{"p"},
			Usage:   "favicon provider: google, duckduckgo, faviconkit or a URL template containing {host}",
			Sources: sources("NOTEFAVICON_PROVIDER", "", "provider", cfgPath),
			Value:   "google",
			Validator: func(value string) error {
				_, err := notefavicon.ParseProvider(value)
				return err
			},
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "provider request timeout",
			Sources: sources("NOTEFAVICON_TIMEOUT", "", "timeout", cfgPath),
			Value:   notefavicon.DefaultConfig().Timeout,
		},
		&cli.DurationFlag{
			Name:    "ttl",
			Usage:   "age after which cached favicons are fetched again, 0 keeps them forever",
			Sources: sources("NOTEFAVICON_TTL", "", "ttl", cfgPath),
		},
		&cli.BoolFlag{
			Name:    "retry-failures",
			Usage:   "fetch again for origins whose last fetch failed",
			Sources: sources("NOTEFAVICON_RETRY_FAILURES", "", "retry-failures", cfgPath),
		},
	}
}
