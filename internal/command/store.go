package command

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	_ "github.com/lib/pq"
	"github.com/urfave/cli/v3"

	notefavicon "github.com/dgduncan/go-note-favicon"
	ddbcache "github.com/dgduncan/go-note-favicon/caches/dynamodb"
	"github.com/dgduncan/go-note-favicon/caches/file"
	"github.com/dgduncan/go-note-favicon/caches/local"
	"github.com/dgduncan/go-note-favicon/caches/postgres"
	mylog "github.com/dgduncan/go-note-favicon/internal/log"
)

// storeConfig builds the library configuration from the global flags.
func storeConfig(cmd *cli.Command) (*notefavicon.Config, error) {
	provider, err := notefavicon.ParseProvider(cmd.String("provider"))
	if err != nil {
		return nil, err
	}

	c := notefavicon.DefaultConfig()
	c.Provider = provider
	c.Timeout = cmd.Duration("timeout")
	c.TTL = cmd.Duration("ttl")
	c.RetryFailures = cmd.Bool("retry-failures")
	return &c, nil
}

// openStore opens the selected backend and wraps it in a Store. The returned
// func releases the backend's resources.
func openStore(ctx context.Context, cmd *cli.Command, options ...notefavicon.Option) (*notefavicon.Store, func(), error) {
	c, err := storeConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	backend, closer, err := openBackend(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}

	return notefavicon.New(backend, c, nil, mylog.NewSlogLogger(nil), options...), closer, nil
}

func openBackend(ctx context.Context, cmd *cli.Command) (notefavicon.Backend, func(), error) {
	noop := func() {}
	name := cmd.String("backend")
	log.Debugf("using %s backend", name)

	switch name {
	case backendMemory:
		return local.NewBasicCache(), noop, nil

	case backendPostgres:
		dsn := cmd.String("dsn")
		if dsn == "" {
			return nil, nil, errors.New("--dsn is required for the postgres backend")
		}
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		cache, err := postgres.New(ctx, db, &postgres.Config{Name: cmd.String("document")})
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return cache, func() { db.Close() }, nil

	case backendDynamoDB:
		cache, err := openDynamoDB(ctx, cmd)
		if err != nil {
			return nil, nil, err
		}
		return cache, noop, nil

	default:
		dir := cmd.String("cache-dir")
		if dir == "" {
			var err error
			if dir, err = file.Dir(); err != nil {
				return nil, nil, err
			}
		}
		cache, err := file.New(dir)
		if err != nil {
			return nil, nil, err
		}
		log.Debugf("cache document: %s", cache.Path())
		return cache, noop, nil
	}
}

func openDynamoDB(ctx context.Context, cmd *cli.Command) (*ddbcache.Cache, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region := cmd.String("region"); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint := cmd.String("endpoint"); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	table := cmd.String("table")
	if cmd.Bool("create-table") {
		var inUse *types.ResourceInUseException
		if err := ddbcache.CreateTable(ctx, client, table); err != nil && !errors.As(err, &inUse) {
			return nil, fmt.Errorf("create table %s: %w", table, err)
		}
	}

	return ddbcache.New(ctx, client, &ddbcache.Config{Table: table, Name: cmd.String("document")})
}
