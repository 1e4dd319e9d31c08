package command

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"

	notefavicon "github.com/dgduncan/go-note-favicon"
	mylog "github.com/dgduncan/go-note-favicon/internal/log"
	"github.com/dgduncan/go-note-favicon/internal/server"
	"github.com/dgduncan/go-note-favicon/metrics"
)

const shutdownTimeout = 5 * time.Second

// ServeCommandAction serves the resolver over HTTP until ctx is canceled.
func ServeCommandAction(ctx context.Context, cmd *cli.Command) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, closer, err := openStore(ctx, cmd,
		notefavicon.WithMetrics(metrics.NewPrometheusRecorderWithRegistry(reg)))
	if err != nil {
		return err
	}
	defer closer()

	ln, err := net.Listen("tcp", cmd.String("addr"))
	if err != nil {
		return err
	}

	return serve(ctx, ln, server.New(notefavicon.NewResolver(store), reg, mylog.NewSlogLogger(nil)))
}

// serve runs handler on ln and shuts it down gracefully once ctx is done.
func serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ServeCommandBuilder constructs the "serve" command.
func ServeCommandBuilder(cfgPath string) *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "serve favicon resolution and metrics over HTTP",
		UsageText: "notefavicon serve [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "listen address",
				Sources: sources("NOTEFAVICON_ADDR", "serve", "addr", cfgPath),
				Value:   "127.0.0.1:8080",
			},
		},
		Action: ServeCommandAction,
	}
}
