package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/petal-labs/coverkit/cli/keystore"
	"github.com/petal-labs/coverkit/gate"
	"github.com/petal-labs/coverkit/server"
)

const shutdownTimeout = 10 * time.Second

func (a *App) newServeCommand() *cobra.Command {
	var (
		addr      string
		ephemeral bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cover studio over HTTP",
		Long: `Start the single-user HTTP API on --addr (default from config,
127.0.0.1:8080).

With --ephemeral the API key entered through the API is kept in memory only
and forgotten when the server stops.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.ListenAddr
			}

			var g *gate.Gate
			if ephemeral {
				g = gate.New(keystore.NewMemoryKeystore(), gate.WithLogger(a.logger))
			} else {
				var err error
				if g, err = a.openGate(); err != nil {
					return err
				}
			}
			st, err := a.newStudio()
			if err != nil {
				return err
			}

			srv := server.New(st, g,
				server.WithLogger(a.logger),
				server.WithClock(a.now),
				server.WithDefaultPlatform(a.cfg.Platform()),
			)
			return a.listen(cmd.Context(), addr, srv.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address")
	cmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "keep the API key in memory only")

	return cmd
}

// listen serves h until ctx is cancelled or SIGINT/SIGTERM arrives.
func (a *App) listen(ctx context.Context, addr string, h http.Handler) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", addr).Msg("server listening")
		fmt.Fprintf(a.stderr, "coverkit listening on http://%s\n", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return exitWithCode(ExitNetwork, fmt.Errorf("listen on %s: %w", addr, err))
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.logger.Info().Msg("server exited")
	return nil
}
