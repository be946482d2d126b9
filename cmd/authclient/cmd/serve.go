package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrsteele09/go-auth-client/server"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the web front",
		Long: `Serve the login, users and user detail pages. Every page is checked by the
navigation guard against the stored session, which is reconciled with the
identity API at startup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApp(func(a *app) error {
				displayAppname(cmd.OutOrStdout(), a.cfg.GetAppName())
				return serve(ctx, a)
			})
		},
	}
}

func serve(ctx context.Context, a *app) error {
	if a.state.CheckAuth(ctx) {
		log.Info().Str("user", a.state.User().DisplayName()).Msg("restored stored session")
	} else {
		log.Info().Msg("no usable stored session")
	}

	srv, err := server.New(ctx, a.cfg, server.Deps{
		State:   a.state,
		Users:   a.users,
		Tracker: a.tracker,
		Metrics: a.metrics,
	})
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:              a.cfg.GetPort(),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", httpServer.Addr).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server.ListenAndServe %w", err)
		}
		return nil
	})
	g.Go(func() error {
		watchSession(gctx, a.state)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		srv.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server.Shutdown: %w", err)
		}
		log.Info().Msg("server stopped")
		return nil
	})
	return g.Wait()
}

// watchSession logs every session state change until ctx is done.
func watchSession(ctx context.Context, state *session.State) {
	updates, unsubscribe := state.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			event := log.Debug().Bool("loading", snap.IsLoading).Bool("signed_in", snap.User != nil)
			if snap.Error != "" {
				event = event.Str("error", snap.Error)
			}
			event.Msg("session state changed")
		}
	}
}
