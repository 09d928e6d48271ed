package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"docrelay/internal/api"
	"docrelay/internal/backend"
	"docrelay/internal/config"
	"docrelay/internal/staging"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the relay web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if !opts.debug {
				gin.SetMode(gin.ReleaseMode)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, loggerFromCtx(cmd.Context()))
		},
	}
}

func newServer(cfg *config.Config, stager *staging.Stager, log *slog.Logger) (*http.Server, error) {
	client := backend.New(cfg.Backend.BaseURL, backend.WithTimeout(cfg.Backend.Timeout))
	handler := api.NewHandler(client, stager,
		api.WithLogger(log),
		api.WithDemoEndpoints(cfg.Backend.StreamURL, cfg.Backend.SocketURL),
	)
	router, err := api.NewRouter(handler)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// serve runs the relay until ctx ends, then drains in-flight requests.
func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	stager, err := staging.New(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	if err != nil {
		return err
	}
	srv, err := newServer(cfg, stager, log)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	stager.StartSweeper(gctx, cfg.Upload.SweepInterval, cfg.Upload.StaleAfter, log)
	g.Go(func() error {
		log.Info("relay listening", "addr", srv.Addr, "url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port))
		log.Info("backend api", "url", cfg.Backend.BaseURL+"/api/v1", "upload_dir", cfg.Upload.Dir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
