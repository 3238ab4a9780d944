package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/eleven-am/taskboard/internal/accounts"
	"github.com/eleven-am/taskboard/internal/admin"
	"github.com/eleven-am/taskboard/internal/config"
	"github.com/eleven-am/taskboard/internal/logger"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin web interface",
		Long: `Serve the admin interface under /admin/, prometheus metrics under /metrics
a liveness probe under /healthz and a database readiness probe under /readyz. Stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, 127.0.0.1:8001)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.CLI()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, storm, err := openStorm(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Server.SessionSecret == config.Default().Server.SessionSecret {
		log.Warn("using the built-in session secret; set server.session_secret in production")
	}

	site, err := admin.NewSite(storm, accounts.NewService(storm.Users), admin.SiteOptions{
		Secret:     cfg.Server.SessionSecret,
		SessionTTL: cfg.Server.SessionTTL,
	})
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           site.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("admin listening", "addr", addr, "url", cfg.AdminURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down admin server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
