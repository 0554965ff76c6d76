package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stockroom-app/stockroom/internal/api"
	"github.com/stockroom-app/stockroom/internal/app/auth"
	"github.com/stockroom-app/stockroom/internal/domain"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Start the stockroom HTTP API. The server stops gracefully on SIGINT or
SIGTERM, letting in-flight requests finish.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStack()
	if err != nil {
		return err
	}
	defer st.Close()

	srv := api.NewServer(st.catalog, st.engine, st.dashboard)
	srv.SetLogger(zap.L())
	srv.SetAllowedOrigins(cfg.API.AllowedOrigins)
	srv.SetTimeout(cfg.API.Timeout())

	if cfg.Auth.Enabled {
		if err := ensureAdmin(ctx, st); err != nil {
			return err
		}
		srv.EnableAuth(auth.NewIssuer(cfg.Auth.TokenSecret, cfg.Auth.TTL(), st.db))
	}

	if cfg.Metrics.Enabled {
		srv.EnableMetrics()
		scheduler, err := scheduleGaugeRefresh(ctx, st)
		if err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	httpSrv := &http.Server{
		Addr:              cfg.API.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("stockroom API listening",
			zap.String("addr", httpSrv.Addr),
			zap.String("data_dir", cfg.DataDir()),
			zap.Bool("auth", cfg.Auth.Enabled))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// ensureAdmin creates the configured admin account on first start.
func ensureAdmin(ctx context.Context, st *stack) error {
	if cfg.Auth.AdminPassword == "" {
		zap.L().Warn("auth enabled without admin_password; no default account created")
		return nil
	}
	admin := &domain.User{Username: cfg.Auth.AdminUsername, FullName: "Administrator"}
	if err := st.db.EnsureUser(ctx, admin, cfg.Auth.AdminPassword); err != nil {
		return fmt.Errorf("ensure admin user: %w", err)
	}
	return nil
}

// scheduleGaugeRefresh publishes inventory gauges now and then on the
// configured cron schedule.
func scheduleGaugeRefresh(ctx context.Context, st *stack) (*cron.Cron, error) {
	refresh := func() {
		if err := st.dashboard.RefreshGauges(ctx); err != nil && ctx.Err() == nil {
			zap.L().Warn("refresh inventory gauges", zap.Error(err))
		}
	}
	c := cron.New()
	if _, err := c.AddFunc(cfg.Metrics.RefreshSchedule, refresh); err != nil {
		return nil, fmt.Errorf("metrics.refresh_schedule %q: %w", cfg.Metrics.RefreshSchedule, err)
	}
	refresh()
	c.Start()
	return c, nil
}
