package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"seo_content_studio/config"
	apperrors "seo_content_studio/pkg/errors"
	"seo_content_studio/pkg/logger"
	"seo_content_studio/server"
)

var (
	serveAddr string
	serveMock bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI and JSON API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, serveMock)
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		cfg := a.cfg
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		if cfg.App.Env == "production" {
			gin.SetMode(gin.ReleaseMode)
		}

		store, closeStore, err := buildStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		srv, err := server.New(a.agent, server.Options{
			Store:          store,
			RequestTimeout: cfg.Server.RequestTimeout,
			Provider:       cfg.LLM.Provider,
			Model:          cfg.LLM.Model,
			ServiceName:    cfg.App.Name,
			Tracing:        cfg.Observability.Tracing.Enabled,
			Metrics:        cfg.Observability.Metrics.Enabled,
			MetricsPath:    cfg.Observability.Metrics.Path,
			AllowedOrigins: cfg.Security.CORS.AllowedOrigins,
		})
		if err != nil {
			return err
		}

		httpSrv := &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      srv.Routes(),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info(ctx, "starting web server", "addr", cfg.Server.Addr, "provider", cfg.LLM.Provider, "configured", a.agent.Configured())
			errCh <- httpSrv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		logger.Info(context.Background(), "shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveMock, "mock", false, "answer every stage with placeholder content")
}

func buildStore(ctx context.Context, cfg *config.Config) (server.Store, func(), error) {
	switch cfg.Session.Store {
	case "", "memory":
		return server.NewMemoryStore(cfg.Session.TTL), func() {}, nil
	case "redis":
		store, err := server.NewRedisStore(ctx, server.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Session.TTL,
		})
		if err != nil {
			return nil, nil, apperrors.Wrap(err, apperrors.CodeNotConfigured, fmt.Sprintf("redis session store unavailable at %s", cfg.Redis.Addr))
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}
