package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"coinlens/internal/archive"
	"coinlens/internal/config"
	"coinlens/internal/domain"
	"coinlens/internal/httpapi"
	"coinlens/internal/knowledge"
	"coinlens/internal/marketdata"
	"coinlens/internal/session"
	"coinlens/internal/util"
)

func main() {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	cfgPath := "config/coinlens.yaml"
	if p := os.Getenv("COINLENS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	corpus, err := knowledge.NewStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening knowledge store: %v", err)
	}
	defer corpus.Close()

	primary := marketdata.NewClient(domain.SourcePrimary,
		cfg.Providers.Primary.BaseURL, cfg.Providers.Primary.APIKey, cfg.Providers.Primary.RateLimitPerMin)
	secondary := marketdata.NewClient(domain.SourceSecondary,
		cfg.Providers.Secondary.BaseURL, cfg.Providers.Secondary.APIKey, cfg.Providers.Secondary.RateLimitPerMin)
	market := marketdata.NewService(primary, secondary,
		cfg.Providers.Primary.CacheTTL.Std(), cfg.Providers.Secondary.CacheTTL.Std(),
		cfg.Refresh.FetchTimeout.Std(), logger)

	arch := archive.NewStore(cfg.Storage.DataDir)
	sess := session.NewStore(cfg.Storage.SessionPath, logger)

	srv := httpapi.NewDashboardServer(corpus, market, arch, sess, logger)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Handler(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		ticker := time.NewTicker(cfg.Refresh.Interval.Std())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := srv.ArchiveSnapshot(ctx); err != nil {
					logger.Warn("archiving daily snapshot", "error", err)
				}
			}
		}
	}()

	go func() {
		logger.Info("coinlens server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down coinlens server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
