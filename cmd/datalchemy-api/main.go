package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mmrzaf/datalchemy/internal/api"
	"github.com/mmrzaf/datalchemy/internal/app"
	"github.com/mmrzaf/datalchemy/internal/assets"
	"github.com/mmrzaf/datalchemy/internal/config"
	"github.com/mmrzaf/datalchemy/internal/exec"
	"github.com/mmrzaf/datalchemy/internal/infra/repos/plans"
	"github.com/mmrzaf/datalchemy/internal/infra/repos/runs"
	"github.com/mmrzaf/datalchemy/internal/logging"
	"github.com/mmrzaf/datalchemy/internal/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.NewLogger("info").Errorw("startup.failed", map[string]any{"error": err.Error(), "stage": "config"})
		os.Exit(1)
	}

	plansDir := flag.String("plans-dir", cfg.PlansDir, "Plans directory")
	assetsDir := flag.String("assets-dir", cfg.AssetsDir, "Assets directory")
	outDir := flag.String("out", cfg.OutDir, "Output directory")
	runsDB := flag.String("runs-db", cfg.RunsDBPath, "Runs database path (SQLite)")
	dbDSN := flag.String("db", cfg.RunsDBDSN, "Runs database DSN (PostgreSQL); overrides --runs-db")
	bindAddr := flag.String("bind", cfg.BindAddr, "Bind address")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level")
	flag.Parse()

	logger := logging.NewLogger(*logLevel).WithComponent("api_main")

	var runRepo runs.Repository
	if *dbDSN != "" {
		runRepo = runs.NewPostgresRepository(*dbDSN)
	} else {
		runRepo = runs.NewSQLiteRepository(*runsDB)
	}
	if err := runRepo.Init(); err != nil {
		logger.Errorw("startup.failed", map[string]any{"error": err.Error(), "stage": "init_run_repo"})
		os.Exit(1)
	}
	defer runRepo.Close()

	opts := exec.DefaultOptions()
	opts.OutDir = *outDir
	opts.Strict = cfg.Strict
	opts.MaxAttemptsRow = cfg.MaxAttemptsRow
	opts.MaxAttemptsTable = cfg.MaxAttemptsTable
	opts.AutoGenerateParents = cfg.AutoGenerateParents

	genRegistry := registry.DefaultGeneratorRegistry(assets.NewLoader(*assetsDir))
	runService := app.NewRunService(plans.NewFileRepository(*plansDir), runRepo, genRegistry, logger, opts)
	handler := api.NewHandler(runService)

	srv := &http.Server{
		Addr:              *bindAddr,
		Handler:           api.LoggingMiddleware(logger.WithComponent("http"), handler.Routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infow("startup.listening", map[string]any{"bind": *bindAddr})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorw("startup.failed", map[string]any{"error": err.Error(), "stage": "listen"})
		os.Exit(1)
	}
	logger.Infow("shutdown.completed", nil)
}
