package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/amolnak/GuidanceMind/internal/app"
	"github.com/amolnak/GuidanceMind/internal/common"
	"github.com/amolnak/GuidanceMind/internal/repository"
	"github.com/amolnak/GuidanceMind/internal/server"
)

func main() {
	fs := pflag.NewFlagSet("guidanced", pflag.ContinueOnError)
	common.RegisterFlags(fs)
	cfg, err := common.LoadConfig(fs, os.Args[1:])
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(2)
	}
	logger := common.NewLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	logger.Info("config loaded", "llm", cfg.LLM.String(), "store", repository.DialectFor(cfg.Store.DSN))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := repository.HealthCheck(ctx, a.DB, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	session, err := a.Processor.Open(ctx, cfg.Store.Session)
	if err != nil {
		logger.Error("failed to open session", "error", err)
		os.Exit(1)
	}

	rfqText := app.NewTextExtractor(cfg, "\n", logger)
	svc := server.New(server.Config{
		OutputPath:    cfg.Data.Output,
		APIKey:        cfg.LLM.APIKey,
		RequireAPIKey: cfg.LLM.Provider == common.ProviderOpenAI,
	}, a.Processor, session, a.Reader, a.Exporter, rfqText, logger)

	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
			os.Exit(1)
		}
		hs := server.NewHealthServer(func(ctx context.Context) error {
			return repository.HealthCheck(ctx, a.DB, 2*time.Second, logger)
		}, logger)
		go func() {
			if err := hs.Serve(ctx, lis, 30*time.Second); err != nil {
				logger.Error("grpc server error", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           svc.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr, "session", session.Name, "cursor", session.Cursor)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	_ = svc.Close(shutdownCtx)
	logger.Info("stopped")
}
