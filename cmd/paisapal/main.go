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

	"github.com/joho/godotenv"

	"github.com/paisapal/paisapal-go/internal/agent"
	"github.com/paisapal/paisapal-go/internal/config"
	"github.com/paisapal/paisapal-go/internal/finance"
	"github.com/paisapal/paisapal-go/internal/history"
	"github.com/paisapal/paisapal-go/internal/llm"
	"github.com/paisapal/paisapal-go/internal/logger"
	"github.com/paisapal/paisapal-go/internal/server"
	"github.com/paisapal/paisapal-go/internal/tools"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.L.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	llmClient := llm.NewClient(cfg.LLM)
	financeAPI := finance.NewHTTPClient(cfg.FinanceAPI)

	toolClient, err := tools.New(ctx, cfg.Tools)
	if err != nil {
		logger.L.Error("failed to connect to tool server", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := toolClient.Close(); cerr != nil {
			logger.L.Warn("tool client close error", "error", cerr)
		}
	}()

	store := history.Open(os.Getenv("HISTORY_DB_PATH"))
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.L.Warn("history store close error", "error", cerr)
		}
	}()

	a := agent.New(llmClient, toolClient, financeAPI, agent.WithHistoryStore(store))

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           server.New(a).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.L.Info("starting server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.L.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L.Error("shutdown error", "error", err)
	}
}
