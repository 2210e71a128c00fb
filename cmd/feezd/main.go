// feezd serves the gas-payment orchestration API.
//
// Configuration is read from the environment (a .env file is honored):
//
//	PORT                  listen port (default 8080)
//	PAYMASTER_MODE        "live" or "mock" (default mock)
//	CIRCLE_API_KEY        bearer credential, required in live mode
//	CIRCLE_API_BASE_URL   override for the paymaster API root
//	DATABASE_PATH         sqlite file; empty runs on the in-memory store
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	feez "github.com/feez-app/feez-go"
	"github.com/feez-app/feez-go/httpapi"
	"github.com/feez-app/feez-go/paymaster"
	"github.com/feez-app/feez-go/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("no .env file found, using environment variables")
	}

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Fatal("feezd exited", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Paymaster implementation is chosen once here and injected; no
	// component reads the environment after startup.
	var client feez.PaymasterClient
	switch os.Getenv("PAYMASTER_MODE") {
	case "live":
		live, err := paymaster.NewClient(&paymaster.Config{
			BaseURL: os.Getenv("CIRCLE_API_BASE_URL"),
			APIKey:  os.Getenv("CIRCLE_API_KEY"),
		})
		if err != nil {
			return fmt.Errorf("failed to configure live paymaster: %w", err)
		}
		client = live
		log.Info("using live paymaster")
	default:
		client = paymaster.NewMockClient()
		log.Info("using mock paymaster")
	}

	var txStore feez.TransactionStore
	if path := os.Getenv("DATABASE_PATH"); path != "" {
		gs, err := store.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open transaction store: %w", err)
		}
		txStore = gs
		log.Info("using sqlite transaction store", zap.String("path", path))
	} else {
		txStore = feez.NewInMemoryStore()
		log.Info("using in-memory transaction store")
	}

	orch := feez.NewOrchestrator(
		client,
		txStore,
		feez.NewSimulatedConfirmations(),
		feez.WithLogger(log),
	)

	api := httpapi.NewServer(orch, txStore, log)
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: api.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("feezd listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	// Let in-flight confirmation watchers finish their single transition.
	orch.Wait()
	return nil
}
