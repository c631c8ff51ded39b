package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/familyfinance/finchat/internal/api"
	"github.com/familyfinance/finchat/internal/auth"
	"github.com/familyfinance/finchat/internal/config"
	"github.com/familyfinance/finchat/internal/core"
	"github.com/familyfinance/finchat/internal/logging"
	"github.com/familyfinance/finchat/internal/store"
	"github.com/shopspring/decimal"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	seedFlag := flag.Bool("seed", false, "Create a demo user with two banks and exit")
	tokenFlag := flag.Int64("token", 0, "Print a JWT for the given user id and exit")
	flag.Parse()

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.AppConfig

	// Setup logging
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	slog.Debug("Service starting in DEBUG mode")

	if *tokenFlag != 0 {
		token, err := auth.GenerateJWT(*tokenFlag, "user")
		if err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}
		fmt.Println(token)
		return nil
	}

	ctx := context.Background()

	// Initialize database store
	dbStore, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbStore.Close()
	slog.Info("Database ready", "postgres", cfg.IsPostgres())

	if *seedFlag {
		return seed(ctx, dbStore)
	}

	pending := core.NewMemoryPendingStore(cfg.PendingActionTTL)
	defer pending.Close()

	chatService := core.NewChatService(dbStore, pending)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(dbStore, chatService)
	router := api.NewRouter(apiHandler)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting server. Press Ctrl+C to quit.", "addr", serverAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("could not listen on %s: %w", serverAddr, err)
	case <-quit:
	}
	slog.Info("Shutting down server...")

	// Give active connections time to finish.
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server exiting gracefully")
	return nil
}

const (
	demoEmail    = "demo@finchat.local"
	demoPassword = "demo1234"
)

// seed creates a demo user with the Nubank and Itaú accounts used in the
// chat examples. Running it twice is a no-op.
func seed(ctx context.Context, st store.Store) error {
	if _, err := st.GetUserByEmail(ctx, demoEmail); err == nil {
		slog.Info("Demo user already exists", "email", demoEmail)
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	user := &store.User{Name: "Demo Finchat", Email: demoEmail, PasswordHash: hash}
	if err := st.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create demo user: %w", err)
	}

	banks := []*store.Bank{
		{UserID: user.ID, Name: "Nubank", AccountType: "corrente", Balance: decimal.NewFromInt(1500)},
		{UserID: user.ID, Name: "Itaú", AccountType: "poupança", Balance: decimal.NewFromInt(3200)},
	}
	for _, bank := range banks {
		if err := st.CreateBank(ctx, bank); err != nil {
			return fmt.Errorf("failed to create bank %s: %w", bank.Name, err)
		}
	}

	slog.Info("Seeded demo data", "user_id", user.ID, "email", demoEmail, "password", demoPassword)
	return nil
}
