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

	"smart-diet-planner/internal/client"
	"smart-diet-planner/internal/config"
	"smart-diet-planner/internal/database"
	"smart-diet-planner/internal/llm"
	"smart-diet-planner/internal/logger"
	"smart-diet-planner/internal/metrics"
	"smart-diet-planner/internal/planner"
	"smart-diet-planner/internal/telegram"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err == nil {
		err = cfg.RequireTelegram()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.L()

	ctx := context.Background()

	// 2. Infrastructure
	gen, err := llm.New(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to create LLM client", zap.Error(err))
	}
	defer gen.Close()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	store := metrics.NewStore(db.SQL)

	api, err := telegram.NewAPI(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Telegram API", zap.Error(err))
	}

	// 3. Services
	recorder := telegram.NewUsageAlerter(store, api, cfg.AdminTelegramID)
	mealPlanner := planner.NewPlanner(gen, planner.WithRecorder(recorder))
	bot := telegram.NewBot(cfg, api, client.LocalSubmitter{Generator: mealPlanner}, store, cfg.DatabasePath)

	// 4. Start Server with Graceful Shutdown
	mux := http.NewServeMux()
	bot.RegisterHandlers(mux)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Telegram Bot Server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	bot.Wait()

	log.Info("Server exiting")
}
