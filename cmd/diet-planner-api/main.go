package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"smart-diet-planner/internal/config"
	"smart-diet-planner/internal/database"
	"smart-diet-planner/internal/httpapi"
	"smart-diet-planner/internal/llm"
	"smart-diet-planner/internal/logger"
	"smart-diet-planner/internal/metrics"
	"smart-diet-planner/internal/planner"
	"smart-diet-planner/internal/tracer"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const serviceName = "smart-diet-planner-api"

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracer.Init(ctx, tracer.Config{
		ServiceName: serviceName,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRate:  cfg.TraceSampleRate,
		Enabled:     cfg.TracingEnabled,
	})
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	store := metrics.NewStore(db.SQL)

	gen, err := llm.New(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to create LLM client", zap.Error(err))
	}
	defer gen.Close()

	mealPlanner := planner.NewPlanner(gen, planner.WithRecorder(store))

	if strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := httpapi.New(httpapi.Options{
		Generator:      mealPlanner,
		Store:          store,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		TokenSecret:    cfg.APITokenSecret,
		Tracing:        cfg.TracingEnabled,
		ServiceName:    serviceName,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Diet planner API listening",
			zap.String("port", cfg.Port),
			zap.String("provider", cfg.LLMProvider),
			zap.Bool("auth", cfg.APITokenSecret != ""))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return shutdownTracer(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Server exiting")
}
