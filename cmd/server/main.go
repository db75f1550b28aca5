package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/Skotchmaster/blogpost/internal/config"
	"github.com/Skotchmaster/blogpost/internal/db"
	"github.com/Skotchmaster/blogpost/internal/events"
	"github.com/Skotchmaster/blogpost/internal/genai"
	"github.com/Skotchmaster/blogpost/internal/handlers"
	"github.com/Skotchmaster/blogpost/internal/logging"
	"github.com/Skotchmaster/blogpost/internal/metrics"
	authmw "github.com/Skotchmaster/blogpost/internal/middleware/auth"
	"github.com/Skotchmaster/blogpost/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/blogpost/internal/middleware/logging"
	"github.com/Skotchmaster/blogpost/internal/repo"
	"github.com/Skotchmaster/blogpost/internal/search"
	"github.com/Skotchmaster/blogpost/internal/service"
	"github.com/Skotchmaster/blogpost/internal/session"
	"github.com/Skotchmaster/blogpost/internal/tokens"
	httpserver "github.com/Skotchmaster/blogpost/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err == nil {
		err = db.Migrate(ctx, gdb)
	}
	cancel()
	if err != nil {
		logger.Error("db_init_failed", "error", err)
		os.Exit(1)
	}

	ts, err := tokens.NewService(cfg.SecretKey, cfg.Algorithm, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		logger.Error("token_service_init_failed", "error", err)
		os.Exit(1)
	}

	prod := events.New(cfg.KafkaBrokers)

	var index search.Indexer
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Error("elasticsearch_init_failed", "error", err)
			os.Exit(1)
		}
		index = search.NewESIndex(es, cfg.ESIndex)
	} else {
		logger.Warn("search disabled: ES_URL is not set")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, "blogpost")

	var generator genai.Generator
	if cfg.GeminiAPIKey != "" {
		gc, err := genai.NewGeminiClient(context.Background(), cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GenAITimeout)
		if err != nil {
			logger.Error("genai_init_failed", "error", err)
			os.Exit(1)
		}
		generator = gc
	} else {
		logger.Warn("blog generation disabled: GEMINI_API_KEY is not set")
	}

	r := repo.New(gdb)
	auth := &service.AuthService{Users: r, Tokens: ts, Events: prod}
	blogs := &service.BlogService{
		Blogs:     r,
		Users:     r,
		Generator: generator,
		Pricing:   genai.PricingFor(cfg.GeminiModel),
		Model:     cfg.GeminiModel,
		Events:    prod,
		Index:     index,
		Usage:     m,

		GenerateTimeout: cfg.GenAITimeout,
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.ErrorHandler
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(m.Middleware())
	if cfg.CSRFEnabled {
		e.Use(csrf.Middleware(csrf.SessionConfig(cfg.CookieSecure)))
	}

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:   &handlers.AuthHandler{Auth: auth, Cookies: session.Cookies{Secure: cfg.CookieSecure}},
		BlogHandler:   &handlers.BlogHandler{Blogs: blogs},
		SearchHandler: &handlers.SearchHandler{Blogs: blogs},
		Gate:          authmw.NewGate(auth),
		Ready:         pinger(gdb),
		Metrics:       metrics.Handler(reg),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.GenAITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		logger.Warn("force exit")
		os.Exit(1)
	}()

	logger.Info("shutting down...")

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db close error", "error", err)
	}

	logger.Info("shutdown complete")
}

func pinger(gdb *gorm.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
