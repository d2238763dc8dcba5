package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"smart-pantry/internal/app"
	"smart-pantry/internal/clipper"
	"smart-pantry/internal/config"
	"smart-pantry/internal/database"
	"smart-pantry/internal/household"
	"smart-pantry/internal/llm"
	"smart-pantry/internal/logging"
	"smart-pantry/internal/metrics"
	"smart-pantry/internal/search"
	"smart-pantry/internal/storage"
	"smart-pantry/internal/telegram"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		logging.New("info", "json").Fatal("failed to load config", zap.Error(err))
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	ctx := context.Background()

	// 2. Storage
	db, err := database.NewDB(cfg.DatabasePath, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	stores := func(namespace string) (*storage.DocumentStore, error) {
		if cfg.StorageBackend == config.BackendFile {
			b, err := storage.NewFileBackend(cfg.DocumentsPath, namespace)
			if err != nil {
				return nil, err
			}
			return storage.NewDocumentStore(b, logger), nil
		}
		return storage.NewDocumentStore(storage.NewSQLBackend(db.SQL, namespace), logger), nil
	}
	dataPath := filepath.Dir(cfg.DatabasePath)
	if cfg.StorageBackend == config.BackendFile {
		dataPath = cfg.DocumentsPath
	}

	// 3. Collaborators
	geminiClient, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to create Gemini client", zap.Error(err))
	}
	defer geminiClient.Close()

	var structured llm.StructuredGenerator = geminiClient
	var textGen llm.TextGenerator = geminiClient
	if cfg.RecipeProvider == config.ProviderGroq {
		groq := llm.NewGroqClient(cfg)
		structured, textGen = groq, groq
	}

	// 4. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	usage := metrics.NewStore(db.SQL)

	deps := app.Deps{
		Scanner:  search.NewScanner(geminiClient, logger),
		Searcher: search.NewSearcher(llm.NewGroundedClient(cfg), structured, logger),
		Importer: clipper.NewClipper(textGen),
		Recorder: metrics.NewRecorder(usage, metrics.NewCollectors(reg), logger),
		Log:      logger,
	}
	if cfg.InviteSecret != "" {
		deps.Invites = household.NewInviteSigner(cfg.InviteSecret, cfg.InviteTTL)
	} else {
		logger.Warn("INVITE_SECRET not set; household invites are disabled")
	}

	// 5. Telegram
	api, err := telegram.NewAPI(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize Telegram API", zap.Error(err))
	}
	bot := telegram.NewBot(cfg, api, telegram.Options{
		Stores:   stores,
		Deps:     deps,
		Usage:    usage,
		Gatherer: reg,
		DataPath: dataPath,
		Log:      logger,
	})

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           bot.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("telegram bot server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exiting")
}
