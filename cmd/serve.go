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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/manthansachdev12/Hackwave-pragyan/adapters"
	"github.com/manthansachdev12/Hackwave-pragyan/adapters/credentials"
	"github.com/manthansachdev12/Hackwave-pragyan/adapters/llm"
	"github.com/manthansachdev12/Hackwave-pragyan/adapters/stt"
	"github.com/manthansachdev12/Hackwave-pragyan/adapters/tts"
	"github.com/manthansachdev12/Hackwave-pragyan/domain/repositories"
	"github.com/manthansachdev12/Hackwave-pragyan/internal/api"
	"github.com/manthansachdev12/Hackwave-pragyan/internal/auth"
	"github.com/manthansachdev12/Hackwave-pragyan/internal/catalog"
	"github.com/manthansachdev12/Hackwave-pragyan/internal/complaintid"
	"github.com/manthansachdev12/Hackwave-pragyan/internal/config"
	"github.com/manthansachdev12/Hackwave-pragyan/internal/websocket"
	"github.com/manthansachdev12/Hackwave-pragyan/usecase"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, token endpoint and live event feed",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	// Initialize logger
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	// Fail before any network call when configuration is incomplete
	if err := cfg.Validate(); err != nil {
		var missing *config.MissingConfigError
		if errors.As(err, &missing) {
			logger.Fatal("Missing required configuration", zap.Strings("keys", missing.Keys))
		}
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Service catalog drives the complaint ID codes
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	// Initialize adapters
	complaints := adapters.NewMemoryComplaintRepository(logger,
		adapters.WithIDGenerator(complaintid.New(complaintid.WithCodes(cat.ServiceCodes()))))

	backend, err := llm.New(ctx, llm.Config{
		Provider: cfg.LLMProvider,
		Gemini: llm.GeminiConfig{
			APIKey:          cfg.GeminiAPIKey,
			Model:           cfg.LLMModel,
			MaxOutputTokens: cfg.LLMMaxTokens,
			Timeout:         cfg.BackendTimeout,
		},
		OpenAI: llm.OpenAIConfig{
			APIKey:          cfg.OpenAIAPIKey,
			BaseURL:         cfg.OpenAIBaseURL,
			Model:           cfg.LLMModel,
			MaxOutputTokens: cfg.LLMMaxTokens,
			Timeout:         cfg.BackendTimeout,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("init conversational backend: %w", err)
	}

	speechToText, closeSTT, err := newSpeechToText(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init speech-to-text: %w", err)
	}
	defer closeSTT()

	textToSpeech, err := newTextToSpeech(cfg, logger)
	if err != nil {
		return fmt.Errorf("init text-to-speech: %w", err)
	}

	issuer, err := auth.NewTokenIssuer(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("init token issuer: %w", err)
	}

	tokenClient, err := credentials.NewHTTPTokenClient(cfg.TokenServerURL, cfg.TokenRequestTimeout, logger)
	if err != nil {
		return fmt.Errorf("init token client: %w", err)
	}

	// Live event feed
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	// Initialize usecase services
	calls := usecase.NewCallController(tokenClient, backend, complaints, usecase.CallControllerConfig{
		Identity:            cfg.CitizenIdentity,
		ServerURL:           cfg.LiveKitURL,
		TokenTTL:            cfg.TokenTTL,
		TokenRequestTimeout: cfg.TokenRequestTimeout,
		BackendTimeout:      cfg.BackendTimeout,
	}, logger, usecase.WithEventPublisher(hub))
	voice := usecase.NewVoiceTurnService(speechToText, textToSpeech, calls, cfg.STTLanguage, logger)

	expiry := usecase.NewCallExpiryService(calls, cfg.ExpiryCheckInterval, logger)
	expiry.Start()
	defer expiry.Stop()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("12M"))

	// Initialize API routes
	api.InitRoutes(e, api.Dependencies{
		Calls:      calls,
		Voice:      voice,
		Complaints: complaints,
		Issuer:     issuer,
		Catalog:    cat,
		Hub:        hub,
	}, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("port", cfg.Port),
		zap.String("llm_provider", cfg.LLMProvider),
		zap.String("stt_provider", cfg.STTProvider),
		zap.String("tts_provider", cfg.TTSProvider),
		zap.Int("services", len(cat.Services)))

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()

	logger.Info("Server is shutting down...")

	// Abandon any in-flight turn before the listener goes away
	if err := calls.EndCall(); err == nil {
		logger.Info("Active call ended for shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server exited")
	return nil
}

func newSpeechToText(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.SpeechToText, func(), error) {
	if cfg.STTProvider == config.ProviderMock {
		logger.Warn("Using mock speech-to-text")
		return stt.NewMockSpeechToText(logger), func() {}, nil
	}

	google, err := stt.NewGoogleSpeechToText(ctx, stt.GoogleConfig{
		DefaultLanguage:      cfg.STTLanguage,
		AlternativeLanguages: cfg.STTAlternativeLanguages,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	return google, func() {
		if err := google.Close(); err != nil {
			logger.Warn("Failed to close speech client", zap.Error(err))
		}
	}, nil
}

func newTextToSpeech(cfg *config.Config, logger *zap.Logger) (repositories.TextToSpeech, error) {
	if cfg.TTSProvider == config.ProviderMock {
		logger.Warn("Using mock text-to-speech")
		return tts.NewMockTextToSpeech(), nil
	}

	return tts.NewElevenLabsTTS(tts.ElevenLabsConfig{
		APIKey:       cfg.ElevenLabsAPIKey,
		VoiceID:      cfg.ElevenLabsVoiceID,
		ModelID:      cfg.ElevenLabsModelID,
		OutputFormat: cfg.ElevenLabsOutputFormat,
	}, logger)
}
