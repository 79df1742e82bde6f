// Command telegram-bot runs the BCN Art Compass Telegram relay: it
// forwards each inbound Telegram message to the orchestrator's /chat
// endpoint and sends the reply back to the originating chat.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	appconfig "github.com/bcn-art-compass/telegram-bot/internal/config"
	"github.com/bcn-art-compass/telegram-bot/internal/connectors/telegram"
	"github.com/bcn-art-compass/telegram-bot/internal/monitoring"
	"github.com/bcn-art-compass/telegram-bot/internal/orchestrator"
	"github.com/bcn-art-compass/telegram-bot/pkg/logger"
	"github.com/bcn-art-compass/telegram-bot/pkg/metrics"
)

func main() {
	// Local development convenience; missing .env is not an error
	_ = godotenv.Load()

	cfg, err := appconfig.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewLogger(logger.Config{
		Level:   cfg.GetLogLevel(),
		Format:  cfg.LogFormat,
		Service: cfg.ServiceName,
	})
	cfg.LogConfig(appLogger)

	appMetrics := metrics.New(appLogger)

	relayClient, err := orchestrator.NewClient(cfg.Orchestrator, appLogger, appMetrics)
	if err != nil {
		appLogger.Error("Failed to create orchestrator client", logger.ErrorField(err))
		os.Exit(1)
	}

	connector, err := telegram.NewConnector(cfg.Telegram, relayClient, appLogger, appMetrics)
	if err != nil {
		appLogger.Error("Failed to create Telegram connector", logger.ErrorField(err))
		os.Exit(1)
	}

	// Verify the bot token before we start polling
	infoCtx, infoCancel := context.WithTimeout(context.Background(), 10*time.Second)
	botInfo, err := connector.GetBotInfo(infoCtx)
	infoCancel()
	if err != nil {
		appLogger.Error("Failed to connect to Telegram API", logger.ErrorField(err))
		os.Exit(1)
	}
	appLogger.Info("Connected to Telegram",
		logger.StringField("bot_username", botInfo.Username),
		logger.Int64Field("bot_id", botInfo.ID),
	)

	orchestratorURL, _ := cfg.Orchestrator.URL()
	healthMonitor := monitoring.NewHealthMonitor(monitoring.Config{
		Logger:            appLogger,
		OrchestratorURL:   orchestratorURL,
		TelegramConnector: connector,
		Timeout:           cfg.Monitoring.HealthCheckTimeout,
		FailureThreshold:  cfg.Monitoring.HealthFailureThreshold,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 3)

	go func() {
		errChan <- connector.Start(ctx)
	}()
	go func() {
		errChan <- healthMonitor.Listen(ctx, cfg.HTTP)
	}()
	if cfg.Metrics.ExposeMetrics {
		go func() {
			errChan <- appMetrics.Listen(ctx, cfg.Metrics.Port)
		}()
	}

	appLogger.Info("Telegram relay is running")

	select {
	case sig := <-sigChan:
		appLogger.Info("Received shutdown signal", logger.StringField("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			appLogger.Error("Component failed", logger.ErrorField(err))
		}
	}

	cancel()
	appLogger.Info("Telegram relay stopped")
}
