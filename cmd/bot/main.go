package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/khiva-consulting/backoffice-api/internal/config"
	"github.com/khiva-consulting/backoffice-api/internal/database"
	"github.com/khiva-consulting/backoffice-api/internal/export"
	"github.com/khiva-consulting/backoffice-api/internal/logger"
	"github.com/khiva-consulting/backoffice-api/internal/repository"
	"github.com/khiva-consulting/backoffice-api/internal/telegram"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	if !cfg.Telegram.Enabled {
		return fmt.Errorf("telegram bot is disabled, set TELEGRAM_ENABLED=true")
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	botUserRepo := repository.NewBotUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	contractRepo := repository.NewContractRepository(db)
	pdfExporter := export.NewPDFExporter(log)

	bot, err := telegram.NewBot(&cfg.Telegram, botUserRepo, clientRepo, contractRepo, pdfExporter, log)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	// Cancel the polling loop on SIGINT/SIGTERM
	runCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("Bot starting")
	if err := bot.Run(runCtx); err != nil {
		return fmt.Errorf("bot stopped: %w", err)
	}
	log.Info("Bot stopped gracefully", zap.String("reason", "signal"))
	return nil
}
