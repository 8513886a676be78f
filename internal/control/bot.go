package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/tipbot/internal/command"
	"github.com/vietddude/tipbot/internal/core/config"
	"github.com/vietddude/tipbot/internal/export"
	"github.com/vietddude/tipbot/internal/infra/ledger"
	redisclient "github.com/vietddude/tipbot/internal/infra/redis"
	"github.com/vietddude/tipbot/internal/infra/storage"
	"github.com/vietddude/tipbot/internal/infra/storage/memory"
	"github.com/vietddude/tipbot/internal/infra/storage/postgres"
	"github.com/vietddude/tipbot/internal/server"
	"github.com/vietddude/tipbot/internal/transport"
	"github.com/vietddude/tipbot/internal/transport/telegram"
	"github.com/vietddude/tipbot/internal/wallet"
)

// Bot is the main application struct that wires the command engine to its
// transports and infrastructure.
type Bot struct {
	cfg        *config.AppConfig
	dispatcher *command.Dispatcher
	httpServer *server.Server
	telegram   *telegram.Bot
	db         *postgres.DB
	redis      *redisclient.Client
	log        *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewBot creates a Bot instance with all dependencies initialized.
func NewBot(cfg *config.AppConfig) (*Bot, error) {
	log := slog.Default()

	// 1. Ledger client
	ledgerClient := ledger.NewHTTPClient(cfg.Ledger.URL, cfg.Ledger.APIKey, cfg.Ledger.Timeout)

	// 2. Challenge store: shared via Redis when configured, in-process otherwise
	var challenges export.ChallengeStore
	var redisClient *redisclient.Client
	var dedupe transport.Deduper
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		challenges = redisClient.ChallengeStore()
		dedupe = redisClient
		slog.Info("Using Redis challenge store")
	} else {
		challenges = export.NewMemoryStore()
		slog.Info("Using in-memory challenge store")
	}

	// 3. Audit storage
	var audit storage.AuditRepository
	var db *postgres.DB
	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		audit = postgres.NewAuditRepo(db)
		slog.Info("Using PostgreSQL audit storage")
	} else {
		audit = memory.NewAuditRepo()
		slog.Info("Using memory audit storage")
	}

	// 4. Core engine
	orchestrator := wallet.New(ledgerClient, cfg.Bot.FeeBuffer)
	machine := export.NewMachine(challenges, ledgerClient)
	machine.RedactAfterSeconds = cfg.Bot.ExportRedactAfterSeconds
	normalizer := command.NewNormalizer(cfg.Bot.Mentions.All())
	dispatcher := command.New(normalizer, orchestrator, machine, ledgerClient, audit, cfg.Bot.ExplorerURL, log)

	b := &Bot{
		cfg:        cfg,
		dispatcher: dispatcher,
		httpServer: server.NewServer(cfg.Server.Port, orchestrator, ledgerClient),
		db:         db,
		redis:      redisClient,
		log:        log,
	}

	if cfg.Telegram.BotToken != "" {
		b.telegram = telegram.NewBot(telegram.Config{
			BotToken:    cfg.Telegram.BotToken,
			BaseURL:     cfg.Telegram.BaseURL,
			PollTimeout: cfg.Telegram.PollTimeout,
		}, dispatcher, dedupe, log)
	}

	return b, nil
}

// Dispatcher exposes the command engine for transports hosted elsewhere.
func (b *Bot) Dispatcher() *command.Dispatcher {
	return b.dispatcher
}

// Start launches the HTTP server and the configured transports.
func (b *Bot) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.done = make(chan struct{})

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		if err := b.httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	b.log.Info("HTTP server listening", "port", b.cfg.Server.Port)

	g.Go(func() error {
		if b.telegram == nil {
			b.log.Warn("No telegram bot token configured; transport disabled")
			<-gctx.Done()
			return nil
		}
		if err := b.telegram.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("telegram transport: %w", err)
		}
		return nil
	})

	go func() {
		defer close(b.done)
		if err := g.Wait(); err != nil && runCtx.Err() == nil {
			b.log.Error("component stopped", "error", err)
		}
	}()

	return nil
}

// Stop shuts everything down gracefully.
func (b *Bot) Stop(ctx context.Context) error {
	if b.cancel != nil {
		b.cancel()
	}
	if b.done != nil {
		select {
		case <-b.done:
		case <-ctx.Done():
		}
	}

	if err := b.httpServer.Stop(ctx); err != nil {
		b.log.Warn("failed to stop http server", "error", err)
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			b.log.Warn("failed to close redis", "error", err)
		}
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			b.log.Warn("failed to close db", "error", err)
		}
	}
	return nil
}
