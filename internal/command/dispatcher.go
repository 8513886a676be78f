package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/tipbot/internal/core/domain"
	"github.com/vietddude/tipbot/internal/export"
	"github.com/vietddude/tipbot/internal/infra/ledger"
	"github.com/vietddude/tipbot/internal/infra/storage"
	"github.com/vietddude/tipbot/internal/metrics"
	"github.com/vietddude/tipbot/internal/wallet"
)

// Dispatcher maps normalized commands to handlers. Handlers are pure given
// the injected dependencies and never talk to a transport; every inbound
// event produces exactly one reply.
type Dispatcher struct {
	norm        *Normalizer
	wallets     *wallet.Orchestrator
	exports     *export.Machine
	ledger      ledger.Service
	audit       storage.AuditRepository
	explorerURL string
	log         *slog.Logger
}

// New creates a dispatcher.
func New(
	norm *Normalizer,
	wallets *wallet.Orchestrator,
	exports *export.Machine,
	svc ledger.Service,
	audit storage.AuditRepository,
	explorerURL string,
	log *slog.Logger,
) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		norm:        norm,
		wallets:     wallets,
		exports:     exports,
		ledger:      svc,
		audit:       audit,
		explorerURL: explorerURL,
		log:         log,
	}
}

// Handle processes one inbound event and always returns a reply, even on
// unexpected internal failure.
func (d *Dispatcher) Handle(ctx context.Context, ev domain.InboundEvent) (reply domain.Reply) {
	cmd := d.norm.Normalize(ev.RawText)

	defer func() {
		if r := recover(); r != nil {
			d.log.Error("panic while handling command",
				"keyword", cmd.Keyword, "platform", ev.Platform, "panic", r)
			reply = domain.Reply{Text: "Sorry, something went wrong on our side. Please try again."}
			metrics.CommandsProcessed.WithLabelValues(string(ev.Platform), cmd.Keyword, "panic").Inc()
		}
	}()

	if cmd.IsEmpty() {
		return domain.Reply{Text: "I didn't catch a command there. Type help to see what I can do."}
	}

	start := time.Now()
	reply, err := d.dispatch(ctx, ev, cmd)
	status := "ok"
	if err != nil {
		status = string(domain.CategoryOf(err))
		if domain.CategoryOf(err) == domain.ErrCategoryInternal {
			d.log.Error("command failed", "keyword", cmd.Keyword, "platform", ev.Platform, "error", err)
		} else {
			d.log.Debug("command rejected", "keyword", cmd.Keyword, "platform", ev.Platform, "error", err)
		}
		reply = domain.Reply{Text: domain.UserMessage(err)}
	}

	metrics.CommandsProcessed.WithLabelValues(string(ev.Platform), cmd.Keyword, status).Inc()
	metrics.CommandDuration.WithLabelValues(cmd.Keyword).Observe(time.Since(start).Seconds())
	d.recordAudit(ctx, ev, cmd, status)
	return reply
}

func (d *Dispatcher) dispatch(ctx context.Context, ev domain.InboundEvent, cmd domain.ParsedCommand) (domain.Reply, error) {
	switch cmd.Keyword {
	case "send", "tip":
		return d.handleSend(ctx, ev, cmd.Args)
	case "balance":
		return d.handleBalance(ctx, ev)
	case "tokens":
		return d.handleTokens()
	case "tokens-info":
		return d.handleTokensInfo(ctx, ev)
	case "address":
		return d.handleAddress(ctx, ev)
	case "register":
		return d.handleRegister(ctx, ev)
	case "connect":
		return d.handleConnect(ctx, ev, cmd.Args)
	case "price":
		return d.handlePrice(ctx, cmd.Args)
	case "history":
		return d.handleHistory(ctx, ev)
	case "profile":
		return d.handleProfile(ctx, ev)
	case "export-privatekey":
		return d.handleExport(ctx, ev, cmd.Args)
	case "export-privatekey-confirm":
		if len(cmd.Args) == 0 {
			return domain.Reply{}, domain.ValidationErrorf("Usage: export-privatekey-confirm <code>")
		}
		return d.handleExport(ctx, ev, cmd.Args)
	case "transaction":
		return d.handleTransaction(ctx, cmd.Args)
	case "account":
		return d.handleAccount(ctx, cmd.Args)
	case "network":
		return d.handleNetwork(ctx)
	case "help":
		return d.handleHelp()
	default:
		return domain.Reply{}, domain.ValidationErrorf("Unknown command %q. Type help to see what I can do.", cmd.Keyword)
	}
}

// recordAudit persists the processed command; failures are logged, never
// surfaced to the user.
func (d *Dispatcher) recordAudit(ctx context.Context, ev domain.InboundEvent, cmd domain.ParsedCommand, status string) {
	if d.audit == nil {
		return
	}
	rec := &domain.AuditRecord{
		ID:        uuid.NewString(),
		Platform:  string(ev.Platform),
		Handle:    ev.SenderHandle,
		Keyword:   cmd.Keyword,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	if err := d.audit.Save(ctx, rec); err != nil {
		d.log.Warn("failed to save audit record", "error", err)
	}
}
