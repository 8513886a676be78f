package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vietddude/tipbot/internal/core/domain"
	"github.com/vietddude/tipbot/internal/transport"
)

// Config holds the Telegram transport settings.
type Config struct {
	BotToken    string
	BaseURL     string
	PollTimeout time.Duration
}

// Bot is a long-polling Telegram transport adapter. It translates updates
// into the platform-agnostic inbound-event contract and delivers replies,
// including the delete-after-delay capability used by key exports.
type Bot struct {
	cfg     Config
	api     *api
	handler transport.Handler
	dedupe  transport.Deduper
	log     *slog.Logger
}

// NewBot creates a Telegram bot adapter.
func NewBot(cfg Config, handler transport.Handler, dedupe transport.Deduper, log *slog.Logger) *Bot {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.telegram.org"
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Bot{
		cfg:     cfg,
		api:     newAPI(cfg.BaseURL, cfg.BotToken, cfg.PollTimeout),
		handler: handler,
		dedupe:  dedupe,
		log:     log,
	}
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := b.api.getUpdates(ctx, offset, b.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.log.Warn("telegram poll failed", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			go b.handleUpdate(ctx, upd)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, upd update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil || msg.From == nil || msg.From.IsBot || msg.Text == "" {
		return
	}

	eventID := "telegram:" + strconv.FormatInt(upd.UpdateID, 10)
	if b.dedupe != nil {
		first, err := b.dedupe.MarkProcessed(ctx, eventID, 24*time.Hour)
		if err != nil {
			b.log.Warn("dedupe check failed", "error", err)
		} else if !first {
			return
		}
	}

	handle := msg.From.Username
	if handle == "" {
		handle = strconv.FormatInt(msg.From.ID, 10)
	}

	ev := domain.InboundEvent{
		ID:               eventID,
		RawText:          msg.Text,
		Platform:         domain.PlatformTelegram,
		SenderHandle:     handle,
		IsPrivateChannel: msg.Chat.Type == "private",
	}

	reply := b.handler.Handle(ctx, ev)
	if reply.Text == "" {
		return
	}

	sentID, err := b.api.sendMessage(ctx, msg.Chat.ID, reply.Text)
	if err != nil {
		b.log.Error("failed to send reply", "chat_id", msg.Chat.ID, "error", err)
		return
	}

	if reply.AutoDeleteAfterSeconds > 0 {
		b.scheduleRedaction(msg.Chat.ID, sentID, time.Duration(reply.AutoDeleteAfterSeconds)*time.Second)
	}
}

// scheduleRedaction deletes a delivered message after the delay and posts
// a notice. Best effort: the secret is already delivered, so a failed
// delete is logged and not retried.
func (b *Bot) scheduleRedaction(chatID, messageID int64, delay time.Duration) {
	time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := b.api.deleteMessage(ctx, chatID, messageID); err != nil {
			b.log.Warn("failed to delete exported key message", "chat_id", chatID, "error", err)
			return
		}
		if _, err := b.api.sendMessage(ctx, chatID, "The message containing your private key was deleted."); err != nil {
			b.log.Warn("failed to send redaction notice", "chat_id", chatID, "error", err)
		}
	})
}

// Telegram Bot API (minimal subset)

type api struct {
	http    *http.Client
	baseURL string
	token   string
}

func newAPI(baseURL, token string, pollTimeout time.Duration) *api {
	return &api{
		// The HTTP timeout must outlast the long-poll window.
		http:    &http.Client{Timeout: pollTimeout + 15*time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

type update struct {
	UpdateID int64    `json:"update_id"`
	Message  *message `json:"message,omitempty"`
}

type message struct {
	MessageID int64  `json:"message_id"`
	Chat      *chat  `json:"chat,omitempty"`
	From      *user  `json:"from,omitempty"`
	Text      string `json:"text,omitempty"`
}

type chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type,omitempty"` // private|group|supergroup|channel
}

type user struct {
	ID       int64  `json:"id"`
	IsBot    bool   `json:"is_bot,omitempty"`
	Username string `json:"username,omitempty"`
}

func (a *api) call(ctx context.Context, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/%s", a.baseURL, a.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return err
		}
	}
	return nil
}

func (a *api) getUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]update, error) {
	var out struct {
		OK     bool     `json:"ok"`
		Result []update `json:"result"`
	}
	payload := map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message"},
	}
	if err := a.call(ctx, "getUpdates", payload, &out); err != nil {
		return nil, err
	}
	if !out.OK {
		return nil, fmt.Errorf("telegram getUpdates returned ok=false")
	}
	return out.Result, nil
}

func (a *api) sendMessage(ctx context.Context, chatID int64, text string) (int64, error) {
	var out struct {
		OK     bool `json:"ok"`
		Result struct {
			MessageID int64 `json:"message_id"`
		} `json:"result"`
	}
	payload := map[string]any{"chat_id": chatID, "text": text}
	if err := a.call(ctx, "sendMessage", payload, &out); err != nil {
		return 0, err
	}
	if !out.OK {
		return 0, fmt.Errorf("telegram sendMessage returned ok=false")
	}
	return out.Result.MessageID, nil
}

func (a *api) deleteMessage(ctx context.Context, chatID, messageID int64) error {
	var out struct {
		OK bool `json:"ok"`
	}
	payload := map[string]any{"chat_id": chatID, "message_id": messageID}
	if err := a.call(ctx, "deleteMessage", payload, &out); err != nil {
		return err
	}
	if !out.OK {
		return fmt.Errorf("telegram deleteMessage returned ok=false")
	}
	return nil
}
