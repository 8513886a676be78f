package command

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/vietddude/tipbot/internal/core/domain"
	"github.com/vietddude/tipbot/internal/export"
	"github.com/vietddude/tipbot/internal/infra/ledger"
	"github.com/vietddude/tipbot/internal/infra/ledger/stub"
	"github.com/vietddude/tipbot/internal/infra/storage/memory"
	"github.com/vietddude/tipbot/internal/wallet"
)

const testAddr = "A1iceWa11etAddre5511111111111111111111111111"

func newTestDispatcher(t *testing.T) (*Dispatcher, *stub.Service) {
	t.Helper()
	svc := stub.New()
	svc.Wallets["telegram:alice"] = testAddr
	svc.Balances[testAddr] = 10
	svc.TransferOutcome = ledger.TransferOutcome{Signature: "sig123"}
	svc.Export = ledger.ExportResult{Success: true, Secret: "super-secret-key"}

	norm := NewNormalizer([]string{"@tip_bot"})
	wallets := wallet.New(svc, 0)
	exports := export.NewMachine(export.NewMemoryStore(), svc)
	d := New(norm, wallets, exports, svc, memory.NewAuditRepo(), "https://solscan.io", nil)
	return d, svc
}

func telegramEvent(text string, private bool) domain.InboundEvent {
	return domain.InboundEvent{
		ID:               "ev1",
		RawText:          text,
		Platform:         domain.PlatformTelegram,
		SenderHandle:     "alice",
		IsPrivateChannel: private,
	}
}

func TestHandle_Send(t *testing.T) {
	d, svc := newTestDispatcher(t)

	reply := d.Handle(context.Background(), telegramEvent("/send @bob 2 SOL", false))
	if !strings.Contains(reply.Text, "sig123") {
		t.Errorf("expected signature in reply, got %q", reply.Text)
	}
	if svc.CallCount("transfer_native") != 1 {
		t.Errorf("expected one native transfer, got calls %v", svc.Calls)
	}
}

func TestHandle_SendBadAmountMakesNoLedgerCalls(t *testing.T) {
	d, svc := newTestDispatcher(t)

	for _, text := range []string{
		"send @bob abc",
		"send @bob -1",
		"send @bob 0",
		"send @bob NaN",
		"send @bob Inf",
	} {
		reply := d.Handle(context.Background(), telegramEvent(text, false))
		if !strings.Contains(reply.Text, "positive number") {
			t.Errorf("Handle(%q): expected amount rejection, got %q", text, reply.Text)
		}
	}
	if len(svc.Calls) != 0 {
		t.Errorf("expected zero ledger calls for malformed sends, got %v", svc.Calls)
	}
}

func TestHandle_TipAlias(t *testing.T) {
	d, svc := newTestDispatcher(t)

	d.Handle(context.Background(), telegramEvent("tip @bob 1", false))
	if svc.CallCount("transfer_native") != 1 {
		t.Errorf("expected tip to behave like send, got calls %v", svc.Calls)
	}
}

func TestHandle_UnknownCommand(t *testing.T) {
	d, _ := newTestDispatcher(t)

	reply := d.Handle(context.Background(), telegramEvent("frobnicate", false))
	if !strings.Contains(reply.Text, "Unknown command") {
		t.Errorf("unexpected reply %q", reply.Text)
	}
}

func TestHandle_EmptyAfterMentionStripping(t *testing.T) {
	d, _ := newTestDispatcher(t)

	reply := d.Handle(context.Background(), telegramEvent("@tip_bot", false))
	if !strings.Contains(reply.Text, "help") {
		t.Errorf("expected help hint for empty command, got %q", reply.Text)
	}
}

func TestHandle_Balance(t *testing.T) {
	d, _ := newTestDispatcher(t)

	reply := d.Handle(context.Background(), telegramEvent("balance", false))
	if !strings.Contains(reply.Text, "10.000000 SOL") {
		t.Errorf("unexpected balance reply %q", reply.Text)
	}
}

func TestHandle_BalanceWithoutWallet(t *testing.T) {
	d, svc := newTestDispatcher(t)
	delete(svc.Wallets, "telegram:alice")

	reply := d.Handle(context.Background(), telegramEvent("balance", false))
	if !strings.Contains(reply.Text, "register") {
		t.Errorf("expected register prompt, got %q", reply.Text)
	}
}

func TestHandle_RegisterTwice(t *testing.T) {
	d, svc := newTestDispatcher(t)
	delete(svc.Wallets, "telegram:alice")

	first := d.Handle(context.Background(), telegramEvent("register", false))
	if !strings.Contains(first.Text, "Wallet created") {
		t.Errorf("unexpected first reply %q", first.Text)
	}
	second := d.Handle(context.Background(), telegramEvent("register", false))
	if !strings.Contains(second.Text, "already have") {
		t.Errorf("unexpected second reply %q", second.Text)
	}
	if n := svc.CallCount("create_wallet"); n != 1 {
		t.Errorf("expected one creation call, got %d", n)
	}
}

func TestHandle_ExportRequiresPrivateTelegram(t *testing.T) {
	d, svc := newTestDispatcher(t)

	cases := []domain.InboundEvent{
		telegramEvent("export-privatekey", false),
		{RawText: "export-privatekey", Platform: domain.PlatformDiscord, SenderHandle: "alice", IsPrivateChannel: true},
		{RawText: "export-privatekey", Platform: domain.PlatformTwitter, SenderHandle: "alice", IsPrivateChannel: true},
	}
	for _, ev := range cases {
		reply := d.Handle(context.Background(), ev)
		if !strings.Contains(reply.Text, "private Telegram chat") {
			t.Errorf("platform %s private=%v: expected refusal, got %q", ev.Platform, ev.IsPrivateChannel, reply.Text)
		}
	}
	if svc.CallCount("export_private_key") != 0 {
		t.Errorf("expected no export call, got calls %v", svc.Calls)
	}
}

func TestHandle_ExportFlow(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	begin := d.Handle(ctx, telegramEvent("export-privatekey", true))
	if begin.AutoDeleteAfterSeconds != 0 {
		t.Error("code message must not be auto-deleted")
	}

	code := regexp.MustCompile(`[0-9]{6}`).FindString(begin.Text)
	if code == "" {
		t.Fatalf("no code in reply %q", begin.Text)
	}

	confirm := d.Handle(ctx, telegramEvent("export-privatekey "+code, true))
	if !strings.Contains(confirm.Text, "super-secret-key") {
		t.Errorf("expected secret in reply, got %q", confirm.Text)
	}
	if confirm.AutoDeleteAfterSeconds != d.exports.RedactAfterSeconds {
		t.Errorf("expected redaction after %d seconds, got %d",
			d.exports.RedactAfterSeconds, confirm.AutoDeleteAfterSeconds)
	}
}

func TestHandle_PriceUnknownToken(t *testing.T) {
	d, svc := newTestDispatcher(t)

	reply := d.Handle(context.Background(), telegramEvent("price DOGE", false))
	if !strings.Contains(reply.Text, "Unknown token") {
		t.Errorf("unexpected reply %q", reply.Text)
	}
	if svc.CallCount("get_price") != 0 {
		t.Errorf("expected no price lookup, got calls %v", svc.Calls)
	}
}

func TestHandle_Price(t *testing.T) {
	d, svc := newTestDispatcher(t)
	svc.Prices["SOL"] = ledger.Price{USD: 147.25}

	reply := d.Handle(context.Background(), telegramEvent("price", false))
	if !strings.Contains(reply.Text, "$147.2500") {
		t.Errorf("unexpected reply %q", reply.Text)
	}
}

func TestHandle_HistoryRecordsCommands(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	d.Handle(ctx, telegramEvent("balance", false))
	d.Handle(ctx, telegramEvent("send @bob 1", false))

	reply := d.Handle(ctx, telegramEvent("history", false))
	if !strings.Contains(reply.Text, "balance") || !strings.Contains(reply.Text, "send") {
		t.Errorf("expected prior commands in history, got %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "https://solscan.io/account/"+testAddr) {
		t.Errorf("expected explorer link, got %q", reply.Text)
	}
}

func TestHandle_AccountRejectsBadAddress(t *testing.T) {
	d, svc := newTestDispatcher(t)

	reply := d.Handle(context.Background(), telegramEvent("account notanaddress", false))
	if !strings.Contains(reply.Text, "not a valid wallet address") {
		t.Errorf("unexpected reply %q", reply.Text)
	}
	if svc.CallCount("get_account") != 0 {
		t.Errorf("expected no account lookup, got calls %v", svc.Calls)
	}
}

func TestHandle_Help(t *testing.T) {
	d, _ := newTestDispatcher(t)

	reply := d.Handle(context.Background(), telegramEvent("help", false))
	for _, kw := range []string{"send", "balance", "register", "export-privatekey"} {
		if !strings.Contains(reply.Text, kw) {
			t.Errorf("expected help to mention %s, got %q", kw, reply.Text)
		}
	}
}

func TestHandle_TransportFailureStaysFriendly(t *testing.T) {
	d, svc := newTestDispatcher(t)
	svc.Err = &ledger.Error{Kind: ledger.KindTransport, Message: "connection refused"}

	reply := d.Handle(context.Background(), telegramEvent("send @bob 1", false))
	if !strings.Contains(reply.Text, "unreachable") {
		t.Errorf("unexpected reply %q", reply.Text)
	}
	if strings.Contains(reply.Text, "connection refused") {
		t.Errorf("raw transport detail leaked to user: %q", reply.Text)
	}
}
