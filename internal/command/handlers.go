package command

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vietddude/tipbot/internal/core/domain"
	"github.com/vietddude/tipbot/internal/core/token"
	"github.com/vietddude/tipbot/internal/wallet"
)

const registerPrompt = "You don't have a wallet yet. Type register to create one."

func (d *Dispatcher) handleSend(ctx context.Context, ev domain.InboundEvent, args []string) (domain.Reply, error) {
	if len(args) < 2 || len(args) > 3 {
		return domain.Reply{}, domain.ValidationErrorf("Usage: send @user <amount> [token]")
	}

	recipientTag := strings.TrimPrefix(args[0], "@")
	if recipientTag == "" {
		return domain.Reply{}, domain.ValidationErrorf("Usage: send @user <amount> [token]")
	}

	// Amount is fully validated here so a malformed send makes zero
	// ledger calls.
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil || amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return domain.Reply{}, domain.ValidationErrorf("The amount must be a positive number.")
	}

	symbol := token.NativeSymbol
	if len(args) == 3 {
		symbol = args[2]
	}

	recipient := domain.UserIdentity{Platform: ev.Platform, Handle: recipientTag}
	result, err := d.wallets.Transfer(ctx, ev.Sender(), recipient, amount, symbol)
	if err != nil {
		return domain.Reply{}, err
	}

	text := fmt.Sprintf("Sent %v %s to @%s.\nSignature: %s",
		amount, strings.ToUpper(symbol), recipientTag, result.Signature)
	if result.WalletWasCreated {
		text += fmt.Sprintf("\n@%s didn't have a wallet yet, so one was created for them.", recipientTag)
	}
	return domain.Reply{Text: text}, nil
}

func (d *Dispatcher) handleBalance(ctx context.Context, ev domain.InboundEvent) (domain.Reply, error) {
	address, found, err := d.wallets.ResolveWallet(ctx, ev.Sender())
	if err != nil {
		return domain.Reply{}, err
	}
	if !found {
		return domain.Reply{Text: registerPrompt}, nil
	}

	balance, err := d.ledger.GetBalance(ctx, address)
	if err != nil {
		return domain.Reply{}, domain.TransportErrorf("Could not fetch your balance right now. Please try again later.").WithCause(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Balance: %.6f SOL", balance)
	if tokens, err := d.ledger.GetTokenBalances(ctx, address); err == nil {
		for _, t := range tokens {
			fmt.Fprintf(&b, "\n%v %s", t.Amount, t.Symbol)
		}
	}
	return domain.Reply{Text: b.String()}, nil
}

func (d *Dispatcher) handleTokens() (domain.Reply, error) {
	return domain.Reply{Text: "Supported tokens: " + strings.Join(token.Supported(), ", ")}, nil
}

func (d *Dispatcher) handleTokensInfo(ctx context.Context, ev domain.InboundEvent) (domain.Reply, error) {
	address, found, err := d.wallets.ResolveWallet(ctx, ev.Sender())
	if err != nil {
		return domain.Reply{}, err
	}
	if !found {
		return domain.Reply{Text: registerPrompt}, nil
	}

	tokens, err := d.ledger.GetTokenBalances(ctx, address)
	if err != nil {
		return domain.Reply{}, domain.TransportErrorf("Could not fetch your token balances right now. Please try again later.").WithCause(err)
	}
	if len(tokens) == 0 {
		return domain.Reply{Text: "You don't hold any tokens."}, nil
	}

	var b strings.Builder
	b.WriteString("Your tokens:")
	for _, t := range tokens {
		line := fmt.Sprintf("\n%v %s", t.Amount, t.Symbol)
		if info, ok := token.Lookup(t.Symbol); ok {
			line += " (mint " + info.Mint + ")"
		}
		b.WriteString(line)
	}
	return domain.Reply{Text: b.String()}, nil
}

func (d *Dispatcher) handleAddress(ctx context.Context, ev domain.InboundEvent) (domain.Reply, error) {
	address, found, err := d.wallets.ResolveWallet(ctx, ev.Sender())
	if err != nil {
		return domain.Reply{}, err
	}
	if !found {
		return domain.Reply{Text: registerPrompt}, nil
	}
	return domain.Reply{Text: "Your wallet address: " + address}, nil
}

func (d *Dispatcher) handleRegister(ctx context.Context, ev domain.InboundEvent) (domain.Reply, error) {
	address, created, err := d.wallets.ResolveOrCreateWallet(ctx, ev.Sender())
	if err != nil {
		return domain.Reply{}, err
	}
	if created {
		return domain.Reply{Text: "Wallet created: " + address}, nil
	}
	return domain.Reply{Text: "You already have a wallet: " + address}, nil
}

func (d *Dispatcher) handleConnect(ctx context.Context, ev domain.InboundEvent, args []string) (domain.Reply, error) {
	if len(args) != 1 {
		return domain.Reply{}, domain.ValidationErrorf("Usage: connect <wallet-address>")
	}
	if err := d.wallets.LinkWallet(ctx, ev.Sender(), args[0]); err != nil {
		return domain.Reply{}, err
	}
	return domain.Reply{Text: "Wallet linked: " + args[0]}, nil
}

func (d *Dispatcher) handlePrice(ctx context.Context, args []string) (domain.Reply, error) {
	symbol := token.NativeSymbol
	if len(args) > 0 {
		symbol = args[0]
	}
	info, ok := token.Lookup(symbol)
	if !ok {
		return domain.Reply{}, domain.UnsupportedTokenErrorf(
			"Unknown token %q. Supported tokens: %s.", symbol, strings.Join(token.Supported(), ", "))
	}

	price, found, err := d.ledger.GetPrice(ctx, info.Symbol)
	if err != nil {
		return domain.Reply{}, domain.TransportErrorf("Could not fetch the price right now. Please try again later.").WithCause(err)
	}
	if !found {
		return domain.Reply{Text: fmt.Sprintf("No price available for %s.", info.Symbol)}, nil
	}
	return domain.Reply{Text: fmt.Sprintf("%s: $%.4f", info.Symbol, price.USD)}, nil
}

func (d *Dispatcher) handleHistory(ctx context.Context, ev domain.InboundEvent) (domain.Reply, error) {
	var b strings.Builder
	b.WriteString("Recent activity:")

	count := 0
	if d.audit != nil {
		records, err := d.audit.RecentByUser(ctx, string(ev.Platform), ev.SenderHandle, 5)
		if err != nil {
			d.log.Warn("failed to load audit history", "error", err)
		}
		for _, rec := range records {
			fmt.Fprintf(&b, "\n%s  %s (%s)", rec.CreatedAt.Format(time.DateTime), rec.Keyword, rec.Status)
			count++
		}
	}
	if count == 0 {
		b.WriteString("\nNothing here yet.")
	}

	if address, found, err := d.wallets.ResolveWallet(ctx, ev.Sender()); err == nil && found {
		fmt.Fprintf(&b, "\nFull on-chain history: %s/account/%s", d.explorerURL, address)
	}
	return domain.Reply{Text: b.String()}, nil
}

func (d *Dispatcher) handleProfile(ctx context.Context, ev domain.InboundEvent) (domain.Reply, error) {
	address, found, err := d.wallets.ResolveWallet(ctx, ev.Sender())
	if err != nil {
		return domain.Reply{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Platform: %s\nHandle: %s", ev.Platform, ev.SenderHandle)
	if !found {
		b.WriteString("\nWallet: none (type register to create one)")
		return domain.Reply{Text: b.String()}, nil
	}

	fmt.Fprintf(&b, "\nWallet: %s", address)
	if balance, err := d.ledger.GetBalance(ctx, address); err == nil {
		fmt.Fprintf(&b, "\nBalance: %.6f SOL", balance)
	}
	if tokens, err := d.ledger.GetTokenBalances(ctx, address); err == nil {
		fmt.Fprintf(&b, "\nTokens held: %d", len(tokens))
	}
	return domain.Reply{Text: b.String()}, nil
}

// handleExport drives both steps of the secured key-export flow. The
// keyword is disabled entirely outside private one-to-one telegram chats,
// regardless of code presence.
func (d *Dispatcher) handleExport(ctx context.Context, ev domain.InboundEvent, args []string) (domain.Reply, error) {
	if ev.Platform != domain.PlatformTelegram || !ev.IsPrivateChannel {
		return domain.Reply{}, domain.ValidationErrorf("Key export is only available in a private Telegram chat with the bot.")
	}

	if len(args) == 0 {
		code, err := d.exports.Begin(ctx, ev.Sender())
		if err != nil {
			return domain.Reply{}, err
		}
		return domain.Reply{Text: fmt.Sprintf(
			"Your confirmation code is %s.\nReply with /export-privatekey %s within 5 minutes to receive your private key.",
			code, code)}, nil
	}
	if len(args) != 1 {
		return domain.Reply{}, domain.ValidationErrorf("Usage: export-privatekey [code]")
	}

	secret, err := d.exports.Confirm(ctx, ev.Sender(), args[0])
	if err != nil {
		return domain.Reply{}, err
	}
	return domain.Reply{
		Text: fmt.Sprintf(
			"Your private key:\n%s\nThis message will be deleted in %d seconds. Never share this key with anyone.",
			secret, d.exports.RedactAfterSeconds),
		AutoDeleteAfterSeconds: d.exports.RedactAfterSeconds,
	}, nil
}

func (d *Dispatcher) handleTransaction(ctx context.Context, args []string) (domain.Reply, error) {
	if len(args) != 1 {
		return domain.Reply{}, domain.ValidationErrorf("Usage: transaction <signature>")
	}

	tx, err := d.ledger.GetTransaction(ctx, args[0])
	if err != nil {
		return domain.Reply{}, domain.TransportErrorf("Could not fetch that transaction right now. Please try again later.").WithCause(err)
	}

	text := fmt.Sprintf("Status: %s\nFee: %d lamports", tx.Status, tx.FeeUnits)
	if tx.BlockTime != nil {
		text += "\nBlock time: " + time.Unix(*tx.BlockTime, 0).UTC().Format(time.RFC3339)
	}
	return domain.Reply{Text: text}, nil
}

func (d *Dispatcher) handleAccount(ctx context.Context, args []string) (domain.Reply, error) {
	if len(args) != 1 {
		return domain.Reply{}, domain.ValidationErrorf("Usage: account <address>")
	}
	if !wallet.ValidAddress(args[0]) {
		return domain.Reply{}, domain.ValidationErrorf("%q is not a valid wallet address.", args[0])
	}

	acct, err := d.ledger.GetAccount(ctx, args[0])
	if err != nil {
		return domain.Reply{}, domain.TransportErrorf("Could not fetch that account right now. Please try again later.").WithCause(err)
	}

	sol := float64(acct.BalanceUnits) / math.Pow10(token.NativeDecimals)
	return domain.Reply{Text: fmt.Sprintf(
		"Balance: %.6f SOL (%d lamports)\nOwner: %s\nExecutable: %t",
		sol, acct.BalanceUnits, acct.Owner, acct.Executable)}, nil
}

func (d *Dispatcher) handleNetwork(ctx context.Context) (domain.Reply, error) {
	status, err := d.ledger.GetNetworkStatus(ctx)
	if err != nil {
		return domain.Reply{}, domain.TransportErrorf("Could not fetch the network status right now. Please try again later.").WithCause(err)
	}
	return domain.Reply{Text: fmt.Sprintf(
		"Network: %s\nEpoch: %d\nBlock height: %d\nSlot: %d",
		status.Health, status.Epoch, status.BlockHeight, status.Slot)}, nil
}

func (d *Dispatcher) handleHelp() (domain.Reply, error) {
	return domain.Reply{Text: strings.Join([]string{
		"Commands:",
		"send @user <amount> [token] - send SOL or a token (alias: tip)",
		"balance - show your balances",
		"tokens - list supported tokens",
		"tokens-info - show your token holdings",
		"address - show your wallet address",
		"register - create your wallet",
		"connect <address> - link an existing wallet",
		"price [token] - show the current USD price",
		"history - show your recent activity",
		"profile - show your profile",
		"transaction <signature> - look up a transaction",
		"account <address> - look up an account",
		"network - show network status",
		"export-privatekey - export your private key (private Telegram chat only)",
	}, "\n")}, nil
}
