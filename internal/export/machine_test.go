package export

import (
	"context"
	"testing"
	"time"

	"github.com/vietddude/tipbot/internal/core/domain"
	"github.com/vietddude/tipbot/internal/infra/ledger"
	"github.com/vietddude/tipbot/internal/infra/ledger/stub"
)

var alice = domain.UserIdentity{Platform: domain.PlatformTelegram, Handle: "alice"}

func newTestMachine(t *testing.T) (*Machine, *stub.Service) {
	t.Helper()
	svc := stub.New()
	svc.Wallets["telegram:alice"] = "A1iceWa11etAddre5511111111111111111111111111"
	svc.Export = ledger.ExportResult{Success: true, Secret: "super-secret-key"}
	return NewMachine(NewMemoryStore(), svc), svc
}

func TestMachine_BeginAndConfirm(t *testing.T) {
	m, svc := newTestMachine(t)
	ctx := context.Background()

	code, err := m.Begin(ctx, alice)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if !CodePattern.MatchString(code) {
		t.Fatalf("expected a 6-digit code, got %q", code)
	}

	secret, err := m.Confirm(ctx, alice, code)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if secret != "super-secret-key" {
		t.Errorf("unexpected secret %q", secret)
	}
	if n := svc.CallCount("export_private_key"); n != 1 {
		t.Errorf("expected exactly one export call, got %d", n)
	}
}

func TestMachine_CodeIsSingleUse(t *testing.T) {
	m, _ := newTestMachine(t)
	ctx := context.Background()

	code, err := m.Begin(ctx, alice)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	if _, err := m.Confirm(ctx, alice, code); err != nil {
		t.Fatalf("first Confirm failed: %v", err)
	}

	_, err = m.Confirm(ctx, alice, code)
	if err == nil {
		t.Fatal("expected second Confirm with the same code to fail")
	}
	if domain.CategoryOf(err) != domain.ErrCategoryVerification {
		t.Errorf("expected verification error, got %v", err)
	}
}

func TestMachine_NoReplayAfterRemoteFailure(t *testing.T) {
	m, svc := newTestMachine(t)
	ctx := context.Background()

	code, err := m.Begin(ctx, alice)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	// The challenge is consumed before the export call, so a failed
	// export must not leave the code replayable.
	svc.Export = ledger.ExportResult{Success: false, Error: "hsm offline"}
	if _, err := m.Confirm(ctx, alice, code); err == nil {
		t.Fatal("expected Confirm to surface the remote failure")
	}

	svc.Export = ledger.ExportResult{Success: true, Secret: "super-secret-key"}
	if _, err := m.Confirm(ctx, alice, code); err == nil {
		t.Fatal("expected replay of a consumed code to fail")
	}
}

func TestMachine_MalformedCodeLeavesChallenge(t *testing.T) {
	m, _ := newTestMachine(t)
	ctx := context.Background()

	code, err := m.Begin(ctx, alice)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	for _, bad := range []string{"12345", "1234567", "abcdef", "12 456", ""} {
		_, err := m.Confirm(ctx, alice, bad)
		if err == nil {
			t.Fatalf("expected malformed code %q to be rejected", bad)
		}
		if domain.CategoryOf(err) != domain.ErrCategoryValidation {
			t.Errorf("code %q: expected validation error, got %v", bad, err)
		}
	}

	// The live challenge must be untouched by malformed attempts.
	if _, err := m.Confirm(ctx, alice, code); err != nil {
		t.Errorf("expected challenge to survive malformed attempts: %v", err)
	}
}

func TestMachine_ReissueSupersedes(t *testing.T) {
	m, _ := newTestMachine(t)
	ctx := context.Background()

	first, err := m.Begin(ctx, alice)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	second, err := m.Begin(ctx, alice)
	if err != nil {
		t.Fatalf("second Begin failed: %v", err)
	}

	if first != second {
		if _, err := m.Confirm(ctx, alice, first); err == nil {
			t.Error("expected the superseded code to be invalid")
		}
	}
	if _, err := m.Confirm(ctx, alice, second); err != nil {
		t.Errorf("expected the latest code to work: %v", err)
	}
}

func TestMachine_ExpiredChallenge(t *testing.T) {
	m, _ := newTestMachine(t)
	m.TTL = 30 * time.Millisecond
	ctx := context.Background()

	code, err := m.Begin(ctx, alice)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	time.Sleep(80 * time.Millisecond)

	_, err = m.Confirm(ctx, alice, code)
	if err == nil {
		t.Fatal("expected expired challenge to be rejected")
	}
	if domain.CategoryOf(err) != domain.ErrCategoryVerification {
		t.Errorf("expected verification error, got %v", err)
	}
}

func TestMachine_BeginRequiresWallet(t *testing.T) {
	m, svc := newTestMachine(t)
	delete(svc.Wallets, "telegram:alice")
	ctx := context.Background()

	_, err := m.Begin(ctx, alice)
	if err == nil {
		t.Fatal("expected Begin without a wallet to fail")
	}
	if domain.CategoryOf(err) != domain.ErrCategoryWalletNotFound {
		t.Errorf("expected wallet-not-found error, got %v", err)
	}
	if n := svc.CallCount("export_private_key"); n != 0 {
		t.Errorf("expected no export call, got %d", n)
	}
}
