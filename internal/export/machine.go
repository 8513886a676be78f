package export

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/vietddude/tipbot/internal/core/domain"
	"github.com/vietddude/tipbot/internal/infra/ledger"
	"github.com/vietddude/tipbot/internal/metrics"
)

// ChallengeTTL is how long an issued confirmation code stays valid.
// Expiry is exclusive: at exactly issuedAt+TTL the challenge is gone.
const ChallengeTTL = 5 * time.Minute

// CodePattern matches a well-formed confirmation code.
var CodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// Machine drives the secured key-export flow: challenge issuance, TTL,
// single-use verification, and redaction scheduling.
type Machine struct {
	store  ChallengeStore
	ledger ledger.Service

	// TTL and RedactAfterSeconds are overridable for tests and config.
	TTL                time.Duration
	RedactAfterSeconds int
}

// NewMachine creates an export machine with default timings.
func NewMachine(store ChallengeStore, svc ledger.Service) *Machine {
	return &Machine{
		store:              store,
		ledger:             svc,
		TTL:                ChallengeTTL,
		RedactAfterSeconds: 60,
	}
}

// Begin issues a fresh challenge for the sender, superseding any prior
// unconsumed one. The sender must already have a resolvable wallet.
func (m *Machine) Begin(ctx context.Context, id domain.UserIdentity) (string, error) {
	_, found, err := m.ledger.GetWallet(ctx, id.Platform, id.Handle)
	if err != nil {
		return "", translateLedgerError(err)
	}
	if !found {
		return "", domain.WalletNotFoundErrorf("You don't have a wallet yet. Type register to create one.")
	}

	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	key := Key{Platform: id.Platform, Handle: id.Handle}
	if err := m.store.Put(ctx, key, code, m.TTL); err != nil {
		return "", fmt.Errorf("failed to store challenge: %w", err)
	}

	metrics.ChallengesIssued.Inc()
	return code, nil
}

// Confirm consumes the challenge and performs the remote export. The
// challenge is deleted before the export call, so the same code can never
// be replayed even when the remote call fails; the user must restart.
func (m *Machine) Confirm(ctx context.Context, id domain.UserIdentity, code string) (string, error) {
	if !CodePattern.MatchString(code) {
		// Malformed input is a no-op rejection; any live challenge stays.
		return "", domain.ValidationErrorf("The confirmation code must be exactly 6 digits.")
	}

	key := Key{Platform: id.Platform, Handle: id.Handle}
	ok, err := m.store.ConsumeIfMatch(ctx, key, code)
	if err != nil {
		return "", fmt.Errorf("failed to verify challenge: %w", err)
	}
	if !ok {
		return "", domain.VerificationErrorf("That code is expired or not found. Type export-privatekey to request a new one.")
	}
	metrics.ChallengesConfirmed.Inc()

	res, err := m.ledger.ExportPrivateKey(ctx, id.Platform, id.Handle)
	if err != nil {
		return "", translateLedgerError(err)
	}
	if !res.Success {
		return "", domain.RemoteRejectionErrorf("Key export failed: %s. Request a new code to retry.", res.Error)
	}
	return res.Secret, nil
}

func translateLedgerError(err error) error {
	if ledger.IsTransport(err) {
		return domain.TransportErrorf("The wallet service is unreachable right now. Please try again later.").WithCause(err)
	}
	return domain.RemoteRejectionErrorf("Key export failed: %s", ledger.Message(err)).WithCause(err)
}

// generateCode returns a uniformly random 6-digit code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
