package stub

import (
	"context"
	"sync"

	"github.com/vietddude/tipbot/internal/core/domain"
	"github.com/vietddude/tipbot/internal/infra/ledger"
)

// Service implements ledger.Service for testing. Wallets are keyed by
// "platform:handle". Every remote call is appended to Calls.
type Service struct {
	mu sync.Mutex

	Wallets       map[string]string
	Balances      map[string]float64
	TokenBalances map[string][]ledger.TokenBalance
	Transactions  map[string]ledger.TransactionInfo
	Accounts      map[string]ledger.AccountInfo
	Prices        map[string]ledger.Price
	Network       ledger.NetworkStatus
	Export        ledger.ExportResult

	// NextWallet is returned by GetOrCreateWallet for unknown identities.
	NextWallet string
	// TransferOutcome is returned by both transfer calls.
	TransferOutcome ledger.TransferOutcome
	// Err, when set, is returned by every call.
	Err error

	Calls []string
}

// New creates an empty stub ledger service.
func New() *Service {
	return &Service{
		Wallets:       make(map[string]string),
		Balances:      make(map[string]float64),
		TokenBalances: make(map[string][]ledger.TokenBalance),
		Transactions:  make(map[string]ledger.TransactionInfo),
		Accounts:      make(map[string]ledger.AccountInfo),
		Prices:        make(map[string]ledger.Price),
		NextWallet:    "StubWa11etAddre55111111111111111111111111111",
	}
}

func (s *Service) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, call)
}

// CallCount returns how many times call was recorded.
func (s *Service) CallCount(call string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.Calls {
		if c == call {
			n++
		}
	}
	return n
}

func key(platform domain.Platform, handle string) string {
	return string(platform) + ":" + handle
}

func (s *Service) GetWallet(_ context.Context, platform domain.Platform, handle string) (string, bool, error) {
	s.record("get_wallet")
	if s.Err != nil {
		return "", false, s.Err
	}
	addr, ok := s.Wallets[key(platform, handle)]
	return addr, ok, nil
}

func (s *Service) GetOrCreateWallet(_ context.Context, platform domain.Platform, handle string) (string, error) {
	s.record("create_wallet")
	if s.Err != nil {
		return "", s.Err
	}
	k := key(platform, handle)
	if addr, ok := s.Wallets[k]; ok {
		return addr, nil
	}
	s.Wallets[k] = s.NextWallet
	return s.NextWallet, nil
}

func (s *Service) LinkWallet(_ context.Context, platform domain.Platform, handle, address string) (bool, error) {
	s.record("link_wallet")
	if s.Err != nil {
		return false, s.Err
	}
	s.Wallets[key(platform, handle)] = address
	return true, nil
}

func (s *Service) GetBalance(_ context.Context, address string) (float64, error) {
	s.record("get_balance")
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Balances[address], nil
}

func (s *Service) GetTokenBalances(_ context.Context, address string) ([]ledger.TokenBalance, error) {
	s.record("get_token_balances")
	if s.Err != nil {
		return nil, s.Err
	}
	return s.TokenBalances[address], nil
}

func (s *Service) TransferNative(_ context.Context, sender, recipient domain.UserIdentity, amount float64) (ledger.TransferOutcome, error) {
	s.record("transfer_native")
	if s.Err != nil {
		return ledger.TransferOutcome{}, s.Err
	}
	return s.TransferOutcome, nil
}

func (s *Service) TransferToken(_ context.Context, sender, recipient domain.UserIdentity, mint string, amount float64, decimals int) (ledger.TransferOutcome, error) {
	s.record("transfer_token")
	if s.Err != nil {
		return ledger.TransferOutcome{}, s.Err
	}
	return s.TransferOutcome, nil
}

func (s *Service) GetTransaction(_ context.Context, signature string) (ledger.TransactionInfo, error) {
	s.record("get_transaction")
	if s.Err != nil {
		return ledger.TransactionInfo{}, s.Err
	}
	return s.Transactions[signature], nil
}

func (s *Service) GetAccount(_ context.Context, address string) (ledger.AccountInfo, error) {
	s.record("get_account")
	if s.Err != nil {
		return ledger.AccountInfo{}, s.Err
	}
	return s.Accounts[address], nil
}

func (s *Service) GetNetworkStatus(_ context.Context) (ledger.NetworkStatus, error) {
	s.record("get_network_status")
	if s.Err != nil {
		return ledger.NetworkStatus{}, s.Err
	}
	return s.Network, nil
}

func (s *Service) ExportPrivateKey(_ context.Context, platform domain.Platform, handle string) (ledger.ExportResult, error) {
	s.record("export_private_key")
	if s.Err != nil {
		return ledger.ExportResult{}, s.Err
	}
	return s.Export, nil
}

func (s *Service) GetPrice(_ context.Context, symbol string) (ledger.Price, bool, error) {
	s.record("get_price")
	if s.Err != nil {
		return ledger.Price{}, false, s.Err
	}
	p, ok := s.Prices[symbol]
	return p, ok, nil
}
