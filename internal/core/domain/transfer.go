package domain

// TokenInfo describes one entry of the closed token registry.
type TokenInfo struct {
	Symbol   string
	Mint     string
	Decimals int
}

// TransferRequest describes a validated transfer between two identities.
type TransferRequest struct {
	Sender    UserIdentity
	Recipient UserIdentity
	Amount    float64
	Token     TokenInfo
}

// TransferResult reports the outcome of a dispatched transfer.
// WalletWasCreated signals that the recipient had no prior wallet and one
// was provisioned as a side effect; callers must surface this distinctly.
type TransferResult struct {
	Signature        string
	WalletWasCreated bool
}
