package token

import (
	"sort"
	"strings"

	"github.com/vietddude/tipbot/internal/core/domain"
)

// Native asset constants. SOL amounts are expressed in whole units;
// the ledger service handles lamport conversion.
const (
	NativeSymbol   = "SOL"
	NativeMint     = "So11111111111111111111111111111111111111112"
	NativeDecimals = 9
)

// registry is the closed set of supported tokens. Symbols map to their
// on-chain mint and decimal count.
var registry = map[string]domain.TokenInfo{
	NativeSymbol: {Symbol: NativeSymbol, Mint: NativeMint, Decimals: NativeDecimals},
	"USDC":       {Symbol: "USDC", Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Decimals: 6},
	"USDT":       {Symbol: "USDT", Mint: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Decimals: 6},
	"BONK":       {Symbol: "BONK", Mint: "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", Decimals: 5},
}

// Lookup resolves a symbol (case-insensitive) against the registry.
func Lookup(symbol string) (domain.TokenInfo, bool) {
	info, ok := registry[strings.ToUpper(strings.TrimSpace(symbol))]
	return info, ok
}

// IsNative reports whether symbol refers to the native asset.
func IsNative(symbol string) bool {
	return strings.EqualFold(strings.TrimSpace(symbol), NativeSymbol)
}

// Supported returns the sorted list of supported symbols.
func Supported() []string {
	symbols := make([]string, 0, len(registry))
	for s := range registry {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}
