package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vietddude/tipbot/internal/core/domain"
	"github.com/vietddude/tipbot/internal/metrics"
)

// DefaultTimeout bounds every outbound ledger call.
const DefaultTimeout = 30 * time.Second

// readRetries is the number of extra attempts for idempotent reads on
// transport failures. Writes (transfer, export, link) are never retried.
const readRetries = 2

// HTTPClient implements Service against the custodial ledger REST API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient creates a ledger client with a fixed request timeout.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// do performs one request and decodes the JSON response into out.
// A nil error body on a non-2xx status still yields an application error.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, body, out any) error {
	start := time.Now()
	err := c.doOnce(ctx, method, path, body, out)
	status := "ok"
	if err != nil {
		if IsTransport(err) {
			status = "transport_error"
		} else {
			status = "rejected"
		}
	}
	metrics.LedgerCalls.WithLabelValues(op, status).Inc()
	metrics.LedgerLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	return err
}

func (c *HTTPClient) doOnce(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindApplication, Message: fmt.Sprintf("marshal request: %v", err)}
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &Error{Kind: KindApplication, Message: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindTransport, Message: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode >= 500 {
		return &Error{Kind: KindTransport, Status: resp.StatusCode, Message: remoteMessage(raw)}
	}
	if resp.StatusCode >= 400 {
		return &Error{Kind: KindApplication, Status: resp.StatusCode, Message: remoteMessage(raw)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &Error{Kind: KindApplication, Message: fmt.Sprintf("parse response: %v", err)}
		}
	}
	return nil
}

// get performs an idempotent read, retrying transport failures.
func (c *HTTPClient) get(ctx context.Context, op, path string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= readRetries; attempt++ {
		lastErr = c.do(ctx, op, http.MethodGet, path, nil, out)
		if lastErr == nil || !IsTransport(lastErr) {
			return lastErr
		}
		select {
		case <-ctx.Done():
			return &Error{Kind: KindTransport, Message: ctx.Err().Error()}
		case <-time.After(time.Duration(attempt+1) * 250 * time.Millisecond):
		}
	}
	return lastErr
}

func remoteMessage(raw []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

// notFound reports whether err is a remote 404.
func notFound(err error) bool {
	lerr, ok := err.(*Error)
	return ok && lerr.Kind == KindApplication && lerr.Status == http.StatusNotFound
}

func (c *HTTPClient) GetWallet(ctx context.Context, platform domain.Platform, handle string) (string, bool, error) {
	var out struct {
		Address string `json:"address"`
	}
	path := fmt.Sprintf("/v1/wallets/%s/%s", url.PathEscape(string(platform)), url.PathEscape(handle))
	if err := c.get(ctx, "get_wallet", path, &out); err != nil {
		if notFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return out.Address, true, nil
}

func (c *HTTPClient) GetOrCreateWallet(ctx context.Context, platform domain.Platform, handle string) (string, error) {
	var out struct {
		Address string `json:"address"`
	}
	body := map[string]string{"platform": string(platform), "handle": handle}
	if err := c.do(ctx, "create_wallet", http.MethodPost, "/v1/wallets", body, &out); err != nil {
		return "", err
	}
	return out.Address, nil
}

func (c *HTTPClient) LinkWallet(ctx context.Context, platform domain.Platform, handle, address string) (bool, error) {
	var out struct {
		Linked bool `json:"linked"`
	}
	body := map[string]string{"platform": string(platform), "handle": handle, "address": address}
	if err := c.do(ctx, "link_wallet", http.MethodPost, "/v1/wallets/link", body, &out); err != nil {
		return false, err
	}
	return out.Linked, nil
}

func (c *HTTPClient) GetBalance(ctx context.Context, address string) (float64, error) {
	var out struct {
		Balance float64 `json:"balance"`
	}
	if err := c.get(ctx, "get_balance", "/v1/balances/"+url.PathEscape(address), &out); err != nil {
		return 0, err
	}
	return out.Balance, nil
}

func (c *HTTPClient) GetTokenBalances(ctx context.Context, address string) ([]TokenBalance, error) {
	var out struct {
		Tokens []TokenBalance `json:"tokens"`
	}
	if err := c.get(ctx, "get_token_balances", "/v1/token-balances/"+url.PathEscape(address), &out); err != nil {
		return nil, err
	}
	return out.Tokens, nil
}

func (c *HTTPClient) TransferNative(ctx context.Context, sender, recipient domain.UserIdentity, amount float64) (TransferOutcome, error) {
	var out TransferOutcome
	body := map[string]any{
		"sender_platform":    string(sender.Platform),
		"sender_handle":      sender.Handle,
		"recipient_platform": string(recipient.Platform),
		"recipient_handle":   recipient.Handle,
		"amount":             amount,
	}
	if err := c.do(ctx, "transfer_native", http.MethodPost, "/v1/transfers/native", body, &out); err != nil {
		return TransferOutcome{}, err
	}
	return out, nil
}

func (c *HTTPClient) TransferToken(ctx context.Context, sender, recipient domain.UserIdentity, mint string, amount float64, decimals int) (TransferOutcome, error) {
	var out TransferOutcome
	body := map[string]any{
		"sender_platform":    string(sender.Platform),
		"sender_handle":      sender.Handle,
		"recipient_platform": string(recipient.Platform),
		"recipient_handle":   recipient.Handle,
		"mint":               mint,
		"amount":             amount,
		"decimals":           decimals,
	}
	if err := c.do(ctx, "transfer_token", http.MethodPost, "/v1/transfers/token", body, &out); err != nil {
		return TransferOutcome{}, err
	}
	return out, nil
}

func (c *HTTPClient) GetTransaction(ctx context.Context, signature string) (TransactionInfo, error) {
	var out TransactionInfo
	if err := c.get(ctx, "get_transaction", "/v1/transactions/"+url.PathEscape(signature), &out); err != nil {
		return TransactionInfo{}, err
	}
	return out, nil
}

func (c *HTTPClient) GetAccount(ctx context.Context, address string) (AccountInfo, error) {
	var out AccountInfo
	if err := c.get(ctx, "get_account", "/v1/accounts/"+url.PathEscape(address), &out); err != nil {
		return AccountInfo{}, err
	}
	return out, nil
}

func (c *HTTPClient) GetNetworkStatus(ctx context.Context) (NetworkStatus, error) {
	var out NetworkStatus
	if err := c.get(ctx, "get_network_status", "/v1/network", &out); err != nil {
		return NetworkStatus{}, err
	}
	return out, nil
}

func (c *HTTPClient) ExportPrivateKey(ctx context.Context, platform domain.Platform, handle string) (ExportResult, error) {
	var out ExportResult
	body := map[string]string{"platform": string(platform), "handle": handle}
	if err := c.do(ctx, "export_private_key", http.MethodPost, "/v1/keys/export", body, &out); err != nil {
		return ExportResult{}, err
	}
	return out, nil
}

func (c *HTTPClient) GetPrice(ctx context.Context, symbol string) (Price, bool, error) {
	var out Price
	if err := c.get(ctx, "get_price", "/v1/prices/"+url.PathEscape(symbol), &out); err != nil {
		if notFound(err) {
			return Price{}, false, nil
		}
		return Price{}, false, err
	}
	return out, true, nil
}
