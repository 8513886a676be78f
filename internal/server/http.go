package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/tipbot/internal/core/domain"
	"github.com/vietddude/tipbot/internal/infra/ledger"
	"github.com/vietddude/tipbot/internal/wallet"
)

// Server provides HTTP endpoints for health monitoring, metrics, and the
// auxiliary wallet-linking flow.
type Server struct {
	wallets *wallet.Orchestrator
	ledger  ledger.Service
	server  *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(port int, wallets *wallet.Orchestrator, svc ledger.Service) *Server {
	mux := http.NewServeMux()
	s := &Server{
		wallets: wallets,
		ledger:  svc,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/link", s.handleLink)

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if _, err := s.ledger.GetNetworkStatus(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

type linkRequest struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
	Address  string `json:"address"`
}

// handleLink connects an externally owned wallet address to an identity.
// Address format is validated locally before the ledger is involved.
func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	platform := domain.Platform(req.Platform)
	if !platform.Valid() || req.Handle == "" {
		http.Error(w, "invalid platform or handle", http.StatusBadRequest)
		return
	}

	id := domain.UserIdentity{Platform: platform, Handle: req.Handle}
	if err := s.wallets.LinkWallet(r.Context(), id, req.Address); err != nil {
		code := http.StatusBadGateway
		if domain.CategoryOf(err) == domain.ErrCategoryValidation {
			code = http.StatusBadRequest
		}
		http.Error(w, domain.UserMessage(err), code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"linked": true})
}
