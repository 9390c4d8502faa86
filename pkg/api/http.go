// Package api exposes redemption lookups and wrapped-asset metadata over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/chainscope/redeemscan/pkg/app/errors"
	apphttp "github.com/chainscope/redeemscan/pkg/app/http"
	"github.com/chainscope/redeemscan/pkg/chains"
	"github.com/chainscope/redeemscan/pkg/locator"
	"github.com/chainscope/redeemscan/pkg/token"
)

// Locator finds the destination transaction that redeemed a transfer.
type Locator interface {
	Locate(ctx context.Context, query locator.TransferQuery) (*locator.Result, error)
}

// TokenResolver looks up wrapped-asset metadata.
type TokenResolver interface {
	Resolve(ctx context.Context, chain, address string) (*token.Meta, error)
}

// HTTP wraps the locator and token services to provide HTTP endpoints
type HTTP struct {
	locator Locator
	tokens  TokenResolver
	network chains.Network
	logger  *zap.Logger
}

// RegisterRoutes registers the lookup endpoints on the given chi router
func RegisterRoutes(r chi.Router, loc Locator, tokens TokenResolver, network chains.Network, logger *zap.Logger) {
	h := &HTTP{
		locator: loc,
		tokens:  tokens,
		network: network,
		logger:  logger,
	}

	r.Get("/redemptions/lookup", apphttp.HandleError(h.lookup))
	r.Get("/tokens/{chain}/{address}", apphttp.HandleError(h.tokenMeta))
}

type lookupResponse struct {
	SourceTxHash string `json:"source_tx_hash"`
	RedeemTxHash string `json:"redeem_tx_hash"`
	Cached       bool   `json:"cached"`
}

// lookup handles redemption lookup requests
func (h *HTTP) lookup(w http.ResponseWriter, r *http.Request) error {
	req, err := parseLookupRequest(r)
	if err != nil {
		return err
	}

	query, err := req.toQuery(h.network)
	if err != nil {
		return err
	}

	result, err := h.locator.Locate(r.Context(), query)
	if err != nil {
		return h.lookupError(err, query.TxHash)
	}

	h.writeJSON(w, http.StatusOK, &lookupResponse{
		SourceTxHash: result.SourceTxHash,
		RedeemTxHash: result.RedeemTxHash,
		Cached:       result.Cached,
	})
	return nil
}

// lookupError translates locator failures into client-facing service errors.
func (h *HTTP) lookupError(err error, txHash string) error {
	switch {
	case errors.Is(err, locator.ErrNotRedeemed):
		return apperrors.ResourceNotFoundError(err, "redemption not found")
	case errors.Is(err, locator.ErrUnknownChain):
		return apperrors.BadRequestError(err, "no route for source chain")
	case errors.Is(err, locator.ErrUpstream):
		h.logger.Error("Lookup failed against upstream RPC",
			zap.String("tx_hash", txHash),
			zap.Error(err))
		return apperrors.DependencyFailureError(err, "upstream rpc unavailable")
	default:
		h.logger.Error("Lookup failed",
			zap.String("tx_hash", txHash),
			zap.Error(err))
		return apperrors.GeneralError(err)
	}
}

type tokenResponse struct {
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Cached   bool   `json:"cached"`
}

// tokenMeta handles wrapped-asset metadata requests
func (h *HTTP) tokenMeta(w http.ResponseWriter, r *http.Request) error {
	chain := chi.URLParam(r, "chain")
	address := chi.URLParam(r, "address")

	meta, err := h.tokens.Resolve(r.Context(), chain, address)
	if err != nil {
		if errors.Is(err, token.ErrUnknownChain) {
			return apperrors.BadRequestError(err, "unsupported chain")
		}
		h.logger.Error("Token metadata resolution failed",
			zap.String("chain", chain),
			zap.String("address", address),
			zap.Error(err))
		return apperrors.DependencyFailureError(err, "failed to resolve token metadata")
	}

	h.writeJSON(w, http.StatusOK, &tokenResponse{
		Symbol:   meta.Symbol,
		Decimals: meta.Decimals,
		Cached:   meta.Cached,
	})
	return nil
}

func (h *HTTP) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
