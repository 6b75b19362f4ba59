package controllers

import (
	"net/http"
	"strconv"

	"github.com/stylekart/fulfillment-backend/api/middleware"
	"github.com/stylekart/fulfillment-backend/api/responses"
	"github.com/stylekart/fulfillment-backend/internal/wallet"
	"github.com/stylekart/fulfillment-backend/pkg/logger"
)

// WalletBalance returns the customer's current store-credit balance.
func WalletBalance(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		balance, err := svc.Balance(r.Context(), middleware.ActorIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"balance": balance})
	}
}

// WalletLedger returns the most recent wallet transactions.
func WalletLedger(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		rows, err := svc.Ledger(r.Context(), middleware.ActorIDFromContext(r.Context()), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": rows})
	}
}
