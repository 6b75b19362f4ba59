package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/stylekart/fulfillment-backend/api/middleware"
	"github.com/stylekart/fulfillment-backend/api/responses"
	"github.com/stylekart/fulfillment-backend/api/validators"
	"github.com/stylekart/fulfillment-backend/internal/exchanges"
	"github.com/stylekart/fulfillment-backend/pkg/logger"
)

// AdminListPendingExchanges returns exchanges awaiting a decision.
func AdminListPendingExchanges(svc exchanges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListPending(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": rows})
	}
}

type approveExchangeRequest struct {
	AdditionalAmount decimal.Decimal `json:"additional_amount"`
}

// ApproveExchange reserves the replacement variant and approves the swap.
func ApproveExchange(svc exchanges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exchangeID, err := uuidParam(r, "exchangeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req approveExchangeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		exchange, err := svc.Approve(r.Context(), exchanges.ApproveInput{
			AdminID:          middleware.ActorIDFromContext(r.Context()),
			ExchangeID:       exchangeID,
			AdditionalAmount: req.AdditionalAmount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, exchange)
	}
}

type rejectExchangeRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// RejectExchange declines an exchange request with a reason.
func RejectExchange(svc exchanges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exchangeID, err := uuidParam(r, "exchangeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req rejectExchangeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		exchange, err := svc.Reject(r.Context(), middleware.ActorIDFromContext(r.Context()), exchangeID, req.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, exchange)
	}
}
