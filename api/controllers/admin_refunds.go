package controllers

import (
	"net/http"

	"github.com/stylekart/fulfillment-backend/api/middleware"
	"github.com/stylekart/fulfillment-backend/api/responses"
	"github.com/stylekart/fulfillment-backend/api/validators"
	"github.com/stylekart/fulfillment-backend/internal/orderitems"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	"github.com/stylekart/fulfillment-backend/pkg/logger"
)

func adminActor(r *http.Request) orderitems.Actor {
	return orderitems.Actor{
		ID:   middleware.ActorIDFromContext(r.Context()),
		Role: enums.ActorRoleAdmin,
	}
}

// ProcessRefund credits the refund for a cancelled item to the
// customer's wallet.
func ProcessRefund(svc orderitems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := uuidParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.ProcessRefund(r.Context(), adminActor(r), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type failRefundRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// FailRefund marks a refund attempt as failed so it can be retried.
func FailRefund(svc orderitems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := uuidParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req failRefundRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.FailRefund(r.Context(), adminActor(r), itemID, req.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}
