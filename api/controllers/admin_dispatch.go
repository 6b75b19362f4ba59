package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/stylekart/fulfillment-backend/api/middleware"
	"github.com/stylekart/fulfillment-backend/api/responses"
	"github.com/stylekart/fulfillment-backend/api/validators"
	"github.com/stylekart/fulfillment-backend/internal/dispatch"
	pkgerrors "github.com/stylekart/fulfillment-backend/pkg/errors"
	"github.com/stylekart/fulfillment-backend/pkg/logger"
)

type assignCourierRequest struct {
	CourierID string `json:"courier_id" validate:"required,uuid"`
}

func decodeCourierBody(r *http.Request) (uuid.UUID, error) {
	var req assignCourierRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(req.CourierID)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").
			WithDetails(map[string]any{"field": "courier_id"})
	}
	return id, nil
}

// AssignOrder hands every pending item of an order to one courier.
func AssignOrder(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuidParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		courierID, err := decodeCourierBody(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.AssignBulk(r.Context(), middleware.ActorIDFromContext(r.Context()), orderID, courierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AssignOrderItem hands a single pending item to a courier.
func AssignOrderItem(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := uuidParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		courierID, err := decodeCourierBody(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.AssignItem(r.Context(), middleware.ActorIDFromContext(r.Context()), itemID, courierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ReassignOrderItem moves a rejected item to a different courier.
func ReassignOrderItem(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := uuidParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		courierID, err := decodeCourierBody(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Reassign(r.Context(), middleware.ActorIDFromContext(r.Context()), itemID, courierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// AssignExchange books an approved exchange onto a courier's run.
func AssignExchange(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exchangeID, err := uuidParam(r, "exchangeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		courierID, err := decodeCourierBody(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		exchange, err := svc.AssignExchange(r.Context(), middleware.ActorIDFromContext(r.Context()), exchangeID, courierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, exchange)
	}
}

// MarkOrderProcessing advances all confirmed items to processing.
func MarkOrderProcessing(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return advanceOrder(svc.MarkProcessing, logg)
}

// MarkOrderShipped advances all processing items to shipped.
func MarkOrderShipped(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return advanceOrder(svc.MarkShipped, logg)
}

func advanceOrder(op func(ctx context.Context, adminID, orderID uuid.UUID) error, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuidParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := op(r.Context(), middleware.ActorIDFromContext(r.Context()), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
