package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/stylekart/fulfillment-backend/api/middleware"
	"github.com/stylekart/fulfillment-backend/api/responses"
	"github.com/stylekart/fulfillment-backend/api/validators"
	"github.com/stylekart/fulfillment-backend/internal/couriers"
	"github.com/stylekart/fulfillment-backend/internal/dispatch"
	pkgerrors "github.com/stylekart/fulfillment-backend/pkg/errors"
	"github.com/stylekart/fulfillment-backend/pkg/logger"
)

func courierFromContext(r *http.Request) (uuid.UUID, error) {
	if id := middleware.CourierIDFromContext(r.Context()); id != nil {
		return *id, nil
	}
	return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "courier credentials required")
}

// CourierQueue returns the courier's pending work grouped by track
// priority: exchange pickups first, then cancel pickups, then deliveries.
func CourierQueue(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courierID, err := courierFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entries, err := svc.WorkerQueue(r.Context(), courierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": entries})
	}
}

// CourierApproveOrder accepts every item assigned to the courier on the order.
func CourierApproveOrder(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courierID, err := courierFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuidParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Approve(r.Context(), courierID, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "confirmed"})
	}
}

type rejectOrderRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// CourierRejectOrder bounces the courier's assigned items back for reassignment.
func CourierRejectOrder(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courierID, err := courierFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuidParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req rejectOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Reject(r.Context(), courierID, orderID, req.Reason); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "rejected"})
	}
}

// CourierOutForDelivery starts the delivery run and issues the
// confirmation codes for the order and any riding exchanges.
func CourierOutForDelivery(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courierID, err := courierFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuidParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.OutForDelivery(r.Context(), courierID, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "out_for_delivery"})
	}
}

type deliveredRequest struct {
	Code         string `json:"code" validate:"required,min=4"`
	BarcodeValue string `json:"barcode_value,omitempty"`
}

// CourierDelivered confirms the hand-off with the customer's code and an
// optional scanned barcode.
func CourierDelivered(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courierID, err := courierFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuidParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req deliveredRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delivered(r.Context(), dispatch.DeliveredInput{
			CourierID:    courierID,
			OrderID:      orderID,
			Code:         req.Code,
			BarcodeValue: req.BarcodeValue,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "delivered"})
	}
}

// CourierLoyalty returns the courier's decision history.
func CourierLoyaltyView(svc couriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courierID, err := courierFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		loyalty, err := svc.Loyalty(r.Context(), courierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, loyalty)
	}
}
