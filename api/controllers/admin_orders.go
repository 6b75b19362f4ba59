package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stylekart/fulfillment-backend/api/responses"
	"github.com/stylekart/fulfillment-backend/internal/orders"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/stylekart/fulfillment-backend/pkg/errors"
	"github.com/stylekart/fulfillment-backend/pkg/logger"
)

// AdminListOrders pages through all orders with optional filters:
// status, payment_status, courier_id, date_from, date_to, q.
func AdminListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListOrders(r.Context(), pageParams(r), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// AdminGetOrder fetches any order with its items.
func AdminGetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuidParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetOrderAdmin(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminListCancelledItems lists items awaiting refund work.
func AdminListCancelledItems(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := svc.ListCancelledItems(r.Context(), pageParams(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func parseOrderFilters(r *http.Request) (orders.AdminOrderFilters, error) {
	q := r.URL.Query()
	filters := orders.AdminOrderFilters{Query: strings.TrimSpace(q.Get("q"))}

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(q.Get("payment_status")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status filter")
		}
		filters.PaymentStatus = &status
	}
	if raw := strings.TrimSpace(q.Get("courier_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid courier filter")
		}
		filters.CourierID = &id
	}
	if raw := strings.TrimSpace(q.Get("date_from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date_from")
		}
		filters.DateFrom = &from
	}
	if raw := strings.TrimSpace(q.Get("date_to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date_to")
		}
		filters.DateTo = &to
	}
	return filters, nil
}
