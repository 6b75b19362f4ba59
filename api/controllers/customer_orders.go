package controllers

import (
	"net/http"

	"github.com/stylekart/fulfillment-backend/api/middleware"
	"github.com/stylekart/fulfillment-backend/api/responses"
	"github.com/stylekart/fulfillment-backend/api/validators"
	"github.com/stylekart/fulfillment-backend/internal/exchanges"
	"github.com/stylekart/fulfillment-backend/internal/orderitems"
	"github.com/stylekart/fulfillment-backend/internal/orders"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/stylekart/fulfillment-backend/pkg/errors"
	"github.com/stylekart/fulfillment-backend/pkg/logger"
)

// PlaceOrder creates an order for the authenticated customer.
func PlaceOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input orders.PlaceOrderInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.CustomerID = middleware.ActorIDFromContext(r.Context())

		order, err := svc.PlaceOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListMyOrders pages through the customer's own orders.
func ListMyOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID := middleware.ActorIDFromContext(r.Context())
		page, err := svc.ListCustomerOrders(r.Context(), customerID, pageParams(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// GetMyOrder fetches one order; ownership is enforced by the service.
func GetMyOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuidParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetOrder(r.Context(), middleware.ActorIDFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type cancelItemRequest struct {
	Quantity   int     `json:"quantity" validate:"required,gt=0"`
	Reason     *string `json:"reason,omitempty"`
	PickupType *string `json:"pickup_type,omitempty"`
}

// CancelItem cancels part or all of an item's remaining quantity.
func CancelItem(svc orderitems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := uuidParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cancelItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orderitems.CancelInput{
			ItemID:   itemID,
			Quantity: req.Quantity,
			Reason:   req.Reason,
			Actor: orderitems.Actor{
				ID:   middleware.ActorIDFromContext(r.Context()),
				Role: enums.ActorRoleCustomer,
			},
		}
		if req.PickupType != nil {
			pickup, parseErr := enums.ParsePickupType(*req.PickupType)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid pickup type"))
				return
			}
			input.PickupType = &pickup
		}

		item, err := svc.Cancel(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// PayPickupFee records the express pickup fee payment for a cancelled item.
func PayPickupFee(svc orderitems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := uuidParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.PayPickupFee(r.Context(), middleware.ActorIDFromContext(r.Context()), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type exchangeRequest struct {
	NewSize  string  `json:"new_size" validate:"required"`
	NewColor string  `json:"new_color" validate:"required"`
	Quantity int     `json:"quantity" validate:"required,gt=0"`
	Reason   *string `json:"reason,omitempty"`
}

// RequestExchange opens an exchange for a delivered item.
func RequestExchange(svc exchanges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := uuidParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req exchangeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		exchange, err := svc.Create(r.Context(), exchanges.CreateInput{
			CustomerID:  middleware.ActorIDFromContext(r.Context()),
			OrderItemID: itemID,
			NewSize:     req.NewSize,
			NewColor:    req.NewColor,
			Quantity:    req.Quantity,
			Reason:      req.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, exchange)
	}
}

// ListMyExchanges returns the exchanges on one of the customer's orders.
func ListMyExchanges(svc exchanges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuidParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListForOrder(r.Context(), middleware.ActorIDFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": rows})
	}
}
