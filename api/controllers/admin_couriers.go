package controllers

import (
	"net/http"

	"github.com/stylekart/fulfillment-backend/api/responses"
	"github.com/stylekart/fulfillment-backend/api/validators"
	"github.com/stylekart/fulfillment-backend/internal/couriers"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/stylekart/fulfillment-backend/pkg/errors"
	"github.com/stylekart/fulfillment-backend/pkg/logger"
)

// AdminGetCourier returns a courier profile plus their active workload,
// for load-aware assignment.
func AdminGetCourier(svc couriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courierID, err := uuidParam(r, "courierID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		courier, err := svc.Get(r.Context(), courierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		workload, err := svc.Workload(r.Context(), courierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"courier":      viewCourier(courier),
			"active_items": workload,
		})
	}
}

type courierStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SetCourierStatus approves, suspends, or re-pends a courier.
func SetCourierStatus(svc couriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courierID, err := uuidParam(r, "courierID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req courierStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseCourierStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid courier status"))
			return
		}
		courier, err := svc.SetStatus(r.Context(), courierID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, viewCourier(courier))
	}
}
