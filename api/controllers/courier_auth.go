package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/stylekart/fulfillment-backend/api/responses"
	"github.com/stylekart/fulfillment-backend/api/validators"
	"github.com/stylekart/fulfillment-backend/internal/couriers"
	"github.com/stylekart/fulfillment-backend/pkg/db/models"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	"github.com/stylekart/fulfillment-backend/pkg/logger"
)

type courierRegisterRequest struct {
	FullName      string  `json:"full_name" validate:"required,min=2"`
	Email         string  `json:"email" validate:"required,email"`
	Phone         string  `json:"phone" validate:"required,min=7"`
	Password      string  `json:"password" validate:"required,min=8"`
	VehicleNumber *string `json:"vehicle_number,omitempty"`
	Zone          *string `json:"zone,omitempty"`
}

type courierLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// courierView is the wire shape of a courier profile; the password hash
// never leaves the service layer.
type courierView struct {
	ID            uuid.UUID           `json:"id"`
	FullName      string              `json:"full_name"`
	Email         string              `json:"email"`
	Phone         string              `json:"phone"`
	Status        enums.CourierStatus `json:"status"`
	VehicleNumber *string             `json:"vehicle_number,omitempty"`
	Zone          *string             `json:"zone,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

func viewCourier(c *models.Courier) courierView {
	return courierView{
		ID:            c.ID,
		FullName:      c.FullName,
		Email:         c.Email,
		Phone:         c.Phone,
		Status:        c.Status,
		VehicleNumber: c.VehicleNumber,
		Zone:          c.Zone,
		CreatedAt:     c.CreatedAt,
	}
}

// CourierRegister onboards a new delivery worker in pending status.
func CourierRegister(svc couriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req courierRegisterRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		courier, err := svc.Register(r.Context(), couriers.RegisterInput{
			FullName:      req.FullName,
			Email:         req.Email,
			Phone:         req.Phone,
			Password:      req.Password,
			VehicleNumber: req.VehicleNumber,
			Zone:          req.Zone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, viewCourier(courier))
	}
}

// CourierLogin exchanges credentials for an access token.
func CourierLogin(svc couriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req courierLoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"token":   result.Token,
			"courier": viewCourier(result.Courier),
		})
	}
}
