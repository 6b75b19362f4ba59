package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/stylekart/fulfillment-backend/pkg/errors"
	"github.com/stylekart/fulfillment-backend/pkg/pagination"
)

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").
			WithDetails(map[string]any{"field": name})
	}
	return id, nil
}

// pageParams reads limit/cursor; malformed limits fall back to the default.
func pageParams(r *http.Request) pagination.Params {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return pagination.Params{
		Limit:  pagination.NormalizeLimit(limit),
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}
}
