package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/stylekart/fulfillment-backend/pkg/auth"
	"github.com/stylekart/fulfillment-backend/pkg/config"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "stylekart-test",
		ExpirationMinutes: 15,
	}
}

func TestAuthSeedsActorContext(t *testing.T) {
	cfg := testJWTConfig()
	actorID := uuid.New()
	courierID := uuid.New()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		ActorID:   actorID,
		Role:      enums.ActorRoleCourier,
		CourierID: &courierID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	var gotActor uuid.UUID
	var gotRole enums.ActorRole
	var gotCourier *uuid.UUID
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor = ActorIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		gotCourier = CourierIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotActor != actorID {
		t.Fatalf("expected actor %s got %s", actorID, gotActor)
	}
	if gotRole != enums.ActorRoleCourier {
		t.Fatalf("expected courier role got %s", gotRole)
	}
	if gotCourier == nil || *gotCourier != courierID {
		t.Fatalf("expected courier id %s got %v", courierID, gotCourier)
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWTConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	handler := Auth(testJWTConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRequireRoleBlocksMismatch(t *testing.T) {
	cfg := testJWTConfig()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		ActorID: uuid.New(),
		Role:    enums.ActorRoleCustomer,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	chain := Auth(cfg, nil)(RequireRole(enums.ActorRoleAdmin, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	chain.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}
