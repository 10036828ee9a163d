package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"solarshare/backend/services/workflow-service/internal/feed"
	"solarshare/backend/services/workflow-service/internal/http/handlers"
	"solarshare/backend/services/workflow-service/internal/http/middleware"
	"solarshare/backend/services/workflow-service/internal/models"
	"solarshare/backend/services/workflow-service/internal/password"
	"solarshare/backend/services/workflow-service/internal/repository"
	"solarshare/backend/services/workflow-service/internal/service"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	hasher := password.NewBcryptHasher(bcrypt.MinCost)
	directory, err := repository.NewUserDirectory(repository.DemoUsers, "demo123", hasher)
	require.NoError(t, err)

	tokens := service.NewTokenService("router-secret", 0)
	auth := service.NewAuthService(directory, hasher, tokens, service.NewMemorySlot(), 0, logger)
	workflow := service.NewWorkflowService(auth, nil, logger)
	hub := feed.NewHub(0, logger)

	return NewRouter(RouterDeps{
		Auth:          handlers.NewAuthHandlers(auth, logger),
		Reservations:  handlers.NewReservationHandlers(workflow, logger),
		Allocations:   handlers.NewAllocationHandlers(workflow, logger),
		Sessions:      handlers.NewSessionHandlers(workflow, logger),
		Payments:      handlers.NewPaymentHandlers(workflow, logger),
		Payouts:       handlers.NewPayoutHandlers(workflow, logger),
		Notifications: handlers.NewNotificationHandlers(workflow, logger),
		Feed:          handlers.NewFeedHandlers(hub, feed.NewHubSink(hub), logger),
		Health:        handlers.NewHealthHandler(),
		Authenticator: middleware.NewAuthenticator(tokens, auth),
		Logger:        logger,
	})
}

func do(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": "demo123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginFailure(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/auth/login", "", map[string]string{"email": "user@solargrid.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/auth/login", "", map[string]string{"email": "user@solargrid.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReservationFlowOverHTTP(t *testing.T) {
	h := newTestRouter(t)
	memberToken := login(t, h, "user@solargrid.com")
	adminToken := login(t, h, "admin@solargrid.com")

	rec := do(t, h, http.MethodGet, "/auth/me", memberToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me models.Actor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "user-001", me.ID)

	rec = do(t, h, http.MethodPost, "/reservations", memberToken, models.ReservationRequest{
		StationID: "1", StationName: "Station A", RequestedDate: "2025-11-05", RequestedTime: "14:30",
		DurationMinutes: 120, VehicleModel: "Tesla Model 3", VehicleRegNumber: "TM3-001",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res models.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, models.ReservationPending, res.Status)

	rec = do(t, h, http.MethodGet, "/reservations/pending", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodPost, "/reservations/"+res.ID+"/reject", adminToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/reservations/"+res.ID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, models.ReservationApproved, res.Status)
	assert.Equal(t, "admin-001", res.ApprovedBy)

	rec = do(t, h, http.MethodPost, "/reservations/"+res.ID+"/approve", adminToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/reservations/RES-missing/approve", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/reservations/me", memberToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []models.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	assert.Len(t, mine, 1)
}

func TestAuthRequired(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/reservations/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/reservations/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionNeedsAllocation(t *testing.T) {
	h := newTestRouter(t)
	ownerToken := login(t, h, "owner@solargrid.com")
	adminToken := login(t, h, "admin@solargrid.com")

	rec := do(t, h, http.MethodPost, "/sessions", ownerToken, map[string]string{"station_id": "STATION-01"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/allocations", ownerToken, map[string]string{
		"station_id": "STATION-01", "station_name": "Central Hub Station",
		"vehicle_model": "Tesla Model 3", "vehicle_reg_number": "KA-01-AB-1234",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var alloc models.StationAllocationRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alloc))

	rec = do(t, h, http.MethodPost, "/allocations/"+alloc.ID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/notifications/unread-count", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"unread":1}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/sessions", ownerToken, map[string]string{"station_id": "STATION-01"})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
