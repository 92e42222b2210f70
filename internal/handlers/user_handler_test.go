package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dumplin/internal/models"
	"dumplin/internal/services"
)

func TestGetUserEndpoint(t *testing.T) {
	auth := &mockAuthService{}
	r := newTestRouter(auth, &mockUserService{})

	user := &models.User{ID: uuid.New(), PhoneNumber: "+15551234567", DumpCount: 3}
	auth.On("Authenticate", mock.Anything, "sometoken").Return(user, nil)

	w := doJSON(r, http.MethodGet, "/api/user", "", "sometoken")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	u, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, user.ID.String(), u["id"])
	assert.Equal(t, "+15551234567", u["phone_number"])
	// summary не содержит внутренних полей
	_, hasDumpCount := u["dump_count"]
	assert.False(t, hasDumpCount)
}

func TestGetUserEndpointInvalidToken(t *testing.T) {
	auth := &mockAuthService{}
	r := newTestRouter(auth, &mockUserService{})

	auth.On("Authenticate", mock.Anything, "expired").Return(nil, services.ErrSessionInvalid)

	w := doJSON(r, http.MethodGet, "/api/user", "", "expired")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired token", decodeBody(t, w)["error"])
}

func TestUpdateStatsEndpoint(t *testing.T) {
	auth := &mockAuthService{}
	users := &mockUserService{}
	r := newTestRouter(auth, users)

	user := &models.User{ID: uuid.New(), PhoneNumber: "+15551234567"}
	auth.On("Authenticate", mock.Anything, "sometoken").Return(user, nil)
	users.On("UpdateDumpCount", user.ID, 5).Return(nil)

	w := doJSON(r, http.MethodPatch, "/api/user/stats", `{"dump_count":5}`, "sometoken")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["success"])
	users.AssertCalled(t, "UpdateDumpCount", user.ID, 5)
}

func TestUpdateStatsEndpointZero(t *testing.T) {
	auth := &mockAuthService{}
	users := &mockUserService{}
	r := newTestRouter(auth, users)

	user := &models.User{ID: uuid.New()}
	auth.On("Authenticate", mock.Anything, "sometoken").Return(user, nil)
	users.On("UpdateDumpCount", user.ID, 0).Return(nil)

	w := doJSON(r, http.MethodPatch, "/api/user/stats", `{"dump_count":0}`, "sometoken")

	assert.Equal(t, http.StatusOK, w.Code)
	users.AssertCalled(t, "UpdateDumpCount", user.ID, 0)
}

func TestUpdateStatsEndpointMissingField(t *testing.T) {
	auth := &mockAuthService{}
	users := &mockUserService{}
	r := newTestRouter(auth, users)

	auth.On("Authenticate", mock.Anything, "sometoken").Return(&models.User{ID: uuid.New()}, nil)

	w := doJSON(r, http.MethodPatch, "/api/user/stats", `{}`, "sometoken")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "dump_count is required", decodeBody(t, w)["error"])
	users.AssertNotCalled(t, "UpdateDumpCount", mock.Anything, mock.Anything)
}

func TestUpdateStatsEndpointNegative(t *testing.T) {
	auth := &mockAuthService{}
	users := &mockUserService{}
	r := newTestRouter(auth, users)

	user := &models.User{ID: uuid.New()}
	auth.On("Authenticate", mock.Anything, "sometoken").Return(user, nil)
	users.On("UpdateDumpCount", user.ID, -2).Return(services.ErrInvalidDumpCount)

	w := doJSON(r, http.MethodPatch, "/api/user/stats", `{"dump_count":-2}`, "sometoken")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "dump_count must be a non-negative integer", decodeBody(t, w)["error"])
}

func TestItemsEndpointPublic(t *testing.T) {
	r := newTestRouter(&mockAuthService{}, &mockUserService{})

	w := doJSON(r, http.MethodGet, "/api/items", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	data, ok := body["data"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, data)
}

func TestProtectedEndpoint(t *testing.T) {
	auth := &mockAuthService{}
	r := newTestRouter(auth, &mockUserService{})

	user := &models.User{ID: uuid.New(), PhoneNumber: "+15551234567"}
	auth.On("Authenticate", mock.Anything, "sometoken").Return(user, nil)

	w := doJSON(r, http.MethodGet, "/api/protected", "", "sometoken")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "This is a protected endpoint", decodeBody(t, w)["message"])
}

func TestProtectedEndpointNoToken(t *testing.T) {
	r := newTestRouter(&mockAuthService{}, &mockUserService{})

	w := doJSON(r, http.MethodGet, "/api/protected", "", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication required", decodeBody(t, w)["error"])
}
