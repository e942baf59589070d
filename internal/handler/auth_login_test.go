package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cogestio/espaceclient/internal/database"
	"github.com/cogestio/espaceclient/internal/errHandler"
	"github.com/cogestio/espaceclient/internal/helper"
	"github.com/cogestio/espaceclient/internal/mocks"
	"github.com/stretchr/testify/require"
)

// bcrypt hash of "correctpassword"
const testHashedPassword = "$2a$10$oiIYEECpY/GRNs9Fi7Yh1.o4Dw2fTD26eu5z48KYgXkMuOiWlSvqG"

func newTestAuthHandler(profiles *mocks.MockProfileRepo, activities *mocks.MockActivityRepo) *AuthHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := errHandler.New("", "http://localhost", &mocks.MockMailer{}, logger)

	var baseURL = "http://localhost"
	var wg sync.WaitGroup

	return &AuthHandler{
		Profiles:   profiles,
		Activities: activities,
		Cache:      mocks.NewMockTokenStore(),
		Helper:     helper.New(&baseURL, &wg, errorHandler),
		Mailer:     &mocks.MockMailer{},
		Config:     mocks.NewMockConfig(),
		ErrHandler: errorHandler,
	}
}

func TestHandleAuthLogin_ValidCredentials(t *testing.T) {
	mockProfileRepo := new(mocks.MockProfileRepo)
	mockActivityRepo := new(mocks.MockActivityRepo)

	testProfile := &database.Profile{
		ID:             "123",
		Email:          "test@example.com",
		Role:           database.RoleClient,
		Active:         true,
		HashedPassword: testHashedPassword,
	}

	mockProfileRepo.On("GetProfileByEmail", "test@example.com").Return(testProfile, true, nil)

	authHandler := newTestAuthHandler(mockProfileRepo, mockActivityRepo)

	requestBody, _ := json.Marshal(map[string]string{
		"email":    "test@example.com",
		"password": "correctpassword",
	})

	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()

	authHandler.HandleAuthLogin(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	err := json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	require.Contains(t, response, "data")

	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "Expected response['data'] to be a map")

	require.Contains(t, data, "auth_token")
	require.Contains(t, data, "token_expiry")
	require.NotEmpty(t, data["auth_token"])
	require.Equal(t, database.RoleClient, data["role"])

	mockProfileRepo.AssertExpectations(t)
}

func TestHandleAuthLogin_WrongPassword(t *testing.T) {
	mockProfileRepo := new(mocks.MockProfileRepo)
	mockActivityRepo := new(mocks.MockActivityRepo)

	testProfile := &database.Profile{
		ID:             "123",
		Email:          "test@example.com",
		Role:           database.RoleClient,
		Active:         true,
		HashedPassword: testHashedPassword,
	}

	mockProfileRepo.On("GetProfileByEmail", "test@example.com").Return(testProfile, true, nil)

	authHandler := newTestAuthHandler(mockProfileRepo, mockActivityRepo)

	requestBody, _ := json.Marshal(map[string]string{
		"email":    "test@example.com",
		"password": "wrongpassword",
	})

	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()

	authHandler.HandleAuthLogin(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.NotContains(t, rr.Body.String(), "auth_token")
}

func TestHandleAuthLogin_ThirdFailureLocksAccount(t *testing.T) {
	mockProfileRepo := new(mocks.MockProfileRepo)
	mockActivityRepo := &mocks.MockActivityRepo{FailedLoginCount: 2}

	testProfile := &database.Profile{
		ID:             "123",
		Email:          "test@example.com",
		Role:           database.RoleClient,
		Active:         true,
		HashedPassword: testHashedPassword,
	}

	mockProfileRepo.On("GetProfileByEmail", "test@example.com").Return(testProfile, true, nil)

	authHandler := newTestAuthHandler(mockProfileRepo, mockActivityRepo)

	requestBody, _ := json.Marshal(map[string]string{
		"email":    "test@example.com",
		"password": "wrongpassword",
	})

	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()

	authHandler.HandleAuthLogin(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), "Account has been locked")
}

func TestHandleAuthLogin_InactiveAccount(t *testing.T) {
	mockProfileRepo := new(mocks.MockProfileRepo)
	mockActivityRepo := new(mocks.MockActivityRepo)

	testProfile := &database.Profile{
		ID:             "123",
		Email:          "test@example.com",
		Role:           database.RoleClient,
		Active:         false,
		HashedPassword: testHashedPassword,
	}

	mockProfileRepo.On("GetProfileByEmail", "test@example.com").Return(testProfile, true, nil)

	authHandler := newTestAuthHandler(mockProfileRepo, mockActivityRepo)

	requestBody, _ := json.Marshal(map[string]string{
		"email":    "test@example.com",
		"password": "correctpassword",
	})

	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()

	authHandler.HandleAuthLogin(rr, req)

	require.Equal(t, http.StatusForbidden, rr.Code)
}
