package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/cogestio/espaceclient/internal/database"
	"github.com/cogestio/espaceclient/internal/errHandler"
	"github.com/cogestio/espaceclient/internal/helper"
	"github.com/cogestio/espaceclient/internal/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestUserHandler(profileRepo *mocks.MockProfileRepo, tokenStore *mocks.MockTokenStore) *UserHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := errHandler.New("", "http://localhost", &mocks.MockMailer{}, logger)

	var baseURL = "http://localhost"
	var wg sync.WaitGroup

	return &UserHandler{
		Profiles:   profileRepo,
		Activities: &mocks.MockActivityRepo{},
		Cache:      tokenStore,
		Uploader:   &mocks.MockUploader{},
		Helper:     helper.New(&baseURL, &wg, errorHandler),
		Mailer:     &mocks.MockMailer{},
		Config:     mocks.NewMockConfig(),
		ErrHandler: errorHandler,
	}
}

func TestHandleUsersCreate_Valid(t *testing.T) {
	mockProfileRepo := new(mocks.MockProfileRepo)
	tokenStore := mocks.NewMockTokenStore()

	mockProfileRepo.On("CheckIfEmailExist", "marie.dupont@example.com").Return(false, nil)
	mockProfileRepo.On("CreateProfileWithProgress", mock.MatchedBy(func(p *database.Profile) bool {
		return p.Email == "marie.dupont@example.com" &&
			p.Role == database.RoleClient &&
			p.HashedPassword != ""
	})).Return("new-user-id", nil)

	userHandler := newTestUserHandler(mockProfileRepo, tokenStore)

	requestBody, _ := json.Marshal(map[string]string{
		"email":      "marie.dupont@example.com",
		"first_name": "Marie",
		"last_name":  "Dupont",
		"phone":      "+33612345678",
		"role":       database.RoleClient,
	})

	req := httptest.NewRequest("POST", "/api/users", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()

	userHandler.HandleUsersCreate(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var response map[string]interface{}
	err := json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "new-user-id", data["id"])

	// provisioning stores a one-time session-exchange token for the welcome link
	exists := false
	for key := range tokenStore.Values() {
		if strings.HasPrefix(key, sessionExchangeKeyPrefix) {
			exists = true
		}
	}
	require.True(t, exists, "Expected a session-exchange token to be stored")

	mockProfileRepo.AssertExpectations(t)
}

func TestHandleUsersCreate_UnknownRole(t *testing.T) {
	mockProfileRepo := new(mocks.MockProfileRepo)

	mockProfileRepo.On("CheckIfEmailExist", "marie.dupont@example.com").Return(false, nil)

	userHandler := newTestUserHandler(mockProfileRepo, mocks.NewMockTokenStore())

	requestBody, _ := json.Marshal(map[string]string{
		"email":      "marie.dupont@example.com",
		"first_name": "Marie",
		"last_name":  "Dupont",
		"role":       "superuser",
	})

	req := httptest.NewRequest("POST", "/api/users", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()

	userHandler.HandleUsersCreate(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	mockProfileRepo.AssertNotCalled(t, "CreateProfileWithProgress", mock.Anything)
}

func TestHandleUsersCreate_DuplicateEmail(t *testing.T) {
	mockProfileRepo := new(mocks.MockProfileRepo)

	mockProfileRepo.On("CheckIfEmailExist", "marie.dupont@example.com").Return(true, nil)

	userHandler := newTestUserHandler(mockProfileRepo, mocks.NewMockTokenStore())

	requestBody, _ := json.Marshal(map[string]string{
		"email":      "marie.dupont@example.com",
		"first_name": "Marie",
		"last_name":  "Dupont",
		"role":       database.RoleClient,
	})

	req := httptest.NewRequest("POST", "/api/users", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()

	userHandler.HandleUsersCreate(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), "Email is already in use")
}

func TestHandleUsersCreate_AssignedManagerMustBeManager(t *testing.T) {
	mockProfileRepo := new(mocks.MockProfileRepo)

	mockProfileRepo.On("CheckIfEmailExist", "marie.dupont@example.com").Return(false, nil)
	mockProfileRepo.On("GetProfile", "manager-1").Return(&database.Profile{
		ID:   "manager-1",
		Role: database.RoleClient,
	}, true, nil)

	userHandler := newTestUserHandler(mockProfileRepo, mocks.NewMockTokenStore())

	requestBody, _ := json.Marshal(map[string]string{
		"email":       "marie.dupont@example.com",
		"first_name":  "Marie",
		"last_name":   "Dupont",
		"role":        database.RoleClient,
		"assigned_to": "manager-1",
	})

	req := httptest.NewRequest("POST", "/api/users", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()

	userHandler.HandleUsersCreate(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), "Assigned manager not found")
}
