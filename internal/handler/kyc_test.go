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

	"github.com/cogestio/espaceclient/internal/context"
	"github.com/cogestio/espaceclient/internal/database"
	"github.com/cogestio/espaceclient/internal/errHandler"
	"github.com/cogestio/espaceclient/internal/helper"
	"github.com/cogestio/espaceclient/internal/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestKYCHandler(kycRepo *mocks.MockKYCRepo, profileRepo *mocks.MockProfileRepo) *KYCHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := errHandler.New("", "http://localhost", &mocks.MockMailer{}, logger)

	var baseURL = "http://localhost"
	var wg sync.WaitGroup

	return &KYCHandler{
		KYC:        kycRepo,
		Profiles:   profileRepo,
		Activities: &mocks.MockActivityRepo{},
		Stream:     &mocks.MockProducer{},
		Helper:     helper.New(&baseURL, &wg, errorHandler),
		Config:     mocks.NewMockConfig(),
		ErrHandler: errorHandler,
	}
}

func asAdmin(req *http.Request) *http.Request {
	return context.ContextSetAuthenticatedUser(req, &database.Profile{
		ID:     "admin-1",
		Role:   database.RoleAdmin,
		Active: true,
	})
}

func TestHandleDocumentSubmission_Valid(t *testing.T) {
	mockKYCRepo := new(mocks.MockKYCRepo)
	mockProfileRepo := new(mocks.MockProfileRepo)

	mockKYCRepo.On("UpsertKYCProfile", mock.MatchedBy(func(p *database.KYCProfile) bool {
		return p.UserID == "client-1" && p.PassportPath == "documents/clients/client-1/passport"
	})).Return(nil)

	kycHandler := newTestKYCHandler(mockKYCRepo, mockProfileRepo)

	requestBody, _ := json.Marshal(map[string]string{
		"birth_date":    "1990-04-12",
		"birth_place":   "Lyon",
		"nationality":   "Française",
		"address":       "12 rue de la République",
		"city":          "Lyon",
		"postal_code":   "69002",
		"country":       "France",
		"profession":    "Consultante",
		"passport_path": "documents/clients/client-1/passport",
		"type":          "passport",
	})

	req := httptest.NewRequest("POST", "/api/kyc/submit", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	req = context.ContextSetAuthenticatedUser(req, &database.Profile{
		ID:     "client-1",
		Role:   database.RoleClient,
		Active: true,
	})

	rr := httptest.NewRecorder()

	kycHandler.HandleDocumentSubmission(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	mockKYCRepo.AssertExpectations(t)
}

func TestHandleDocumentSubmission_NoDocument(t *testing.T) {
	mockKYCRepo := new(mocks.MockKYCRepo)
	mockProfileRepo := new(mocks.MockProfileRepo)

	kycHandler := newTestKYCHandler(mockKYCRepo, mockProfileRepo)

	requestBody, _ := json.Marshal(map[string]string{
		"nationality": "Française",
		"address":     "12 rue de la République",
	})

	req := httptest.NewRequest("POST", "/api/kyc/submit", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	req = context.ContextSetAuthenticatedUser(req, &database.Profile{
		ID:     "client-1",
		Role:   database.RoleClient,
		Active: true,
	})

	rr := httptest.NewRecorder()

	kycHandler.HandleDocumentSubmission(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	mockKYCRepo.AssertNotCalled(t, "UpsertKYCProfile", mock.Anything)
}

func TestHandleKYCApprove(t *testing.T) {
	mockKYCRepo := new(mocks.MockKYCRepo)
	mockProfileRepo := new(mocks.MockProfileRepo)

	client := &database.Profile{ID: "client-1", Role: database.RoleClient, Active: true}

	mockProfileRepo.On("GetProfile", "client-1").Return(client, true, nil)
	mockKYCRepo.On("GetKYCProfile", "client-1").Return(&database.KYCProfile{
		UserID: "client-1",
		Status: database.KYCStatusSubmitted,
	}, true, nil)
	mockKYCRepo.On("ReviewKYCProfile", "client-1", database.KYCStatusApproved, (*string)(nil)).Return(nil)

	kycHandler := newTestKYCHandler(mockKYCRepo, mockProfileRepo)

	req := httptest.NewRequest("POST", "/api/kyc/client-1/approve", nil)
	req.SetPathValue("userId", "client-1")
	req = asAdmin(req)

	rr := httptest.NewRecorder()

	kycHandler.HandleKYCApprove(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	mockKYCRepo.AssertExpectations(t)
}

func TestHandleKYCReject_WithComment(t *testing.T) {
	mockKYCRepo := new(mocks.MockKYCRepo)
	mockProfileRepo := new(mocks.MockProfileRepo)

	client := &database.Profile{ID: "client-1", Role: database.RoleClient, Active: true}

	mockProfileRepo.On("GetProfile", "client-1").Return(client, true, nil)
	mockKYCRepo.On("GetKYCProfile", "client-1").Return(&database.KYCProfile{
		UserID: "client-1",
		Status: database.KYCStatusSubmitted,
	}, true, nil)
	mockKYCRepo.On("ReviewKYCProfile", "client-1", database.KYCStatusRejected, mock.MatchedBy(func(comment *string) bool {
		return comment != nil && *comment == "Document illisible"
	})).Return(nil)

	kycHandler := newTestKYCHandler(mockKYCRepo, mockProfileRepo)

	requestBody, _ := json.Marshal(map[string]string{"comment": "Document illisible"})

	req := httptest.NewRequest("POST", "/api/kyc/client-1/reject", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("userId", "client-1")
	req = asAdmin(req)

	rr := httptest.NewRecorder()

	kycHandler.HandleKYCReject(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	mockKYCRepo.AssertExpectations(t)
}

func TestHandleKYCReject_MissingComment(t *testing.T) {
	mockKYCRepo := new(mocks.MockKYCRepo)
	mockProfileRepo := new(mocks.MockProfileRepo)

	kycHandler := newTestKYCHandler(mockKYCRepo, mockProfileRepo)

	requestBody, _ := json.Marshal(map[string]string{"comment": "  "})

	req := httptest.NewRequest("POST", "/api/kyc/client-1/reject", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("userId", "client-1")
	req = asAdmin(req)

	rr := httptest.NewRecorder()

	kycHandler.HandleKYCReject(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	mockKYCRepo.AssertNotCalled(t, "ReviewKYCProfile", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleKYCGet_NoSubmissionYet(t *testing.T) {
	mockKYCRepo := new(mocks.MockKYCRepo)
	mockProfileRepo := new(mocks.MockProfileRepo)

	client := &database.Profile{ID: "client-1", Role: database.RoleClient, Active: true}

	mockProfileRepo.On("GetProfile", "client-1").Return(client, true, nil)
	mockKYCRepo.On("GetKYCProfile", "client-1").Return(nil, false, nil)

	kycHandler := newTestKYCHandler(mockKYCRepo, mockProfileRepo)

	req := httptest.NewRequest("GET", "/api/kyc/client-1", nil)
	req.SetPathValue("userId", "client-1")
	req = asAdmin(req)

	rr := httptest.NewRecorder()

	kycHandler.HandleKYCGet(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	err := json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, database.KYCStatusPending, data["status"])
}
