package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/cogestio/espaceclient/internal/context"
	"github.com/cogestio/espaceclient/internal/database"
	"github.com/cogestio/espaceclient/internal/errHandler"
	"github.com/cogestio/espaceclient/internal/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestProgressHandler(progressRepo *mocks.MockProgressRepo, profileRepo *mocks.MockProfileRepo) *ProgressHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := errHandler.New("", "http://localhost", &mocks.MockMailer{}, logger)

	return &ProgressHandler{
		Progress:   progressRepo,
		Profiles:   profileRepo,
		ErrHandler: errorHandler,
	}
}

func TestHandleProgressUpsert_Valid(t *testing.T) {
	mockProgressRepo := new(mocks.MockProgressRepo)
	mockProfileRepo := new(mocks.MockProfileRepo)

	client := &database.Profile{ID: "client-1", Role: database.RoleClient, Active: true}
	step := database.ProgressSteps[0]

	mockProfileRepo.On("GetProfile", "client-1").Return(client, true, nil)
	mockProgressRepo.On("UpsertProgressStep", mock.MatchedBy(func(p *database.BusinessProgress) bool {
		return p.ClientID == "client-1" && p.Step == step && p.Status == database.ProgressStatusValidated
	})).Return(nil)

	progressHandler := newTestProgressHandler(mockProgressRepo, mockProfileRepo)

	requestBody, _ := json.Marshal(map[string]string{
		"status": database.ProgressStatusValidated,
		"date":   "2026-02-10T09:00:00Z",
	})

	req := httptest.NewRequest("PUT", "/api/clients/client-1/progress/"+url.PathEscape(step), bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", "client-1")
	req.SetPathValue("step", step)
	req = asAdmin(req)

	rr := httptest.NewRecorder()

	progressHandler.HandleProgressUpsert(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	mockProgressRepo.AssertExpectations(t)
}

func TestHandleProgressUpsert_UnknownStep(t *testing.T) {
	mockProgressRepo := new(mocks.MockProgressRepo)
	mockProfileRepo := new(mocks.MockProfileRepo)

	progressHandler := newTestProgressHandler(mockProgressRepo, mockProfileRepo)

	requestBody, _ := json.Marshal(map[string]string{
		"status": database.ProgressStatusValidated,
	})

	req := httptest.NewRequest("PUT", "/api/clients/client-1/progress/unknown", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", "client-1")
	req.SetPathValue("step", "Étape inconnue")
	req = asAdmin(req)

	rr := httptest.NewRecorder()

	progressHandler.HandleProgressUpsert(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), "Unknown progress step")
	mockProgressRepo.AssertNotCalled(t, "UpsertProgressStep", mock.Anything)
}

func TestHandleProgressUpsert_ClientCannotWrite(t *testing.T) {
	mockProgressRepo := new(mocks.MockProgressRepo)
	mockProfileRepo := new(mocks.MockProfileRepo)

	client := &database.Profile{ID: "client-1", Role: database.RoleClient, Active: true}
	otherClient := &database.Profile{ID: "client-2", Role: database.RoleClient, Active: true}

	mockProfileRepo.On("GetProfile", "client-1").Return(client, true, nil)

	progressHandler := newTestProgressHandler(mockProgressRepo, mockProfileRepo)

	requestBody, _ := json.Marshal(map[string]string{
		"status": database.ProgressStatusInProgress,
	})

	step := database.ProgressSteps[1]
	req := httptest.NewRequest("PUT", "/api/clients/client-1/progress/"+url.PathEscape(step), bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", "client-1")
	req.SetPathValue("step", step)
	req = context.ContextSetAuthenticatedUser(req, otherClient)

	rr := httptest.NewRecorder()

	progressHandler.HandleProgressUpsert(rr, req)

	require.Equal(t, http.StatusForbidden, rr.Code)
	mockProgressRepo.AssertNotCalled(t, "UpsertProgressStep", mock.Anything)
}

func TestHandleClientProgress(t *testing.T) {
	mockProgressRepo := new(mocks.MockProgressRepo)
	mockProfileRepo := new(mocks.MockProfileRepo)

	client := &database.Profile{ID: "client-1", Role: database.RoleClient, Active: true}

	steps := make([]database.BusinessProgress, len(database.ProgressSteps))
	for i, step := range database.ProgressSteps {
		steps[i] = database.BusinessProgress{
			ClientID: "client-1",
			Step:     step,
			Status:   database.ProgressStatusUpcoming,
		}
	}
	steps[0].Status = database.ProgressStatusValidated
	steps[0].Date = sql.NullTime{Time: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC), Valid: true}

	mockProfileRepo.On("GetProfile", "client-1").Return(client, true, nil)
	mockProgressRepo.On("GetClientProgress", "client-1").Return(steps, nil)

	progressHandler := newTestProgressHandler(mockProgressRepo, mockProfileRepo)

	req := httptest.NewRequest("GET", "/api/clients/client-1/progress", nil)
	req.SetPathValue("id", "client-1")
	req = context.ContextSetAuthenticatedUser(req, client)

	rr := httptest.NewRecorder()

	progressHandler.HandleClientProgress(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	err := json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	data, ok := response["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, data, len(database.ProgressSteps))

	first, ok := data[0].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, database.ProgressSteps[0], first["step"])
	require.Equal(t, database.ProgressStatusValidated, first["status"])
}
