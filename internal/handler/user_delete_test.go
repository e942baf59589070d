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
	"github.com/cogestio/espaceclient/internal/file"
	"github.com/cogestio/espaceclient/internal/helper"
	"github.com/cogestio/espaceclient/internal/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandleUserDelete_CascadeAndStorageCleanup(t *testing.T) {
	mockProfileRepo := new(mocks.MockProfileRepo)
	uploader := &mocks.MockUploader{}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := errHandler.New("", "http://localhost", &mocks.MockMailer{}, logger)

	var baseURL = "http://localhost"
	var wg sync.WaitGroup

	userHandler := &UserHandler{
		Profiles:   mockProfileRepo,
		Activities: &mocks.MockActivityRepo{},
		Cache:      mocks.NewMockTokenStore(),
		Uploader:   uploader,
		Helper:     helper.New(&baseURL, &wg, errorHandler),
		Mailer:     &mocks.MockMailer{},
		Config:     mocks.NewMockConfig(),
		ErrHandler: errorHandler,
	}

	mockProfileRepo.On("GetProfile", "client-1").Return(&database.Profile{
		ID:     "client-1",
		Role:   database.RoleClient,
		Active: true,
	}, true, nil)
	mockProfileRepo.On("DeleteProfileCascade", "client-1").Return(nil)

	requestBody, _ := json.Marshal(map[string]string{"userId": "client-1"})

	req := httptest.NewRequest("POST", "/api/admin/delete-user", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	req = asAdmin(req)

	rr := httptest.NewRecorder()

	userHandler.HandleUserDelete(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	mockProfileRepo.AssertExpectations(t)

	// storage cleanup runs in the background after the response
	wg.Wait()

	require.ElementsMatch(t,
		[]string{file.UserFolder("client-1"), file.ClientFolder("client-1")},
		uploader.DeletedFolders,
	)
}

func TestHandleUserDelete_UnknownUser(t *testing.T) {
	mockProfileRepo := new(mocks.MockProfileRepo)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := errHandler.New("", "http://localhost", &mocks.MockMailer{}, logger)

	var baseURL = "http://localhost"
	var wg sync.WaitGroup

	userHandler := &UserHandler{
		Profiles:   mockProfileRepo,
		Activities: &mocks.MockActivityRepo{},
		Cache:      mocks.NewMockTokenStore(),
		Uploader:   &mocks.MockUploader{},
		Helper:     helper.New(&baseURL, &wg, errorHandler),
		Mailer:     &mocks.MockMailer{},
		Config:     mocks.NewMockConfig(),
		ErrHandler: errorHandler,
	}

	mockProfileRepo.On("GetProfile", "missing").Return(nil, false, nil)

	requestBody, _ := json.Marshal(map[string]string{"userId": "missing"})

	req := httptest.NewRequest("POST", "/api/admin/delete-user", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	req = asAdmin(req)

	rr := httptest.NewRecorder()

	userHandler.HandleUserDelete(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	mockProfileRepo.AssertNotCalled(t, "DeleteProfileCascade", mock.Anything)
}
