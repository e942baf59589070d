package handler

import (
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cogestio/espaceclient/internal/context"
	"github.com/cogestio/espaceclient/internal/database"
	"github.com/cogestio/espaceclient/internal/errHandler"
	"github.com/cogestio/espaceclient/internal/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestActionHandler(actionRepo *mocks.MockActionRepo, profileRepo *mocks.MockProfileRepo) *ActionHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := errHandler.New("", "http://localhost", &mocks.MockMailer{}, logger)

	return &ActionHandler{
		Actions:    actionRepo,
		Profiles:   profileRepo,
		ErrHandler: errorHandler,
	}
}

func TestHandleActionDelete_OwnPortfolio(t *testing.T) {
	mockActionRepo := new(mocks.MockActionRepo)
	mockProfileRepo := new(mocks.MockProfileRepo)

	client := &database.Profile{
		ID:         "client-1",
		Role:       database.RoleClient,
		Active:     true,
		AssignedTo: sql.NullString{String: "manager-1", Valid: true},
	}

	mockActionRepo.On("GetUpcomingAction", "action-1").Return(&database.UpcomingAction{
		ID:       "action-1",
		ClientID: "client-1",
		Title:    "Signer les statuts",
	}, true, nil)
	mockProfileRepo.On("GetProfile", "client-1").Return(client, true, nil)
	mockActionRepo.On("DeleteUpcomingAction", "action-1").Return(nil)

	actionHandler := newTestActionHandler(mockActionRepo, mockProfileRepo)

	req := httptest.NewRequest("DELETE", "/api/actions/action-1", nil)
	req.SetPathValue("id", "action-1")
	req = context.ContextSetAuthenticatedUser(req, &database.Profile{
		ID:     "manager-1",
		Role:   database.RoleAccountManager,
		Active: true,
	})

	rr := httptest.NewRecorder()

	actionHandler.HandleActionDelete(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	mockActionRepo.AssertExpectations(t)
}

func TestHandleActionDelete_ForeignManagerForbidden(t *testing.T) {
	mockActionRepo := new(mocks.MockActionRepo)
	mockProfileRepo := new(mocks.MockProfileRepo)

	// client-1 belongs to manager-1's portfolio, not manager-2's
	client := &database.Profile{
		ID:         "client-1",
		Role:       database.RoleClient,
		Active:     true,
		AssignedTo: sql.NullString{String: "manager-1", Valid: true},
	}

	mockActionRepo.On("GetUpcomingAction", "action-1").Return(&database.UpcomingAction{
		ID:       "action-1",
		ClientID: "client-1",
		Title:    "Signer les statuts",
	}, true, nil)
	mockProfileRepo.On("GetProfile", "client-1").Return(client, true, nil)

	actionHandler := newTestActionHandler(mockActionRepo, mockProfileRepo)

	req := httptest.NewRequest("DELETE", "/api/actions/action-1", nil)
	req.SetPathValue("id", "action-1")
	req = context.ContextSetAuthenticatedUser(req, &database.Profile{
		ID:     "manager-2",
		Role:   database.RoleAccountManager,
		Active: true,
	})

	rr := httptest.NewRecorder()

	actionHandler.HandleActionDelete(rr, req)

	require.Equal(t, http.StatusForbidden, rr.Code)
	mockActionRepo.AssertNotCalled(t, "DeleteUpcomingAction", mock.Anything)
}

func TestHandleActionDelete_NotFound(t *testing.T) {
	mockActionRepo := new(mocks.MockActionRepo)
	mockProfileRepo := new(mocks.MockProfileRepo)

	mockActionRepo.On("GetUpcomingAction", "missing").Return(nil, false, nil)

	actionHandler := newTestActionHandler(mockActionRepo, mockProfileRepo)

	req := httptest.NewRequest("DELETE", "/api/actions/missing", nil)
	req.SetPathValue("id", "missing")
	req = asAdmin(req)

	rr := httptest.NewRecorder()

	actionHandler.HandleActionDelete(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	mockActionRepo.AssertNotCalled(t, "DeleteUpcomingAction", mock.Anything)
}
