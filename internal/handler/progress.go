package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/cogestio/espaceclient/internal/context"
	"github.com/cogestio/espaceclient/internal/database"
	"github.com/cogestio/espaceclient/internal/errHandler"
	"github.com/cogestio/espaceclient/internal/request"
	"github.com/cogestio/espaceclient/internal/response"
	"github.com/cogestio/espaceclient/internal/validator"
)

type ProgressHandler struct {
	Progress   database.ProgressRepository
	Profiles   database.ProfileRepository
	ErrHandler *errHandler.ErrorHandler
}

func NewProgressHandler(handler *ProgressHandler) *ProgressHandler {
	return &ProgressHandler{
		Progress:   handler.Progress,
		Profiles:   handler.Profiles,
		ErrHandler: handler.ErrHandler,
	}
}

type ProgressResponseData struct {
	Step   string `json:"step"`
	Status string `json:"status"`
	Date   string `json:"date,omitempty"`
}

func (h *ProgressHandler) HandleClientProgress(w http.ResponseWriter, r *http.Request) {
	authUser := context.ContextGetAuthenticatedUser(r)
	clientID := r.PathValue("id")

	client, _, err := h.Profiles.GetProfile(clientID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !canAccessClient(authUser, clientID, client) {
		h.ErrHandler.Forbidden(w, r)
		return
	}

	progress, err := h.Progress.GetClientProgress(clientID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := make([]*ProgressResponseData, len(progress))
	for i, step := range progress {
		data[i] = &ProgressResponseData{
			Step:   step.Step,
			Status: step.Status,
		}
		if step.Date.Valid {
			data[i].Date = step.Date.Time.Format(time.RFC3339)
		}
	}

	message := "Data retrieved successfully"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleProgressUpsert writes the status of one setup step. The step must be
// one of the fixed timeline steps; the (client, step) pair can never appear
// twice.
func (h *ProgressHandler) HandleProgressUpsert(w http.ResponseWriter, r *http.Request) {
	clientID := r.PathValue("id")
	step := r.PathValue("step")

	var input struct {
		Status    string              `json:"status"`
		Date      string              `json:"date"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.In(step, database.ProgressSteps...), "Unknown progress step")
	input.Validator.Check(validator.In(input.Status, database.ProgressStatuses...), "Unknown progress status")

	var date sql.NullTime
	if input.Date != "" {
		parsed, err := time.Parse(time.RFC3339, input.Date)
		if err != nil {
			input.Validator.AddError("Date must be an RFC 3339 timestamp")
		} else {
			date = sql.NullTime{Time: parsed, Valid: true}
		}
	}

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	client, found, err := h.Profiles.GetProfile(clientID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found || client.Role != database.RoleClient {
		h.ErrHandler.NotFound(w, r)
		return
	}

	authUser := context.ContextGetAuthenticatedUser(r)
	if !canAccessClient(authUser, clientID, client) {
		h.ErrHandler.Forbidden(w, r)
		return
	}

	err = h.Progress.UpsertProgressStep(&database.BusinessProgress{
		ClientID: clientID,
		Step:     step,
		Status:   input.Status,
		Date:     date,
	})
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Progress updated successfully"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
