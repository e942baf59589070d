package handler

import (
	"net/http"
	"time"

	"github.com/cogestio/espaceclient/internal/context"
	"github.com/cogestio/espaceclient/internal/database"
	"github.com/cogestio/espaceclient/internal/errHandler"
	"github.com/cogestio/espaceclient/internal/request"
	"github.com/cogestio/espaceclient/internal/response"
	"github.com/cogestio/espaceclient/internal/validator"
)

type ActionHandler struct {
	Actions    database.ActionRepository
	Profiles   database.ProfileRepository
	ErrHandler *errHandler.ErrorHandler
}

func NewActionHandler(handler *ActionHandler) *ActionHandler {
	return &ActionHandler{
		Actions:    handler.Actions,
		Profiles:   handler.Profiles,
		ErrHandler: handler.ErrHandler,
	}
}

type ActionResponseData struct {
	ID        string `json:"id"`
	ClientID  string `json:"client_id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at,omitempty"`
}

func (h *ActionHandler) HandleActionCreate(w http.ResponseWriter, r *http.Request) {
	authUser := context.ContextGetAuthenticatedUser(r)

	var input struct {
		ClientID  string              `json:"client_id"`
		Title     string              `json:"title"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.ClientID), "Client is required")
	input.Validator.Check(validator.NotBlank(input.Title), "Title is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	client, found, err := h.Profiles.GetProfile(input.ClientID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found || client.Role != database.RoleClient {
		h.ErrHandler.NotFound(w, r)
		return
	}

	if !canAccessClient(authUser, input.ClientID, client) {
		h.ErrHandler.Forbidden(w, r)
		return
	}

	action := &database.UpcomingAction{
		ClientID: input.ClientID,
		Title:    input.Title,
	}

	id, err := h.Actions.InsertUpcomingAction(action)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := &ActionResponseData{
		ID:       id,
		ClientID: action.ClientID,
		Title:    action.Title,
	}

	message := "Action created successfully"
	err = response.JSONCreatedResponse(w, data, message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *ActionHandler) HandleClientActions(w http.ResponseWriter, r *http.Request) {
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

	actions, err := h.Actions.GetClientUpcomingActions(clientID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := make([]*ActionResponseData, len(actions))
	for i, action := range actions {
		data[i] = &ActionResponseData{
			ID:        action.ID,
			ClientID:  action.ClientID,
			Title:     action.Title,
			CreatedAt: action.CreatedAt.Format(time.RFC3339),
		}
	}

	message := "Data retrieved successfully"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *ActionHandler) HandleActionDelete(w http.ResponseWriter, r *http.Request) {
	authUser := context.ContextGetAuthenticatedUser(r)
	actionID := r.PathValue("id")

	action, found, err := h.Actions.GetUpcomingAction(actionID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.ErrHandler.NotFound(w, r)
		return
	}

	client, _, err := h.Profiles.GetProfile(action.ClientID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !canAccessClient(authUser, action.ClientID, client) {
		h.ErrHandler.Forbidden(w, r)
		return
	}

	err = h.Actions.DeleteUpcomingAction(actionID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Action deleted successfully"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
