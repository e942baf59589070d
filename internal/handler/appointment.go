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

type AppointmentHandler struct {
	Appointments database.AppointmentRepository
	Profiles     database.ProfileRepository
	ErrHandler   *errHandler.ErrorHandler
}

func NewAppointmentHandler(handler *AppointmentHandler) *AppointmentHandler {
	return &AppointmentHandler{
		Appointments: handler.Appointments,
		Profiles:     handler.Profiles,
		ErrHandler:   handler.ErrHandler,
	}
}

type AppointmentResponseData struct {
	ID         string `json:"id"`
	ClientID   string `json:"client_id"`
	Type       string `json:"type"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	Location   string `json:"location,omitempty"`
	ActionText string `json:"action_text,omitempty"`
	ActionURL  string `json:"action_url,omitempty"`
}

func newAppointmentResponseData(appointment *database.Appointment) *AppointmentResponseData {
	return &AppointmentResponseData{
		ID:         appointment.ID,
		ClientID:   appointment.ClientID,
		Type:       appointment.Type,
		Date:       appointment.Date.Format(time.RFC3339),
		Status:     appointment.Status,
		Location:   appointment.Location,
		ActionText: appointment.ActionText,
		ActionURL:  appointment.ActionURL,
	}
}

func (h *AppointmentHandler) HandleAppointmentCreate(w http.ResponseWriter, r *http.Request) {
	authUser := context.ContextGetAuthenticatedUser(r)

	var input struct {
		ClientID   string              `json:"client_id"`
		Type       string              `json:"type"`
		Date       string              `json:"date"`
		Status     string              `json:"status"`
		Location   string              `json:"location"`
		ActionText string              `json:"action_text"`
		ActionURL  string              `json:"action_url"`
		Validator  validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.ClientID), "Client is required")
	input.Validator.Check(validator.NotBlank(input.Type), "Type is required")
	input.Validator.Check(validator.In(input.Status, database.AppointmentStatuses...), "Unknown appointment status")

	date, err := time.Parse(time.RFC3339, input.Date)
	if err != nil {
		input.Validator.AddError("Date must be an RFC 3339 timestamp")
	}

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

	appointment := &database.Appointment{
		ClientID:   input.ClientID,
		Type:       input.Type,
		Date:       date,
		Status:     input.Status,
		Location:   input.Location,
		ActionText: input.ActionText,
		ActionURL:  input.ActionURL,
	}

	id, err := h.Appointments.InsertAppointment(appointment)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	appointment.ID = id

	message := "Appointment created successfully"
	err = response.JSONCreatedResponse(w, newAppointmentResponseData(appointment), message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *AppointmentHandler) HandleClientAppointments(w http.ResponseWriter, r *http.Request) {
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

	appointments, err := h.Appointments.GetClientAppointments(clientID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := make([]*AppointmentResponseData, len(appointments))
	for i := range appointments {
		data[i] = newAppointmentResponseData(&appointments[i])
	}

	message := "Data retrieved successfully"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *AppointmentHandler) HandleAppointmentUpdate(w http.ResponseWriter, r *http.Request) {
	authUser := context.ContextGetAuthenticatedUser(r)
	appointmentID := r.PathValue("id")

	appointment, found, err := h.Appointments.GetAppointment(appointmentID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.ErrHandler.NotFound(w, r)
		return
	}

	client, _, err := h.Profiles.GetProfile(appointment.ClientID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !canAccessClient(authUser, appointment.ClientID, client) {
		h.ErrHandler.Forbidden(w, r)
		return
	}

	var input struct {
		Type       *string             `json:"type"`
		Date       *string             `json:"date"`
		Status     *string             `json:"status"`
		Location   *string             `json:"location"`
		ActionText *string             `json:"action_text"`
		ActionURL  *string             `json:"action_url"`
		Validator  validator.Validator `json:"-"`
	}

	err = request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	if input.Type != nil {
		appointment.Type = *input.Type
	}
	if input.Date != nil {
		date, err := time.Parse(time.RFC3339, *input.Date)
		if err != nil {
			input.Validator.AddError("Date must be an RFC 3339 timestamp")
		} else {
			appointment.Date = date
		}
	}
	if input.Status != nil {
		input.Validator.Check(validator.In(*input.Status, database.AppointmentStatuses...), "Unknown appointment status")
		appointment.Status = *input.Status
	}
	if input.Location != nil {
		appointment.Location = *input.Location
	}
	if input.ActionText != nil {
		appointment.ActionText = *input.ActionText
	}
	if input.ActionURL != nil {
		appointment.ActionURL = *input.ActionURL
	}

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	err = h.Appointments.UpdateAppointment(appointment)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Appointment updated successfully"
	err = response.JSONOkResponse(w, newAppointmentResponseData(appointment), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *AppointmentHandler) HandleAppointmentDelete(w http.ResponseWriter, r *http.Request) {
	authUser := context.ContextGetAuthenticatedUser(r)
	appointmentID := r.PathValue("id")

	appointment, found, err := h.Appointments.GetAppointment(appointmentID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.ErrHandler.NotFound(w, r)
		return
	}

	client, _, err := h.Profiles.GetProfile(appointment.ClientID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !canAccessClient(authUser, appointment.ClientID, client) {
		h.ErrHandler.Forbidden(w, r)
		return
	}

	err = h.Appointments.DeleteAppointment(appointmentID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Appointment deleted successfully"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
