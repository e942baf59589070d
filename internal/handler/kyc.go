package handler

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/cogestio/espaceclient/internal/config"
	"github.com/cogestio/espaceclient/internal/context"
	"github.com/cogestio/espaceclient/internal/database"
	"github.com/cogestio/espaceclient/internal/errHandler"
	"github.com/cogestio/espaceclient/internal/helper"
	"github.com/cogestio/espaceclient/internal/request"
	"github.com/cogestio/espaceclient/internal/response"
	"github.com/cogestio/espaceclient/internal/stream"
	"github.com/cogestio/espaceclient/internal/validator"
)

type KYCHandler struct {
	KYC        database.KYCRepository
	Profiles   database.ProfileRepository
	Activities database.ActivityRepository
	Stream     stream.Producer
	Helper     *helper.HelperRepository
	Config     *config.Config
	ErrHandler *errHandler.ErrorHandler
}

func NewKYCHandler(handler *KYCHandler) *KYCHandler {
	return &KYCHandler{
		KYC:        handler.KYC,
		Profiles:   handler.Profiles,
		Activities: handler.Activities,
		Stream:     handler.Stream,
		Helper:     handler.Helper,
		Config:     handler.Config,
		ErrHandler: handler.ErrHandler,
	}
}

type KYCResponseData struct {
	UserID       string `json:"user_id"`
	BirthDate    string `json:"birth_date,omitempty"`
	BirthPlace   string `json:"birth_place,omitempty"`
	Nationality  string `json:"nationality,omitempty"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country,omitempty"`
	Profession   string `json:"profession,omitempty"`
	PassportPath string `json:"passport_path,omitempty"`
	IdCardPath   string `json:"idcard_path,omitempty"`
	Status       string `json:"status"`
	Comment      string `json:"comment,omitempty"`
	SubmittedAt  string `json:"submitted_at,omitempty"`
	ReviewedAt   string `json:"reviewed_at,omitempty"`
}

func newKYCResponseData(profile *database.KYCProfile) *KYCResponseData {
	data := &KYCResponseData{
		UserID:       profile.UserID,
		BirthPlace:   profile.BirthPlace,
		Nationality:  profile.Nationality,
		Address:      profile.Address,
		City:         profile.City,
		PostalCode:   profile.PostalCode,
		Country:      profile.Country,
		Profession:   profile.Profession,
		PassportPath: profile.PassportPath,
		IdCardPath:   profile.IdCardPath,
		Status:       profile.Status,
	}

	if profile.BirthDate.Valid {
		data.BirthDate = profile.BirthDate.Time.Format("2006-01-02")
	}
	if profile.Comment.Valid {
		data.Comment = profile.Comment.String
	}
	if profile.SubmittedAt.Valid {
		data.SubmittedAt = profile.SubmittedAt.Time.Format(time.RFC3339)
	}
	if profile.ReviewedAt.Valid {
		data.ReviewedAt = profile.ReviewedAt.Time.Format(time.RFC3339)
	}

	return data
}

// HandleDocumentSubmission saves the client's identity form. Resubmitting
// after a rejection clears the previous review comment and puts the file
// back in front of a reviewer.
func (h *KYCHandler) HandleDocumentSubmission(w http.ResponseWriter, r *http.Request) {
	authUser := context.ContextGetAuthenticatedUser(r)

	var input struct {
		BirthDate    string              `json:"birth_date"`
		BirthPlace   string              `json:"birth_place"`
		Nationality  string              `json:"nationality"`
		Address      string              `json:"address"`
		City         string              `json:"city"`
		PostalCode   string              `json:"postal_code"`
		Country      string              `json:"country"`
		Profession   string              `json:"profession"`
		PassportPath string              `json:"passport_path"`
		IdCardPath   string              `json:"idcard_path"`
		Type         string              `json:"type"`
		Validator    validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Address), "Address is required")
	input.Validator.Check(validator.NotBlank(input.Nationality), "Nationality is required")
	input.Validator.Check(input.PassportPath != "" || input.IdCardPath != "", "At least one identity document is required")

	var birthDate sql.NullTime
	if input.BirthDate != "" {
		parsed, err := time.Parse("2006-01-02", input.BirthDate)
		if err != nil {
			input.Validator.AddError("Birth date must be in YYYY-MM-DD format")
		} else {
			birthDate = sql.NullTime{Time: parsed, Valid: true}
		}
	}

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	kycProfile := &database.KYCProfile{
		UserID:       authUser.ID,
		BirthDate:    birthDate,
		BirthPlace:   input.BirthPlace,
		Nationality:  input.Nationality,
		Address:      input.Address,
		City:         input.City,
		PostalCode:   input.PostalCode,
		Country:      input.Country,
		Profession:   input.Profession,
		PassportPath: input.PassportPath,
		IdCardPath:   input.IdCardPath,
	}

	err = h.KYC.UpsertKYCProfile(kycProfile)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.Activities.CreateActivityLog(&database.ActivityLog{
			UserID:      authUser.ID,
			Entity:      database.ActivityLogKYCEntity,
			EntityId:    authUser.ID,
			Description: ActivityLogKYCSubmittedDescription,
		})

		if err != nil {
			log.Printf("Error logging KYC submission: %v", err)
			return err
		}

		return nil
	})

	h.produceReviewEvent(r, DocumentSubmittedTopic, &DocumentReviewEvent{
		UserID:       authUser.ID,
		DocumentType: input.Type,
	})

	message := "Documents submitted for review"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *KYCHandler) HandleKYCGet(w http.ResponseWriter, r *http.Request) {
	authUser := context.ContextGetAuthenticatedUser(r)
	userID := r.PathValue("userId")

	client, _, err := h.Profiles.GetProfile(userID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !canAccessClient(authUser, userID, client) {
		h.ErrHandler.Forbidden(w, r)
		return
	}

	kycProfile, found, err := h.KYC.GetKYCProfile(userID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		// No submission yet: report the pending state rather than a 404 so
		// dashboards can render the empty form.
		kycProfile = &database.KYCProfile{
			UserID: userID,
			Status: database.KYCStatusPending,
		}
	}

	message := "Data retrieved successfully"
	err = response.JSONOkResponse(w, newKYCResponseData(kycProfile), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *KYCHandler) HandleKYCApprove(w http.ResponseWriter, r *http.Request) {
	authUser := context.ContextGetAuthenticatedUser(r)
	userID := r.PathValue("userId")

	client, found, err := h.Profiles.GetProfile(userID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.ErrHandler.NotFound(w, r)
		return
	}

	if !canAccessClient(authUser, userID, client) {
		h.ErrHandler.Forbidden(w, r)
		return
	}

	_, submitted, err := h.KYC.GetKYCProfile(userID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !submitted {
		h.ErrHandler.NotFound(w, r)
		return
	}

	// Approval never carries a comment.
	err = h.KYC.ReviewKYCProfile(userID, database.KYCStatusApproved, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.logReview(r, authUser.ID, userID, ActivityLogKYCApprovedDescription)
	h.produceReviewEvent(r, DocumentApprovedTopic, &DocumentReviewEvent{UserID: userID})

	message := "Documents approved"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *KYCHandler) HandleKYCReject(w http.ResponseWriter, r *http.Request) {
	authUser := context.ContextGetAuthenticatedUser(r)
	userID := r.PathValue("userId")

	var input struct {
		Comment   string              `json:"comment"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	// A rejection always carries the reviewer's reason.
	input.Validator.Check(validator.NotBlank(input.Comment), "A rejection comment is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	client, found, err := h.Profiles.GetProfile(userID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.ErrHandler.NotFound(w, r)
		return
	}

	if !canAccessClient(authUser, userID, client) {
		h.ErrHandler.Forbidden(w, r)
		return
	}

	_, submitted, err := h.KYC.GetKYCProfile(userID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !submitted {
		h.ErrHandler.NotFound(w, r)
		return
	}

	err = h.KYC.ReviewKYCProfile(userID, database.KYCStatusRejected, &input.Comment)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.logReview(r, authUser.ID, userID, ActivityLogKYCRejectedDescription)
	h.produceReviewEvent(r, DocumentRejectedTopic, &DocumentReviewEvent{
		UserID:  userID,
		Comment: input.Comment,
	})

	message := "Documents rejected"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *KYCHandler) logReview(r *http.Request, reviewerID, clientID, description string) {
	h.Helper.BackgroundTask(r, func() error {
		_, err := h.Activities.CreateActivityLog(&database.ActivityLog{
			UserID:      reviewerID,
			Entity:      database.ActivityLogKYCEntity,
			EntityId:    clientID,
			Description: description,
		})

		if err != nil {
			log.Printf("Error logging KYC review: %v", err)
			return err
		}

		return nil
	})
}

func (h *KYCHandler) produceReviewEvent(r *http.Request, topic string, event *DocumentReviewEvent) {
	h.Helper.BackgroundTask(r, func() error {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}

		err = h.Stream.ProduceMessage(topic, string(payload))
		if err != nil {
			log.Printf("Error producing %s event: %v", topic, err)
			return err
		}

		return nil
	})
}
