package handler

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/cogestio/espaceclient/internal/cache"
	"github.com/cogestio/espaceclient/internal/config"
	"github.com/cogestio/espaceclient/internal/context"
	"github.com/cogestio/espaceclient/internal/database"
	"github.com/cogestio/espaceclient/internal/errHandler"
	"github.com/cogestio/espaceclient/internal/file"
	"github.com/cogestio/espaceclient/internal/helper"
	"github.com/cogestio/espaceclient/internal/request"
	"github.com/cogestio/espaceclient/internal/response"
	"github.com/cogestio/espaceclient/internal/smtp"
	"github.com/cogestio/espaceclient/internal/validator"

	"github.com/cradoe/gopass"
)

type UserHandler struct {
	Profiles   database.ProfileRepository
	Activities database.ActivityRepository
	Cache      cache.TokenStore
	Uploader   file.Uploader
	Helper     *helper.HelperRepository
	Mailer     smtp.MailerInterface
	Config     *config.Config
	ErrHandler *errHandler.ErrorHandler
}

func NewUserHandler(handler *UserHandler) *UserHandler {
	return &UserHandler{
		Profiles:   handler.Profiles,
		Activities: handler.Activities,
		Cache:      handler.Cache,
		Uploader:   handler.Uploader,
		Helper:     handler.Helper,
		Mailer:     handler.Mailer,
		Config:     handler.Config,
		ErrHandler: handler.ErrHandler,
	}
}

type ProfileResponseData struct {
	ID           string `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phone_number"`
	Role         string `json:"role"`
	Active       bool   `json:"active"`
	AssignedTo   string `json:"assigned_to,omitempty"`
	CalendlyLink string `json:"calendly_link,omitempty"`
}

func newProfileResponseData(profile *database.Profile) *ProfileResponseData {
	data := &ProfileResponseData{
		ID:           profile.ID,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		Email:        profile.Email,
		PhoneNumber:  profile.PhoneNumber,
		Role:         profile.Role,
		Active:       profile.Active,
		CalendlyLink: profile.CalendlyLink,
	}

	if profile.AssignedTo.Valid {
		data.AssignedTo = profile.AssignedTo.String
	}

	return data
}

// HandleUsersCreate provisions an account on behalf of an admin. The profile
// insert and the progress-step seeding happen in one transaction, so a
// failure part-way never leaves an orphaned account behind. The user receives
// a welcome email with a one-time link to open a session and set a password.
func (h *UserHandler) HandleUsersCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email        string              `json:"email"`
		FirstName    string              `json:"first_name"`
		LastName     string              `json:"last_name"`
		Phone        string              `json:"phone"`
		Role         string              `json:"role"`
		CalendlyLink string              `json:"calendly_link"`
		AssignedTo   string              `json:"assigned_to"`
		Validator    validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")

	found, err := h.Profiles.CheckIfEmailExist(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	input.Validator.Check(!found, "Email is already in use")

	input.Validator.Check(validator.NotBlank(input.FirstName), "First name is required")
	input.Validator.Check(validator.NotBlank(input.LastName), "Last name is required")

	if input.Phone != "" {
		input.Validator.Check(validator.Matches(input.Phone, validator.RgxPhoneNumber), "Phone number must be in international format")
	}

	input.Validator.Check(validator.In(input.Role, database.RoleAdmin, database.RoleAccountManager, database.RoleClient), "Unknown role")

	if input.CalendlyLink != "" {
		input.Validator.Check(validator.IsURL(input.CalendlyLink), "Calendly link must be a valid URL")
	}

	var assignedTo sql.NullString
	if input.AssignedTo != "" {
		input.Validator.Check(input.Role == database.RoleClient, "Only clients can be assigned to an account manager")

		manager, managerFound, err := h.Profiles.GetProfile(input.AssignedTo)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		input.Validator.Check(managerFound && manager.Role == database.RoleAccountManager, "Assigned manager not found")
		assignedTo = sql.NullString{String: input.AssignedTo, Valid: true}
	}

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	// The account starts with a random password; the welcome link lets the
	// user choose their own.
	tempPassword, err := generateToken()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	hashedPassword, err := gopass.Hash(tempPassword)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	createdProfile := &database.Profile{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		PhoneNumber:    input.Phone,
		Role:           input.Role,
		CalendlyLink:   input.CalendlyLink,
		AssignedTo:     assignedTo,
		HashedPassword: hashedPassword,
	}

	userID, err := h.Profiles.CreateProfileWithProgress(createdProfile)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	setupToken, err := generateToken()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = h.Cache.Set(sessionExchangeKeyPrefix+setupToken, userID, sessionExchangeTokenTTL)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.Activities.CreateActivityLog(&database.ActivityLog{
			UserID:      userID,
			Entity:      database.ActivityLogProfileEntity,
			EntityId:    userID,
			Description: ActivityLogProvisionedDescription,
		})

		if err != nil {
			log.Printf("Error logging user provisioning action: %v", err)
			return err
		}

		return nil
	})

	h.Helper.BackgroundTask(r, func() error {
		emailData := h.Helper.NewEmailData()
		emailData["Name"] = h.Helper.DisplayName(createdProfile.FirstName, createdProfile.LastName)
		emailData["SetupURL"] = h.Config.BaseURL + "/api/auth/callback?token=" + setupToken

		err := h.Mailer.Send(createdProfile.Email, emailData, "welcome.tmpl")
		if err != nil {
			log.Printf("Error sending welcome email: %v", err)
			return err
		}

		return nil
	})

	data := map[string]string{"id": userID}
	message := "Account created successfully"

	err = response.JSONCreatedResponse(w, data, message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleUserDelete removes the account and everything referencing it. The
// database cascade runs in one transaction; the storage folders are cleaned
// up afterwards in the background, since object storage cannot take part in
// the transaction. Storage failures are logged, never surfaced.
func (h *UserHandler) HandleUserDelete(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID    string              `json:"userId"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.UserID), "userId is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	profile, found, err := h.Profiles.GetProfile(input.UserID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.ErrHandler.NotFound(w, r)
		return
	}

	err = h.Profiles.DeleteProfileCascade(profile.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	// The deleted user's own log entries are gone with the cascade, so the
	// deletion is recorded against the admin who performed it.
	authUser := context.ContextGetAuthenticatedUser(r)
	h.Helper.BackgroundTask(r, func() error {
		_, err := h.Activities.CreateActivityLog(&database.ActivityLog{
			UserID:      authUser.ID,
			Entity:      database.ActivityLogProfileEntity,
			EntityId:    profile.ID,
			Description: ActivityLogDeletedDescription,
		})

		if err != nil {
			log.Printf("Error logging user deletion: %v", err)
			return err
		}

		return nil
	})

	h.Helper.BackgroundTask(r, func() error {
		for _, folder := range []string{file.UserFolder(profile.ID), file.ClientFolder(profile.ID)} {
			if err := h.Uploader.DeleteFolder(folder); err != nil {
				log.Printf("Error deleting storage folder %s: %v", folder, err)
			}
		}

		return nil
	})

	message := "Account deleted successfully"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *UserHandler) HandleUsersList(w http.ResponseWriter, r *http.Request) {
	queryValues := retrieveUrlQueryValues(r)

	profiles, err := h.Profiles.GetProfiles(&database.ProfileFilter{
		Role:   queryValues.Role,
		Search: queryValues.Search,
		Limit:  queryValues.Limit,
		Offset: queryValues.Offset,
	})
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := make([]*ProfileResponseData, len(profiles))
	for i := range profiles {
		data[i] = newProfileResponseData(&profiles[i])
	}

	message := "Data retrieved successfully"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *UserHandler) HandleUserGet(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	profile, found, err := h.Profiles.GetProfile(userID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.ErrHandler.NotFound(w, r)
		return
	}

	message := "Data retrieved successfully"
	err = response.JSONOkResponse(w, newProfileResponseData(profile), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *UserHandler) HandleUserUpdate(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	profile, found, err := h.Profiles.GetProfile(userID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.ErrHandler.NotFound(w, r)
		return
	}

	var input struct {
		FirstName    *string             `json:"first_name"`
		LastName     *string             `json:"last_name"`
		Phone        *string             `json:"phone"`
		CalendlyLink *string             `json:"calendly_link"`
		AssignedTo   *string             `json:"assigned_to"`
		Active       *bool               `json:"active"`
		Validator    validator.Validator `json:"-"`
	}

	err = request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	if input.FirstName != nil {
		input.Validator.Check(validator.NotBlank(*input.FirstName), "First name cannot be blank")
		profile.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		input.Validator.Check(validator.NotBlank(*input.LastName), "Last name cannot be blank")
		profile.LastName = *input.LastName
	}
	if input.Phone != nil {
		profile.PhoneNumber = *input.Phone
	}
	if input.CalendlyLink != nil {
		profile.CalendlyLink = *input.CalendlyLink
	}
	if input.Active != nil {
		profile.Active = *input.Active
	}

	if input.AssignedTo != nil {
		if *input.AssignedTo == "" {
			profile.AssignedTo = sql.NullString{}
		} else {
			input.Validator.Check(profile.Role == database.RoleClient, "Only clients can be assigned to an account manager")

			manager, managerFound, err := h.Profiles.GetProfile(*input.AssignedTo)
			if err != nil {
				h.ErrHandler.ServerError(w, r, err)
				return
			}

			input.Validator.Check(managerFound && manager.Role == database.RoleAccountManager, "Assigned manager not found")
			profile.AssignedTo = sql.NullString{String: *input.AssignedTo, Valid: true}
		}
	}

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	err = h.Profiles.UpdateProfile(profile)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Profile updated successfully"
	err = response.JSONOkResponse(w, newProfileResponseData(profile), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *UserHandler) HandleManagerClients(w http.ResponseWriter, r *http.Request) {
	managerID := r.PathValue("id")

	manager, found, err := h.Profiles.GetProfile(managerID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found || manager.Role != database.RoleAccountManager {
		h.ErrHandler.NotFound(w, r)
		return
	}

	clients, err := h.Profiles.GetClientsByManager(managerID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := make([]*ProfileResponseData, len(clients))
	for i := range clients {
		data[i] = newProfileResponseData(&clients[i])
	}

	message := "Data retrieved successfully"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
