package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/cogestio/espaceclient/internal/cache"
	"github.com/cogestio/espaceclient/internal/config"
	"github.com/cogestio/espaceclient/internal/database"
	"github.com/cogestio/espaceclient/internal/errHandler"
	"github.com/cogestio/espaceclient/internal/helper"
	"github.com/cogestio/espaceclient/internal/middleware"
	"github.com/cogestio/espaceclient/internal/request"
	"github.com/cogestio/espaceclient/internal/response"
	"github.com/cogestio/espaceclient/internal/smtp"
	"github.com/cogestio/espaceclient/internal/validator"

	"github.com/cradoe/gopass"
	"github.com/pascaldekloe/jwt"
)

const (
	passwordResetKeyPrefix   = "password-reset:"
	sessionExchangeKeyPrefix = "session-exchange:"

	passwordResetTokenTTL   = 15 * time.Minute
	sessionExchangeTokenTTL = 24 * time.Hour
)

type AuthHandler struct {
	Profiles   database.ProfileRepository
	Activities database.ActivityRepository
	Cache      cache.TokenStore
	Helper     *helper.HelperRepository
	Mailer     smtp.MailerInterface
	Config     *config.Config
	ErrHandler *errHandler.ErrorHandler
}

func NewAuthHandler(handler *AuthHandler) *AuthHandler {
	return &AuthHandler{
		Profiles:   handler.Profiles,
		Activities: handler.Activities,
		Cache:      handler.Cache,
		Helper:     handler.Helper,
		Mailer:     handler.Mailer,
		Config:     handler.Config,
		ErrHandler: handler.ErrHandler,
	}
}

func (h *AuthHandler) HandleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Password  string              `json:"password"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	profile, found, err := h.Profiles.GetProfileByEmail(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")
	input.Validator.Check(found, "Incorrect email/password")

	if found {
		passwordMatches, err := gopass.ComparePasswordAndHash(input.Password, profile.HashedPassword)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		input.Validator.Check(validator.NotBlank(input.Password), "Password is required")
		input.Validator.Check(passwordMatches, "Incorrect email/password")

		if !passwordMatches {
			h.Helper.BackgroundTask(r, func() error {
				_, err := h.Activities.CreateActivityLog(&database.ActivityLog{
					UserID:      profile.ID,
					Entity:      database.ActivityLogProfileEntity,
					EntityId:    profile.ID,
					Description: ActivityLogFailedLoginDescription,
				})

				if err != nil {
					log.Printf("Error logging failed login action: %v", err)
					return err
				}

				return nil
			})

			// lock the account after 3 consecutive failed attempts
			count := h.Activities.CountConsecutiveFailedLoginAttempts(profile.ID, ActivityLogFailedLoginDescription, ActivityLogLoginDescription)
			if count >= 2 {
				h.Helper.BackgroundTask(r, func() error {
					err := h.Profiles.DeactivateProfile(profile.ID)

					if err != nil {
						log.Printf("Error locking account after failed logins: %v", err)
						return err
					}

					return nil
				})

				h.Helper.BackgroundTask(r, func() error {
					_, err := h.Activities.CreateActivityLog(&database.ActivityLog{
						UserID:      profile.ID,
						Entity:      database.ActivityLogProfileEntity,
						EntityId:    profile.ID,
						Description: ActivityLogLockedDescription,
					})

					if err != nil {
						log.Printf("Error logging account lock action: %v", err)
						return err
					}

					return nil
				})

				h.ErrHandler.FailedValidation(w, r, []string{"Account has been locked. Please contact support"})
				return
			}
		}
	}

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	if !profile.Active {
		message := "Account has been locked. Please contact support"
		response.JSONErrorResponse(w, nil, message, http.StatusForbidden, nil)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.Activities.CreateActivityLog(&database.ActivityLog{
			UserID:      profile.ID,
			Entity:      database.ActivityLogProfileEntity,
			EntityId:    profile.ID,
			Description: ActivityLogLoginDescription,
		})

		if err != nil {
			log.Printf("Error logging successful login action: %v", err)
			return err
		}

		return nil
	})

	token, expiry, err := h.issueToken(profile.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]string{
		"auth_token":   token,
		"token_expiry": expiry.Format(time.RFC3339),
		"role":         profile.Role,
	}
	message := "Login successful"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *AuthHandler) issueToken(userID string) (string, time.Time, error) {
	var claims jwt.Claims
	claims.Subject = userID

	expiry := time.Now().Add(24 * time.Hour)
	claims.Issued = jwt.NewNumericTime(time.Now())
	claims.NotBefore = jwt.NewNumericTime(time.Now())
	claims.Expires = jwt.NewNumericTime(expiry)

	claims.Issuer = h.Config.BaseURL
	claims.Audiences = []string{h.Config.BaseURL}

	jwtBytes, err := claims.HMACSign(jwt.HS256, []byte(h.Config.Jwt.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return string(jwtBytes), expiry, nil
}

// HandleRecoverPassword emails a single-use reset link. The response is the
// same whether or not the email matches an account, so the endpoint cannot
// be used to probe for registered addresses.
func (h *AuthHandler) HandleRecoverPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	profile, found, err := h.Profiles.GetProfileByEmail(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if found {
		token, err := generateToken()
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		err = h.Cache.Set(passwordResetKeyPrefix+token, profile.ID, passwordResetTokenTTL)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		h.Helper.BackgroundTask(r, func() error {
			emailData := h.Helper.NewEmailData()
			emailData["ResetURL"] = h.Config.DashboardURL + "/reset-password?token=" + token

			err := h.Mailer.Send(profile.Email, emailData, "password-reset.tmpl")
			if err != nil {
				log.Printf("Error sending password reset email: %v", err)
				return err
			}

			return nil
		})
	}

	message := "If an account exists for this address, a reset email has been sent"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token     string              `json:"token"`
		Password  string              `json:"password"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Token), "Token is required")

	_, errs := gopass.Validate(input.Password)
	if errs != nil {
		h.ErrHandler.FailedValidation(w, r, errs)
		return
	}

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	userID, err := h.Cache.GetDel(passwordResetKeyPrefix + input.Token)
	if err != nil || userID == "" {
		h.ErrHandler.BadRequest(w, r, errors.New("invalid or expired token"))
		return
	}

	hashedPassword, err := gopass.Hash(input.Password)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = h.Profiles.UpdateProfilePassword(userID, hashedPassword)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Password updated successfully"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleAuthCallback exchanges a one-time token (from a welcome or recovery
// email) for a session cookie and redirects to the dashboard.
func (h *AuthHandler) HandleAuthCallback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.ErrHandler.BadRequest(w, r, errors.New("missing token"))
		return
	}

	userID, err := h.Cache.GetDel(sessionExchangeKeyPrefix + token)
	if err != nil || userID == "" {
		h.ErrHandler.BadRequest(w, r, errors.New("invalid or expired token"))
		return
	}

	authToken, expiry, err := h.issueToken(userID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    authToken,
		Path:     "/",
		Expires:  expiry,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.Config.DashboardURL, http.StatusSeeOther)
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	return hex.EncodeToString(bytes), nil
}
