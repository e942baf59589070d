package app

import (
	"net/http"

	"github.com/cogestio/espaceclient/internal/database"
	"github.com/cogestio/espaceclient/internal/handler"
	"github.com/cogestio/espaceclient/internal/middleware"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	mid := middleware.New(app.errorHandler, app.Logger, app.DB, &app.Config)

	healthHandler := handler.NewHealthCheckHandler(app.errorHandler)

	authHandler := handler.NewAuthHandler(&handler.AuthHandler{
		Profiles:   app.DB,
		Activities: app.DB,
		Cache:      app.Cache,
		Helper:     app.helper,
		Mailer:     app.Mailer,
		Config:     &app.Config,
		ErrHandler: app.errorHandler,
	})

	userHandler := handler.NewUserHandler(&handler.UserHandler{
		Profiles:   app.DB,
		Activities: app.DB,
		Cache:      app.Cache,
		Uploader:   app.FileUploader,
		Helper:     app.helper,
		Mailer:     app.Mailer,
		Config:     &app.Config,
		ErrHandler: app.errorHandler,
	})

	kycHandler := handler.NewKYCHandler(&handler.KYCHandler{
		KYC:        app.DB,
		Profiles:   app.DB,
		Activities: app.DB,
		Stream:     app.Kafka,
		Helper:     app.helper,
		Config:     &app.Config,
		ErrHandler: app.errorHandler,
	})

	documentHandler := handler.NewDocumentHandler(&handler.DocumentHandler{
		Uploader:   app.FileUploader,
		Profiles:   app.DB,
		KYC:        app.DB,
		ErrHandler: app.errorHandler,
	})

	appointmentHandler := handler.NewAppointmentHandler(&handler.AppointmentHandler{
		Appointments: app.DB,
		Profiles:     app.DB,
		ErrHandler:   app.errorHandler,
	})

	progressHandler := handler.NewProgressHandler(&handler.ProgressHandler{
		Progress:   app.DB,
		Profiles:   app.DB,
		ErrHandler: app.errorHandler,
	})

	actionHandler := handler.NewActionHandler(&handler.ActionHandler{
		Actions:    app.DB,
		Profiles:   app.DB,
		ErrHandler: app.errorHandler,
	})

	mux.HandleFunc("GET /status", healthHandler.HandleHealthCheck)

	mux.HandleFunc("POST /api/auth/login", authHandler.HandleAuthLogin)
	mux.HandleFunc("POST /api/recover-password", authHandler.HandleRecoverPassword)
	mux.HandleFunc("POST /api/auth/reset-password", authHandler.HandleResetPassword)
	mux.HandleFunc("GET /api/auth/callback", authHandler.HandleAuthCallback)

	admin := func(h http.HandlerFunc) http.Handler {
		return mid.RequireRole(h, database.RoleAdmin)
	}
	staff := func(h http.HandlerFunc) http.Handler {
		return mid.RequireRole(h, database.RoleAdmin, database.RoleAccountManager)
	}
	authenticated := func(h http.HandlerFunc) http.Handler {
		return mid.RequireAuthenticatedUser(h)
	}

	mux.Handle("POST /api/users/create", admin(userHandler.HandleUsersCreate))
	mux.Handle("POST /api/admin/delete-user", admin(userHandler.HandleUserDelete))
	mux.Handle("GET /api/users", admin(userHandler.HandleUsersList))
	mux.Handle("GET /api/users/{id}", staff(userHandler.HandleUserGet))
	mux.Handle("PATCH /api/users/{id}", admin(userHandler.HandleUserUpdate))
	mux.Handle("GET /api/managers/{id}/clients", staff(userHandler.HandleManagerClients))

	mux.Handle("POST /api/users/document-submission", mid.RequireRole(http.HandlerFunc(kycHandler.HandleDocumentSubmission), database.RoleClient))
	mux.Handle("GET /api/kyc/{userId}", authenticated(kycHandler.HandleKYCGet))
	mux.Handle("POST /api/kyc/{userId}/approve", staff(kycHandler.HandleKYCApprove))
	mux.Handle("POST /api/kyc/{userId}/reject", staff(kycHandler.HandleKYCReject))

	mux.Handle("POST /api/documents/upload", authenticated(documentHandler.HandleUploadDocument))
	mux.Handle("GET /api/documents/{userId}/{type}", authenticated(documentHandler.HandleDocumentURL))

	mux.Handle("POST /api/appointments", staff(appointmentHandler.HandleAppointmentCreate))
	mux.Handle("GET /api/clients/{id}/appointments", authenticated(appointmentHandler.HandleClientAppointments))
	mux.Handle("PATCH /api/appointments/{id}", staff(appointmentHandler.HandleAppointmentUpdate))
	mux.Handle("DELETE /api/appointments/{id}", staff(appointmentHandler.HandleAppointmentDelete))

	mux.Handle("GET /api/clients/{id}/progress", authenticated(progressHandler.HandleClientProgress))
	mux.Handle("PUT /api/clients/{id}/progress/{step}", staff(progressHandler.HandleProgressUpsert))

	mux.Handle("POST /api/actions", staff(actionHandler.HandleActionCreate))
	mux.Handle("GET /api/clients/{id}/actions", authenticated(actionHandler.HandleClientActions))
	mux.Handle("DELETE /api/actions/{id}", staff(actionHandler.HandleActionDelete))

	return mid.LogAccess(mid.RecoverPanic(mid.Authenticate(mux)))
}
