package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cogestio/espaceclient/internal/context"
	"github.com/cogestio/espaceclient/internal/database"
	"github.com/cogestio/espaceclient/internal/errHandler"
	"github.com/cogestio/espaceclient/internal/file"
	"github.com/cogestio/espaceclient/internal/response"
	"github.com/cogestio/espaceclient/internal/validator"
)

const (
	DocumentTypePassport = "passport"
	DocumentTypeIdCard   = "idcard"
)

type DocumentHandler struct {
	Uploader   file.Uploader
	Profiles   database.ProfileRepository
	KYC        database.KYCRepository
	ErrHandler *errHandler.ErrorHandler
}

func NewDocumentHandler(handler *DocumentHandler) *DocumentHandler {
	return &DocumentHandler{
		Uploader:   handler.Uploader,
		Profiles:   handler.Profiles,
		KYC:        handler.KYC,
		ErrHandler: handler.ErrHandler,
	}
}

// HandleUploadDocument stores an identity document in the caller's storage
// folder and returns the storage path for the subsequent form submission.
// The transfer is a single synchronous upload.
func (h *DocumentHandler) HandleUploadDocument(w http.ResponseWriter, r *http.Request) {
	authUser := context.ContextGetAuthenticatedUser(r)

	err := r.ParseMultipartForm(10 << 20) // 10 MB
	if err != nil {
		message := errors.New("invalid request data")
		h.ErrHandler.BadRequest(w, r, message)
		return
	}

	documentType := r.FormValue("type")
	if !validator.In(documentType, DocumentTypePassport, DocumentTypeIdCard) {
		h.ErrHandler.FailedValidation(w, r, []string{"Type must be passport or idcard"})
		return
	}

	upload, fileHeader, err := r.FormFile("file")
	if err != nil {
		message := errors.New("error retrieving the file")
		h.ErrHandler.BadRequest(w, r, message)
		return
	}
	defer upload.Close()

	fileExtension := filepath.Ext(fileHeader.Filename)

	// Save the file temporarily to the server
	tempFile, err := os.CreateTemp("", fmt.Sprintf("upload-*%s", fileExtension))
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	defer tempFile.Close()
	defer os.Remove(tempFile.Name())

	_, err = tempFile.ReadFrom(upload)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	folder := file.UserFolder(authUser.ID)
	if authUser.Role == database.RoleClient && authUser.AssignedTo.Valid {
		folder = file.ClientFolder(authUser.ID)
	}

	path, err := h.Uploader.UploadFile(tempFile.Name(), folder)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]string{
		"path": path,
		"type": documentType,
	}
	message := "File uploaded successfully"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleDocumentURL returns a signed, time-bounded delivery URL for a stored
// identity document.
func (h *DocumentHandler) HandleDocumentURL(w http.ResponseWriter, r *http.Request) {
	authUser := context.ContextGetAuthenticatedUser(r)
	userID := r.PathValue("userId")
	documentType := r.PathValue("type")

	if !validator.In(documentType, DocumentTypePassport, DocumentTypeIdCard) {
		h.ErrHandler.NotFound(w, r)
		return
	}

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
		h.ErrHandler.NotFound(w, r)
		return
	}

	path := kycProfile.PassportPath
	if documentType == DocumentTypeIdCard {
		path = kycProfile.IdCardPath
	}

	if path == "" {
		h.ErrHandler.NotFound(w, r)
		return
	}

	signedURL, err := h.Uploader.SignedURL(path)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]string{"url": signedURL}
	message := "Data retrieved successfully"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
