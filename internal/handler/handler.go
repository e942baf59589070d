package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cogestio/espaceclient/internal/database"
)

// Activity log descriptions
const (
	ActivityLogLoginDescription        = "User logged in"
	ActivityLogFailedLoginDescription  = "Failed login attempt"
	ActivityLogLockedDescription       = "Account locked after consecutive failed logins"
	ActivityLogProvisionedDescription  = "Account provisioned"
	ActivityLogDeletedDescription      = "Account deleted"
	ActivityLogKYCSubmittedDescription = "KYC documents submitted"
	ActivityLogKYCApprovedDescription  = "KYC documents approved"
	ActivityLogKYCRejectedDescription  = "KYC documents rejected"
)

// Kafka topics for the document-review workflow. The notifier worker
// consumes these and sends the matching transactional email.
const (
	DocumentSubmittedTopic = "kyc.submitted"
	DocumentApprovedTopic  = "kyc.approved"
	DocumentRejectedTopic  = "kyc.rejected"
)

// DocumentReviewEvent is the payload produced on the kyc.* topics.
type DocumentReviewEvent struct {
	UserID       string `json:"user_id"`
	DocumentType string `json:"document_type,omitempty"`
	Comment      string `json:"comment,omitempty"`
}

// canAccessClient decides whether the authenticated user may read or write a
// client's records: admins always, managers for their own portfolio, clients
// for themselves only.
func canAccessClient(authUser *database.Profile, clientID string, client *database.Profile) bool {
	switch authUser.Role {
	case database.RoleAdmin:
		return true
	case database.RoleAccountManager:
		return client != nil && client.AssignedTo.Valid && client.AssignedTo.String == authUser.ID
	case database.RoleClient:
		return authUser.ID == clientID
	}

	return false
}

type queryStringValues struct {
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	Role      string
	Limit     int
	Offset    int
}

func retrieveUrlQueryValues(r *http.Request) *queryStringValues {
	var queryValues = &queryStringValues{}

	// Parse start_date if provided
	startDateStr := r.URL.Query().Get("start_date")
	if startDateStr != "" {
		parsedStart, err := time.Parse("2006-01-02", startDateStr)
		if err == nil {
			queryValues.StartDate = &parsedStart
		}
	}

	// Parse end_date if provided
	endDateStr := r.URL.Query().Get("end_date")
	if endDateStr != "" {
		parsedEnd, err := time.Parse("2006-01-02", endDateStr)
		if err == nil {
			queryValues.EndDate = &parsedEnd
		}
	}

	// Parse pagination params
	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("page")

	// Default pagination values
	offset := 0
	limit := 10

	if limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}
	queryValues.Limit = limit

	if offsetStr != "" {
		if parsedOffset, err := strconv.Atoi(offsetStr); err == nil && parsedOffset >= 1 {
			offset = (parsedOffset - 1) * limit
		}
	}
	queryValues.Offset = offset

	queryValues.Search = r.URL.Query().Get("search")
	queryValues.Role = r.URL.Query().Get("role")

	return queryValues
}
