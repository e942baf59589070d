package database

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResetForSubmissionClearsPreviousReview(t *testing.T) {
	now := time.Now()

	profile := &KYCProfile{
		UserID:     "client-1",
		Address:    "12 rue de la République",
		Status:     KYCStatusRejected,
		Comment:    sql.NullString{String: "Document illisible", Valid: true},
		ReviewedAt: sql.NullTime{Time: now.Add(-24 * time.Hour), Valid: true},
	}

	profile.resetForSubmission(now)

	require.Equal(t, KYCStatusSubmitted, profile.Status)
	require.False(t, profile.Comment.Valid, "A resubmission must clear the previous rejection comment")
	require.False(t, profile.ReviewedAt.Valid, "A resubmission must clear the previous review timestamp")
	require.True(t, profile.SubmittedAt.Valid)
	require.Equal(t, now, profile.SubmittedAt.Time)
}

func TestResetForSubmissionFromPendingState(t *testing.T) {
	now := time.Now()

	profile := &KYCProfile{
		UserID: "client-1",
		Status: KYCStatusPending,
	}

	profile.resetForSubmission(now)

	require.Equal(t, KYCStatusSubmitted, profile.Status)
	require.False(t, profile.Comment.Valid)
	require.True(t, profile.SubmittedAt.Valid)
}
