package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type KYCProfile struct {
	UserID       string         `db:"user_id"`
	BirthDate    sql.NullTime   `db:"birth_date"`
	BirthPlace   string         `db:"birth_place"`
	Nationality  string         `db:"nationality"`
	Address      string         `db:"address"`
	City         string         `db:"city"`
	PostalCode   string         `db:"postal_code"`
	Country      string         `db:"country"`
	Profession   string         `db:"profession"`
	PassportPath string         `db:"passport_path"`
	IdCardPath   string         `db:"idcard_path"`
	Status       string         `db:"status"`
	Comment      sql.NullString `db:"comment"`
	SubmittedAt  sql.NullTime   `db:"submitted_at"`
	ReviewedAt   sql.NullTime   `db:"reviewed_at"`
}

const (
	// KYCStatusPending means the client has never submitted the form.
	KYCStatusPending = "pending"

	// KYCStatusSubmitted means the form is waiting for a reviewer.
	KYCStatusSubmitted = "submitted"

	// KYCStatusApproved means a reviewer accepted the documents.
	// An approved profile never carries a review comment.
	KYCStatusApproved = "approved"

	// KYCStatusRejected means a reviewer refused the documents.
	// A rejected profile always carries a non-null review comment.
	KYCStatusRejected = "rejected"
)

type KYCRepository interface {
	UpsertKYCProfile(profile *KYCProfile) error
	GetKYCProfile(userID string) (*KYCProfile, bool, error)
	ReviewKYCProfile(userID, status string, comment *string) error
}

// resetForSubmission returns the record to the submitted state. Any previous
// review decision and comment are cleared, so a stale rejection reason never
// sits next to a fresh submission.
func (profile *KYCProfile) resetForSubmission(now time.Time) {
	profile.Status = KYCStatusSubmitted
	profile.Comment = sql.NullString{}
	profile.ReviewedAt = sql.NullTime{}
	profile.SubmittedAt = sql.NullTime{Time: now, Valid: true}
}

// UpsertKYCProfile saves the client's identity form.
func (db *DB) UpsertKYCProfile(profile *KYCProfile) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	profile.resetForSubmission(time.Now())

	query := `
		INSERT INTO users_profiles (user_id, birth_date, birth_place, nationality, address, city, postal_code, country, profession, passport_path, idcard_path, status, comment, submitted_at, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (user_id) DO UPDATE SET
			birth_date = EXCLUDED.birth_date,
			birth_place = EXCLUDED.birth_place,
			nationality = EXCLUDED.nationality,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			postal_code = EXCLUDED.postal_code,
			country = EXCLUDED.country,
			profession = EXCLUDED.profession,
			passport_path = EXCLUDED.passport_path,
			idcard_path = EXCLUDED.idcard_path,
			status = EXCLUDED.status,
			comment = EXCLUDED.comment,
			submitted_at = EXCLUDED.submitted_at,
			reviewed_at = EXCLUDED.reviewed_at`

	_, err := db.ExecContext(ctx, query,
		profile.UserID,
		profile.BirthDate,
		profile.BirthPlace,
		profile.Nationality,
		profile.Address,
		profile.City,
		profile.PostalCode,
		profile.Country,
		profile.Profession,
		profile.PassportPath,
		profile.IdCardPath,
		profile.Status,
		profile.Comment,
		profile.SubmittedAt,
		profile.ReviewedAt,
	)
	return err
}

func (db *DB) GetKYCProfile(userID string) (*KYCProfile, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var profile KYCProfile

	query := `SELECT * FROM users_profiles WHERE user_id = $1`

	err := db.GetContext(ctx, &profile, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &profile, true, err
}

// ReviewKYCProfile records the reviewer's decision. Approval stores a null
// comment, rejection stores the reviewer's reason.
func (db *DB) ReviewKYCProfile(userID, status string, comment *string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE users_profiles
		SET status = $1, comment = $2, reviewed_at = $3
		WHERE user_id = $4`

	_, err := db.ExecContext(ctx, query, status, comment, time.Now(), userID)
	return err
}
