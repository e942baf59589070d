package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Profile struct {
	ID             string         `db:"id"`
	FirstName      string         `db:"first_name"`
	LastName       string         `db:"last_name"`
	Email          string         `db:"email"`
	PhoneNumber    string         `db:"phone_number"`
	Role           string         `db:"role"`
	Active         bool           `db:"active"`
	AssignedTo     sql.NullString `db:"assigned_to"`
	CalendlyLink   string         `db:"calendly_link"`
	CreatedAt      time.Time      `db:"created_at"`
	DeletedAt      sql.NullTime   `db:"deleted_at"`
	HashedPassword string         `db:"hashed_password"`
}

const (
	// RoleAdmin has full access to every account and workflow.
	RoleAdmin = "admin"

	// RoleAccountManager ("chargé de compte") manages the portfolio of clients
	// assigned via profiles.assigned_to.
	RoleAccountManager = "charge_de_compte"

	// RoleClient is an end customer of the consultancy.
	RoleClient = "client"
)

type ProfileFilter struct {
	Role   string
	Search string
	Limit  int
	Offset int
}

type ProfileRepository interface {
	InsertProfile(profile *Profile, tx *sql.Tx) (string, error)
	CreateProfileWithProgress(profile *Profile) (string, error)
	GetProfile(id string) (*Profile, bool, error)
	GetProfileByEmail(email string) (*Profile, bool, error)
	GetProfiles(filter *ProfileFilter) ([]Profile, error)
	GetClientsByManager(managerID string) ([]Profile, error)
	UpdateProfile(profile *Profile) error
	UpdateProfilePassword(id, hashedPassword string) error
	DeactivateProfile(id string) error
	CheckIfEmailExist(email string) (bool, error)
	DeleteProfileCascade(id string) error
}

func (db *DB) InsertProfile(profile *Profile, tx *sql.Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO profiles (first_name, last_name, email, phone_number, role, hashed_password, assigned_to, calendly_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	if tx != nil {
		err := tx.QueryRowContext(ctx, query,
			profile.FirstName,
			profile.LastName,
			profile.Email,
			profile.PhoneNumber,
			profile.Role,
			profile.HashedPassword,
			profile.AssignedTo,
			profile.CalendlyLink,
		).Scan(&id)
		if err != nil {
			return "", err
		}
	} else {
		err := db.GetContext(ctx, &id, query,
			profile.FirstName,
			profile.LastName,
			profile.Email,
			profile.PhoneNumber,
			profile.Role,
			profile.HashedPassword,
			profile.AssignedTo,
			profile.CalendlyLink,
		)
		if err != nil {
			return "", err
		}
	}

	return id, nil
}

// CreateProfileWithProgress inserts the profile and, for clients, seeds one
// business_progress row per setup step in the same transaction so a new
// client never shows an empty timeline.
func (db *DB) CreateProfileWithProgress(profile *Profile) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	id, err := db.InsertProfile(profile, tx)
	if err != nil {
		return "", err
	}

	if profile.Role == RoleClient {
		if err = db.SeedProgressSteps(id, tx); err != nil {
			return "", err
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}

	return id, nil
}

func (db *DB) GetProfile(id string) (*Profile, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var profile Profile

	query := `SELECT * FROM profiles WHERE id = $1 AND deleted_at IS NULL`

	err := db.GetContext(ctx, &profile, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &profile, true, err
}

func (db *DB) GetProfileByEmail(email string) (*Profile, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var profile Profile

	query := `SELECT * FROM profiles WHERE email = $1 AND deleted_at IS NULL`

	err := db.GetContext(ctx, &profile, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &profile, true, err
}

func (db *DB) GetProfiles(filter *ProfileFilter) ([]Profile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		SELECT * FROM profiles
		WHERE deleted_at IS NULL
		AND ($1 = '' OR role = $1)
		AND ($2 = '' OR first_name ILIKE '%' || $2 || '%' OR last_name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	var profiles []Profile
	err := db.SelectContext(ctx, &profiles, query, filter.Role, filter.Search, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}

	return profiles, nil
}

func (db *DB) GetClientsByManager(managerID string) ([]Profile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		SELECT * FROM profiles
		WHERE assigned_to = $1 AND role = $2 AND deleted_at IS NULL
		ORDER BY created_at DESC`

	var profiles []Profile
	err := db.SelectContext(ctx, &profiles, query, managerID, RoleClient)
	if err != nil {
		return nil, err
	}

	return profiles, nil
}

func (db *DB) UpdateProfile(profile *Profile) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE profiles
		SET first_name = $1, last_name = $2, phone_number = $3, calendly_link = $4, assigned_to = $5, active = $6
		WHERE id = $7`

	_, err := db.ExecContext(ctx, query,
		profile.FirstName,
		profile.LastName,
		profile.PhoneNumber,
		profile.CalendlyLink,
		profile.AssignedTo,
		profile.Active,
		profile.ID,
	)
	return err
}

func (db *DB) UpdateProfilePassword(id, hashedPassword string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE profiles SET hashed_password = $1 WHERE id = $2`

	_, err := db.ExecContext(ctx, query, hashedPassword, id)
	return err
}

func (db *DB) DeactivateProfile(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE profiles SET active = FALSE WHERE id = $1`

	_, err := db.ExecContext(ctx, query, id)
	return err
}

func (db *DB) CheckIfEmailExist(email string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var exists bool

	query := `SELECT EXISTS(SELECT 1 FROM profiles WHERE email = $1 AND deleted_at IS NULL)`

	err := db.GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// DeleteProfileCascade removes every row that references the user, then the
// profile itself, in one transaction. Manager references held by other
// clients are nulled rather than deleted. Storage folders are the caller's
// responsibility since object storage cannot join the transaction.
func (db *DB) DeleteProfileCascade(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	statements := []string{
		`UPDATE profiles SET assigned_to = NULL WHERE assigned_to = $1`,
		`DELETE FROM appointments WHERE client_id = $1`,
		`DELETE FROM business_progress WHERE client_id = $1`,
		`DELETE FROM upcoming_actions WHERE client_id = $1`,
		`DELETE FROM users_profiles WHERE user_id = $1`,
		`DELETE FROM activity_logs WHERE user_id = $1`,
		`DELETE FROM profiles WHERE id = $1`,
	}

	for _, stmt := range statements {
		if _, err = tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}
