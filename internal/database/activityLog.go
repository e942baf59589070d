package database

import (
	"context"
	"time"
)

type ActivityLog struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	Entity      string    `db:"entity"`
	EntityId    string    `db:"entity_id"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

const (
	ActivityLogProfileEntity     = "profile"
	ActivityLogKYCEntity         = "kyc_profile"
	ActivityLogAppointmentEntity = "appointment"
	ActivityLogProgressEntity    = "business_progress"
)

type ActivityRepository interface {
	CreateActivityLog(log *ActivityLog) (*ActivityLog, error)
	CountConsecutiveFailedLoginAttempts(userID, failedDescription, loginDescription string) int
}

func (db *DB) CreateActivityLog(log *ActivityLog) (*ActivityLog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		INSERT INTO activity_logs (user_id, entity, entity_id, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := db.QueryRowContext(ctx, query,
		log.UserID,
		log.Entity,
		log.EntityId,
		log.Description,
	).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return nil, err
	}

	return log, nil
}

// CountConsecutiveFailedLoginAttempts counts the user's most recent failed
// logins, stopping at the last successful one. Only login entries are
// considered, so unrelated activity never resets the streak.
func (db *DB) CountConsecutiveFailedLoginAttempts(userID, failedDescription, loginDescription string) int {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var descriptions []string

	query := `
		SELECT description
		FROM activity_logs
		WHERE user_id = $1 AND description IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 3`

	err := db.SelectContext(ctx, &descriptions, query, userID, failedDescription, loginDescription)
	if err != nil {
		return 0
	}

	return consecutiveFailures(descriptions, failedDescription)
}

// consecutiveFailures counts leading failed-login entries in a
// newest-first description list.
func consecutiveFailures(descriptions []string, failedDescription string) int {
	count := 0
	for _, description := range descriptions {
		if description != failedDescription {
			break
		}
		count++
	}

	return count
}
