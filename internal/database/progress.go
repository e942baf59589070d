package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type BusinessProgress struct {
	ClientID string       `db:"client_id"`
	Step     string       `db:"step"`
	Status   string       `db:"status"`
	Date     sql.NullTime `db:"date"`
}

const (
	ProgressStatusUpcoming   = "à venir"
	ProgressStatusInProgress = "en cours"
	ProgressStatusValidated  = "validé"
)

var ProgressStatuses = []string{
	ProgressStatusUpcoming,
	ProgressStatusInProgress,
	ProgressStatusValidated,
}

// ProgressSteps is the fixed company-setup timeline shown on every client
// dashboard, in display order.
var ProgressSteps = []string{
	"Création de l'entreprise",
	"Dépôt des documents",
	"Enregistrement au registre du commerce",
	"Ouverture du compte bancaire",
	"Obtention du numéro de TVA",
}

type ProgressRepository interface {
	SeedProgressSteps(clientID string, tx *sql.Tx) error
	UpsertProgressStep(progress *BusinessProgress) error
	GetClientProgress(clientID string) ([]BusinessProgress, error)
}

// SeedProgressSteps creates the five-step timeline for a new client, every
// step starting as upcoming.
func (db *DB) SeedProgressSteps(clientID string, tx *sql.Tx) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		INSERT INTO business_progress (client_id, step, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (client_id, step) DO NOTHING`

	for _, step := range ProgressSteps {
		if tx != nil {
			if _, err := tx.ExecContext(ctx, query, clientID, step, ProgressStatusUpcoming); err != nil {
				return err
			}
		} else {
			if _, err := db.ExecContext(ctx, query, clientID, step, ProgressStatusUpcoming); err != nil {
				return err
			}
		}
	}

	return nil
}

// UpsertProgressStep writes the status for one (client, step) pair. The
// primary key on (client_id, step) guarantees a single row per pair.
func (db *DB) UpsertProgressStep(progress *BusinessProgress) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		INSERT INTO business_progress (client_id, step, status, date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (client_id, step) DO UPDATE SET
			status = EXCLUDED.status,
			date = EXCLUDED.date`

	date := progress.Date
	if !date.Valid {
		date = sql.NullTime{Time: time.Now(), Valid: true}
	}

	_, err := db.ExecContext(ctx, query, progress.ClientID, progress.Step, progress.Status, date)
	return err
}

func (db *DB) GetClientProgress(clientID string) ([]BusinessProgress, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		SELECT * FROM business_progress
		WHERE client_id = $1
		ORDER BY array_position($2::text[], step)`

	var progress []BusinessProgress
	err := db.SelectContext(ctx, &progress, query, clientID, pq.Array(ProgressSteps))
	if err != nil {
		return nil, err
	}

	return progress, nil
}
