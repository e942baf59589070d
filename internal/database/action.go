package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type UpcomingAction struct {
	ID        string    `db:"id"`
	ClientID  string    `db:"client_id"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
}

type ActionRepository interface {
	InsertUpcomingAction(action *UpcomingAction) (string, error)
	GetUpcomingAction(id string) (*UpcomingAction, bool, error)
	GetClientUpcomingActions(clientID string) ([]UpcomingAction, error)
	DeleteUpcomingAction(id string) error
}

func (db *DB) InsertUpcomingAction(action *UpcomingAction) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO upcoming_actions (client_id, title)
		VALUES ($1, $2)
		RETURNING id`

	err := db.GetContext(ctx, &id, query, action.ClientID, action.Title)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (db *DB) GetUpcomingAction(id string) (*UpcomingAction, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var action UpcomingAction

	query := `SELECT * FROM upcoming_actions WHERE id = $1`

	err := db.GetContext(ctx, &action, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &action, true, err
}

func (db *DB) GetClientUpcomingActions(clientID string) ([]UpcomingAction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `SELECT * FROM upcoming_actions WHERE client_id = $1 ORDER BY created_at DESC`

	var actions []UpcomingAction
	err := db.SelectContext(ctx, &actions, query, clientID)
	if err != nil {
		return nil, err
	}

	return actions, nil
}

func (db *DB) DeleteUpcomingAction(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `DELETE FROM upcoming_actions WHERE id = $1`

	_, err := db.ExecContext(ctx, query, id)
	return err
}
