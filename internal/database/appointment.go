package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Appointment struct {
	ID         string    `db:"id"`
	ClientID   string    `db:"client_id"`
	Type       string    `db:"type"`
	Date       time.Time `db:"date"`
	Status     string    `db:"status"`
	Location   string    `db:"location"`
	ActionText string    `db:"action_text"`
	ActionURL  string    `db:"action_url"`
	CreatedAt  time.Time `db:"created_at"`
}

const (
	AppointmentStatusConfirmed = "confirmé"
	AppointmentStatusToConfirm = "à confirmer"
	AppointmentStatusUpcoming  = "à venir"
)

var AppointmentStatuses = []string{
	AppointmentStatusConfirmed,
	AppointmentStatusToConfirm,
	AppointmentStatusUpcoming,
}

type AppointmentRepository interface {
	InsertAppointment(appointment *Appointment) (string, error)
	GetAppointment(id string) (*Appointment, bool, error)
	GetClientAppointments(clientID string) ([]Appointment, error)
	UpdateAppointment(appointment *Appointment) error
	DeleteAppointment(id string) error
}

func (db *DB) InsertAppointment(appointment *Appointment) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO appointments (client_id, type, date, status, location, action_text, action_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := db.GetContext(ctx, &id, query,
		appointment.ClientID,
		appointment.Type,
		appointment.Date,
		appointment.Status,
		appointment.Location,
		appointment.ActionText,
		appointment.ActionURL,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (db *DB) GetAppointment(id string) (*Appointment, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var appointment Appointment

	query := `SELECT * FROM appointments WHERE id = $1`

	err := db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &appointment, true, err
}

func (db *DB) GetClientAppointments(clientID string) ([]Appointment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `SELECT * FROM appointments WHERE client_id = $1 ORDER BY date ASC`

	var appointments []Appointment
	err := db.SelectContext(ctx, &appointments, query, clientID)
	if err != nil {
		return nil, err
	}

	return appointments, nil
}

func (db *DB) UpdateAppointment(appointment *Appointment) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE appointments
		SET type = $1, date = $2, status = $3, location = $4, action_text = $5, action_url = $6
		WHERE id = $7`

	_, err := db.ExecContext(ctx, query,
		appointment.Type,
		appointment.Date,
		appointment.Status,
		appointment.Location,
		appointment.ActionText,
		appointment.ActionURL,
		appointment.ID,
	)
	return err
}

func (db *DB) DeleteAppointment(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `DELETE FROM appointments WHERE id = $1`

	_, err := db.ExecContext(ctx, query, id)
	return err
}
