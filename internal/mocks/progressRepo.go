package mocks

import (
	"database/sql"

	"github.com/cogestio/espaceclient/internal/database"
	"github.com/stretchr/testify/mock"
)

type MockProgressRepo struct {
	mock.Mock
}

func (m *MockProgressRepo) SeedProgressSteps(clientID string, tx *sql.Tx) error {
	return nil
}

func (m *MockProgressRepo) UpsertProgressStep(progress *database.BusinessProgress) error {
	args := m.Called(progress)
	return args.Error(0)
}

func (m *MockProgressRepo) GetClientProgress(clientID string) ([]database.BusinessProgress, error) {
	args := m.Called(clientID)
	progress, _ := args.Get(0).([]database.BusinessProgress)
	return progress, args.Error(1)
}
