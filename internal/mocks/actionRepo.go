package mocks

import (
	"github.com/cogestio/espaceclient/internal/database"
	"github.com/stretchr/testify/mock"
)

type MockActionRepo struct {
	mock.Mock
}

func (m *MockActionRepo) InsertUpcomingAction(action *database.UpcomingAction) (string, error) {
	args := m.Called(action)
	return args.String(0), args.Error(1)
}

func (m *MockActionRepo) GetUpcomingAction(id string) (*database.UpcomingAction, bool, error) {
	args := m.Called(id)
	action, _ := args.Get(0).(*database.UpcomingAction)
	return action, args.Bool(1), args.Error(2)
}

func (m *MockActionRepo) GetClientUpcomingActions(clientID string) ([]database.UpcomingAction, error) {
	args := m.Called(clientID)
	actions, _ := args.Get(0).([]database.UpcomingAction)
	return actions, args.Error(1)
}

func (m *MockActionRepo) DeleteUpcomingAction(id string) error {
	args := m.Called(id)
	return args.Error(0)
}
