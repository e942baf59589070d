package mocks

import (
	"github.com/cogestio/espaceclient/internal/database"
	"github.com/stretchr/testify/mock"
)

type MockKYCRepo struct {
	mock.Mock
}

func (m *MockKYCRepo) UpsertKYCProfile(profile *database.KYCProfile) error {
	args := m.Called(profile)
	return args.Error(0)
}

func (m *MockKYCRepo) GetKYCProfile(userID string) (*database.KYCProfile, bool, error) {
	args := m.Called(userID)
	profile, _ := args.Get(0).(*database.KYCProfile)
	return profile, args.Bool(1), args.Error(2)
}

func (m *MockKYCRepo) ReviewKYCProfile(userID, status string, comment *string) error {
	args := m.Called(userID, status, comment)
	return args.Error(0)
}
