package mocks

import (
	"database/sql"

	"github.com/cogestio/espaceclient/internal/database"
	"github.com/stretchr/testify/mock"
)

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) InsertProfile(profile *database.Profile, tx *sql.Tx) (string, error) {
	return "", nil
}

func (m *MockProfileRepo) CreateProfileWithProgress(profile *database.Profile) (string, error) {
	args := m.Called(profile)
	return args.String(0), args.Error(1)
}

func (m *MockProfileRepo) GetProfile(id string) (*database.Profile, bool, error) {
	args := m.Called(id)
	profile, _ := args.Get(0).(*database.Profile)
	return profile, args.Bool(1), args.Error(2)
}

func (m *MockProfileRepo) GetProfileByEmail(email string) (*database.Profile, bool, error) {
	args := m.Called(email)
	profile, _ := args.Get(0).(*database.Profile)
	return profile, args.Bool(1), args.Error(2)
}

func (m *MockProfileRepo) GetProfiles(filter *database.ProfileFilter) ([]database.Profile, error) {
	args := m.Called(filter)
	profiles, _ := args.Get(0).([]database.Profile)
	return profiles, args.Error(1)
}

func (m *MockProfileRepo) GetClientsByManager(managerID string) ([]database.Profile, error) {
	args := m.Called(managerID)
	profiles, _ := args.Get(0).([]database.Profile)
	return profiles, args.Error(1)
}

func (m *MockProfileRepo) UpdateProfile(profile *database.Profile) error {
	args := m.Called(profile)
	return args.Error(0)
}

func (m *MockProfileRepo) UpdateProfilePassword(id, hashedPassword string) error {
	return nil
}

func (m *MockProfileRepo) DeactivateProfile(id string) error {
	return nil
}

func (m *MockProfileRepo) CheckIfEmailExist(email string) (bool, error) {
	args := m.Called(email)
	return args.Bool(0), args.Error(1)
}

func (m *MockProfileRepo) DeleteProfileCascade(id string) error {
	args := m.Called(id)
	return args.Error(0)
}
