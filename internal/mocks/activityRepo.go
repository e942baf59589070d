package mocks

import (
	"github.com/cogestio/espaceclient/internal/database"
)

// MockActivityRepo stubs the activity log. Handlers write activity entries
// from background goroutines, so the stub stays assertion-free to keep tests
// deterministic.
type MockActivityRepo struct {
	FailedLoginCount int
}

func (m *MockActivityRepo) CreateActivityLog(log *database.ActivityLog) (*database.ActivityLog, error) {
	return log, nil
}

func (m *MockActivityRepo) CountConsecutiveFailedLoginAttempts(userID, failedDescription, loginDescription string) int {
	return m.FailedLoginCount
}
