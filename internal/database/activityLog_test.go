package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsecutiveFailures(t *testing.T) {
	failed := "Failed login attempt"
	login := "User logged in"

	tests := []struct {
		name         string
		descriptions []string
		want         int
	}{
		{
			name:         "no entries",
			descriptions: nil,
			want:         0,
		},
		{
			name:         "three straight failures",
			descriptions: []string{failed, failed, failed},
			want:         3,
		},
		{
			name:         "successful login breaks the streak",
			descriptions: []string{failed, login, failed},
			want:         1,
		},
		{
			name:         "last attempt succeeded",
			descriptions: []string{login, failed, failed},
			want:         0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, consecutiveFailures(tt.descriptions, failed))
		})
	}
}
