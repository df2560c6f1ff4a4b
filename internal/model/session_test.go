package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefreshStatus(t *testing.T) {
	tests := []struct {
		name   string
		status SessionStatus
		count  int
		cap    int
		want   SessionStatus
	}{
		{"open stays open", SessionStatusOpen, 1, 3, SessionStatusOpen},
		{"open flips to full at capacity", SessionStatusOpen, 3, 3, SessionStatusFull},
		{"full reverts to open below capacity", SessionStatusFull, 2, 3, SessionStatusOpen},
		{"over capacity stays full", SessionStatusFull, 4, 3, SessionStatusFull},
		{"cancelled is terminal", SessionStatusCancelled, 0, 3, SessionStatusCancelled},
		{"completed is terminal", SessionStatusCompleted, 3, 3, SessionStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{Status: tt.status, CurrentCount: tt.count, Capacity: tt.cap}
			s.RefreshStatus()
			assert.Equal(t, tt.want, s.Status)
		})
	}
}
