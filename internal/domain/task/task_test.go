package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseStatus("archived")
	assert.Error(t, err)
	_, err = ParseStatus("")
	assert.Error(t, err)
}

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name        string
		from, to    Status
		forwardOnly bool
		wantErr     bool
	}{
		{"free backward", StatusDone, StatusPending, false, false},
		{"free same", StatusInProgress, StatusInProgress, false, false},
		{"forward allowed", StatusPending, StatusDone, true, false},
		{"forward-only same", StatusInProgress, StatusInProgress, true, false},
		{"forward-only backward", StatusDone, StatusInProgress, true, true},
		{"unknown target", StatusPending, Status("archived"), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to, tt.forwardOnly)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestTask_AssignerName(t *testing.T) {
	by := int64(7)
	assert.Equal(t, "boss", Task{AssignedBy: &by, AssignedByUsername: "boss"}.AssignerName())
	assert.Equal(t, UnknownAssigner, Task{AssignedByUsername: "ghost"}.AssignerName())
}

func TestTask_Display(t *testing.T) {
	due := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	tk := Task{
		CreatedAt: time.Date(2024, 3, 1, 9, 5, 59, 0, time.UTC),
		DueDate:   &due,
	}
	assert.Equal(t, "2024-03-01 09:05", tk.CreatedAtDisplay())
	assert.Equal(t, "2024-03-09", tk.DueDateDisplay())
	assert.Equal(t, "", Task{}.DueDateDisplay())
	assert.False(t, tk.HasAttachment())
}
