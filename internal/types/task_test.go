package types_test

import (
	"testing"

	"github.com/kodelink/task-mcp/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestStatusIsValid(t *testing.T) {
	tests := []struct {
		status types.Status
		valid  bool
	}{
		{types.StatusTodo, true},
		{types.StatusInProgress, true},
		{types.StatusBlocked, true},
		{types.StatusDone, true},
		{types.StatusCancelled, true},
		{types.StatusToBeDeleted, true},
		{types.Status("invalid"), false},
		{types.Status(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.IsValid())
		})
	}
}

func TestPriorityRank(t *testing.T) {
	assert.Greater(t, types.PriorityHigh.Rank(), types.PriorityMedium.Rank())
	assert.Greater(t, types.PriorityMedium.Rank(), types.PriorityLow.Rank())
}

func TestEntityTypeIsValid(t *testing.T) {
	assert.True(t, types.EntityTypeFile.IsValid())
	assert.True(t, types.EntityTypeOther.IsValid())
	assert.False(t, types.EntityType("vendor").IsValid())
}
