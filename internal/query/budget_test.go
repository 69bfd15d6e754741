package query_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodelink/task-mcp/internal/errs"
	"github.com/kodelink/task-mcp/internal/query"
)

func TestBudget_Check_WithinLimit(t *testing.T) {
	b := query.Budget{MaxTokens: 15000, WarnTokens: 12000}
	err := b.Check(context.Background(), map[string]string{"hello": "world"})
	require.NoError(t, err)
}

func TestBudget_Check_ExceedsCeiling(t *testing.T) {
	b := query.Budget{MaxTokens: 100, WarnTokens: 50}
	huge := strings.Repeat("x", 10000)
	err := b.Check(context.Background(), map[string]string{"payload": huge})
	require.Error(t, err)
	assert.Equal(t, errs.ResponseSizeExceeded, errs.KindOf(err))
}

func TestEstimateTokens_Monotonic(t *testing.T) {
	small := []byte("short")
	large := []byte(strings.Repeat("a", 1000))
	assert.Less(t, query.EstimateTokens(small), query.EstimateTokens(large))
}
