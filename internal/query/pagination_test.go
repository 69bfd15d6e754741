package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodelink/task-mcp/internal/errs"
	"github.com/kodelink/task-mcp/internal/query"
)

func TestParsePagination_Defaults(t *testing.T) {
	p, err := query.ParsePagination(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestParsePagination_OutOfRange(t *testing.T) {
	_, err := query.ParsePagination(2000, 0)
	require.Error(t, err)
	assert.Equal(t, errs.PaginationInvalid, errs.KindOf(err))

	_, err = query.ParsePagination(10, -1)
	require.Error(t, err)
	assert.Equal(t, errs.PaginationInvalid, errs.KindOf(err))
}

func TestPaginate_ConcatenationProperty(t *testing.T) {
	items := make([]int, 250)
	for i := range items {
		items[i] = i
	}

	limit := 100
	var reconstructed []int
	for offset := 0; offset < len(items); offset += limit {
		p, err := query.ParsePagination(limit, offset)
		require.NoError(t, err)
		env := query.Paginate(items, p)
		reconstructed = append(reconstructed, env.Items...)
	}
	assert.Equal(t, items, reconstructed)
}

func TestPaginate_OffsetPastEnd(t *testing.T) {
	items := []int{1, 2, 3}
	p, err := query.ParsePagination(10, 50)
	require.NoError(t, err)
	env := query.Paginate(items, p)
	assert.Equal(t, 3, env.TotalCount)
	assert.Equal(t, 0, env.ReturnedCount)
	assert.Empty(t, env.Items)
}
