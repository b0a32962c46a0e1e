package pagination_test

import (
	"testing"

	"reqflow/internal/pkg/pagination"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClampsValues(t *testing.T) {
	params := pagination.Normalize(0, 0)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, pagination.DefaultLimit, params.Limit)
	assert.Equal(t, 0, params.Offset)

	params = pagination.Normalize(3, 10)
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 10, params.Limit)
	assert.Equal(t, 20, params.Offset)

	params = pagination.Normalize(-5, 10_000)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, pagination.MaxLimit, params.Limit)
}

func TestGetMeta(t *testing.T) {
	params := pagination.Normalize(2, 10)

	meta := pagination.GetMeta(params, 25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	meta = pagination.GetMeta(pagination.Normalize(1, 10), 5)
	assert.Equal(t, 1, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.False(t, meta.HasPrev)
}
