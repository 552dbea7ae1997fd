package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClampsBounds(t *testing.T) {
	p := Pagination{Page: 0, PageSize: 1000}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPageSize, p.PageSize)

	p = Pagination{}.Normalize()
	assert.Equal(t, DefaultPageSize, p.PageSize)
}

func TestBuildPageInfo(t *testing.T) {
	info := BuildPageInfo(Pagination{Page: 2, PageSize: 10}, 25)
	assert.Equal(t, 3, info.TotalPages)
	assert.True(t, info.HasMore)
	assert.Equal(t, int64(25), info.Total)

	info = BuildPageInfo(Pagination{Page: 3, PageSize: 10}, 25)
	assert.False(t, info.HasMore)
	assert.Equal(t, 20, Pagination{Page: 3, PageSize: 10}.Offset())
}
