package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, items, Paginate(items, PageRequest{}))
	assert.Equal(t, []int{3, 4}, Paginate(items, PageRequest{Limit: 2, Offset: 2}))
	assert.Equal(t, []int{}, Paginate(items, PageRequest{Offset: 9}))

	resp := NewListResponse(items, PageRequest{Limit: 1, Offset: 4})
	assert.Equal(t, 5, resp.Total)
	assert.Equal(t, []int{5}, resp.Items)
}
