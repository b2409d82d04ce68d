package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(1, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
	assert.Equal(t, 5, TotalPages(100, 20))
	assert.Equal(t, 0, TotalPages(10, 0))
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0, 5))
	assert.Equal(t, 1, ClampPage(-3, 5))
	assert.Equal(t, 3, ClampPage(3, 5))
	assert.Equal(t, 5, ClampPage(9, 5))
	assert.Equal(t, 1, ClampPage(4, 0))
}

func TestPageRequestNormalize(t *testing.T) {
	req := PageRequest{}.Normalize(25, 100)
	assert.Equal(t, PageRequest{Page: 1, Size: 25}, req)
	assert.Equal(t, 0, req.Offset())

	req = PageRequest{Page: 3, Size: 500}.Normalize(25, 100)
	assert.Equal(t, 100, req.Size)
	assert.Equal(t, 200, req.Offset())

	req = PageRequest{Page: 2}.Normalize(0, 0)
	assert.Equal(t, DefaultPageSize, req.Size)
}

func TestNewPage(t *testing.T) {
	page := NewPage[int](nil, 41, PageRequest{Page: 2, Size: 20})
	assert.NotNil(t, page.Items)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.Page)
}
