package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPageOffset(t *testing.T) {
	t.Run("Defaults apply for zero values", func(t *testing.T) {
		p := Pagination{}
		offset, limit := p.GetPageOffset()
		assert.Equal(t, 0, offset)
		assert.Equal(t, 10, limit)
	})

	t.Run("Offset grows with page", func(t *testing.T) {
		p := Pagination{Page: 3, Limit: 20}
		offset, limit := p.GetPageOffset()
		assert.Equal(t, 40, offset)
		assert.Equal(t, 20, limit)
	})

	t.Run("Limit is capped at 100", func(t *testing.T) {
		p := Pagination{Page: 1, Limit: 500}
		_, limit := p.GetPageOffset()
		assert.Equal(t, 100, limit)
	})
}

func TestNewPageResult(t *testing.T) {
	t.Run("Pages round up", func(t *testing.T) {
		result := NewPageResult([]int{1, 2, 3}, 25, 1, 10)
		assert.Equal(t, 3, result.Pages)
		assert.Equal(t, int64(25), result.Total)
	})

	t.Run("Exact division", func(t *testing.T) {
		result := NewPageResult([]int{}, 30, 2, 10)
		assert.Equal(t, 3, result.Pages)
	})
}
