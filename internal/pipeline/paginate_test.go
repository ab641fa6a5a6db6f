package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginateEmpty(t *testing.T) {
	for _, page := range []int{-3, 0, 1, 7} {
		p, err := Paginate([]int{}, 10, page)
		require.NoError(t, err)
		assert.Equal(t, 1, p.TotalPages)
		assert.Equal(t, 1, p.PageNumber)
		assert.Empty(t, p.Items)
		assert.False(t, p.HasNext())
		assert.False(t, p.HasPrev())
	}
}

func TestPaginateClamps(t *testing.T) {
	items := seq(23)

	tests := []struct {
		name     string
		page     int
		wantPage int
		want     []int
	}{
		{"first", 1, 1, seq(10)},
		{"middle", 2, 2, []int{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}},
		{"last partial", 3, 3, []int{21, 22, 23}},
		{"past the end", 9, 3, []int{21, 22, 23}},
		{"zero", 0, 1, seq(10)},
		{"negative", -2, 1, seq(10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Paginate(items, 10, tt.page)
			require.NoError(t, err)
			assert.Equal(t, 3, p.TotalPages)
			assert.Equal(t, tt.wantPage, p.PageNumber)
			assert.Equal(t, tt.want, p.Items)
			assert.Equal(t, 23, p.TotalItems)
		})
	}
}

func TestPaginateExactMultiple(t *testing.T) {
	p, err := Paginate(seq(20), 10, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalPages)
	assert.Equal(t, []int{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, p.Items)
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())
}

func TestPaginateCopiesItems(t *testing.T) {
	items := seq(3)
	p, err := Paginate(items, 2, 1)
	require.NoError(t, err)
	p.Items[0] = 99
	assert.Equal(t, 1, items[0])
}

func TestPaginateInvalidSize(t *testing.T) {
	_, err := Paginate(seq(3), 0, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
