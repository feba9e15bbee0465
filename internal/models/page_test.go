package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageRequest(t *testing.T) {
	req, err := ParsePageRequest("", "")
	require.NoError(t, err)
	assert.Equal(t, PageRequest{Page: 0, Size: DefaultPageSize}, req)

	req, err = ParsePageRequest("2", "500")
	require.NoError(t, err)
	assert.Equal(t, PageRequest{Page: 2, Size: MaxPageSize}, req)
	assert.Equal(t, 200, req.Offset())

	_, err = ParsePageRequest("-1", "3")
	assert.Error(t, err)

	_, err = ParsePageRequest("0", "0")
	assert.Error(t, err)

	_, err = ParsePageRequest("abc", "3")
	assert.Error(t, err)
}

func TestPageRequest_OffsetSaturates(t *testing.T) {
	req, err := ParsePageRequest("4611686018427387904", "2")
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, req.Offset())

	assert.Equal(t, math.MaxInt, PageRequest{Page: math.MaxInt, Size: MaxPageSize}.Offset())
	assert.Equal(t, 0, PageRequest{Page: 5, Size: 0}.Offset())

	page := NewPage([]int(nil), req, 3)
	assert.True(t, page.Empty)
	assert.True(t, page.Last)
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name      string
		content   []int
		req       PageRequest
		total     int64
		wantPages int
		wantFirst bool
		wantLast  bool
	}{
		{"first of two", []int{1, 2, 3}, PageRequest{Page: 0, Size: 3}, 5, 2, true, false},
		{"last of two", []int{4, 5}, PageRequest{Page: 1, Size: 3}, 5, 2, false, true},
		{"single page", []int{1}, PageRequest{Page: 0, Size: 3}, 1, 1, true, true},
		{"empty catalog", nil, PageRequest{Page: 0, Size: 3}, 0, 0, true, true},
		{"beyond the end", nil, PageRequest{Page: 4, Size: 3}, 5, 2, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage(tt.content, tt.req, tt.total)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.wantFirst, page.First)
			assert.Equal(t, tt.wantLast, page.Last)
			assert.Equal(t, len(tt.content), page.NumberOfElements)
			assert.NotNil(t, page.Content)
			assert.Equal(t, len(tt.content) == 0, page.Empty)
		})
	}
}
