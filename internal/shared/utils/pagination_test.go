package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore-api/internal/shared/apperror"
)

func TestParsePagination(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p, err := ParsePagination("", "")
		require.NoError(t, err)
		assert.Equal(t, Pagination{Page: 1, Limit: 10}, p)
		assert.Equal(t, 0, p.Offset())
	})

	t.Run("explicit values", func(t *testing.T) {
		p, err := ParsePagination("3", "25")
		require.NoError(t, err)
		assert.Equal(t, 3, p.Page)
		assert.Equal(t, 25, p.Limit)
		assert.Equal(t, 50, p.Offset())
	})

	t.Run("huge page saturates offset", func(t *testing.T) {
		p, err := ParsePagination("1000000000000000000", "10")
		require.NoError(t, err)
		assert.Equal(t, math.MaxInt, p.Offset())
	})

	invalid := []struct {
		name, page, limit string
	}{
		{"zero page", "0", ""},
		{"negative page", "-2", ""},
		{"text page", "abc", ""},
		{"zero limit", "", "0"},
		{"limit above max", "", "101"},
		{"text limit", "", "ten"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePagination(tc.page, tc.limit)
			require.Error(t, err)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		})
	}
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, Page(items, 0, 2))
	assert.Equal(t, []int{5}, Page(items, 4, 2))
	assert.Equal(t, []int{}, Page(items, 5, 2))
	assert.Equal(t, []int{3, 4, 5}, Page(items, 2, 0))
	assert.Equal(t, []int{}, Page(items, -8, 2))
	assert.Equal(t, []int{}, Page(items, math.MaxInt, 10))
	assert.Equal(t, []int{2, 3, 4, 5}, Page(items, 1, math.MaxInt))
}

func TestLikeContains(t *testing.T) {
	assert.Equal(t, "%tiger%", LikeContains("tiger"))
	assert.Equal(t, `%100\%\_off\\%`, LikeContains(`100%_off\`))
}

func TestParseID(t *testing.T) {
	_, err := ParseID("not-a-uuid")
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidID, apperror.KindOf(err))

	id, err := ParseID(" 6f1c5f9e-8d4b-4a43-9a57-2d0c1b6f4e11 ")
	require.NoError(t, err)
	assert.Equal(t, "6f1c5f9e-8d4b-4a43-9a57-2d0c1b6f4e11", id.String())
}
