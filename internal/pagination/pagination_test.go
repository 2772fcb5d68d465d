package pagination

import (
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = strconv.Itoa(i)
	}
	return out
}

func TestPageNumberPaginator(t *testing.T) {
	p := NewPageNumberPaginator()

	t.Run("defaults", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/json/list", nil)
		page := p.Paginate(items(50), r)

		assert.Equal(t, 50, page.Count)
		assert.Len(t, page.Results, DefaultPageSize)
		assert.Equal(t, "0", page.Results[0])
		require.NotNil(t, page.Next)
		assert.Contains(t, *page.Next, "page=2")
		assert.Nil(t, page.Previous)
	})

	t.Run("middle page has both links", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/json/list?page=2&page_size=10", nil)
		page := p.Paginate(items(50), r)

		assert.Equal(t, "10", page.Results[0])
		require.NotNil(t, page.Next)
		assert.Contains(t, *page.Next, "page=3")
		require.NotNil(t, page.Previous)
		assert.Contains(t, *page.Previous, "page=1")
	})

	t.Run("last page has no next", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/json/list?page=3&page_size=20", nil)
		page := p.Paginate(items(50), r)

		assert.Len(t, page.Results, 10)
		assert.Nil(t, page.Next)
	})

	t.Run("page beyond the data is empty", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/json/list?page=99", nil)
		page := p.Paginate(items(5), r)
		assert.Empty(t, page.Results)
	})

	t.Run("page size is clamped", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/json/list?page_size=5000", nil)
		page := p.Paginate(items(500), r)
		assert.Len(t, page.Results, MaxPageSize)
	})

	t.Run("garbage parameters fall back to defaults", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/json/list?page=zero&page_size=-3", nil)
		page := p.Paginate(items(30), r)
		assert.Len(t, page.Results, DefaultPageSize)
		assert.Equal(t, "0", page.Results[0])
	})
}

func TestLimitOffsetPaginator(t *testing.T) {
	p := NewLimitOffsetPaginator()

	t.Run("limit and offset slice the list", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/json/list?limit=5&offset=10", nil)
		page := p.Paginate(items(30), r)

		assert.Equal(t, 30, page.Count)
		assert.Len(t, page.Results, 5)
		assert.Equal(t, "10", page.Results[0])
		require.NotNil(t, page.Next)
		assert.Contains(t, *page.Next, "offset=15")
		require.NotNil(t, page.Previous)
		assert.Contains(t, *page.Previous, "offset=5")
	})

	t.Run("previous offset never goes negative", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/json/list?limit=10&offset=3", nil)
		page := p.Paginate(items(30), r)
		require.NotNil(t, page.Previous)
		assert.Contains(t, *page.Previous, "offset=0")
	})

	t.Run("end of data has no next", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/json/list?limit=10&offset=25", nil)
		page := p.Paginate(items(30), r)
		assert.Len(t, page.Results, 5)
		assert.Nil(t, page.Next)
	})
}
