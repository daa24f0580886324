package common

import (
	"math"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(21, 2, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = NewPagination(0, 0, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, DefaultPage, p.CurrentPage)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.False(t, p.HasNext)
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tc := range []struct {
		query      string
		page, size int
	}{
		{"", DefaultPage, DefaultPageSize},
		{"?page=3&page_size=25", 3, 25},
		{"?page=-1&page_size=abc", DefaultPage, DefaultPageSize},
		{"?page_size=1000", DefaultPage, MaxPageSize},
		{"?page=9223372036854775807", MaxPage, DefaultPageSize},
		{"?page=99999999999999999999", DefaultPage, DefaultPageSize},
	} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/api/catalog"+tc.query, nil)
		page, size := GetPaginationParams(c)
		assert.Equal(t, tc.page, page, tc.query)
		assert.Equal(t, tc.size, size, tc.query)
	}
	assert.Equal(t, 20, Offset(3, 10))
}

func TestOffset_Saturates(t *testing.T) {
	assert.Equal(t, 0, Offset(0, 10))
	assert.Equal(t, 0, Offset(5, 0))
	assert.Equal(t, math.MaxInt, Offset(math.MaxInt, 10))
	assert.Equal(t, (MaxPage-1)*MaxPageSize, Offset(MaxPage, MaxPageSize))
}
