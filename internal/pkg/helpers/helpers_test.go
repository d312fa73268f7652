package helpers

import (
	"math"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 3, TotalPages(17, 8))
}

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 8, 10)
	assert.Equal(t, uint64(16), offset)
	assert.Equal(t, 8, limit)

	offset, limit = CalculateOffsetLimit(0, 0, 8)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, 8, limit)

	_, limit = CalculateOffsetLimit(1, 1000, 10)
	assert.Equal(t, MaxPageSize, limit)

	offset, _ = CalculateOffsetLimit(math.MaxInt, MaxPageSize, 10)
	assert.Equal(t, uint64(MaxPage-1)*uint64(MaxPageSize), offset)
}

func TestNewPageRequestCapsPage(t *testing.T) {
	req := NewPageRequest(math.MaxInt, 100, "", 10)
	assert.Equal(t, MaxPage, req.Page)
	assert.LessOrEqual(t, req.Offset(), uint64(math.MaxInt32))
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/students?page=2&limit=5&search=%20ali%20", nil)

	req := ParsePaginationParams(c, StudentPageSize)
	assert.Equal(t, PageRequest{Page: 2, Limit: 5, Search: "ali"}, req)
	assert.Equal(t, uint64(5), req.Offset())

	c.Request = httptest.NewRequest("GET", "/admins?page=abc", nil)
	req = ParsePaginationParams(c, AdminPageSize)
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, AdminPageSize, req.Limit)
}

func TestCalculateSliceIndices(t *testing.T) {
	start, end := CalculateSliceIndices(10, 10, 15)
	assert.Equal(t, 10, start)
	assert.Equal(t, 15, end)

	start, end = CalculateSliceIndices(20, 10, 15)
	assert.Equal(t, 15, start)
	assert.Equal(t, 15, end)

	start, end = CalculateSliceIndices(math.MaxUint64, 100, 5)
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)

	start, end = CalculateSliceIndices(0, 10, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}

func TestSearchCondition(t *testing.T) {
	assert.Nil(t, SearchCondition("  ", "name"))

	cond := SearchCondition("50%", "name", "email")
	sql, args, err := squirrel.Select("*").From("students").Where(cond).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM students WHERE (name ILIKE ? OR email ILIKE ?)", sql)
	assert.Equal(t, []interface{}{`%50\%%`, `%50\%%`}, args)
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("", "anything"))
	assert.True(t, ContainsFold("ALI", "Ali Veli"))
	assert.False(t, ContainsFold("zeynep", "Ali", "Veli"))
}

func TestParseDateBound(t *testing.T) {
	start, err := ParseDateBound("2025-03-01", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *start)

	end, err := ParseDateBound("2025-03-01", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 23, 59, 59, 999999999, time.UTC), *end)

	exact, err := ParseDateBound("2025-03-01T10:00:00Z", true)
	require.NoError(t, err)
	assert.Equal(t, 10, exact.Hour())

	none, err := ParseDateBound("", false)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = ParseDateBound("March 1st", false)
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, time.Hour, ParseDuration("", time.Hour))
	assert.Equal(t, 5*time.Minute, ParseDuration("5m", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("bogus", time.Hour))
}
