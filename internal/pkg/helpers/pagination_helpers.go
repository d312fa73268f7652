package helpers

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultPage     = 1 // Default page is 1-based
	// MaxPage keeps (page-1)*MaxPageSize inside int32 and bigint range
	MaxPage = 10_000_000
)

// Per-resource default page sizes
const (
	StudentPageSize     = 10
	AccountPageSize     = 10
	IssuePageSize       = 10
	FeedbackPageSize    = 10
	InstructionPageSize = 10
	AdminPageSize       = 8
	FacultyPageSize     = 8
	ChatPageSize        = 8
)

// PageRequest holds the normalized list query of a request
type PageRequest struct {
	Page   int
	Limit  int
	Search string
}

// Offset returns the zero-based row offset of the requested page.
func (p PageRequest) Offset() uint64 {
	offset, _ := CalculateOffsetLimit(p.Page, p.Limit, p.Limit)
	return offset
}

// NewPageRequest normalizes raw values against a default page size
func NewPageRequest(page, limit int, search string, defaultLimit int) PageRequest {
	if defaultLimit <= 0 || defaultLimit > MaxPageSize {
		defaultLimit = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return PageRequest{Page: page, Limit: limit, Search: strings.TrimSpace(search)}
}

// CalculateOffsetLimit calculates the offset and limit for SQL queries based on 1-based page index.
func CalculateOffsetLimit(page, size, defaultSize int) (offset uint64, limit int) {
	switch {
	case size <= 0:
		limit = defaultSize
	case size > MaxPageSize:
		limit = MaxPageSize
	default:
		limit = size
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}

	offset = uint64(page-1) * uint64(limit)
	return offset, limit
}

// TotalPages returns ceil(total/limit)
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// ParsePaginationParams extracts page, limit and search from the query string
func ParsePaginationParams(c *gin.Context, defaultLimit int) PageRequest {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = DefaultPage
	}

	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = 0
	}

	return NewPageRequest(page, limit, c.Query("search"), defaultLimit)
}

// CalculateSliceIndices calculates the start and end indices for slicing an array for pagination
func CalculateSliceIndices(offset uint64, limit, totalItems int) (start, end int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if totalItems <= 0 {
		return 0, 0
	}
	if offset >= uint64(totalItems) {
		return totalItems, totalItems
	}

	start = int(offset)
	end = start + limit
	if end > totalItems {
		end = totalItems
	}
	return start, end
}
