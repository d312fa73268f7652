package dto

import "github.com/yigit/unisupport/internal/pkg/helpers"

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message"`
}

// NewSuccessResponse creates a success response carrying a message
func NewSuccessResponse(message string) SuccessResponse {
	return SuccessResponse{Success: true, Message: message}
}

// PaginatedResponse is the envelope of every list endpoint
type PaginatedResponse[T any] struct {
	Items       []T   `json:"items"`
	CurrentPage int   `json:"currentPage" example:"1"`
	TotalPages  int   `json:"totalPages" example:"3"`
	Total       int64 `json:"total" example:"25"`
	Limit       int   `json:"limit" example:"10"`
}

// NewPaginatedResponse builds the envelope for one page of results
func NewPaginatedResponse[T any](items []T, total int64, page helpers.PageRequest) PaginatedResponse[T] {
	if items == nil {
		items = []T{}
	}
	return PaginatedResponse[T]{
		Items:       items,
		CurrentPage: page.Page,
		TotalPages:  helpers.TotalPages(total, page.Limit),
		Total:       total,
		Limit:       page.Limit,
	}
}

// HealthResponse reports process liveness
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"postgres"`
}
