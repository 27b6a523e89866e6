// Package utils holds helpers shared across handlers: the JSON response
// envelope, password hashing and document number validation.
package utils

// Response is the envelope wrapping every JSON payload the API returns.
type Response struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// OK builds a success envelope. Pass nil data for message-only responses.
func OK(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}

// Error builds a failure envelope with optional detail lines.
func Error(message string, errs ...string) Response {
	return Response{Success: false, Message: message, Errors: errs}
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPagination computes the derived page fields from page/limit/total.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Paginated builds a success envelope carrying a page of items.
func Paginated(message string, items any, p Pagination) Response {
	return OK(message, map[string]any{"items": items, "pagination": p})
}
