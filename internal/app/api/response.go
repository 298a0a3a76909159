// Package api defines the JSON response envelope and the single error
// classification point shared by every handler.
package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// SuccessResponse is the envelope for every 2xx reply.
type SuccessResponse struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the envelope for every non-2xx reply.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path,omitempty"`
}

// Machine readable error codes carried in the envelope.
const (
	CodeValidationError      = "VALIDATION_ERROR"
	CodeBadRequest           = "BAD_REQUEST"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeRecordNotFound       = "RECORD_NOT_FOUND"
	CodeDuplicateRecord      = "DUPLICATE_RECORD"
	CodeForeignKeyConstraint = "FOREIGN_KEY_CONSTRAINT"
	CodeRateLimited          = "RATE_LIMITED"
	CodeTimeoutError         = "TIMEOUT_ERROR"
	CodeServiceUnavailable   = "SERVICE_UNAVAILABLE"
	CodeDatabaseError        = "DATABASE_ERROR"
	CodeInternalError        = "INTERNAL_ERROR"
	CodeDataValidationError  = "DATA_VALIDATION_ERROR"
)

func Success(c *gin.Context, status int, data any) {
	c.JSON(status, SuccessResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func SuccessWithMessage(c *gin.Context, status int, data any, message string) {
	c.JSON(status, SuccessResponse{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func Error(c *gin.Context, status int, message, code string, details any) {
	c.JSON(status, ErrorResponse{
		Success:   false,
		Error:     message,
		Code:      code,
		Details:   details,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      c.FullPath(),
	})
}

// Pagination carries normalized page controls parsed from the query string.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (p Pagination) Offset() int { return (p.Page - 1) * p.Limit }

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// ParsePagination reads page and limit query params, clamping limit to 1..100
// and page to at least 1.
func ParsePagination(c *gin.Context) Pagination {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil || limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return Pagination{Page: page, Limit: limit}
}

// PaginatedData wraps a list payload with its page metadata.
type PaginatedData struct {
	Items      any   `json:"items"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func NewPaginatedData(items any, p Pagination, total int64) PaginatedData {
	pages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		pages++
	}
	return PaginatedData{Items: items, Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}
