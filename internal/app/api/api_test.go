package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmflow/backend/internal/app/models"
)

func testContext(t *testing.T, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleError_Mapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", fmt.Errorf("bad date: %w", models.ErrValidation), http.StatusBadRequest, CodeValidationError},
		{"bad request", models.ErrBadRequest, http.StatusBadRequest, CodeBadRequest},
		{"unauthenticated", models.ErrUnauthenticated, http.StatusUnauthorized, CodeUnauthorized},
		{"forbidden", models.ErrForbidden, http.StatusForbidden, CodeForbidden},
		{"not found", fmt.Errorf("crop not found: %w", models.ErrNotFound), http.StatusNotFound, CodeRecordNotFound},
		{"dependency", models.ErrDependencyExists, http.StatusConflict, CodeForeignKeyConstraint},
		{"conflict", models.ErrConflict, http.StatusConflict, CodeDuplicateRecord},
		{"rate limited", models.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited},
		{"timeout", models.ErrTimeout, http.StatusRequestTimeout, CodeTimeoutError},
		{"deadline", context.DeadlineExceeded, http.StatusRequestTimeout, CodeTimeoutError},
		{"unavailable", models.ErrServiceUnavailable, http.StatusServiceUnavailable, CodeServiceUnavailable},
		{"data validation", fmt.Errorf("negative crop count: %w", models.ErrDataValidation), http.StatusInternalServerError, CodeDataValidationError},
		{"pg error", &pgconn.PgError{Code: "42703"}, http.StatusInternalServerError, CodeDatabaseError},
		{"unknown", errors.New("surprise"), http.StatusInternalServerError, CodeInternalError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := testContext(t, "/api/crops")

			HandleError(c, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			resp := decodeError(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.code, resp.Code)
			assert.NotEmpty(t, resp.Timestamp)
		})
	}
}

func TestHandleError_InternalHidesDetail(t *testing.T) {
	c, rec := testContext(t, "/api/crops")

	HandleError(c, errors.New("pgpool: connection slot exhausted at 10.0.0.3"))

	resp := decodeError(t, rec)
	assert.Equal(t, "internal server error", resp.Error)
}

func TestSuccessEnvelope(t *testing.T) {
	c, rec := testContext(t, "/api/crops")

	Success(c, http.StatusOK, map[string]string{"name": "Tomatoes"})

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query string
		page  int
		limit int
	}{
		{"", 1, 10},
		{"?page=3&limit=25", 3, 25},
		{"?page=0&limit=0", 1, 10},
		{"?page=-2&limit=-5", 1, 10},
		{"?page=abc&limit=xyz", 1, 10},
		{"?limit=500", 1, 100},
	}
	for _, tc := range cases {
		c, _ := testContext(t, "/api/crops"+tc.query)
		p := ParsePagination(c)
		assert.Equal(t, tc.page, p.Page, "query %q", tc.query)
		assert.Equal(t, tc.limit, p.Limit, "query %q", tc.query)
	}
}

func TestPaginationOffset(t *testing.T) {
	assert.Equal(t, 0, Pagination{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 40, Pagination{Page: 5, Limit: 10}.Offset())
}

func TestNewPaginatedData(t *testing.T) {
	p := Pagination{Page: 2, Limit: 10}

	data := NewPaginatedData([]string{"a"}, p, 25)
	assert.Equal(t, int64(3), data.TotalPages)
	assert.Equal(t, int64(25), data.Total)
	assert.Equal(t, 2, data.Page)

	exact := NewPaginatedData([]string{}, p, 30)
	assert.Equal(t, int64(3), exact.TotalPages)

	empty := NewPaginatedData([]string{}, p, 0)
	assert.Equal(t, int64(0), empty.TotalPages)
}
