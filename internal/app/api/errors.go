package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/farmflow/backend/internal/app/models"
)

// HandleError maps a domain error to an HTTP status and envelope code. Every
// handler funnels its failures through here so the mapping lives in one place.
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		Error(c, http.StatusBadRequest, err.Error(), CodeValidationError, nil)
	case errors.Is(err, models.ErrBadRequest):
		Error(c, http.StatusBadRequest, err.Error(), CodeBadRequest, nil)
	case errors.Is(err, models.ErrUnauthenticated):
		Error(c, http.StatusUnauthorized, err.Error(), CodeUnauthorized, nil)
	case errors.Is(err, models.ErrForbidden):
		Error(c, http.StatusForbidden, err.Error(), CodeForbidden, nil)
	case errors.Is(err, models.ErrNotFound):
		Error(c, http.StatusNotFound, err.Error(), CodeRecordNotFound, nil)
	case errors.Is(err, models.ErrDependencyExists):
		Error(c, http.StatusConflict, err.Error(), CodeForeignKeyConstraint, nil)
	case errors.Is(err, models.ErrConflict):
		Error(c, http.StatusConflict, err.Error(), CodeDuplicateRecord, nil)
	case errors.Is(err, models.ErrRateLimited):
		Error(c, http.StatusTooManyRequests, err.Error(), CodeRateLimited, nil)
	case errors.Is(err, models.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		Error(c, http.StatusRequestTimeout, err.Error(), CodeTimeoutError, nil)
	case errors.Is(err, models.ErrServiceUnavailable):
		Error(c, http.StatusServiceUnavailable, err.Error(), CodeServiceUnavailable, nil)
	case errors.Is(err, models.ErrDataValidation):
		Error(c, http.StatusInternalServerError, err.Error(), CodeDataValidationError, nil)
	case isConnectionError(err):
		Error(c, http.StatusServiceUnavailable, "database unavailable", CodeServiceUnavailable, nil)
	case isDatabaseError(err):
		Error(c, http.StatusInternalServerError, "database error", CodeDatabaseError, nil)
	default:
		Error(c, http.StatusInternalServerError, "internal server error", CodeInternalError, nil)
	}
}

func isDatabaseError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr)
}

// isConnectionError catches failures to reach the database, which map to 503
// rather than 500.
func isConnectionError(err error) bool {
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}
