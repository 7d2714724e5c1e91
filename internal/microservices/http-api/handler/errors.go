package handler

import (
	"errors"
	"net/http"
	"strconv"

	"musichub/internal/logging"
	"musichub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// respondError writes err as {"error": message} with the status its kind maps to.
// Unknown errors are logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConflict):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	}

	var svcErr *service.Error
	if status == http.StatusInternalServerError || !errors.As(err, &svcErr) {
		logging.Ctx(c.Request.Context()).Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(status, gin.H{"error": svcErr.Message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// parseID reads a positive int64 path parameter, answering 400 when it is not one.
func parseID(c *gin.Context, param, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid "+what+" ID")
		return 0, false
	}
	return id, true
}

// parseOptionalID reads a positive int64 query parameter if present.
func parseOptionalID(c *gin.Context, param, what string) (*int64, bool) {
	raw := c.Query(param)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid "+what+" ID")
		return nil, false
	}
	return &id, true
}

// parsePage reads page and page_size with the API-wide defaults.
func parsePage(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
