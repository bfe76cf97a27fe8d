package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/velren/railbook/internal/domain"
	"github.com/velren/railbook/internal/middleware"
)

// respondError maps domain failures to status codes and keeps driver
// internals out of the response body.
func respondError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err), domain.IsCapacity(err), domain.IsState(err), domain.IsConflict(err):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case domain.IsUnavailable(err):
		logError(c, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Service temporarily unavailable"})
	default:
		logError(c, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

func logError(c *gin.Context, err error) {
	log.Printf("[API] request_id=%s %s %s: %v", middleware.GetRequestID(c), c.Request.Method, c.Request.URL.Path, err)
}
