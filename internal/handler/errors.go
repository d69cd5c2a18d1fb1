package handler

import (
	"errors"
	"net/http"

	"wishwell/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError maps the domain error taxonomy onto HTTP responses.
// Services surface ledger and gateway errors unchanged; this is the
// single place they become client-visible.
func respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	var serr *domain.InvalidStateError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.As(err, &serr):
		c.JSON(http.StatusConflict, gin.H{"error": serr.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrPaymentVerification):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "payment verification failed"})
	case errors.Is(err, domain.ErrGatewayUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment gateway unavailable, retry later"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
