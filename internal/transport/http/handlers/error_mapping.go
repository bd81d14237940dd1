package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZiyamSanthosh/identity-governance/internal/core/domain"
)

// RespondWithDomainError translates governance errors into HTTP responses.
// Client errors surface their message and code; server errors surface the
// code only, keeping internal detail out of the payload.
func RespondWithDomainError(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	var clientErr *domain.ClientError
	if errors.As(err, &clientErr) {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, clientErr.Code, clientErr.Message))
		return
	}

	var serverErr *domain.ServerError
	if errors.As(err, &serverErr) {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, serverErr.Code, "internal server error"))
		return
	}

	c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "", "internal server error"))
}
