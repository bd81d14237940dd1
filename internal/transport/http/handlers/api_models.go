package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZiyamSanthosh/identity-governance/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, code, errorMsg string) ErrorResponse {
	traceID := c.Writer.Header().Get(requestIDHeaderName)

	return ErrorResponse{
		Code:    code,
		Error:   errorMsg,
		TraceID: traceID,
	}
}

const requestIDHeaderName = "X-Request-ID"

// InactiveUserPayload describes a single idle account returned by the API.
type InactiveUserPayload struct {
	Username        string `json:"username"`
	UserStoreDomain string `json:"userStoreDomain"`
	Email           string `json:"email,omitempty"`
}

// InactiveUsersResponse wraps a list of idle accounts for a tenant.
type InactiveUsersResponse struct {
	TenantDomain  string                `json:"tenantDomain"`
	InactiveUsers []InactiveUserPayload `json:"inactiveUsers"`
	Total         int                   `json:"total"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func newInactiveUsersResponse(tenantDomain string, users []domain.InactiveUser) InactiveUsersResponse {
	payloads := make([]InactiveUserPayload, 0, len(users))
	for _, u := range users {
		payloads = append(payloads, InactiveUserPayload{
			Username:        u.Username,
			UserStoreDomain: u.UserStoreDomain,
			Email:           u.Email,
		})
	}

	return InactiveUsersResponse{
		TenantDomain:  tenantDomain,
		InactiveUsers: payloads,
		Total:         len(payloads),
	}
}
