package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZiyamSanthosh/identity-governance/internal/core/domain"
	"github.com/ZiyamSanthosh/identity-governance/internal/infra/telemetry"
)

// InactiveUserLister answers time windowed idle account queries for a tenant.
type InactiveUserLister interface {
	GetInactiveUsers(ctx context.Context, tenantDomain, inactiveAfter, excludeBefore string) ([]domain.InactiveUser, error)
}

// InactiveUserHandler exposes the idle account query endpoint.
type InactiveUserHandler struct {
	users   InactiveUserLister
	metrics *telemetry.Provider
}

// NewInactiveUserHandler constructs an inactive user handler.
func NewInactiveUserHandler(users InactiveUserLister, metrics *telemetry.Provider) *InactiveUserHandler {
	return &InactiveUserHandler{users: users, metrics: metrics}
}

// RegisterRoutes binds the idle account query routes to the provided router group.
func (h *InactiveUserHandler) RegisterRoutes(r *gin.RouterGroup) {
	if r == nil {
		return
	}

	r.GET("/tenants/:tenantDomain/inactive-users", h.List)
}

// List godoc
// @Summary List inactive users for a tenant
// @Description Returns accounts whose last login falls before the inactiveAfter date, optionally bounded below by excludeBefore.
// @Tags InactiveUsers
// @Produce json
// @Param tenantDomain path string true "Tenant domain"
// @Param inactiveAfter query string true "Upper bound date (YYYY-MM-DD)"
// @Param excludeBefore query string false "Lower bound date (YYYY-MM-DD)"
// @Success 200 {object} InactiveUsersResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/tenants/{tenantDomain}/inactive-users [get]
func (h *InactiveUserHandler) List(c *gin.Context) {
	if h.users == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "", "inactive user queries unavailable"))
		return
	}

	tenantDomain := c.Param("tenantDomain")
	inactiveAfter := c.Query("inactiveAfter")
	excludeBefore := c.Query("excludeBefore")

	if inactiveAfter == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, domain.ErrCodeInvalidDateFormat, "inactiveAfter is required"))
		return
	}

	start := time.Now()
	users, err := h.users.GetInactiveUsers(c.Request.Context(), tenantDomain, inactiveAfter, excludeBefore)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		h.observe(outcomeFor(err), elapsed)
		RespondWithDomainError(c, err)
		return
	}

	h.observe("success", elapsed)
	c.JSON(http.StatusOK, newInactiveUsersResponse(tenantDomain, users))
}

func (h *InactiveUserHandler) observe(outcome string, seconds float64) {
	if h.metrics == nil {
		return
	}
	h.metrics.ObserveQuery(outcome, seconds)
}

func outcomeFor(err error) string {
	if domain.IsClientError(err) {
		return "client_error"
	}
	return "server_error"
}
