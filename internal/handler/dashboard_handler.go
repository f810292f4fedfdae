package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/givegoa/givegoa-api/internal/dto"
	"github.com/givegoa/givegoa-api/internal/middleware"
	"github.com/givegoa/givegoa-api/internal/models"
	appErrors "github.com/givegoa/givegoa-api/pkg/errors"
	"github.com/givegoa/givegoa-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context, actor models.User) (*dto.DashboardResponse, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary Dashboard summary
// @Description Totals, category counts, status pipeline, top priorities and resource utilization
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}
	summary, cacheHit, err := h.service.Summary(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}
