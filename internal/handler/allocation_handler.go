package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/givegoa/givegoa-api/internal/dto"
	"github.com/givegoa/givegoa-api/internal/models"
	"github.com/givegoa/givegoa-api/pkg/response"
)

type allocationService interface {
	Suggest(ctx context.Context, actor models.User) (*models.AllocationSuggestion, error)
	Apply(ctx context.Context, actor models.User, suggestion models.AllocationSuggestion) (*dto.AllocationApplyResponse, error)
}

// AllocationHandler exposes the optimizer.
type AllocationHandler struct {
	service allocationService
}

// NewAllocationHandler constructs the handler.
func NewAllocationHandler(service allocationService) *AllocationHandler {
	return &AllocationHandler{service: service}
}

// Suggest godoc
// @Summary Suggest allocations
// @Description Runs the optimizer over PRIORITIZED requests. Nothing is changed until the plan is applied.
// @Tags Allocations
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /allocations/suggest [post]
func (h *AllocationHandler) Suggest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	suggestion, err := h.service.Suggest(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestion, nil)
}

// Apply godoc
// @Summary Apply an allocation plan
// @Description Applies every allocation and debits the budget, or changes nothing
// @Tags Allocations
// @Accept json
// @Produce json
// @Param payload body models.AllocationSuggestion true "Accepted suggestion"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /allocations/apply [post]
func (h *AllocationHandler) Apply(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.AllocationSuggestion
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid allocation plan"))
		return
	}
	result, err := h.service.Apply(c.Request.Context(), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
