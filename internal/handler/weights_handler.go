package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/givegoa/givegoa-api/internal/models"
	"github.com/givegoa/givegoa-api/pkg/response"
)

type weightsService interface {
	Get(ctx context.Context, actor models.User) (*models.PriorityWeights, error)
	Update(ctx context.Context, actor models.User, weights models.PriorityWeights) (*models.PriorityWeights, error)
}

// WeightsHandler exposes the scoring weights.
type WeightsHandler struct {
	service weightsService
}

// NewWeightsHandler constructs the handler.
func NewWeightsHandler(service weightsService) *WeightsHandler {
	return &WeightsHandler{service: service}
}

// Get godoc
// @Summary Scoring weights
// @Tags Weights
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /weights [get]
func (h *WeightsHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	weights, err := h.service.Get(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, weights, nil)
}

// Update godoc
// @Summary Replace scoring weights
// @Description Each weight must be within 0-100 and the weights must sum to 100
// @Tags Weights
// @Accept json
// @Produce json
// @Param payload body models.PriorityWeights true "Weights"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /weights [put]
func (h *WeightsHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.PriorityWeights
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid weights payload"))
		return
	}
	updated, err := h.service.Update(c.Request.Context(), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}
