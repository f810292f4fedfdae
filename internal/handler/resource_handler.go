package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/givegoa/givegoa-api/internal/dto"
	"github.com/givegoa/givegoa-api/internal/models"
	"github.com/givegoa/givegoa-api/pkg/response"
)

type resourceService interface {
	List(ctx context.Context, actor models.User) ([]models.ResourceItem, error)
	Create(ctx context.Context, actor models.User, input dto.CreateResourceInput) (*models.ResourceItem, error)
	Restock(ctx context.Context, actor models.User, id string, input dto.RestockInput) (*models.ResourceItem, error)
}

// ResourceHandler exposes resource pool endpoints.
type ResourceHandler struct {
	service resourceService
}

// NewResourceHandler constructs the handler.
func NewResourceHandler(service resourceService) *ResourceHandler {
	return &ResourceHandler{service: service}
}

// List godoc
// @Summary List resource pools
// @Tags Resources
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /resources [get]
func (h *ResourceHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	resources, err := h.service.List(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resources, nil)
}

// Create godoc
// @Summary Add a resource pool
// @Tags Resources
// @Accept json
// @Produce json
// @Param payload body dto.CreateResourceInput true "Resource payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /resources [post]
func (h *ResourceHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateResourceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid resource payload"))
		return
	}
	created, err := h.service.Create(c.Request.Context(), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Restock godoc
// @Summary Restock a resource pool
// @Description Adds to available stock, capped at the pool quantity
// @Tags Resources
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param payload body dto.RestockInput true "Restock payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /resources/{id}/restock [post]
func (h *ResourceHandler) Restock(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.RestockInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid restock payload"))
		return
	}
	restocked, err := h.service.Restock(c.Request.Context(), user, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, restocked, nil)
}
