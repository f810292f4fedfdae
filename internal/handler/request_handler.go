package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/givegoa/givegoa-api/internal/dto"
	"github.com/givegoa/givegoa-api/internal/models"
	appErrors "github.com/givegoa/givegoa-api/pkg/errors"
	"github.com/givegoa/givegoa-api/pkg/response"
)

type requestService interface {
	Submit(ctx context.Context, actor models.User, input dto.SubmitRequestInput) (*models.SocialRequest, error)
	Score(ctx context.Context, actor models.User, id string) (*models.SocialRequest, error)
	Approve(ctx context.Context, actor models.User, id string) (*models.SocialRequest, error)
	Reject(ctx context.Context, actor models.User, id string) (*models.SocialRequest, error)
	Advance(ctx context.Context, actor models.User, id string) (*models.SocialRequest, error)
	List(ctx context.Context, actor models.User, filter models.RequestFilter) ([]models.SocialRequest, error)
	Get(ctx context.Context, actor models.User, id string) (*models.SocialRequest, error)
}

// RequestHandler exposes social request intake and lifecycle endpoints.
type RequestHandler struct {
	service requestService
}

// NewRequestHandler constructs the handler.
func NewRequestHandler(service requestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// List godoc
// @Summary List requests
// @Tags Requests
// @Produce json
// @Param status query string false "Lifecycle status"
// @Param category query string false "Category"
// @Param sort query string false "priority or recent"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var query dto.ListRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid query parameters"))
		return
	}
	sortBy := strings.ToLower(strings.TrimSpace(query.Sort))
	if sortBy != "" && sortBy != dto.SortByPriority && sortBy != dto.SortByRecent {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "sort must be priority or recent"))
		return
	}

	requests, err := h.service.List(c.Request.Context(), user, models.RequestFilter{
		Status:   models.RequestStatus(strings.ToUpper(strings.TrimSpace(query.Status))),
		Category: models.RequestCategory(strings.TrimSpace(query.Category)),
		SortBy:   sortBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Get godoc
// @Summary Get a request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	request, err := h.service.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Submit godoc
// @Summary Submit a request
// @Description Classifies the submission and stores it as CLASSIFIED
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body dto.SubmitRequestInput true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Submit(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.SubmitRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid request payload"))
		return
	}
	created, err := h.service.Submit(c.Request.Context(), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Score godoc
// @Summary Score a request
// @Description Computes the priority score of a CLASSIFIED request and moves it to PRIORITIZED
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /requests/{id}/score [post]
func (h *RequestHandler) Score(c *gin.Context) {
	h.lifecycle(c, h.service.Score)
}

// Approve godoc
// @Summary Approve a request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *gin.Context) {
	h.lifecycle(c, h.service.Approve)
}

// Reject godoc
// @Summary Reject a request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /requests/{id}/reject [post]
func (h *RequestHandler) Reject(c *gin.Context) {
	h.lifecycle(c, h.service.Reject)
}

// Advance godoc
// @Summary Advance a funded request
// @Description FUNDED moves to IN_PROGRESS, IN_PROGRESS moves to COMPLETED
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /requests/{id}/advance [post]
func (h *RequestHandler) Advance(c *gin.Context) {
	h.lifecycle(c, h.service.Advance)
}

func (h *RequestHandler) lifecycle(c *gin.Context, op func(context.Context, models.User, string) (*models.SocialRequest, error)) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	updated, err := op(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}
