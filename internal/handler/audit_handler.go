package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/givegoa/givegoa-api/internal/dto"
	"github.com/givegoa/givegoa-api/internal/models"
	"github.com/givegoa/givegoa-api/internal/service"
	"github.com/givegoa/givegoa-api/pkg/response"
)

type auditService interface {
	List(ctx context.Context, actor models.User, filter models.AuditFilter) ([]models.AuditLogEntry, *models.Pagination, error)
	Export(ctx context.Context, actor models.User, format string, filter models.AuditFilter) (*service.AuditExport, error)
}

// AuditHandler exposes the activity log.
type AuditHandler struct {
	service auditService
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(service auditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List godoc
// @Summary List audit log entries
// @Description Newest first
// @Tags Audit
// @Produce json
// @Param action query string false "Action"
// @Param targetId query string false "Target ID"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var query dto.AuditQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid query parameters"))
		return
	}
	entries, pagination, err := h.service.List(c.Request.Context(), user, query.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

// Export godoc
// @Summary Export the audit log
// @Tags Audit
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param action query string false "Action"
// @Param targetId query string false "Target ID"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /audit-logs/export [get]
func (h *AuditHandler) Export(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var query dto.AuditQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid query parameters"))
		return
	}
	format := c.DefaultQuery("format", dto.ExportFormatCSV)
	file, err := h.service.Export(c.Request.Context(), user, format, query.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
