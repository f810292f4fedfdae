package dto

import (
	"strings"

	"github.com/givegoa/givegoa-api/internal/models"
)

// AuditQuery captures audit list filters.
type AuditQuery struct {
	Action   string `form:"action"`
	TargetID string `form:"targetId"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// Filter converts the query into a store filter.
func (q AuditQuery) Filter() models.AuditFilter {
	return models.AuditFilter{
		Action:   strings.TrimSpace(q.Action),
		TargetID: strings.TrimSpace(q.TargetID),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
}

// Audit export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)
