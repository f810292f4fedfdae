package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/givegoa/givegoa-api/internal/models"
	appErrors "github.com/givegoa/givegoa-api/pkg/errors"
	"github.com/givegoa/givegoa-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 500
)

// AuditExport is a rendered audit log document.
type AuditExport struct {
	Filename    string
	ContentType string
	Body        []byte
}

// AuditService records and exposes the append-only activity log.
type AuditService struct {
	store  stateStore
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewAuditService constructs an AuditService.
func NewAuditService(store stateStore, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &AuditService{
		store:  store,
		csv:    csv,
		pdf:    pdf,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Record prepends a new entry to state.Logs. It must be called inside a Mutate callback
// so the entry commits together with the change it describes.
func (s *AuditService) Record(state *models.State, actor models.User, action, targetID, details string) models.AuditLogEntry {
	entry := models.AuditLogEntry{
		ID:        s.newID(),
		Timestamp: s.now().UTC(),
		UserID:    actor.ID,
		UserName:  actor.Name,
		Action:    action,
		TargetID:  targetID,
		Details:   details,
	}
	state.Logs = append([]models.AuditLogEntry{entry}, state.Logs...)
	return entry
}

// List returns log entries newest first.
func (s *AuditService) List(ctx context.Context, actor models.User, filter models.AuditFilter) ([]models.AuditLogEntry, *models.Pagination, error) {
	if err := Authorize(actor.Role, ActionViewAudit, ""); err != nil {
		return nil, nil, err
	}
	state, err := loadState(ctx, s.store)
	if err != nil {
		return nil, nil, err
	}

	matched := filterAudit(state.Logs, filter)

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = defaultAuditPageSize
	}
	if size > maxAuditPageSize {
		size = maxAuditPageSize
	}

	start := len(matched)
	if page-1 <= len(matched)/size {
		start = min((page-1)*size, len(matched))
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], &models.Pagination{Page: page, PageSize: size, TotalCount: len(matched)}, nil
}

// Export renders the whole log as csv or pdf.
func (s *AuditService) Export(ctx context.Context, actor models.User, format string, filter models.AuditFilter) (*AuditExport, error) {
	if err := Authorize(actor.Role, ActionViewAudit, ""); err != nil {
		return nil, err
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	state, err := loadState(ctx, s.store)
	if err != nil {
		return nil, err
	}
	dataset := auditDataset(filterAudit(state.Logs, filter))
	stamp := s.now().UTC().Format("20060102-150405")

	switch format {
	case "pdf":
		body, err := s.pdf.Render(dataset, "GiveGoa Audit Log")
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render audit pdf")
		}
		return &AuditExport{Filename: fmt.Sprintf("audit-log-%s.pdf", stamp), ContentType: "application/pdf", Body: body}, nil
	default:
		body, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render audit csv")
		}
		return &AuditExport{Filename: fmt.Sprintf("audit-log-%s.csv", stamp), ContentType: "text/csv", Body: body}, nil
	}
}

func filterAudit(logs []models.AuditLogEntry, filter models.AuditFilter) []models.AuditLogEntry {
	matched := make([]models.AuditLogEntry, 0, len(logs))
	for _, entry := range logs {
		if filter.Action != "" && !strings.EqualFold(entry.Action, filter.Action) {
			continue
		}
		if filter.TargetID != "" && entry.TargetID != filter.TargetID {
			continue
		}
		matched = append(matched, entry)
	}
	return matched
}

func auditDataset(logs []models.AuditLogEntry) export.Dataset {
	headers := []string{"Timestamp", "User", "Action", "Target", "Details"}
	rows := make([]map[string]string, 0, len(logs))
	for _, entry := range logs {
		rows = append(rows, map[string]string{
			"Timestamp": entry.Timestamp.Format(time.RFC3339),
			"User":      entry.UserName,
			"Action":    entry.Action,
			"Target":    entry.TargetID,
			"Details":   entry.Details,
		})
	}
	return export.Dataset{
		Headers: headers,
		Rows:    rows,
		Weights: map[string]float64{"Timestamp": 1.6, "Action": 1.4, "Details": 3.5},
	}
}
