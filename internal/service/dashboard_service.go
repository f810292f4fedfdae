package service

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/givegoa/givegoa-api/internal/dto"
	"github.com/givegoa/givegoa-api/internal/models"
)

const (
	dashboardCacheKey     = "dash:summary"
	dashboardCachePattern = "dash:*"
	topPriorityLimit      = 5
	lowStockRatio         = 0.2
)

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the overview figures from the current state.
type DashboardService struct {
	store  stateStore
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
	cfg    DashboardServiceConfig

	// generation counts commits seen by Invalidate.
	generation atomic.Uint64
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(store stateStore, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{store: store, cache: cache, logger: logger, now: time.Now, cfg: cfg}
}

// Summary returns the dashboard payload and whether it was served from cache.
func (s *DashboardService) Summary(ctx context.Context, actor models.User) (*dto.DashboardResponse, bool, error) {
	if err := Authorize(actor.Role, ActionViewDashboard, ""); err != nil {
		return nil, false, err
	}

	var cached dto.DashboardResponse
	if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	generation := s.generation.Load()
	state, err := loadState(ctx, s.store)
	if err != nil {
		return nil, false, err
	}
	summary := s.compose(state)
	s.refreshCache(ctx, summary, generation)
	return summary, false, nil
}

// refreshCache stores summary unless a commit landed after it was loaded. A commit racing
// the write is caught by the second check and the entry is dropped again.
func (s *DashboardService) refreshCache(ctx context.Context, summary *dto.DashboardResponse, generation uint64) {
	if s.generation.Load() != generation {
		return
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, summary, s.cfg.CacheTTL); err != nil {
		s.logger.Debug("dashboard cache not refreshed", zap.Error(err))
		return
	}
	if s.generation.Load() != generation {
		s.dropCache(ctx)
	}
}

// Invalidate drops cached summaries. It is registered as a state commit hook.
func (s *DashboardService) Invalidate(ctx context.Context, _ []models.Collection) {
	s.generation.Add(1)
	s.dropCache(ctx)
}

func (s *DashboardService) dropCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) compose(state *models.State) *dto.DashboardResponse {
	summary := &dto.DashboardResponse{
		Categories:  []dto.CategoryCount{},
		Pipeline:    make([]dto.StatusCount, 0, len(models.StatusOrder)),
		TopPriority: []models.SocialRequest{},
		Resources:   make([]dto.ResourceUtilization, 0, len(state.Resources)),
		GeneratedAt: s.now().UTC(),
	}

	categoryCounts := make(map[models.RequestCategory]int)
	statusCounts := make(map[models.RequestStatus]int)
	totals := &summary.Totals
	totals.Requests = len(state.Requests)
	for _, request := range state.Requests {
		categoryCounts[request.Category]++
		statusCounts[request.Status]++
		switch request.Status {
		case models.StatusSubmitted, models.StatusClassified:
			totals.Pending++
		case models.StatusInProgress:
			totals.Active++
		case models.StatusCompleted:
			totals.Completed++
			totals.Impact += request.Beneficiaries
		}
		if request.AllocatedBudget != nil {
			totals.BudgetUsed += *request.AllocatedBudget
		}
	}
	if idx := state.BudgetResource(); idx >= 0 {
		totals.TotalBudget = state.Resources[idx].Quantity
	}
	if totals.TotalBudget > 0 {
		totals.BudgetUsedPct = totals.BudgetUsed / totals.TotalBudget * 100
	}

	for _, category := range models.Categories {
		if count := categoryCounts[category]; count > 0 {
			summary.Categories = append(summary.Categories, dto.CategoryCount{Category: category, Count: count})
		}
	}
	for _, status := range models.StatusOrder {
		summary.Pipeline = append(summary.Pipeline, dto.StatusCount{Status: status, Count: statusCounts[status]})
	}

	ranked := append([]models.SocialRequest(nil), state.Requests...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PriorityScore > ranked[j].PriorityScore
	})
	if len(ranked) > topPriorityLimit {
		ranked = ranked[:topPriorityLimit]
	}
	summary.TopPriority = append(summary.TopPriority, ranked...)

	for _, resource := range state.Resources {
		summary.Resources = append(summary.Resources, dto.ResourceUtilization{
			ID:          resource.ID,
			Name:        resource.Name,
			Type:        resource.Type,
			Available:   resource.Available,
			Quantity:    resource.Quantity,
			Unit:        resource.Unit,
			Utilization: resource.Utilization(),
			LowStock:    resource.Quantity > 0 && resource.Available/resource.Quantity < lowStockRatio,
		})
	}

	return summary
}
