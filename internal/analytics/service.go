package analytics

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/spicepalace/spicepalace-backend/pkg/errors"
)

const defaultTopLimit = 10

// periodDays maps the supported range presets. Unknown periods fall back to
// the 30 day window.
var periodDays = map[string]int{
	"7d":  7,
	"30d": 30,
	"90d": 90,
	"1y":  365,
}

// Service exposes the read-only dashboard queries.
type Service interface {
	SalesByDay(ctx context.Context, period string) ([]SalesPoint, error)
	Dashboard(ctx context.Context) (*DashboardStats, error)
	TopProducts(ctx context.Context, limit int) ([]ProductSales, error)
	TopCategories(ctx context.Context, limit int) ([]CategorySales, error)
	StatusBreakdown(ctx context.Context) ([]StatusCount, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the analytics service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// PeriodWindow resolves a preset into its day count.
func PeriodWindow(period string) int {
	if days, ok := periodDays[period]; ok {
		return days
	}
	return periodDays["30d"]
}

func (s *service) SalesByDay(ctx context.Context, period string) ([]SalesPoint, error) {
	days := PeriodWindow(period)
	since := s.now().AddDate(0, 0, -days)
	points, err := s.repo.SalesByDay(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query sales by day")
	}
	if points == nil {
		points = []SalesPoint{}
	}
	return points, nil
}

func (s *service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats, err := s.repo.Dashboard(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query dashboard stats")
	}
	return stats, nil
}

func (s *service) TopProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	limit, short := normalizeLimit(limit)
	if short {
		return []ProductSales{}, nil
	}
	rows, err := s.repo.TopProducts(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query top products")
	}
	if rows == nil {
		rows = []ProductSales{}
	}
	return rows, nil
}

func (s *service) TopCategories(ctx context.Context, limit int) ([]CategorySales, error) {
	limit, short := normalizeLimit(limit)
	if short {
		return []CategorySales{}, nil
	}
	rows, err := s.repo.TopCategories(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query top categories")
	}
	if rows == nil {
		rows = []CategorySales{}
	}
	return rows, nil
}

func (s *service) StatusBreakdown(ctx context.Context) ([]StatusCount, error) {
	rows, err := s.repo.StatusBreakdown(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query status breakdown")
	}
	if rows == nil {
		rows = []StatusCount{}
	}
	return rows, nil
}

// normalizeLimit applies the default and flags an explicit zero, which short
// circuits to an empty result without touching the database.
func normalizeLimit(limit int) (int, bool) {
	if limit == 0 {
		return 0, true
	}
	if limit < 0 {
		return defaultTopLimit, false
	}
	return limit, false
}
