package analytics

import (
	"context"
	"time"
)

// Repository runs the read-only aggregate queries behind the analytics
// endpoints.
type Repository interface {
	SalesByDay(ctx context.Context, since time.Time) ([]SalesPoint, error)
	Dashboard(ctx context.Context) (*DashboardStats, error)
	TopProducts(ctx context.Context, limit int) ([]ProductSales, error)
	TopCategories(ctx context.Context, limit int) ([]CategorySales, error)
	StatusBreakdown(ctx context.Context) ([]StatusCount, error)
}
