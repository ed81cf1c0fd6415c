package analytics

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const (
	salesByDaySQL = `
SELECT
  to_char(DATE(created_at), 'YYYY-MM-DD') AS date,
  COUNT(*) AS orders,
  COALESCE(SUM(total_amount), 0) AS revenue
FROM orders
WHERE created_at >= ?
GROUP BY DATE(created_at)
ORDER BY DATE(created_at) ASC
`

	dashboardSQL = `
SELECT
  COUNT(*) AS total_orders,
  COALESCE(SUM(total_amount), 0) AS total_revenue,
  COUNT(*) FILTER (WHERE status = 'pending') AS pending_orders,
  COUNT(*) FILTER (WHERE DATE(created_at) = CURRENT_DATE) AS today_orders,
  COALESCE(SUM(total_amount) FILTER (WHERE DATE(created_at) = CURRENT_DATE), 0) AS today_revenue
FROM orders
`

	topProductsSQL = `
SELECT
  product_name,
  SUM(quantity) AS total_quantity,
  COALESCE(SUM(quantity * price), 0) AS total_revenue
FROM order_items
GROUP BY product_name
ORDER BY total_quantity DESC
LIMIT ?
`

	topCategoriesSQL = `
SELECT
  COALESCE(c.name, 'uncategorized') AS category_name,
  SUM(oi.quantity) AS total_quantity,
  COALESCE(SUM(oi.quantity * oi.price), 0) AS total_revenue
FROM order_items oi
LEFT JOIN products p ON lower(p.name) = lower(oi.product_name)
LEFT JOIN categories c ON c.id = p.category_id
GROUP BY COALESCE(c.name, 'uncategorized')
ORDER BY total_quantity DESC
LIMIT ?
`

	statusBreakdownSQL = `
SELECT status, COUNT(*) AS count
FROM orders
GROUP BY status
ORDER BY count DESC
`
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds the analytics repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SalesByDay(ctx context.Context, since time.Time) ([]SalesPoint, error) {
	var points []SalesPoint
	err := r.db.WithContext(ctx).Raw(salesByDaySQL, since).Scan(&points).Error
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (r *repository) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	err := r.db.WithContext(ctx).Raw(dashboardSQL).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *repository) TopProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	var rows []ProductSales
	err := r.db.WithContext(ctx).Raw(topProductsSQL, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) TopCategories(ctx context.Context, limit int) ([]CategorySales, error) {
	var rows []CategorySales
	err := r.db.WithContext(ctx).Raw(topCategoriesSQL, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) StatusBreakdown(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).Raw(statusBreakdownSQL).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
