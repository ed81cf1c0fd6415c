package analytics

import "github.com/shopspring/decimal"

// SalesPoint is one day of the sales series.
type SalesPoint struct {
	Date    string          `json:"date"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DashboardStats is the headline dashboard block.
type DashboardStats struct {
	TotalOrders   int64           `json:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	PendingOrders int64           `json:"pendingOrders"`
	TodayOrders   int64           `json:"todayOrders"`
	TodayRevenue  decimal.Decimal `json:"todayRevenue"`
}

// ProductSales aggregates order item snapshots by product name.
type ProductSales struct {
	ProductName   string          `json:"productName"`
	TotalQuantity int64           `json:"totalQuantity"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

// CategorySales aggregates item snapshots through the catalog join. Items
// whose snapshot no longer matches a product land in the "uncategorized"
// bucket.
type CategorySales struct {
	CategoryName  string          `json:"categoryName"`
	TotalQuantity int64           `json:"totalQuantity"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

// StatusCount is one slice of the status breakdown. Statuses with no orders
// are omitted rather than zero-filled.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}
