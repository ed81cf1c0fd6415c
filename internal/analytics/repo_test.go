//go:build db
// +build db

package analytics

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/spicepalace/spicepalace-backend/pkg/db/models"
	"github.com/spicepalace/spicepalace-backend/pkg/enums"
)

func openAnalyticsTestTx(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("SPICEPALACE_DB_DSN")
	if dsn == "" {
		t.Skip("SPICEPALACE_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	tx := conn.Begin()
	require.NoError(t, tx.Error)
	t.Cleanup(func() { _ = tx.Rollback() })

	// Aggregates scan the whole table, so start from a clean slate inside
	// the transaction.
	require.NoError(t, tx.Exec("DELETE FROM order_items").Error)
	require.NoError(t, tx.Exec("DELETE FROM orders").Error)

	return tx
}

func seedOrder(t *testing.T, tx *gorm.DB, createdAt time.Time, status enums.OrderStatus, total string) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		Name:          "Bilal",
		Phone:         "0321-7654321",
		StreetAddress: "9 Canal Bank",
		City:          "Lahore",
		PostalCode:    "54600",
		PaymentMethod: "COD",
		Status:        status,
		TotalAmount:   decimal.RequireFromString(total),
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	require.NoError(t, tx.Create(order).Error)
	return order
}

func seedItem(t *testing.T, tx *gorm.DB, orderID uuid.UUID, name string, quantity int, price string) {
	t.Helper()

	item := &models.OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductName: name,
		Quantity:    quantity,
		Price:       decimal.RequireFromString(price),
	}
	require.NoError(t, tx.Create(item).Error)
}

func TestDashboardSplitsTodayFromLifetime(t *testing.T) {
	tx := openAnalyticsTestTx(t)

	now := time.Now()
	seedOrder(t, tx, now, enums.OrderStatusPending, "500")
	seedOrder(t, tx, now.AddDate(0, 0, -10), enums.OrderStatusDelivered, "300")

	repo := NewRepository(tx)
	stats, err := repo.Dashboard(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.TotalOrders)
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("800")), "total revenue %s", stats.TotalRevenue)
	assert.EqualValues(t, 1, stats.PendingOrders)
	assert.EqualValues(t, 1, stats.TodayOrders)
	assert.True(t, stats.TodayRevenue.Equal(decimal.RequireFromString("500")), "today revenue %s", stats.TodayRevenue)
}

func TestSalesByDayGroupsAndFilters(t *testing.T) {
	tx := openAnalyticsTestTx(t)

	now := time.Now()
	seedOrder(t, tx, now, enums.OrderStatusPending, "120")
	seedOrder(t, tx, now, enums.OrderStatusPending, "80")
	seedOrder(t, tx, now.AddDate(0, 0, -40), enums.OrderStatusDelivered, "999")

	repo := NewRepository(tx)
	points, err := repo.SalesByDay(context.Background(), now.AddDate(0, 0, -30))
	require.NoError(t, err)

	require.Len(t, points, 1)
	assert.Equal(t, now.Format("2006-01-02"), points[0].Date)
	assert.EqualValues(t, 2, points[0].Orders)
	assert.True(t, points[0].Revenue.Equal(decimal.RequireFromString("200")), "revenue %s", points[0].Revenue)
}

func TestTopProductsRanksByQuantity(t *testing.T) {
	tx := openAnalyticsTestTx(t)

	order := seedOrder(t, tx, time.Now(), enums.OrderStatusPending, "12.50")
	seedItem(t, tx, order.ID, "Samosa", 3, "2.00")
	seedItem(t, tx, order.ID, "Naan", 1, "1.50")

	repo := NewRepository(tx)
	rows, err := repo.TopProducts(context.Background(), 5)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "Samosa", rows[0].ProductName)
	assert.EqualValues(t, 3, rows[0].TotalQuantity)
	assert.True(t, rows[0].TotalRevenue.Equal(decimal.RequireFromString("6.00")), "revenue %s", rows[0].TotalRevenue)
}
