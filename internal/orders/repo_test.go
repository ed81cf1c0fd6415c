package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/spicepalace/spicepalace-backend/pkg/db/models"
	"github.com/spicepalace/spicepalace-backend/pkg/enums"
	"github.com/spicepalace/spicepalace-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT NOT NULL,
  street_address TEXT NOT NULL,
  city TEXT NOT NULL,
  postal_code TEXT NOT NULL,
  special_instructions TEXT,
  payment_method TEXT NOT NULL DEFAULT 'COD',
  status TEXT NOT NULL DEFAULT 'pending',
  total_amount NUMERIC NOT NULL DEFAULT 0,
  user_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItemsTable := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  size TEXT,
  pieces INTEGER,
  quantity INTEGER NOT NULL,
  price NUMERIC NOT NULL
);`
	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(orderItemsTable).Error)

	return db
}

func insertOrder(t *testing.T, repo Repository, createdAt time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		Name:          "Amina",
		Phone:         "0300-1234567",
		StreetAddress: "14 Mall Road",
		City:          "Lahore",
		PostalCode:    "54000",
		Status:        enums.OrderStatusPending,
		TotalAmount:   decimal.RequireFromString("21.50"),
		CreatedAt:     createdAt,
	}
	created, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	return created
}

func TestRepositoryCreateAndFindWithItems(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	order := insertOrder(t, repo, time.Now().UTC())

	size := "large"
	items := []models.OrderItem{
		{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductName: "Chicken Biryani",
			Size:        &size,
			Quantity:    2,
			Price:       decimal.RequireFromString("10.75"),
		},
	}
	require.NoError(t, repo.CreateItems(context.Background(), items))

	found, err := repo.Find(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Chicken Biryani", found.Items[0].ProductName)
	assert.True(t, found.Items[0].Price.Equal(decimal.RequireFromString("10.75")))
}

func TestRepositoryListPageWalksKeyset(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		insertOrder(t, repo, base.Add(time.Duration(i)*time.Hour))
	}

	first, err := repo.ListPage(context.Background(), nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.True(t, first[0].CreatedAt.After(first[1].CreatedAt))

	cursor := &pagination.Cursor{
		CreatedAt: first[1].CreatedAt,
		ID:        first[1].ID,
	}
	second, err := repo.ListPage(context.Background(), cursor, 10)
	require.NoError(t, err)
	require.Len(t, second, 3)
	for _, order := range second {
		assert.True(t, order.CreatedAt.Before(first[1].CreatedAt))
	}
}

func TestRepositoryListByUserFiltersOwner(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	userID := uuid.New()

	mine := insertOrder(t, repo, time.Now().UTC())
	mine.UserID = &userID
	require.NoError(t, repo.(*repository).db.Save(mine).Error)
	insertOrder(t, repo, time.Now().UTC())

	found, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, mine.ID, found[0].ID)
}

func TestRepositoryUpdateStatus(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	order := insertOrder(t, repo, time.Now().UTC())

	require.NoError(t, repo.UpdateStatus(context.Background(), order.ID, enums.OrderStatusConfirmed))

	found, err := repo.Find(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, found.Status)
}

func TestRepositoryDeleteRemovesOrder(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	order := insertOrder(t, repo, time.Now().UTC())

	require.NoError(t, repo.Delete(context.Background(), order.ID))

	_, err := repo.Find(context.Background(), order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
