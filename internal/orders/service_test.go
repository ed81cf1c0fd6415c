package orders

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/spicepalace/spicepalace-backend/pkg/db/models"
	"github.com/spicepalace/spicepalace-backend/pkg/enums"
	pkgerrors "github.com/spicepalace/spicepalace-backend/pkg/errors"
	"github.com/spicepalace/spicepalace-backend/pkg/outbox"
	"github.com/spicepalace/spicepalace-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	orders map[uuid.UUID]*models.Order
	items  map[uuid.UUID][]models.OrderItem
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{
		orders: map[uuid.UUID]*models.Order{},
		items:  map[uuid.UUID][]models.OrderItem{},
	}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) CreateItems(ctx context.Context, items []models.OrderItem) error {
	for _, item := range items {
		s.items[item.OrderID] = append(s.items[item.OrderID], item)
	}
	return nil
}

func (s *stubOrdersRepo) Find(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	copied.Items = s.items[id]
	return &copied, nil
}

func (s *stubOrdersRepo) List(ctx context.Context) ([]models.Order, error) {
	out := make([]models.Order, 0, len(s.orders))
	for id, order := range s.orders {
		copied := *order
		copied.Items = s.items[id]
		out = append(out, copied)
	}
	return out, nil
}

func (s *stubOrdersRepo) ListPage(ctx context.Context, after *pagination.Cursor, limit int) ([]models.Order, error) {
	all, _ := s.List(ctx)
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.String() > all[j].ID.String()
	})

	out := []models.Order{}
	for _, order := range all {
		if after != nil {
			later := order.CreatedAt.After(after.CreatedAt) ||
				(order.CreatedAt.Equal(after.CreatedAt) && order.ID.String() >= after.ID.String())
			if later {
				continue
			}
		}
		out = append(out, order)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *stubOrdersRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	out := []models.Order{}
	for id, order := range s.orders {
		if order.UserID != nil && *order.UserID == userID {
			copied := *order
			copied.Items = s.items[id]
			out = append(out, copied)
		}
	}
	return out, nil
}

func (s *stubOrdersRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	order, ok := s.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.Status = status
	return nil
}

func (s *stubOrdersRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.orders, id)
	delete(s.items, id)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type recordingOutbox struct {
	events []outbox.DomainEvent
}

func (r *recordingOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	r.events = append(r.events, event)
	return nil
}

type stubProductFinder struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductFinder) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func newTestService(t *testing.T, repo Repository, published *recordingOutbox, products ProductFinder, policy TransitionPolicy) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, published, products, policy)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func dec(value string) decimal.Decimal {
	d, _ := decimal.NewFromString(value)
	return d
}

func decPtr(value string) *decimal.Decimal {
	d := dec(value)
	return &d
}

func validCreateInput() CreateInput {
	return CreateInput{
		Name:          "Amina",
		Phone:         "0300-1234567",
		StreetAddress: "12 Mall Road",
		City:          "Lahore",
		PostalCode:    "54000",
		Items: []ItemInput{
			{ProductName: "Chicken Biryani", Quantity: 2, Price: decPtr("12.50")},
		},
	}
}

func TestCreateRequiresAddressFields(t *testing.T) {
	svc := newTestService(t, newStubOrdersRepo(), &recordingOutbox{}, nil, TransitionPolicyStrict)

	input := validCreateInput()
	input.City = "  "
	_, err := svc.Create(context.Background(), input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRecomputesTotal(t *testing.T) {
	repo := newStubOrdersRepo()
	box := &recordingOutbox{}
	svc := newTestService(t, repo, box, nil, TransitionPolicyStrict)

	input := validCreateInput()
	input.Items = []ItemInput{
		{ProductName: "Chicken Biryani", Quantity: 2, Price: decPtr("12.50")},
		{ProductName: "Raita", Quantity: 3, Price: decPtr("1.25")},
	}
	order, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !order.TotalAmount.Equal(dec("28.75")) {
		t.Fatalf("expected total 28.75, got %s", order.TotalAmount)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", order.Status)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	if order.PaymentMethod != "COD" {
		t.Fatalf("expected COD default, got %s", order.PaymentMethod)
	}
}

func TestCreateResolvesCatalogPrice(t *testing.T) {
	repo := newStubOrdersRepo()
	productID := uuid.New()
	size := "full"
	sizePtr := &size
	mode := enums.VariantModeSize
	finder := &stubProductFinder{products: map[uuid.UUID]*models.Product{
		productID: {
			ID:          productID,
			Name:        "Seekh Kebab",
			BasePrice:   dec("6.00"),
			VariantMode: &mode,
			Variants: []models.ProductVariant{
				{Size: sizePtr, Price: dec("9.75")},
			},
		},
	}}
	svc := newTestService(t, repo, &recordingOutbox{}, finder, TransitionPolicyStrict)

	input := validCreateInput()
	clientPrice := decPtr("0.01")
	input.Items = []ItemInput{
		{ProductID: &productID, Size: sizePtr, Quantity: 1, Price: clientPrice},
	}
	order, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !order.TotalAmount.Equal(dec("9.75")) {
		t.Fatalf("expected catalog price 9.75 to win, got %s", order.TotalAmount)
	}
	if order.Items[0].ProductName != "Seekh Kebab" {
		t.Fatalf("expected catalog name snapshot, got %s", order.Items[0].ProductName)
	}
}

func TestCreateRejectsZeroQuantity(t *testing.T) {
	svc := newTestService(t, newStubOrdersRepo(), &recordingOutbox{}, nil, TransitionPolicyStrict)

	input := validCreateInput()
	input.Items[0].Quantity = 0
	_, err := svc.Create(context.Background(), input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateEmitsOutboxEvent(t *testing.T) {
	box := &recordingOutbox{}
	svc := newTestService(t, newStubOrdersRepo(), box, nil, TransitionPolicyStrict)

	order, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(box.events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(box.events))
	}
	event := box.events[0]
	if event.EventType != enums.EventOrderCreated {
		t.Fatalf("unexpected event type %s", event.EventType)
	}
	if event.AggregateID != order.ID {
		t.Fatalf("event aggregate %s does not match order %s", event.AggregateID, order.ID)
	}
}

func seedOrder(repo *stubOrdersRepo, status enums.OrderStatus) *models.Order {
	order := &models.Order{
		ID:     uuid.New(),
		Name:   "Amina",
		Status: status,
	}
	repo.orders[order.ID] = order
	return order
}

func TestSetStatusFollowsTransitionGraph(t *testing.T) {
	cases := []struct {
		from    enums.OrderStatus
		to      enums.OrderStatus
		allowed bool
	}{
		{enums.OrderStatusPending, enums.OrderStatusConfirmed, true},
		{enums.OrderStatusPending, enums.OrderStatusCancelled, true},
		{enums.OrderStatusPending, enums.OrderStatusReady, false},
		{enums.OrderStatusConfirmed, enums.OrderStatusPreparing, true},
		{enums.OrderStatusConfirmed, enums.OrderStatusDelivered, false},
		{enums.OrderStatusPreparing, enums.OrderStatusReady, true},
		{enums.OrderStatusReady, enums.OrderStatusDelivered, true},
		{enums.OrderStatusDelivered, enums.OrderStatusPending, false},
		{enums.OrderStatusCancelled, enums.OrderStatusConfirmed, false},
	}

	for _, tc := range cases {
		repo := newStubOrdersRepo()
		order := seedOrder(repo, tc.from)
		svc := newTestService(t, repo, &recordingOutbox{}, nil, TransitionPolicyStrict)

		updated, err := svc.SetStatus(context.Background(), order.ID, string(tc.to))
		if tc.allowed {
			if err != nil {
				t.Fatalf("%s -> %s: unexpected error %v", tc.from, tc.to, err)
			}
			if updated.Status != tc.to {
				t.Fatalf("%s -> %s: status not applied, got %s", tc.from, tc.to, updated.Status)
			}
			continue
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("%s -> %s: expected state conflict, got %v", tc.from, tc.to, err)
		}
		if repo.orders[order.ID].Status != tc.from {
			t.Fatalf("%s -> %s: stored status changed to %s", tc.from, tc.to, repo.orders[order.ID].Status)
		}
	}
}

func TestSetStatusAnyPolicySkipsGraph(t *testing.T) {
	repo := newStubOrdersRepo()
	order := seedOrder(repo, enums.OrderStatusPending)
	svc := newTestService(t, repo, &recordingOutbox{}, nil, TransitionPolicyAny)

	updated, err := svc.SetStatus(context.Background(), order.ID, string(enums.OrderStatusDelivered))
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", updated.Status)
	}
}

func TestSetStatusSameStatusNoOp(t *testing.T) {
	repo := newStubOrdersRepo()
	order := seedOrder(repo, enums.OrderStatusConfirmed)
	box := &recordingOutbox{}
	svc := newTestService(t, repo, box, nil, TransitionPolicyStrict)

	updated, err := svc.SetStatus(context.Background(), order.ID, string(enums.OrderStatusConfirmed))
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != enums.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", updated.Status)
	}
	if len(box.events) != 0 {
		t.Fatalf("expected no outbox events for a no-op, got %d", len(box.events))
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	repo := newStubOrdersRepo()
	order := seedOrder(repo, enums.OrderStatusPending)
	svc := newTestService(t, repo, &recordingOutbox{}, nil, TransitionPolicyStrict)

	_, err := svc.SetStatus(context.Background(), order.ID, "shipped")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.orders[order.ID].Status != enums.OrderStatusPending {
		t.Fatalf("stored status changed to %s", repo.orders[order.ID].Status)
	}
}

func TestSetStatusEmitsOutboxEvent(t *testing.T) {
	repo := newStubOrdersRepo()
	order := seedOrder(repo, enums.OrderStatusPending)
	box := &recordingOutbox{}
	svc := newTestService(t, repo, box, nil, TransitionPolicyStrict)

	if _, err := svc.SetStatus(context.Background(), order.ID, string(enums.OrderStatusConfirmed)); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if len(box.events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(box.events))
	}
	if box.events[0].EventType != enums.EventOrderStatusChanged {
		t.Fatalf("unexpected event type %s", box.events[0].EventType)
	}
}

func TestSetStatusNotFound(t *testing.T) {
	svc := newTestService(t, newStubOrdersRepo(), &recordingOutbox{}, nil, TransitionPolicyStrict)

	_, err := svc.SetStatus(context.Background(), uuid.New(), string(enums.OrderStatusConfirmed))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestByUserNotFoundWhenEmpty(t *testing.T) {
	svc := newTestService(t, newStubOrdersRepo(), &recordingOutbox{}, nil, TransitionPolicyStrict)

	_, err := svc.ByUser(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPagedWalksFeedWithCursor(t *testing.T) {
	repo := newStubOrdersRepo()
	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		order := seedOrder(repo, enums.OrderStatusPending)
		order.CreatedAt = base.Add(time.Duration(i) * time.Hour)
	}
	svc := newTestService(t, repo, &recordingOutbox{}, nil, TransitionPolicyStrict)

	first, err := svc.Paged(context.Background(), pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("first page returned error: %v", err)
	}
	if len(first.Orders) != 2 {
		t.Fatalf("expected 2 orders on the first page, got %d", len(first.Orders))
	}
	if first.NextCursor == "" {
		t.Fatalf("expected a next cursor on the first page")
	}
	if first.Orders[0].CreatedAt.Before(first.Orders[1].CreatedAt) {
		t.Fatalf("expected newest-first ordering")
	}

	second, err := svc.Paged(context.Background(), pagination.Params{Limit: 2, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("second page returned error: %v", err)
	}
	if len(second.Orders) != 1 {
		t.Fatalf("expected 1 order on the second page, got %d", len(second.Orders))
	}
	if second.NextCursor != "" {
		t.Fatalf("expected no cursor on the last page")
	}
}

func TestPagedRejectsMalformedCursor(t *testing.T) {
	svc := newTestService(t, newStubOrdersRepo(), &recordingOutbox{}, nil, TransitionPolicyStrict)

	_, err := svc.Paged(context.Background(), pagination.Params{Cursor: "not-base64!"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteMissingOrder(t *testing.T) {
	svc := newTestService(t, newStubOrdersRepo(), &recordingOutbox{}, nil, TransitionPolicyStrict)

	err := svc.Delete(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
