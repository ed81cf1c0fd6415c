package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/spicepalace/spicepalace-backend/internal/catalog"
	"github.com/spicepalace/spicepalace-backend/pkg/db/models"
	"github.com/spicepalace/spicepalace-backend/pkg/enums"
	pkgerrors "github.com/spicepalace/spicepalace-backend/pkg/errors"
	"github.com/spicepalace/spicepalace-backend/pkg/outbox"
	"github.com/spicepalace/spicepalace-backend/pkg/pagination"
)

const defaultPaymentMethod = "COD"

// TransitionPolicy selects how SetStatus validates the move.
type TransitionPolicy string

const (
	// TransitionPolicyStrict only allows moves along the status adjacency graph.
	TransitionPolicyStrict TransitionPolicy = "strict"
	// TransitionPolicyAny accepts any known status, mirroring a plain
	// membership check.
	TransitionPolicyAny TransitionPolicy = "any"
)

// ParseTransitionPolicy maps the configured string onto a policy, defaulting
// to strict.
func ParseTransitionPolicy(value string) TransitionPolicy {
	if strings.EqualFold(value, string(TransitionPolicyAny)) {
		return TransitionPolicyAny
	}
	return TransitionPolicyStrict
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ProductFinder resolves catalog products for item price snapshots.
type ProductFinder interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service defines the order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error)
	All(ctx context.Context) ([]models.Order, error)
	Paged(ctx context.Context, params pagination.Params) (*Page, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	catalog ProductFinder
	policy  TransitionPolicy
}

// OrderCreatedEvent is emitted in the order's own transaction.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	UserID      *uuid.UUID        `json:"user_id,omitempty"`
	Status      enums.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	ItemCount   int               `json:"item_count"`
}

// OrderStatusChangedEvent is emitted alongside every status move.
type OrderStatusChangedEvent struct {
	OrderID uuid.UUID         `json:"order_id"`
	From    enums.OrderStatus `json:"from"`
	To      enums.OrderStatus `json:"to"`
}

// NewService builds the order service. The catalog finder may be nil; items
// then rely entirely on their supplied snapshots.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, products ProductFinder, policy TransitionPolicy) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if policy == "" {
		policy = TransitionPolicyStrict
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  outboxSvc,
		catalog: products,
		policy:  policy,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	paymentMethod := strings.TrimSpace(input.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = defaultPaymentMethod
	}

	items, total, err := s.buildItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		Name:                strings.TrimSpace(input.Name),
		Phone:               strings.TrimSpace(input.Phone),
		StreetAddress:       strings.TrimSpace(input.StreetAddress),
		City:                strings.TrimSpace(input.City),
		PostalCode:          strings.TrimSpace(input.PostalCode),
		SpecialInstructions: input.SpecialInstructions,
		PaymentMethod:       paymentMethod,
		Status:              enums.OrderStatusPending,
		TotalAmount:         total,
		UserID:              input.UserID,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}

		var actor *outbox.ActorRef
		if input.UserID != nil {
			actor = &outbox.ActorRef{UserID: input.UserID}
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			Version:       1,
			Data: OrderCreatedEvent{
				OrderID:     order.ID,
				UserID:      input.UserID,
				Status:      order.Status,
				TotalAmount: order.TotalAmount,
				ItemCount:   len(items),
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order created event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, order.ID)
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	target, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", status))
	}

	var result *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.Find(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if order.Status == target {
			result = order
			return nil
		}
		if s.policy == TransitionPolicyStrict && !order.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, target))
		}

		if err := repo.UpdateStatus(ctx, id, target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: OrderStatusChangedEvent{
				OrderID: order.ID,
				From:    order.Status,
				To:      target,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit status changed event")
		}

		order.Status = target
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) All(ctx context.Context) ([]models.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

// Paged walks the order feed with a keyset cursor. One extra row is fetched
// to detect whether another page exists.
func (s *service) Paged(ctx context.Context, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	orders, err := s.repo.ListPage(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order page")
	}

	page := &Page{Orders: orders}
	if len(orders) > limit {
		page.Orders = orders[:limit]
		last := page.Orders[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	if page.Orders == nil {
		page.Orders = []models.Order{}
	}
	return page, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user orders")
	}
	if len(orders) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no orders found for this user")
	}
	return orders, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}

func validateCreate(input CreateInput) error {
	missing := []string{}
	for field, value := range map[string]string{
		"name":          input.Name,
		"phone":         input.Phone,
		"streetAddress": input.StreetAddress,
		"city":          input.City,
		"postalCode":    input.PostalCode,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required fields").WithDetails(missing)
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1")
		}
	}
	return nil
}

// buildItems snapshots every cart line and recomputes the order total. The
// catalog wins over client-supplied prices whenever the line names a product.
func (s *service) buildItems(ctx context.Context, inputs []ItemInput) ([]models.OrderItem, decimal.Decimal, error) {
	items := make([]models.OrderItem, 0, len(inputs))
	total := decimal.Zero

	for _, input := range inputs {
		name := strings.TrimSpace(input.ProductName)
		var unitPrice decimal.Decimal

		switch {
		case input.ProductID != nil && s.catalog != nil:
			product, err := s.catalog.GetProduct(ctx, *input.ProductID)
			if err != nil {
				return nil, decimal.Zero, err
			}
			price, err := catalog.ResolveVariantPrice(product, catalog.VariantSelector{
				Size:   input.Size,
				Pieces: input.Pieces,
			}, catalog.FallbackBasePrice)
			if err != nil {
				return nil, decimal.Zero, err
			}
			unitPrice = price
			name = product.Name

		case input.Price != nil:
			if input.Price.IsNegative() {
				return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "item price cannot be negative")
			}
			unitPrice = *input.Price

		default:
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "item needs a productId or a price")
		}

		if name == "" {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "item product name required")
		}

		items = append(items, models.OrderItem{
			ProductName: name,
			Size:        input.Size,
			Pieces:      input.Pieces,
			Quantity:    input.Quantity,
			Price:       unitPrice,
		})
		total = total.Add(unitPrice.Mul(decimal.NewFromInt(int64(input.Quantity))))
	}

	return items, total, nil
}
