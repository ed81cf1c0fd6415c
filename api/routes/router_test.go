package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicepalace/spicepalace-backend/api/controllers"
	"github.com/spicepalace/spicepalace-backend/internal/analytics"
	"github.com/spicepalace/spicepalace-backend/internal/catalog"
	"github.com/spicepalace/spicepalace-backend/internal/orders"
	"github.com/spicepalace/spicepalace-backend/internal/users"
	"github.com/spicepalace/spicepalace-backend/pkg/config"
	"github.com/spicepalace/spicepalace-backend/pkg/db/models"
	"github.com/spicepalace/spicepalace-backend/pkg/enums"
	pkgerrors "github.com/spicepalace/spicepalace-backend/pkg/errors"
	"github.com/spicepalace/spicepalace-backend/pkg/metrics"
	"github.com/spicepalace/spicepalace-backend/pkg/pagination"
)

type stubCatalogService struct{}

func (stubCatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	return &models.Category{ID: uuid.New(), Name: name}, nil
}

func (stubCatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return []models.Category{{ID: uuid.New(), Name: "Curries"}}, nil
}

func (stubCatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
}

func (stubCatalogService) RenameCategory(ctx context.Context, id uuid.UUID, name string) (*models.Category, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
}

func (stubCatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubCatalogService) CreateProduct(ctx context.Context, input catalog.CreateProductInput) (*models.Product, error) {
	return &models.Product{ID: uuid.New(), Name: input.Name}, nil
}

func (stubCatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return nil, nil
}

func (stubCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (stubCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input catalog.UpdateProductInput) (*models.Product, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (stubCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubCatalogService) GetTotals(ctx context.Context) (*catalog.Totals, error) {
	return &catalog.Totals{Products: 3}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) Create(ctx context.Context, input orders.CreateInput) (*models.Order, error) {
	return &models.Order{ID: uuid.New(), Status: enums.OrderStatusPending}, nil
}

func (stubOrdersService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (stubOrdersService) All(ctx context.Context) ([]models.Order, error) {
	return nil, nil
}

func (stubOrdersService) Paged(ctx context.Context, params pagination.Params) (*orders.Page, error) {
	return &orders.Page{Orders: []models.Order{}}, nil
}

func (stubOrdersService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (stubOrdersService) ByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no orders found for this user")
}

func (stubOrdersService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubAnalyticsService struct{}

func (stubAnalyticsService) SalesByDay(ctx context.Context, period string) ([]analytics.SalesPoint, error) {
	return []analytics.SalesPoint{}, nil
}

func (stubAnalyticsService) Dashboard(ctx context.Context) (*analytics.DashboardStats, error) {
	return &analytics.DashboardStats{}, nil
}

func (stubAnalyticsService) TopProducts(ctx context.Context, limit int) ([]analytics.ProductSales, error) {
	return []analytics.ProductSales{}, nil
}

func (stubAnalyticsService) TopCategories(ctx context.Context, limit int) ([]analytics.CategorySales, error) {
	return []analytics.CategorySales{}, nil
}

func (stubAnalyticsService) StatusBreakdown(ctx context.Context) ([]analytics.StatusCount, error) {
	return []analytics.StatusCount{}, nil
}

type stubUsersService struct{}

func (stubUsersService) RequestOTP(ctx context.Context, email string) error { return nil }

func (stubUsersService) VerifyOTP(ctx context.Context, email, code string) (*users.AuthResult, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired code")
}

func (stubUsersService) CheckEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func (stubUsersService) Register(ctx context.Context, input users.RegisterInput) (*users.AuthResult, error) {
	return &users.AuthResult{Token: "token"}, nil
}

func (stubUsersService) Login(ctx context.Context, email, password string) (*users.AuthResult, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func (stubUsersService) UpdateProfile(ctx context.Context, id uuid.UUID, input users.UpdateProfileInput) (*models.User, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func (stubUsersService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func (stubUsersService) GetRole(ctx context.Context, id uuid.UUID) (enums.UserRole, error) {
	return enums.UserRoleUser, nil
}

type recordingOrdersService struct {
	stubOrdersService
	created []orders.CreateInput
}

func (s *recordingOrdersService) Create(ctx context.Context, input orders.CreateInput) (*models.Order, error) {
	s.created = append(s.created, input)
	return &models.Order{ID: uuid.New(), Status: enums.OrderStatusPending}, nil
}

type recordingCatalogService struct {
	stubCatalogService
	productInputs []catalog.CreateProductInput
}

func (s *recordingCatalogService) CreateProduct(ctx context.Context, input catalog.CreateProductInput) (*models.Product, error) {
	s.productInputs = append(s.productInputs, input)
	return &models.Product{ID: uuid.New(), Name: input.Name}, nil
}

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

func testDeps() Deps {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.App.CORSOrigins = "http://localhost:8080"

	return Deps{
		Config:      cfg,
		HTTPMetrics: metrics.NewHTTPMetrics(),
		Catalog:     stubCatalogService{},
		Orders:      stubOrdersService{},
		Analytics:   stubAnalyticsService{},
		Users:       stubUsersService{},
		ReadyChecks: map[string]controllers.Pinger{"db": stubPinger{}},
	}
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(testDeps())
}

func TestHealthEndpoints(t *testing.T) {
	router := testRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
	}
}

func TestCategoryCreateEnvelopeUsesDataKey(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/category/create", strings.NewReader(`{"name":"Curries"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in category create response, got %s", w.Body.String())
	}
}

func TestOrderCreateRejectsEmptyBody(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/order/create", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestOrderCreateAcceptsCheckoutPayload(t *testing.T) {
	svc := &recordingOrdersService{}
	deps := testDeps()
	deps.Orders = svc
	router := NewRouter(deps)

	userID := uuid.NewString()
	payload := `{
		"name": "Asha",
		"phone": "0123456789",
		"streetAddress": "12 High St",
		"city": "Leeds",
		"postalCode": "LS1 4AB",
		"specialInstructions": "ring the bell",
		"paymentMethod": "card",
		"userId": "` + userID + `",
		"totalAmount": "21.50",
		"items": [
			{"name": "Butter Chicken", "size": "large", "quantity": 2, "price": "10.75"}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/order/create", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(svc.created) != 1 {
		t.Fatalf("expected one create call, got %d", len(svc.created))
	}
	input := svc.created[0]
	if input.StreetAddress != "12 High St" || input.PostalCode != "LS1 4AB" {
		t.Fatalf("address fields not decoded: %+v", input)
	}
	if input.PaymentMethod != "card" {
		t.Fatalf("expected payment method card, got %q", input.PaymentMethod)
	}
	if input.UserID == nil || input.UserID.String() != userID {
		t.Fatalf("expected user id %s, got %v", userID, input.UserID)
	}
	if len(input.Items) != 1 || input.Items[0].ProductName != "Butter Chicken" || input.Items[0].Quantity != 2 {
		t.Fatalf("item not decoded: %+v", input.Items)
	}
	if input.Items[0].Price == nil || !input.Items[0].Price.Equal(decimal.RequireFromString("10.75")) {
		t.Fatalf("item price not decoded: %v", input.Items[0].Price)
	}
}

func TestOrderCreateAcceptsOrderWithoutItems(t *testing.T) {
	svc := &recordingOrdersService{}
	deps := testDeps()
	deps.Orders = svc
	router := NewRouter(deps)

	payload := `{
		"name": "Asha",
		"phone": "0123456789",
		"streetAddress": "12 High St",
		"city": "Leeds",
		"postalCode": "LS1 4AB"
	}`
	req := httptest.NewRequest(http.MethodPost, "/order/create", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for itemless order, got %d: %s", w.Code, w.Body.String())
	}
	if len(svc.created) != 1 || len(svc.created[0].Items) != 0 {
		t.Fatalf("expected one itemless create call, got %+v", svc.created)
	}
}

func TestProductCreateReadsCategoryID(t *testing.T) {
	svc := &recordingCatalogService{}
	deps := testDeps()
	deps.Catalog = svc
	router := NewRouter(deps)

	categoryID := uuid.New()
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	_ = form.WriteField("name", "Chicken Biryani")
	_ = form.WriteField("categoryId", categoryID.String())
	_ = form.WriteField("price", "12.00")
	_ = form.Close()

	req := httptest.NewRequest(http.MethodPost, "/product/create", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(svc.productInputs) != 1 {
		t.Fatalf("expected one create call, got %d", len(svc.productInputs))
	}
	input := svc.productInputs[0]
	if input.CategoryID == nil || *input.CategoryID != categoryID {
		t.Fatalf("expected category id %s, got %v", categoryID, input.CategoryID)
	}
}

func TestUserOrdersNotFoundEnvelope(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/order/userOrder/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success {
		t.Fatal("expected success=false")
	}
	if body.Message == "" {
		t.Fatal("expected a message")
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAdminGuardBlocksWithoutToken(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.FeatureFlags.AdminGuard = true
	cfg.JWT = config.JWTConfig{Secret: "secret", Issuer: "spicepalace", ExpirationMinutes: 5}

	router := NewRouter(Deps{
		Config:    cfg,
		Catalog:   stubCatalogService{},
		Orders:    stubOrdersService{},
		Analytics: stubAnalyticsService{},
		Users:     stubUsersService{},
	})

	req := httptest.NewRequest(http.MethodPost, "/category/create", strings.NewReader(`{"name":"Curries"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
