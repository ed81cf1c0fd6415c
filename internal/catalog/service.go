package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/spicepalace/spicepalace-backend/pkg/db"
	"github.com/spicepalace/spicepalace-backend/pkg/db/models"
	"github.com/spicepalace/spicepalace-backend/pkg/enums"
	pkgerrors "github.com/spicepalace/spicepalace-backend/pkg/errors"
	"github.com/spicepalace/spicepalace-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ImageStore persists product images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, objectName string) error
}

// Service defines the menu operations exposed over HTTP.
type Service interface {
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	RenameCategory(ctx context.Context, id uuid.UUID, name string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetTotals(ctx context.Context) (*Totals, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	images ImageStore
	logg   *logger.Logger
}

// NewService builds a catalog service. The image store may be nil when no
// bucket is configured; image fields are then ignored.
func NewService(repo Repository, tx txRunner, images ImageStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, images: images, logg: logg}, nil
}

func (s *service) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}

	category, err := s.repo.CreateCategory(ctx, &models.Category{Name: name})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_categories_name_lower") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}

func (s *service) RenameCategory(ctx context.Context, id uuid.UUID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}

	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindCategoryByName(ctx, name); err == nil && existing.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category name")
	}

	if err := s.repo.UpdateCategory(ctx, id, name); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_categories_name_lower") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rename category")
	}
	category.Name = name
	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}
	// Products detach via ON DELETE SET NULL.
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" || input.CategoryID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and category are required")
	}
	if err := validateVariants(input.VariantMode, input.Variants); err != nil {
		return nil, err
	}

	variants := buildVariants(input.Variants)
	basePrice, err := ResolveBasePrice(input.Price, variants)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        input.Name,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		BasePrice:   basePrice,
		IsFeatured:  input.IsFeatured,
		VariantMode: input.VariantMode,
	}

	if input.Image != nil && s.images != nil {
		objectName := productObjectName(input.Image.Filename)
		url, err := s.images.Upload(ctx, objectName, input.Image.ContentType, input.Image.Body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload product image")
		}
		product.ImageURL = &url
		product.ImageObject = &objectName
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.CreateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}
		for i := range variants {
			variants[i].ProductID = product.ID
		}
		if err := repo.CreateVariants(ctx, variants); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product variants")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	product.Variants = variants
	return product, nil
}

func (s *service) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.ClearCategory {
		updates["category_id"] = nil
	} else if input.CategoryID != nil {
		updates["category_id"] = *input.CategoryID
	}
	if input.IsFeatured != nil {
		updates["is_featured"] = *input.IsFeatured
	}

	var newVariants []models.ProductVariant
	if input.ReplaceVariants {
		if err := validateVariants(modeAfterUpdate(product, input), input.Variants); err != nil {
			return nil, err
		}
		newVariants = buildVariants(input.Variants)
		if input.VariantMode != nil {
			updates["variant_mode"] = *input.VariantMode
		}
	}

	// Recompute the stored price whenever price or variants move.
	if input.Price != nil || input.ReplaceVariants {
		effective := product.Variants
		if input.ReplaceVariants {
			effective = newVariants
		}
		explicit := input.Price
		if explicit == nil && len(effective) == 0 {
			explicit = &product.BasePrice
		}
		basePrice, err := ResolveBasePrice(explicit, effective)
		if err != nil {
			return nil, err
		}
		updates["base_price"] = basePrice
	}

	var oldObject *string
	if input.Image != nil && s.images != nil {
		objectName := productObjectName(input.Image.Filename)
		url, err := s.images.Upload(ctx, objectName, input.Image.ContentType, input.Image.Body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload product image")
		}
		oldObject = product.ImageObject
		updates["image_url"] = url
		updates["image_object"] = objectName
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if input.ReplaceVariants {
			if err := repo.DeleteVariantsByProduct(ctx, id); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace product variants")
			}
			for i := range newVariants {
				newVariants[i].ProductID = id
			}
			if err := repo.CreateVariants(ctx, newVariants); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace product variants")
			}
		}
		if err := repo.UpdateProduct(ctx, id, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deleteImageObject(ctx, oldObject)

	return s.GetProduct(ctx, id)
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	// Variants cascade at the DB level.
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	s.deleteImageObject(ctx, product.ImageObject)
	return nil
}

func (s *service) GetTotals(ctx context.Context) (*Totals, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count catalog")
	}
	return totals, nil
}

// deleteImageObject is best-effort: a dangling object is not worth failing
// the request over.
func (s *service) deleteImageObject(ctx context.Context, objectName *string) {
	if objectName == nil || *objectName == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, *objectName); err != nil && s.logg != nil {
		logCtx := s.logg.WithField(ctx, "object", *objectName)
		s.logg.Warn(logCtx, "deleting replaced product image failed")
	}
}

func validateVariants(mode *enums.VariantMode, variants []VariantInput) error {
	if len(variants) == 0 {
		return nil
	}
	if mode == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "variantMode required when variants are provided")
	}
	for _, v := range variants {
		if v.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant price cannot be negative")
		}
		switch *mode {
		case enums.VariantModeSize:
			if v.Size == nil || strings.TrimSpace(*v.Size) == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "size variants require a size label")
			}
		case enums.VariantModePieces:
			if v.Pieces == nil || *v.Pieces <= 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "piece variants require a positive piece count")
			}
		default:
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid variant mode %q", *mode))
		}
	}
	return nil
}

func buildVariants(inputs []VariantInput) []models.ProductVariant {
	variants := make([]models.ProductVariant, 0, len(inputs))
	for _, v := range inputs {
		variants = append(variants, models.ProductVariant{
			Size:   v.Size,
			Pieces: v.Pieces,
			Price:  v.Price,
		})
	}
	return variants
}

func modeAfterUpdate(product *models.Product, input UpdateProductInput) *enums.VariantMode {
	if input.VariantMode != nil {
		return input.VariantMode
	}
	return product.VariantMode
}

func productObjectName(filename string) string {
	ext := path.Ext(filename)
	return "products/" + uuid.NewString() + ext
}
