package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicepalace/spicepalace-backend/api/responses"
	"github.com/spicepalace/spicepalace-backend/api/validators"
	"github.com/spicepalace/spicepalace-backend/internal/catalog"
	"github.com/spicepalace/spicepalace-backend/pkg/enums"
	pkgerrors "github.com/spicepalace/spicepalace-backend/pkg/errors"
	"github.com/spicepalace/spicepalace-backend/pkg/logger"
)

func ProductCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := validators.ParseMultipartForm(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.CreateProductInput{}
		input.Name, _ = validators.FormValue(r, "name")

		if desc, ok := validators.FormValue(r, "description"); ok && desc != "" {
			input.Description = &desc
		}
		if raw, ok := validators.FormValue(r, "categoryId"); ok && raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid category id"))
				return
			}
			input.CategoryID = &id
		}
		if raw, ok := validators.FormValue(r, "price"); ok && raw != "" {
			price, err := decimal.NewFromString(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid price"))
				return
			}
			input.Price = &price
		}
		if raw, ok := validators.FormValue(r, "isFeatured"); ok && raw != "" {
			featured, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid isFeatured flag"))
				return
			}
			input.IsFeatured = featured
		}
		if raw, ok := validators.FormValue(r, "variantMode"); ok && raw != "" {
			mode, err := enums.ParseVariantMode(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid variant mode"))
				return
			}
			input.VariantMode = &mode
		}
		if raw, ok := validators.FormValue(r, "variants"); ok && raw != "" {
			variants, err := parseVariantsField(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Variants = variants
		}

		file, header, err := validators.FormFile(r, "image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if file != nil {
			defer file.Close()
			input.Image = &catalog.ImageUpload{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Body:        file,
			}
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "Product created successfully", product)
	}
}

func ProductAll(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Products fetched successfully", products)
	}
}

func ProductSingle(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Product fetched successfully", product)
	}
}

func ProductUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := validators.ParseMultipartForm(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.UpdateProductInput{}
		if name, ok := validators.FormValue(r, "name"); ok {
			input.Name = &name
		}
		if desc, ok := validators.FormValue(r, "description"); ok {
			input.Description = &desc
		}
		if raw, ok := validators.FormValue(r, "categoryId"); ok {
			if raw == "" {
				input.ClearCategory = true
			} else {
				categoryID, err := uuid.Parse(raw)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid category id"))
					return
				}
				input.CategoryID = &categoryID
			}
		}
		if raw, ok := validators.FormValue(r, "price"); ok && raw != "" {
			price, err := decimal.NewFromString(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid price"))
				return
			}
			input.Price = &price
		}
		if raw, ok := validators.FormValue(r, "isFeatured"); ok && raw != "" {
			featured, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid isFeatured flag"))
				return
			}
			input.IsFeatured = &featured
		}
		if raw, ok := validators.FormValue(r, "variantMode"); ok && raw != "" {
			mode, err := enums.ParseVariantMode(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid variant mode"))
				return
			}
			input.VariantMode = &mode
		}
		if raw, ok := validators.FormValue(r, "variants"); ok {
			input.ReplaceVariants = true
			if raw != "" {
				variants, err := parseVariantsField(raw)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				input.Variants = variants
			}
		}

		file, header, err := validators.FormFile(r, "image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if file != nil {
			defer file.Close()
			input.Image = &catalog.ImageUpload{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Body:        file,
			}
		}

		product, err := svc.UpdateProduct(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Product updated successfully", product)
	}
}

func ProductDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Product deleted successfully", nil)
	}
}

func ProductTotal(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		totals, err := svc.GetTotals(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Product totals fetched successfully", totals)
	}
}

func parseVariantsField(raw string) ([]catalog.VariantInput, error) {
	var variants []catalog.VariantInput
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&variants); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variants payload")
	}
	return variants, nil
}
