package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/spicepalace/spicepalace-backend/api/responses"
	"github.com/spicepalace/spicepalace-backend/api/validators"
	"github.com/spicepalace/spicepalace-backend/internal/orders"
	pkgerrors "github.com/spicepalace/spicepalace-backend/pkg/errors"
	"github.com/spicepalace/spicepalace-backend/pkg/logger"
	"github.com/spicepalace/spicepalace-backend/pkg/pagination"
)

type orderCreateRequest struct {
	Name                string             `json:"name" validate:"required"`
	Phone               string             `json:"phone" validate:"required"`
	StreetAddress       string             `json:"streetAddress" validate:"required"`
	City                string             `json:"city" validate:"required"`
	PostalCode          string             `json:"postalCode" validate:"required"`
	SpecialInstructions *string            `json:"specialInstructions,omitempty"`
	PaymentMethod       string             `json:"paymentMethod,omitempty"`
	UserID              *string            `json:"userId,omitempty"`
	TotalAmount         *string            `json:"totalAmount,omitempty"`
	Items               []orders.ItemInput `json:"items,omitempty"`
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload orderCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.CreateInput{
			Name:                payload.Name,
			Phone:               payload.Phone,
			StreetAddress:       payload.StreetAddress,
			City:                payload.City,
			PostalCode:          payload.PostalCode,
			SpecialInstructions: payload.SpecialInstructions,
			PaymentMethod:       payload.PaymentMethod,
			Items:               payload.Items,
		}
		if payload.UserID != nil && strings.TrimSpace(*payload.UserID) != "" {
			userID, err := uuid.Parse(*payload.UserID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid user id"))
				return
			}
			input.UserID = &userID
		}

		order, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "Order placed successfully", order)
	}
}

func OrderAll(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.All(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Orders fetched successfully", all)
	}
}

func OrderPaged(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.Paged(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Orders fetched successfully", page)
	}
}

func OrderSingle(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Order fetched successfully", order)
	}
}

func OrderUpdate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload orderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.SetStatus(r.Context(), id, payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Order status updated successfully", order)
	}
}

func OrderDelete(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Order deleted successfully", nil)
	}
}

func OrdersByUser(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userOrders, err := svc.ByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Orders fetched successfully", userOrders)
	}
}
