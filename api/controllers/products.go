package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printforge/printshop-backend/api/responses"
	"github.com/printforge/printshop-backend/api/validators"
	productsvc "github.com/printforge/printshop-backend/internal/products"
	"github.com/printforge/printshop-backend/pkg/db/models"
	pkgerrors "github.com/printforge/printshop-backend/pkg/errors"
	"github.com/printforge/printshop-backend/pkg/logger"
)

type createProductRequest struct {
	Name         string  `json:"name" validate:"required"`
	Description  *string `json:"description,omitempty"`
	SKU          *string `json:"sku,omitempty"`
	UnitCost     string  `json:"unit_cost" validate:"required"`
	Stock        int     `json:"stock" validate:"gte=0"`
	Category     *string `json:"category,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	ImageMediaID *string `json:"image_media_id,omitempty"`
}

type updateProductRequest struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	SKU          *string `json:"sku,omitempty"`
	UnitCost     *string `json:"unit_cost,omitempty"`
	Stock        *int    `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Category     *string `json:"category,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	ImageMediaID *string `json:"image_media_id,omitempty"`
	ClearImage   bool    `json:"clear_image,omitempty"`
}

func parseOptionalUUID(field string, value *string) (*uuid.UUID, error) {
	if value == nil {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*value))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid uuid").WithDetails(map[string]any{"field": field})
	}
	return &id, nil
}

type productResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	SKU          *string         `json:"sku,omitempty"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Stock        int             `json:"stock"`
	Category     *string         `json:"category,omitempty"`
	Notes        *string         `json:"notes,omitempty"`
	ImageMediaID *uuid.UUID      `json:"image_media_id,omitempty"`
	Image        *mediaResponse  `json:"image,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type productListResponse struct {
	Products   []productResponse `json:"products"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func newProductResponse(product *models.Product) productResponse {
	resp := productResponse{
		ID:           product.ID,
		Name:         product.Name,
		Description:  product.Description,
		SKU:          product.SKU,
		UnitCost:     product.UnitCost,
		Stock:        product.Stock,
		Category:     product.Category,
		Notes:        product.Notes,
		ImageMediaID: product.ImageMediaID,
		CreatedAt:    product.CreatedAt,
		UpdatedAt:    product.UpdatedAt,
	}
	if product.ImageMedia != nil {
		image := newMediaResponse(product.ImageMedia)
		resp.Image = &image
	}
	return resp
}

func newProductListResponse(list *productsvc.ProductList) productListResponse {
	items := make([]productResponse, 0, len(list.Products))
	for i := range list.Products {
		items = append(items, newProductResponse(&list.Products[i]))
	}
	return productListResponse{Products: items, NextCursor: list.NextCursor}
}

// ProductCreate handles creating a catalog entry.
func ProductCreate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		unitCost, err := parseDecimal("unit_cost", payload.UnitCost)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		imageID, err := parseOptionalUUID("image_media_id", payload.ImageMediaID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), productsvc.CreateProductInput{
			Name:         payload.Name,
			Description:  payload.Description,
			SKU:          payload.SKU,
			UnitCost:     unitCost,
			Stock:        payload.Stock,
			Category:     payload.Category,
			Notes:        payload.Notes,
			ImageMediaID: imageID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newProductResponse(product))
	}
}

// ProductDetail returns one catalog entry by id.
func ProductDetail(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

// ProductList returns a cursor-paginated page of the catalog.
func ProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := productsvc.ProductListFilters{
			Query: validators.SanitizeString(r.URL.Query().Get("q"), 120),
		}
		if category := validators.SanitizeString(r.URL.Query().Get("category"), 120); category != "" {
			filters.Category = &category
		}

		list, err := svc.List(r.Context(), productsvc.ListProductsInput{
			Filters:    filters,
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductListResponse(list))
	}
}

// ProductUpdate applies a partial update to a catalog entry.
func ProductUpdate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		unitCost, err := parseOptionalDecimal("unit_cost", payload.UnitCost)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		imageID, err := parseOptionalUUID("image_media_id", payload.ImageMediaID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, productsvc.UpdateProductInput{
			Name:         payload.Name,
			Description:  payload.Description,
			SKU:          payload.SKU,
			UnitCost:     unitCost,
			Stock:        payload.Stock,
			Category:     payload.Category,
			Notes:        payload.Notes,
			ImageMediaID: imageID,
			ClearImage:   payload.ClearImage,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

// ProductDelete removes a catalog entry that is not referenced by invoices.
func ProductDelete(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
