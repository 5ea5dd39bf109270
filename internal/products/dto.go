package products

import (
	"github.com/google/uuid"
	"github.com/printforge/printshop-backend/pkg/db/models"
	"github.com/printforge/printshop-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CreateProductInput captures the fields accepted when creating a catalog entry.
type CreateProductInput struct {
	Name         string
	Description  *string
	SKU          *string
	UnitCost     decimal.Decimal
	Stock        int
	Category     *string
	Notes        *string
	ImageMediaID *uuid.UUID
}

// UpdateProductInput carries the optional fields for a product update.
// Nil pointers leave the stored value untouched. ClearImage removes the
// attached image reference without replacing it.
type UpdateProductInput struct {
	Name         *string
	Description  *string
	SKU          *string
	UnitCost     *decimal.Decimal
	Stock        *int
	Category     *string
	Notes        *string
	ImageMediaID *uuid.UUID
	ClearImage   bool
}

// ProductListFilters describe the supported filter knobs for the catalog list.
type ProductListFilters struct {
	Category *string
	Query    string
}

// ListProductsInput captures pagination plus filters for the list endpoint.
type ListProductsInput struct {
	Filters    ProductListFilters
	Pagination pagination.Params
}

// ProductList wraps the paginated products plus the next page cursor.
type ProductList struct {
	Products   []models.Product `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
