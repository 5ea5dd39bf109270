package customers

import (
	"github.com/printforge/printshop-backend/pkg/db/models"
	"github.com/printforge/printshop-backend/pkg/pagination"
)

// CreateCustomerInput captures the fields accepted when creating a customer.
type CreateCustomerInput struct {
	Name    string
	Email   *string
	Phone   *string
	Address *string
	City    *string
	State   *string
	Zip     *string
	Country *string
}

// UpdateCustomerInput carries the optional fields for a customer update.
// Nil pointers leave the stored value untouched.
type UpdateCustomerInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	City    *string
	State   *string
	Zip     *string
	Country *string
}

// CustomerListFilters describe the supported filter knobs for the customer list.
type CustomerListFilters struct {
	Query string
}

// ListCustomersInput captures pagination plus filters for the list endpoint.
type ListCustomersInput struct {
	Filters    CustomerListFilters
	Pagination pagination.Params
}

// CustomerList wraps the paginated customers plus the next page cursor.
type CustomerList struct {
	Customers  []models.Customer `json:"customers"`
	NextCursor string            `json:"next_cursor,omitempty"`
}
