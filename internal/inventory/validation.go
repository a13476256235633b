package inventory

import (
	"fmt"
	"strings"

	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
)

type FieldError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// ValidationError lists every invalid field of a request.
type ValidationError []FieldError

func (v ValidationError) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Description
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationError) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func ValidateProduct(p models.Product) error {
	errs := ValidationError{}
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Description: "Name is required"})
	}
	if p.CostPrice < 0 {
		errs = append(errs, FieldError{Field: "cost_price", Description: "Cost price cannot be negative"})
	}
	if p.SellingPrice < 0 {
		errs = append(errs, FieldError{Field: "selling_price", Description: "Selling price cannot be negative"})
	}
	if p.CurrentStock < 0 {
		errs = append(errs, FieldError{Field: "current_stock", Description: "Stock cannot be negative"})
	}
	if p.MinStock < 0 {
		errs = append(errs, FieldError{Field: "min_stock", Description: "Minimum stock cannot be negative"})
	}
	if p.MaxStock < 0 {
		errs = append(errs, FieldError{Field: "max_stock", Description: "Maximum stock cannot be negative"})
	}
	if p.MaxStock > 0 && p.MinStock > p.MaxStock {
		errs = append(errs, FieldError{Field: "min_stock", Description: "Minimum stock cannot exceed maximum stock"})
	}
	return errs.orNil()
}

func validateSale(req SaleRequest) error {
	errs := ValidationError{}
	if len(req.Items) == 0 {
		errs = append(errs, FieldError{Field: "items", Description: "At least one item is required"})
	}
	for i, item := range req.Items {
		if item.ProductID <= 0 {
			errs = append(errs, FieldError{Field: fmt.Sprintf("items[%d].product_id", i), Description: "Product is required"})
		}
		if item.Quantity <= 0 {
			errs = append(errs, FieldError{Field: fmt.Sprintf("items[%d].quantity", i), Description: "Quantity must be greater than zero"})
		}
		if item.Discount < 0 || item.Discount > 100 {
			errs = append(errs, FieldError{Field: fmt.Sprintf("items[%d].discount", i), Description: "Discount must be between 0 and 100"})
		}
		if item.UnitPrice != nil && *item.UnitPrice < 0 {
			errs = append(errs, FieldError{Field: fmt.Sprintf("items[%d].unit_price", i), Description: "Unit price cannot be negative"})
		}
	}
	return errs.orNil()
}
