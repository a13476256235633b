package repo

import (
	"strings"

	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
)

// ProductFilter narrows a product listing. Zero fields match everything.
type ProductFilter struct {
	Name     string
	Category string
	Supplier string
	Status   models.StockStatus
}

func matchesFilter(p models.Product, pf ProductFilter) bool {
	if pf.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(pf.Name)) {
		return false
	}
	if pf.Category != "" && !strings.EqualFold(p.Category, pf.Category) {
		return false
	}
	if pf.Supplier != "" && !strings.EqualFold(p.Supplier, pf.Supplier) {
		return false
	}
	if pf.Status != "" && p.Status() != pf.Status {
		return false
	}
	return true
}
