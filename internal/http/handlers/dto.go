package handlers

import (
	"time"

	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
)

// ProductRequest is the writable part of a product. Status is always derived
// and is never read from requests.
type ProductRequest struct {
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	CostPrice    float64    `json:"cost_price"`
	SellingPrice float64    `json:"selling_price"`
	CurrentStock int        `json:"current_stock"`
	MinStock     int        `json:"min_stock"`
	MaxStock     int        `json:"max_stock"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	Supplier     string     `json:"supplier,omitempty"`
}

func (p ProductRequest) toModel(id int) models.Product {
	return models.Product{
		ID:           id,
		Code:         p.Code,
		Name:         p.Name,
		Category:     p.Category,
		CostPrice:    p.CostPrice,
		SellingPrice: p.SellingPrice,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		MaxStock:     p.MaxStock,
		ExpiryDate:   p.ExpiryDate,
		Supplier:     p.Supplier,
	}
}

type ProductResponse struct {
	models.Product
	Status models.StockStatus `json:"status"`
}

func toProductResponse(p models.Product) ProductResponse {
	return ProductResponse{Product: p, Status: p.Status()}
}

func toProductResponses(products []models.Product) []ProductResponse {
	resp := make([]ProductResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}
	return resp
}

type QuantityAdjustmentRequest struct {
	Delta int `json:"delta"` // can be positive or negative
}

type UserLogin struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string `json:"token"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}
