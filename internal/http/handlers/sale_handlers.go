package handlers

import (
	"net/http"

	"github.com/rogerio-castellano/pharmacy-dashboard/internal/auth"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/inventory"
)

// RecordSaleHandler godoc
// @Summary Record a point-of-sale sale
// @Description Prices each item, takes it out of stock and stores the sale.
// @Tags sales
// @Accept json
// @Produce json
// @Param sale body inventory.SaleRequest true "Sale"
// @Success 201 {object} models.Sale
// @Failure 400 {array} inventory.FieldError
// @Failure 404 {string} string "Unknown product"
// @Failure 409 {string} string "Insufficient stock"
// @Router /sales [post]
// @Security BearerAuth
func RecordSaleHandler(w http.ResponseWriter, r *http.Request) {
	var req inventory.SaleRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	req.CashierID = auth.UserID(r.Context())

	sale, err := inventorySvc.RecordSale(r.Context(), req)
	if err != nil {
		writeError(w, err, "record sale")
		return
	}
	respond(w, http.StatusCreated, sale)
}

// GetSalesHandler godoc
// @Summary List sales
// @Tags sales
// @Produce json
// @Success 200 {array} models.Sale
// @Failure 500 {string} string "Internal error"
// @Router /sales [get]
func GetSalesHandler(w http.ResponseWriter, r *http.Request) {
	sales, err := inventorySvc.ListSales(r.Context())
	if err != nil {
		writeError(w, err, "fetch sales")
		return
	}
	respond(w, http.StatusOK, sales)
}
