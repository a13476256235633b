package handlers

import (
	"net/http"

	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/repo"
)

// CreateProductHandler godoc
// @Summary Create a new product
// @Description Adds a product to the catalogue. Its stock status is derived.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body ProductRequest true "Product to add"
// @Success 201 {object} ProductResponse
// @Failure 400 {array} inventory.FieldError
// @Failure 409 {string} string "Duplicated code"
// @Router /products [post]
func CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	created, err := inventorySvc.CreateProduct(r.Context(), req.toModel(0))
	if err != nil {
		writeError(w, err, "create product")
		return
	}
	respond(w, http.StatusCreated, toProductResponse(created))
}

// GetProductsHandler godoc
// @Summary List products
// @Tags products
// @Produce json
// @Param name query string false "Name contains"
// @Param category query string false "Category"
// @Param supplier query string false "Supplier"
// @Param status query string false "Stock status (out_of_stock|low|overstock|normal)"
// @Success 200 {array} ProductResponse
// @Failure 500 {string} string "Internal error"
// @Router /products [get]
func GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repo.ProductFilter{
		Name:     q.Get("name"),
		Category: q.Get("category"),
		Supplier: q.Get("supplier"),
		Status:   models.StockStatus(q.Get("status")),
	}

	products, err := inventorySvc.ListProducts(r.Context(), filter)
	if err != nil {
		writeError(w, err, "fetch products")
		return
	}
	respond(w, http.StatusOK, toProductResponses(products))
}

// GetProductByIDHandler godoc
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id} [get]
func GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	product, err := inventorySvc.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, err, "fetch product")
		return
	}
	respond(w, http.StatusOK, toProductResponse(product))
}

// UpdateProductHandler godoc
// @Summary Update a product
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param product body ProductRequest true "Updated product"
// @Success 200 {object} ProductResponse
// @Failure 400 {array} inventory.FieldError
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id} [put]
// @Security BearerAuth
func UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	updated, err := inventorySvc.UpdateProduct(r.Context(), req.toModel(id))
	if err != nil {
		writeError(w, err, "update product")
		return
	}
	respond(w, http.StatusOK, toProductResponse(updated))
}

// DeleteProductHandler godoc
// @Summary Delete a product
// @Tags products
// @Param id path int true "Product ID"
// @Success 204 "Deleted successfully"
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id} [delete]
// @Security BearerAuth
func DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := inventorySvc.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, err, "delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdjustProductQuantityHandler godoc
// @Summary Adjust product stock
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param adjustment body QuantityAdjustmentRequest true "Stock delta"
// @Success 200 {object} ProductResponse
// @Failure 400 {string} string "Invalid input"
// @Failure 404 {string} string "Not found"
// @Failure 409 {string} string "Insufficient stock"
// @Router /products/{id}/adjust [post]
// @Security BearerAuth
func AdjustProductQuantityHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req QuantityAdjustmentRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	if req.Delta == 0 {
		http.Error(w, "delta must not be zero", http.StatusBadRequest)
		return
	}

	product, err := inventorySvc.AdjustStock(r.Context(), id, req.Delta)
	if err != nil {
		writeError(w, err, "adjust stock")
		return
	}
	respond(w, http.StatusOK, toProductResponse(product))
}
