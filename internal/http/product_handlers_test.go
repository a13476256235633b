package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	api "github.com/rogerio-castellano/pharmacy-dashboard/internal/http"
	handler "github.com/rogerio-castellano/pharmacy-dashboard/internal/http/handlers"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/inventory"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
	"go.uber.org/zap"
)

func newRouter() http.Handler {
	return api.NewRouter(nil, zap.NewNop())
}

func TestCreateProductHandler_Valid(t *testing.T) {
	t.Cleanup(clearAllRecords)
	r := newRouter()

	w := createProduct(r, handler.ProductRequest{Name: "Paracetamol", Category: "Analgesics", CostPrice: 600, SellingPrice: 1000, CurrentStock: 25, MinStock: 30, MaxStock: 200})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d", w.Code)
	}

	var resp handler.ProductResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}

	if resp.ID != 1 {
		t.Errorf("expected id 1, got %d", resp.ID)
	}
	if resp.Name != "Paracetamol" {
		t.Errorf("expected name 'Paracetamol', got %v", resp.Name)
	}
	if resp.Status != models.StockLow {
		t.Errorf("expected status low, got %v", resp.Status)
	}
	if !resp.CreatedAt.Equal(now) {
		t.Errorf("expected created_at %v, got %v", now, resp.CreatedAt)
	}
}

func TestCreateProductHandler_IgnoresClientStatus(t *testing.T) {
	t.Cleanup(clearAllRecords)
	r := newRouter()

	body := `{"name":"Vitamin C","selling_price":400,"current_stock":0,"min_stock":10,"status":"normal"}`
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d", w.Code)
	}
	var resp handler.ProductResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Status != models.StockOutOfStock {
		t.Errorf("expected derived status out_of_stock, got %v", resp.Status)
	}
}

func TestCreateProductHandler_Invalid(t *testing.T) {
	t.Cleanup(clearAllRecords)
	r := newRouter()

	tests := []struct {
		name           string
		payload        handler.ProductRequest
		expectedErrors []string
	}{
		{
			name:           "Empty name and negative price",
			payload:        handler.ProductRequest{Name: "", SellingPrice: -1},
			expectedErrors: []string{"name", "selling_price"},
		},
		{
			name:           "Negative stock",
			payload:        handler.ProductRequest{Name: "Zinc", SellingPrice: 30, CurrentStock: -1},
			expectedErrors: []string{"current_stock"},
		},
		{
			name:           "Minimum above maximum",
			payload:        handler.ProductRequest{Name: "Zinc", SellingPrice: 30, MinStock: 50, MaxStock: 10},
			expectedErrors: []string{"min_stock"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := createProduct(r, tt.payload)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}

			var resp []inventory.FieldError
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("error decoding response: %v", err)
			}

			for _, field := range tt.expectedErrors {
				found := false
				for _, err := range resp {
					if strings.EqualFold(err.Field, field) {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("expected error for field %q, but not found", field)
				}
			}
		})
	}
}

func TestCreateProductHandler_MalformedJSON(t *testing.T) {
	t.Cleanup(clearAllRecords)
	r := newRouter()

	badJSON := `{Name: "Invalid" Price: 100 "}` // missing comma
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(badJSON))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 Bad Request, got %d", w.Code)
	}
}

func TestCreateProductHandler_Authorization(t *testing.T) {
	t.Cleanup(clearAllRecords)
	r := newRouter()
	p := handler.ProductRequest{Name: "Zinc", SellingPrice: 30}

	if w := do(r, http.MethodPost, "/products", p, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/products", p, "not-a-token"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/products", p, cashierToken); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for cashier, got %d", w.Code)
	}
}

func TestGetProductByIDHandler(t *testing.T) {
	t.Cleanup(clearAllRecords)
	r := newRouter()
	createProduct(r, handler.ProductRequest{Name: "Amoxicillin", SellingPrice: 2500, CurrentStock: 190, MinStock: 50, MaxStock: 200})

	tests := []struct {
		name       string
		target     string
		expectCode int
	}{
		{"existing", "/products/1", http.StatusOK},
		{"missing", "/products/99", http.StatusNotFound},
		{"invalid id", "/products/abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, tt.target, nil, "")
			if w.Code != tt.expectCode {
				t.Errorf("expected status %d, got %d", tt.expectCode, w.Code)
			}
		})
	}

	w := do(r, http.MethodGet, "/products/1", nil, "")
	var resp handler.ProductResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Status != models.StockOverstock {
		t.Errorf("expected status overstock, got %v", resp.Status)
	}
}

func TestGetProductsHandler_Filter(t *testing.T) {
	t.Cleanup(clearAllRecords)
	r := newRouter()
	createProduct(r, handler.ProductRequest{Name: "Paracetamol", Category: "Analgesics", SellingPrice: 1000, CurrentStock: 25, MinStock: 30, MaxStock: 200})
	createProduct(r, handler.ProductRequest{Name: "Ibuprofen", Category: "Analgesics", SellingPrice: 1200, CurrentStock: 100, MinStock: 20, MaxStock: 300})
	createProduct(r, handler.ProductRequest{Name: "Vitamin C", Category: "Supplements", SellingPrice: 400, MinStock: 10})

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?category=analgesics", 2},
		{"?status=low", 1},
		{"?name=vit", 1},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := do(r, http.MethodGet, "/products"+tt.query, nil, "")
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200 OK, got %d", w.Code)
			}
			var resp []handler.ProductResponse
			json.NewDecoder(w.Body).Decode(&resp)
			if len(resp) != tt.want {
				t.Errorf("expected %d products, got %d", tt.want, len(resp))
			}
		})
	}
}

func TestUpdateAndDeleteProductHandler(t *testing.T) {
	t.Cleanup(clearAllRecords)
	r := newRouter()
	createProduct(r, handler.ProductRequest{Name: "Zinc", SellingPrice: 30, CurrentStock: 10})

	w := do(r, http.MethodPut, "/products/1", handler.ProductRequest{Name: "Zinc 50mg", SellingPrice: 35, CurrentStock: 10}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp handler.ProductResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Name != "Zinc 50mg" || resp.SellingPrice != 35 {
		t.Errorf("unexpected product after update: %+v", resp)
	}

	if w := do(r, http.MethodPut, "/products/9", handler.ProductRequest{Name: "Ghost", SellingPrice: 1}, token); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 updating missing product, got %d", w.Code)
	}

	if w := do(r, http.MethodDelete, "/products/1", nil, token); w.Code != http.StatusNoContent {
		t.Errorf("expected 204 No Content, got %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/products/1", nil, token); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 deleting twice, got %d", w.Code)
	}
}

func TestAdjustProductQuantityHandler(t *testing.T) {
	t.Cleanup(clearAllRecords)
	r := newRouter()
	createProduct(r, handler.ProductRequest{Name: "Insulin", SellingPrice: 500, CurrentStock: 5, MinStock: 2, MaxStock: 20})

	w := adjustProduct(r, 1, handler.QuantityAdjustmentRequest{Delta: -5})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp handler.ProductResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.CurrentStock != 0 || resp.Status != models.StockOutOfStock {
		t.Errorf("expected out of stock with 0 units, got %d %s", resp.CurrentStock, resp.Status)
	}

	if w := adjustProduct(r, 1, handler.QuantityAdjustmentRequest{Delta: -1}); w.Code != http.StatusConflict {
		t.Errorf("expected 409 Conflict, got %d", w.Code)
	}
	if w := adjustProduct(r, 1, handler.QuantityAdjustmentRequest{Delta: 0}); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for zero delta, got %d", w.Code)
	}
	if w := adjustProduct(r, 42, handler.QuantityAdjustmentRequest{Delta: 1}); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing product, got %d", w.Code)
	}
}

func TestImportProductsHandler(t *testing.T) {
	r := newRouter()

	post := func(csvData, mode string) inventory.ImportResult {
		t.Helper()
		buf, contentType := multipartCSV(csvData, "products.csv")
		req := httptest.NewRequest(http.MethodPost, "/products/import"+mode, buf)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}
		var resp inventory.ImportResult
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		return resp
	}

	t.Run("File with unique valid products", func(t *testing.T) {
		t.Cleanup(clearAllRecords)
		resp := post(`name,category,selling_price,current_stock,min_stock,max_stock,expiry_date
Paracetamol,Analgesics,1000,25,30,200,2025-06-30
Ibuprofen,Analgesics,1200,100,20,300,`, "")

		if resp.Imported != 2 {
			t.Errorf("expected 2 imported products, got %d", resp.Imported)
		}
		if len(resp.Errors) != 0 {
			t.Errorf("expected no errors, got %v", resp.Errors)
		}
	})

	t.Run("File with one invalid product", func(t *testing.T) {
		t.Cleanup(clearAllRecords)
		resp := post(`name,selling_price,current_stock
Paracetamol,1000,25
,5,3
Ibuprofen,1200,100`, "")

		if resp.Imported != 2 {
			t.Errorf("expected 2 imported products, got %d", resp.Imported)
		}
		if len(resp.Errors) != 1 || resp.Errors[0].Field != "row 3" {
			t.Errorf("expected one error on row 3, got %v", resp.Errors)
		}
	})

	t.Run("Update mode overwrites existing products", func(t *testing.T) {
		t.Cleanup(clearAllRecords)
		post("name,selling_price,current_stock\nParacetamol,1000,25", "")

		skipped := post("name,selling_price,current_stock\nParacetamol,1100,40", "")
		if skipped.Imported != 0 || len(skipped.Errors) != 1 {
			t.Errorf("expected duplicate to be skipped, got %+v", skipped)
		}

		updated := post("name,selling_price,current_stock\nParacetamol,1100,40", "?mode=update")
		if updated.Imported != 1 {
			t.Errorf("expected 1 updated product, got %+v", updated)
		}
	})

	t.Run("Missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/products/import", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 Bad Request, got %d", w.Code)
		}
	})
}
