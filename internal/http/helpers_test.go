package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/rogerio-castellano/pharmacy-dashboard/internal/analytics"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/config"
	api "github.com/rogerio-castellano/pharmacy-dashboard/internal/http"
	handler "github.com/rogerio-castellano/pharmacy-dashboard/internal/http/handlers"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/inventory"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/report"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/repo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	now = time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

	token        string
	cashierToken string
	stores       *repo.Stores
)

func init() {
	setupTestServices("secret")
	r := api.NewRouter(nil, zap.NewNop())

	var err error
	token, err = generateToken(r, "admin", "secret")
	if err != nil {
		panic(fmt.Sprintf("error generating token: %v", err))
	}
	cashierToken, err = generateToken(r, "cashier", "secret")
	if err != nil {
		panic(fmt.Sprintf("error generating token: %v", err))
	}
}

func setupTestServices(password string) {
	stores = repo.NewMemoryStores()
	clock := analytics.FixedClock(now)

	handler.SetStores(stores)
	handler.SetInventoryService(inventory.NewService(repo.NewProductRepository(stores.Products), stores.Sales, clock, nil, zap.NewNop()))
	handler.SetReportService(report.NewService(stores, nil, clock, config.Default().Report, zap.NewNop()))

	userRepo := repo.NewInMemoryUserRepository()
	handler.SetUserRepo(userRepo)

	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	ctx := context.Background()
	userRepo.CreateUser(ctx, models.User{Username: "admin", PasswordHash: string(hash), Role: models.RoleAdmin})
	userRepo.CreateUser(ctx, models.User{Username: "cashier", PasswordHash: string(hash), Role: models.RoleCashier})
}

func clearAllRecords() {
	_ = stores.Seed(context.Background(), repo.Snapshot{})
}

func seed(snap repo.Snapshot) {
	if err := stores.Seed(context.Background(), snap); err != nil {
		panic(err)
	}
}

func generateToken(r http.Handler, username, password string) (string, error) {
	payload := handler.UserLogin{Username: username, Password: password}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp handler.LoginResult
	err := json.NewDecoder(w.Body).Decode(&resp)
	if err != nil {
		return "", fmt.Errorf("token decoding failed: %v", err)
	}
	return resp.Token, nil
}

func do(r http.Handler, method, target string, payload any, bearer string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, target, &body)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createProduct(r http.Handler, p handler.ProductRequest) *httptest.ResponseRecorder {
	return do(r, http.MethodPost, "/products", p, token)
}

func adjustProduct(r http.Handler, productID int, adj handler.QuantityAdjustmentRequest) *httptest.ResponseRecorder {
	return do(r, http.MethodPost, fmt.Sprintf("/products/%d/adjust", productID), adj, token)
}

func multipartCSV(csvContent string, filename string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, _ := writer.CreateFormFile("file", filename)
	part.Write([]byte(csvContent))

	writer.Close()
	return &buf, writer.FormDataContentType()
}

func paidSale(id, customer string, productID int, qty int, total float64, createdAt time.Time) models.Sale {
	return models.Sale{
		ID:            id,
		CustomerID:    customer,
		Items:         []models.LineItem{{ProductID: productID, Quantity: qty, UnitPrice: total / float64(qty), Total: total}},
		TotalAmount:   total,
		PaymentMethod: "cash",
		PaymentStatus: models.PaymentPaid,
		Status:        models.OrderCompleted,
		CreatedAt:     createdAt,
	}
}
