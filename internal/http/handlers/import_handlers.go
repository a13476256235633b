package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rogerio-castellano/pharmacy-dashboard/internal/inventory"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
)

// Columns read from an import file. Only name is mandatory.
var importColumns = []string{"code", "name", "category", "cost_price", "selling_price", "current_stock", "min_stock", "max_stock", "expiry_date", "supplier"}

func parseCSV(r io.Reader) ([]models.Product, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, errors.New("invalid CSV header")
	}

	index := map[string]int{}
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := index["name"]; !ok {
		return nil, errors.New("CSV header must include a name column")
	}

	var rows []models.Product
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error: %v", err)
		}

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		p := models.Product{
			Code:         get("code"),
			Name:         get("name"),
			Category:     get("category"),
			CostPrice:    parseFloat(get("cost_price")),
			SellingPrice: parseFloat(get("selling_price")),
			CurrentStock: parseInt(get("current_stock")),
			MinStock:     parseInt(get("min_stock")),
			MaxStock:     parseInt(get("max_stock")),
			Supplier:     get("supplier"),
		}
		if s := get("expiry_date"); s != "" {
			expiry, err := time.Parse(time.DateOnly, s)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid expiry_date %q", line, s)
			}
			p.ExpiryDate = &expiry
		}
		rows = append(rows, p)
	}
	return rows, nil
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

// ImportProductsHandler godoc
// @Summary Import products via CSV
// @Description Columns: code,name,category,cost_price,selling_price,current_stock,min_stock,max_stock,expiry_date,supplier
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Param mode query string false "Import mode (skip|update)"
// @Success 200 {object} inventory.ImportResult
// @Failure 400 {string} string "Invalid file"
// @Failure 500 {string} string "Internal error"
// @Router /products/import [post]
// @Security BearerAuth
func ImportProductsHandler(w http.ResponseWriter, r *http.Request) {
	mode := strings.ToLower(r.URL.Query().Get("mode"))
	if mode != inventory.ImportUpdate {
		mode = inventory.ImportSkip
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, err := parseCSV(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Header is row 1.
	result := inventorySvc.ImportProducts(r.Context(), rows, mode, 2)
	respond(w, http.StatusOK, result)
}
