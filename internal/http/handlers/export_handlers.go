package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/export"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/repo"
	"go.uber.org/zap"
)

func exportCollection(ctx context.Context, buf *bytes.Buffer, collection string) (bool, error) {
	switch collection {
	case repo.CollectionProducts:
		products, err := stores.Products.Load(ctx)
		if err != nil {
			return true, err
		}
		return true, export.WriteCSV(buf, toProductResponses(products))
	case repo.CollectionSales:
		return true, writeStore(ctx, buf, stores.Sales)
	case repo.CollectionInvoices:
		return true, writeStore(ctx, buf, stores.Invoices)
	case repo.CollectionCustomers:
		return true, writeStore(ctx, buf, stores.Customers)
	case repo.CollectionSuppliers:
		return true, writeStore(ctx, buf, stores.Suppliers)
	case repo.CollectionContracts:
		return true, writeStore(ctx, buf, stores.Contracts)
	case repo.CollectionTransactions:
		return true, writeStore(ctx, buf, stores.Transactions)
	}
	return false, nil
}

func writeStore[T any](ctx context.Context, buf *bytes.Buffer, s repo.Store[T]) error {
	items, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return export.WriteCSV(buf, items)
}

// ExportCollectionHandler godoc
// @Summary Export a collection as CSV
// @Tags export
// @Produce text/csv
// @Param collection path string true "products|sales|invoices|customers|suppliers|contracts|transactions"
// @Success 200 {string} string "CSV file"
// @Failure 404 {string} string "Unknown collection"
// @Failure 500 {string} string "Internal error"
// @Router /export/{collection} [get]
// @Security BearerAuth
func ExportCollectionHandler(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	var buf bytes.Buffer
	found, err := exportCollection(r.Context(), &buf, collection)
	if !found {
		http.Error(w, fmt.Sprintf("unknown collection %q", collection), http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error("could not export collection", zap.String("collection", collection), zap.Error(err))
		http.Error(w, "could not export collection", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", collection+".csv"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error("failed to write export", zap.Error(err))
	}
}
