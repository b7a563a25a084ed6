package handlers

import (
	"encoding/csv"
	"encoding/json"
	"iter"
	"net/http"
	"strconv"

	"github.com/rogerio-castellano/inventory-app/internal/db"
	"github.com/rogerio-castellano/inventory-app/internal/models"
)

// ExportProductsHandler godoc
// @Summary Export products
// @Description Streams every matching product. Accepts the same filter and sort parameters as the list endpoint.
// @Tags products
// @Produce text/csv, application/json
// @Param format query string true "Export format (csv or json)"
// @Param name query string false "Name contains (case insensitive)"
// @Param supplier query string false "Supplier contains (case insensitive)"
// @Param sort query string false "Comma separated sort fields, prefix with - for descending"
// @Success 200 {file} file
// @Failure 400 {string} string "Invalid input"
// @Failure 500 {string} string "Internal error"
// @Router /products/export [get]
func (h *Handlers) ExportProductsHandler(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "csv" && format != "json" {
		http.Error(w, "format must be 'csv' or 'json'", http.StatusBadRequest)
		return
	}

	p := newQueryParser(r.URL.Query())
	q := p.query()
	q.Fields = nil
	if err := p.err(); err != nil {
		h.writeRepoError(w, r, err, "export products")
		return
	}

	next, stop := iter.Pull2(h.products.List(r.Context(), q))
	defer stop()

	// Nothing is written until the first row arrives so a failed query can
	// still get a proper status.
	product, err, ok := next()
	if ok && err != nil {
		h.writeRepoError(w, r, err, "export products")
		return
	}

	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="products.json"`)
		w.Write([]byte("["))
		enc := json.NewEncoder(w)
		for first := true; ok; product, err, ok = next() {
			if err != nil {
				h.log.WithError(err).Error("product export interrupted")
				break
			}
			if !first {
				w.Write([]byte(","))
			}
			first = false
			if err := enc.Encode(toProductResponse(product)); err != nil {
				h.log.WithError(err).Error("product export interrupted")
				return
			}
		}
		w.Write([]byte("]\n"))

	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="products.csv"`)

		csvWriter := csv.NewWriter(w)
		writeErr := csvWriter.Write([]string{
			db.FieldID, db.FieldName, db.FieldPrice, db.FieldQuantity,
			db.FieldSupplierName, db.FieldSupplierPhone,
		})
		for ; ok && writeErr == nil; product, err, ok = next() {
			if err != nil {
				h.log.WithError(err).Error("product export interrupted")
				break
			}
			writeErr = csvWriter.Write(csvRecord(product))
		}
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			h.log.WithError(err).Error("product export interrupted")
		}
	}
}

func csvRecord(p models.Product) []string {
	return []string{
		strconv.FormatInt(p.ID, 10),
		p.Name,
		strconv.FormatInt(p.Price, 10),
		strconv.FormatInt(p.Quantity, 10),
		p.SupplierName,
		p.SupplierPhone,
	}
}
