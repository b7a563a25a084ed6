package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rogerio-castellano/inventory-app/internal/db"
	"github.com/rogerio-castellano/inventory-app/internal/repo"
)

const (
	importModeSkip   = "skip"
	importModeUpdate = "update"
)

var csvFields = []string{
	db.FieldName,
	db.FieldPrice,
	db.FieldQuantity,
	db.FieldSupplierName,
	db.FieldSupplierPhone,
}

type csvRow struct {
	line   int
	fields repo.Fields
	errs   []ImportRowError
}

// parseCSV reads rows keyed by a header line. Missing columns leave the
// field absent so the repository reports them; unparsable numbers are
// reported here.
func parseCSV(r io.Reader) ([]csvRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV header")
	}

	index := map[string]int{}
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := index[db.FieldName]; !ok {
		return nil, fmt.Errorf("CSV header must contain a %q column", db.FieldName)
	}

	var rows []csvRow
	for line := 2; ; line++ { // header is row 1
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error: %v", err)
		}

		row := csvRow{line: line}
		for _, field := range csvFields {
			i, ok := index[field]
			if !ok || i >= len(record) {
				continue
			}
			row.set(field, strings.TrimSpace(record[i]))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (row *csvRow) set(field, value string) {
	switch field {
	case db.FieldName:
		row.fields.Name = repo.String(value)
	case db.FieldSupplierName:
		row.fields.SupplierName = repo.String(value)
	case db.FieldSupplierPhone:
		row.fields.SupplierPhone = repo.String(value)
	case db.FieldPrice, db.FieldQuantity:
		if value == "" {
			return
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			row.errs = append(row.errs, ImportRowError{Row: row.line, Field: field, Reason: "must be an integer"})
			return
		}
		if field == db.FieldPrice {
			row.fields.Price = &n
		} else {
			row.fields.Quantity = &n
		}
	}
}

func rowErrors(line int, err error) []ImportRowError {
	if ve, ok := repo.AsValidationErrors(err); ok {
		out := make([]ImportRowError, len(ve))
		for i, e := range ve {
			out[i] = ImportRowError{Row: line, Field: e.Field, Reason: e.Reason}
		}
		return out
	}
	return []ImportRowError{{Row: line, Reason: err.Error()}}
}

// ImportProductsHandler godoc
// @Summary Import products via CSV
// @Description Header columns: name, price, quantity, supplier_name, supplier_phone. Rows are written one by one and are not rolled back on failure.
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Param mode query string false "Import mode (skip|update)"
// @Success 200 {object} ImportProductsResult
// @Failure 400 {string} string "Invalid file"
// @Failure 500 {string} string "Internal error"
// @Router /products/import [post]
func (h *Handlers) ImportProductsHandler(w http.ResponseWriter, r *http.Request) {
	mode := strings.ToLower(r.URL.Query().Get("mode"))
	if mode != importModeUpdate {
		mode = importModeSkip // default
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	records, err := parseCSV(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	result := ImportProductsResult{Errors: []ImportRowError{}}

	for _, rec := range records {
		if len(rec.errs) > 0 {
			result.Errors = append(result.Errors, rec.errs...)
			continue
		}

		name := ""
		if rec.fields.Name != nil {
			name = *rec.fields.Name
		}
		existing := repo.Filter{ExactName: name}

		count := int64(0)
		if name != "" {
			count, err = h.products.Count(ctx, existing)
			if err != nil {
				h.writeRepoError(w, r, err, "import products")
				return
			}
		}

		if count > 0 {
			if mode == importModeSkip {
				result.Errors = append(result.Errors, ImportRowError{
					Row:    rec.line,
					Field:  db.FieldName,
					Reason: fmt.Sprintf("product '%s' already exists", name),
				})
				continue
			}
			update := rec.fields
			update.Name = nil
			if update.IsEmpty() {
				result.Errors = append(result.Errors, ImportRowError{Row: rec.line, Reason: "no fields to update"})
				continue
			}
			n, err := h.products.Update(ctx, repo.Where(existing), update)
			if err != nil {
				result.Errors = append(result.Errors, rowErrors(rec.line, err)...)
				continue
			}
			if n > 0 {
				result.UpdatedProductsCount++
			}
			continue
		}

		if _, err := h.products.Create(ctx, rec.fields); err != nil {
			result.Errors = append(result.Errors, rowErrors(rec.line, err)...)
			continue
		}
		result.ImportedProductsCount++
	}

	h.respond(w, r, http.StatusOK, result)
}
