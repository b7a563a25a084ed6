package handlers

import (
	"net/http"

	"github.com/rogerio-castellano/inventory-app/internal/db"
	"github.com/rogerio-castellano/inventory-app/internal/models"
	"github.com/rogerio-castellano/inventory-app/internal/repo"
)

// CreateProductHandler godoc
// @Summary Create a new product
// @Description Adds a product to the inventory. Quantity defaults to 0.
// @Tags products
// @Accept json
// @Produce json
// @Param product body ProductRequest true "Product to add"
// @Success 201 {object} ProductResponse
// @Failure 400 {array} repo.ValidationError
// @Failure 500 {string} string "Internal error"
// @Router /products [post]
func (h *Handlers) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var fields repo.Fields
	if err := readJSON(w, r, &fields); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	id, err := h.products.Create(r.Context(), fields)
	if err != nil {
		h.writeRepoError(w, r, err, "create product")
		return
	}

	created, err := h.products.Get(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, r, err, "fetch product")
		return
	}
	h.respond(w, r, http.StatusCreated, toProductResponse(created))
}

// GetProductsHandler godoc
// @Summary List, filter and paginate products
// @Tags products
// @Produce json
// @Param fields query string false "Comma separated fields to return (id is always included)"
// @Param name query string false "Name contains (case insensitive)"
// @Param supplier query string false "Supplier contains (case insensitive)"
// @Param minPrice query int false "Minimum price"
// @Param maxPrice query int false "Maximum price"
// @Param minQty query int false "Minimum quantity"
// @Param maxQty query int false "Maximum quantity"
// @Param sort query string false "Comma separated sort fields, prefix with - for descending"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} ProductsSearchResult
// @Failure 400 {array} repo.ValidationError
// @Failure 500 {string} string "Internal error"
// @Router /products [get]
func (h *Handlers) GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	p := newQueryParser(r.URL.Query())
	q := p.query()
	if err := p.err(); err != nil {
		h.writeRepoError(w, r, err, "list products")
		return
	}

	data := []any{}
	for product, err := range h.products.List(r.Context(), q) {
		if err != nil {
			h.writeRepoError(w, r, err, "list products")
			return
		}
		data = append(data, productView(product, q.Fields))
	}

	total, err := h.products.Count(r.Context(), q.Filter)
	if err != nil {
		h.writeRepoError(w, r, err, "count products")
		return
	}

	h.respond(w, r, http.StatusOK, ProductsSearchResult{
		Data: data,
		Meta: Meta{TotalCount: total, Limit: q.Limit, Offset: q.Offset},
	})
}

// productView renders the whole product, or only the requested fields plus id.
func productView(p models.Product, fields []string) any {
	if len(fields) == 0 {
		return toProductResponse(p)
	}

	all := map[string]any{
		db.FieldID:            p.ID,
		db.FieldName:          p.Name,
		db.FieldPrice:         p.Price,
		db.FieldQuantity:      p.Quantity,
		db.FieldSupplierName:  p.SupplierName,
		db.FieldSupplierPhone: p.SupplierPhone,
	}
	out := map[string]any{db.FieldID: p.ID}
	for _, f := range fields {
		if v, ok := all[f]; ok {
			out[f] = v
		}
	}
	return out
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
func (h *Handlers) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, r, err, "fetch product")
		return
	}
	h.respond(w, r, http.StatusOK, toProductResponse(product))
}

// UpdateProductHandler godoc
// @Summary Partially update a product
// @Description Only the fields present in the body change. Strings may be empty but not null.
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param product body ProductRequest true "Fields to change"
// @Success 200 {object} WriteResult
// @Failure 400 {array} repo.ValidationError
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id} [patch]
func (h *Handlers) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var fields repo.Fields
	if err := readJSON(w, r, &fields); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	n, err := h.products.Update(r.Context(), repo.ByID(id), fields)
	if err != nil {
		h.writeRepoError(w, r, err, "update product")
		return
	}
	if n == 0 && !fields.IsEmpty() {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	h.respond(w, r, http.StatusOK, WriteResult{RowsAffected: n})
}

// UpdateProductsHandler godoc
// @Summary Update every product matching a filter
// @Description Requires at least one filter parameter, or all=true to touch every row.
// @Tags products
// @Accept json
// @Produce json
// @Param all query bool false "Apply to every product"
// @Param name query string false "Name contains (case insensitive)"
// @Param supplier query string false "Supplier contains (case insensitive)"
// @Param minPrice query int false "Minimum price"
// @Param maxPrice query int false "Maximum price"
// @Param minQty query int false "Minimum quantity"
// @Param maxQty query int false "Maximum quantity"
// @Param product body ProductRequest true "Fields to change"
// @Success 200 {object} WriteResult
// @Failure 400 {array} repo.ValidationError
// @Failure 500 {string} string "Internal error"
// @Router /products [patch]
func (h *Handlers) UpdateProductsHandler(w http.ResponseWriter, r *http.Request) {
	p := newQueryParser(r.URL.Query())
	sel := p.selector()
	if err := p.err(); err != nil {
		h.writeRepoError(w, r, err, "update products")
		return
	}

	var fields repo.Fields
	if err := readJSON(w, r, &fields); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	n, err := h.products.Update(r.Context(), sel, fields)
	if err != nil {
		h.writeRepoError(w, r, err, "update products")
		return
	}
	h.respond(w, r, http.StatusOK, WriteResult{RowsAffected: n})
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
func (h *Handlers) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	n, err := h.products.Delete(r.Context(), repo.ByID(id))
	if err != nil {
		h.writeRepoError(w, r, err, "delete product")
		return
	}
	if n == 0 {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteProductsHandler godoc
// @Summary Delete every product matching a filter
// @Description Requires at least one filter parameter, or all=true to empty the inventory.
// @Tags products
// @Produce json
// @Param all query bool false "Delete every product"
// @Param name query string false "Name contains (case insensitive)"
// @Param supplier query string false "Supplier contains (case insensitive)"
// @Param minPrice query int false "Minimum price"
// @Param maxPrice query int false "Maximum price"
// @Param minQty query int false "Minimum quantity"
// @Param maxQty query int false "Maximum quantity"
// @Success 200 {object} WriteResult
// @Failure 400 {string} string "No selection"
// @Failure 500 {string} string "Internal error"
// @Router /products [delete]
func (h *Handlers) DeleteProductsHandler(w http.ResponseWriter, r *http.Request) {
	p := newQueryParser(r.URL.Query())
	sel := p.selector()
	if err := p.err(); err != nil {
		h.writeRepoError(w, r, err, "delete products")
		return
	}

	n, err := h.products.Delete(r.Context(), sel)
	if err != nil {
		h.writeRepoError(w, r, err, "delete products")
		return
	}
	h.respond(w, r, http.StatusOK, WriteResult{RowsAffected: n})
}

// SeedProductsHandler godoc
// @Summary Insert placeholder products
// @Description Rows are written one by one; failures are listed and do not undo earlier rows.
// @Tags products
// @Produce json
// @Param count query int false "Number of products to insert"
// @Success 201 {object} repo.SeedResult
// @Failure 400 {array} repo.ValidationError
// @Failure 500 {string} string "Internal error"
// @Router /products/seed [post]
func (h *Handlers) SeedProductsHandler(w http.ResponseWriter, r *http.Request) {
	p := newQueryParser(r.URL.Query())
	count := p.intParam("count")
	if err := p.err(); err != nil {
		h.writeRepoError(w, r, err, "seed products")
		return
	}
	if count == 0 {
		count = h.seedCount
	}
	if count < 0 {
		h.writeRepoError(w, r, repo.ValidationErrors{{Field: "count", Reason: "must not be negative"}}, "seed products")
		return
	}

	res, err := repo.SeedDummyProducts(r.Context(), h.products, count, nil)
	if err != nil {
		h.writeRepoError(w, r, err, "seed products")
		return
	}
	if len(res.Errors) > 0 {
		h.log.WithField("failed", len(res.Errors)).Warn("some dummy products could not be inserted")
	}
	h.respond(w, r, http.StatusCreated, res)
}
