package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/rogerio-castellano/inventory-app/internal/db"
	"github.com/rogerio-castellano/inventory-app/internal/models"
	"github.com/rogerio-castellano/inventory-app/internal/repo"
)

const telephoneScheme = "tel:"

// AdjustQuantityHandler godoc
// @Summary Adjust quantity of a product
// @Tags inventory
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param adjustment body QuantityAdjustmentRequest true "Quantity change"
// @Success 200 {object} ProductResponse
// @Failure 400 {string} string "Invalid adjustment"
// @Failure 404 {string} string "Not found"
// @Failure 409 {string} string "Quantity would become negative or overflow"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id}/adjust [post]
func (h *Handlers) AdjustQuantityHandler(w http.ResponseWriter, r *http.Request) {
	var req QuantityAdjustmentRequest
	h.adjust(w, r, func(ctx context.Context, id int64) (models.Product, error) {
		if err := readJSON(w, r, &req); err != nil {
			return models.Product{}, repo.ValidationErrors{{Field: "delta", Reason: "must be an integer"}}
		}
		return h.products.AdjustQuantity(ctx, id, req.Delta)
	})
}

// IncrementQuantityHandler godoc
// @Summary Add one unit to a product's stock
// @Tags inventory
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id}/increment [post]
func (h *Handlers) IncrementQuantityHandler(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, func(ctx context.Context, id int64) (models.Product, error) {
		return repo.Increment(ctx, h.products, id)
	})
}

// DecrementQuantityHandler godoc
// @Summary Remove one unit from a product's stock
// @Description Refused with 409 when the product is out of stock.
// @Tags inventory
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Not found"
// @Failure 409 {string} string "Out of stock"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id}/decrement [post]
func (h *Handlers) DecrementQuantityHandler(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, func(ctx context.Context, id int64) (models.Product, error) {
		return repo.Decrement(ctx, h.products, id)
	})
}

func (h *Handlers) adjust(w http.ResponseWriter, r *http.Request, apply func(context.Context, int64) (models.Product, error)) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	product, err := apply(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, r, err, "update quantity")
		return
	}
	h.respond(w, r, http.StatusOK, toProductResponse(product))
}

// OrderProductHandler godoc
// @Summary Get the dial URI for a product's supplier
// @Description Placeholder products carry no phone number and cannot be ordered.
// @Tags inventory
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} OrderResponse
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Not found"
// @Failure 422 {string} string "No supplier phone on file"
// @Router /products/{id}/order [get]
func (h *Handlers) OrderProductHandler(w http.ResponseWriter, r *http.Request) {
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

	phone := strings.TrimSpace(product.SupplierPhone)
	if phone == "" || strings.EqualFold(phone, db.DefaultSupplierValue) {
		http.Error(w, "no supplier phone on file for this product", http.StatusUnprocessableEntity)
		return
	}

	h.respond(w, r, http.StatusOK, OrderResponse{
		ProductID: product.ID,
		Supplier:  product.SupplierName,
		URI:       telephoneScheme + phone,
	})
}
