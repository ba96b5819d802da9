package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/salepoint/pos-backend/internal/sales"
)

type ProductReader interface {
	ListProducts(ctx context.Context) ([]sales.Product, error)
	GetProduct(ctx context.Context, id string) (*sales.Product, error)
}

type ProductsHandler struct {
	Products ProductReader
	Logger   *zap.Logger
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
}

func (h *ProductsHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Products.ListProducts(ctx)
	if err != nil {
		h.Logger.Error("list products failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
		return
	}
	if ps == nil {
		ps = []sales.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Products.GetProduct(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, sales.ErrProductNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
		return
	}
	if err != nil {
		h.Logger.Error("get product failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}
