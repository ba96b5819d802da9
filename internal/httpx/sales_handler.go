package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/salepoint/pos-backend/internal/sales"
)

// SalesService is the orchestration surface the handler needs; implemented
// by *sales.Service.
type SalesService interface {
	CreateSale(ctx context.Context, in sales.CreateSaleInput) (*sales.CreateSaleResult, error)
	GetSale(ctx context.Context, id string) (*sales.SaleDetail, error)
	ListSales(ctx context.Context) ([]sales.SaleSummary, error)
	UpdateStatus(ctx context.Context, id, status string) (sales.Status, error)
}

type SalesHandler struct {
	Service SalesService
	Logger  *zap.Logger
}

type CreateSaleReq struct {
	CustomerID     string           `json:"customerId"`
	SalesRepID     string           `json:"salesRepId"`
	Items          []sales.LineItem `json:"items"`
	DiscountAmount *float64         `json:"discountAmount"`
	TaxAmount      *float64         `json:"taxAmount"`
	PaymentMethod  string           `json:"paymentMethod"`
	Notes          string           `json:"notes"`
}

type CreateSaleResp struct {
	SaleID      string  `json:"saleId"`
	Message     string  `json:"message"`
	TotalAmount float64 `json:"totalAmount"`
}

func (h *SalesHandler) Register(r *chi.Mux) {
	r.Post("/sales", h.createSale)
	r.Get("/sales", h.listSales)
	r.Get("/sales/{id}", h.getSale)
	r.Put("/sales/{id}/status", h.updateStatus)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *SalesHandler) createSale(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.CreateSale(ctx, sales.CreateSaleInput{
		CustomerID:     req.CustomerID,
		SalesRepID:     req.SalesRepID,
		Items:          req.Items,
		DiscountAmount: req.DiscountAmount,
		TaxAmount:      req.TaxAmount,
		PaymentMethod:  req.PaymentMethod,
		Notes:          req.Notes,
		TraceID:        r.Header.Get("X-Request-Id"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateSaleResp{
		SaleID:      res.SaleID,
		Message:     "Sale created successfully",
		TotalAmount: res.TotalAmount,
	})
}

func (h *SalesHandler) listSales(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Service.ListSales(ctx)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if out == nil {
		out = []sales.SaleSummary{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SalesHandler) getSale(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	d, err := h.Service.GetSale(ctx, saleID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *SalesHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "id")
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	st, err := h.Service.UpdateStatus(ctx, saleID, req.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Sale status updated to %s", st)})
}

func (h *SalesHandler) writeError(w http.ResponseWriter, err error) {
	var verr *sales.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": verr.Msg})
	case errors.Is(err, sales.ErrSaleNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Sale not found"})
	case errors.Is(err, sales.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"message": "invalid status transition"})
	default:
		// insufficient stock lands here too: the whole sale rolled back and
		// it is surfaced like any other store failure
		h.Logger.Error("sale request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Internal server error",
			"error":   err.Error(),
		})
	}
}
