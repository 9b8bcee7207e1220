package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/ecommerce-orders/internal/order/app"
	"github.com/jcmexdev/ecommerce-orders/internal/order/domain"
)

// Handler exposes the order workflow over HTTP.
type Handler struct {
	workflow *app.Workflow
}

func NewHandler(workflow *app.Workflow) *Handler {
	return &Handler{workflow: workflow}
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.CustomerID == "" || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "customerId and productId are required")
		return
	}
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "quantity must be positive")
		return
	}

	view, err := h.workflow.CreateOrder(r.Context(), req.CustomerID, req.ProductID, req.Quantity)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapView(view))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	view, err := h.workflow.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapView(view))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	views, err := h.workflow.ListOrders(r.Context())
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapViews(views))
}

func (h *Handler) ListOrdersByCustomer(w http.ResponseWriter, r *http.Request) {
	views, err := h.workflow.ListOrdersByCustomer(r.Context(), chi.URLParam(r, "customerId"))
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapViews(views))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	status, ok := domain.ParseStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_status", "unknown status: "+req.Status)
		return
	}

	view, err := h.workflow.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapView(view))
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.workflow.CancelOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeWorkflowError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeWorkflowError maps each workflow failure kind to a distinct response.
func writeWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCustomerNotFound):
		writeError(w, http.StatusNotFound, "customer_not_found", err.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		writeError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, domain.ErrInvalidStateTransition):
		writeError(w, http.StatusConflict, "invalid_state_transition", err.Error())
	case errors.Is(err, domain.ErrStockReductionFailed):
		writeError(w, http.StatusBadGateway, "stock_reduction_failed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func mapView(v *app.View) OrderResponse {
	return OrderResponse{
		ID:           v.ID,
		CustomerID:   v.CustomerID,
		CustomerName: v.CustomerName,
		ProductID:    v.ProductID,
		ProductName:  v.ProductName,
		Quantity:     v.Quantity,
		UnitPrice:    v.UnitPrice,
		TotalPrice:   v.TotalPrice,
		Status:       string(v.Status),
		OrderDate:    v.OrderDate.Format(time.RFC3339),
	}
}

func mapViews(views []*app.View) []OrderResponse {
	out := make([]OrderResponse, len(views))
	for i, v := range views {
		out[i] = mapView(v)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}
