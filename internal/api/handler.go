// Package api exposes the order engine and reporting queries over HTTP.
// The handlers are thin: they parse JSON, delegate to the domain services,
// and translate domain errors into status codes.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/pavani-weerakoon/restaurant/internal/domain/dish"
	"github.com/pavani-weerakoon/restaurant/internal/domain/order"
)

// Handler holds the dependencies shared by all API endpoints.
type Handler struct {
	dishes  dish.Repository
	orders  *order.Service
	reports *order.Reporter
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(dishes dish.Repository, orders *order.Service, reports *order.Reporter) *Handler {
	return &Handler{
		dishes:  dishes,
		orders:  orders,
		reports: reports,
	}
}

// Routes returns a mux with every API route registered.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/orders", h.createOrder)
	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("PUT /api/orders/{id}", h.updateOrder)
	mux.HandleFunc("DELETE /api/orders/{id}", h.deleteOrder)

	mux.HandleFunc("GET /api/dishes/{category}", h.listDishesByCategory)

	mux.HandleFunc("GET /api/reports/daily-sales", h.dailySales)
	mux.HandleFunc("GET /api/reports/popular-main-dish", h.popularMainDish)
	mux.HandleFunc("GET /api/reports/popular-side-dish", h.popularSideDish)
	mux.HandleFunc("GET /api/reports/common-pairing", h.commonPairing)

	return mux
}

// --- Response types ---

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type dishResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

type orderResponse struct {
	ID         string         `json:"id"`
	MainDish   dishResponse   `json:"mainDish"`
	SideDishes []dishResponse `json:"sideDishes"`
	Dessert    *dishResponse  `json:"dessert,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func toDishResponse(d dish.Dish) dishResponse {
	return dishResponse{
		ID:       d.ID,
		Name:     d.Name,
		Category: d.Category,
		Price:    d.Price.InexactFloat64(),
	}
}

func toOrderResponse(e order.Expanded) orderResponse {
	resp := orderResponse{
		ID:         e.ID,
		MainDish:   toDishResponse(e.MainDish),
		SideDishes: make([]dishResponse, len(e.SideDishes)),
		CreatedAt:  e.CreatedAt,
	}
	for i, sd := range e.SideDishes {
		resp.SideDishes[i] = toDishResponse(sd)
	}
	if e.Dessert != nil {
		d := toDishResponse(*e.Dessert)
		resp.Dessert = &d
	}
	return resp
}

// --- Shared helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Best effort: the status code is already written. A failure here means
	// the client went away.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

// writeDomainError maps domain errors onto the API error taxonomy: malformed
// input is 400, unresolved references are 404, and everything else is a
// storage or invariant failure reported as 500 and logged.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrMainDishRequired),
		errors.Is(err, order.ErrSideDishesRequired),
		errors.Is(err, order.ErrInvalidOrderID):
		writeError(w, http.StatusBadRequest, err.Error())

	case isCategoryMismatch(err):
		writeError(w, http.StatusBadRequest, err.Error())

	case isDishNotFound(err),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, dish.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isDishNotFound(err error) bool {
	var e *order.DishNotFoundError
	return errors.As(err, &e)
}

func isCategoryMismatch(err error) bool {
	var e *order.CategoryMismatchError
	return errors.As(err, &e)
}
