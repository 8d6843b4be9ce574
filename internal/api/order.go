package api

import (
	"encoding/json"
	"net/http"

	"github.com/pavani-weerakoon/restaurant/internal/domain/order"
)

// createOrderRequest references dishes by NAME.
type createOrderRequest struct {
	MainDish   string   `json:"mainDish"`
	SideDishes []string `json:"sideDishes"`
	Dessert    string   `json:"dessert"`
}

// updateOrderRequest uses the same field names as create, but the values are
// dish IDS. The asymmetry matches what existing callers send.
type updateOrderRequest struct {
	MainDish   string   `json:"mainDish"`
	SideDishes []string `json:"sideDishes"`
	Dessert    string   `json:"dessert"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		MainDish:   req.MainDish,
		SideDishes: req.SideDishes,
		Dessert:    req.Dessert,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(*created))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*o))
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.orders.Update(r.Context(), order.UpdateRequest{
		ID:            r.PathValue("id"),
		MainDishID:    req.MainDish,
		SideDishIDs:   req.SideDishes,
		DessertDishID: req.Dessert,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(*updated))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.orders.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "order " + id + " deleted"})
}
