package api

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/pavani-weerakoon/restaurant/internal/domain/order"
)

type dailySalesResponse struct {
	Total float64 `json:"total"`
}

type popularDishResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type pairingResponse struct {
	MainDish string `json:"mainDish"`
	SideDish string `json:"sideDish"`
	Count    int    `json:"count"`
}

func (h *Handler) dailySales(w http.ResponseWriter, r *http.Request) {
	total, err := h.reports.DailySales(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dailySalesResponse{Total: total.InexactFloat64()})
}

func (h *Handler) popularMainDish(w http.ResponseWriter, r *http.Request) {
	writePopular(w, r, h.reports.MostPopularMainDish)
}

func (h *Handler) popularSideDish(w http.ResponseWriter, r *http.Request) {
	writePopular(w, r, h.reports.MostPopularSideDish)
}

// writePopular renders either popularity report. An empty order collection
// is not a failure: it becomes a plain message, same as the pairing report.
func writePopular(
	w http.ResponseWriter,
	r *http.Request,
	report func(context.Context) (*order.PopularDish, error),
) {
	top, err := report(r.Context())
	if err != nil {
		if errors.Is(err, order.ErrNoOrders) {
			writeJSON(w, http.StatusOK, messageResponse{Message: "no orders found"})
			return
		}
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, popularDishResponse{Name: top.Name, Count: top.Count})
}

func (h *Handler) commonPairing(w http.ResponseWriter, r *http.Request) {
	pairing, err := h.reports.MostCommonPairing(r.Context())
	if err != nil {
		if errors.Is(err, order.ErrNoOrders) {
			writeJSON(w, http.StatusOK, messageResponse{Message: "no pairings found"})
			return
		}
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pairingResponse{
		MainDish: pairing.MainDish,
		SideDish: pairing.SideDish,
		Count:    pairing.Count,
	})
}
