package api

import (
	"net/http"
)

func (h *Handler) listDishesByCategory(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.dishes.ListByCategory(r.Context(), r.PathValue("category"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]dishResponse, len(dishes))
	for i, d := range dishes {
		out[i] = toDishResponse(d)
	}
	writeJSON(w, http.StatusOK, out)
}
