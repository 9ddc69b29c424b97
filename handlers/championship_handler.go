package handlers

import (
	"net/http"

	"github.com/Dosada05/golf-association/middleware"
	"github.com/Dosada05/golf-association/services"
)

type ChampionshipHandler struct {
	championshipService services.ChampionshipService
}

func NewChampionshipHandler(cs services.ChampionshipService) *ChampionshipHandler {
	return &ChampionshipHandler{championshipService: cs}
}

// RecomputeHandler handles POST /admin/events/{eventID}/championship/recompute
func (h *ChampionshipHandler) RecomputeHandler(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	eventID, err := eventIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	st, err := h.championshipService.RecomputeEvent(r.Context(), actorID, eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": st}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
