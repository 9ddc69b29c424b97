package handlers

import (
	"net/http"

	"github.com/Dosada05/golf-association/middleware"
	"github.com/Dosada05/golf-association/services"
)

type EventHandler struct {
	eventService services.EventService
}

func NewEventHandler(es services.EventService) *EventHandler {
	return &EventHandler{eventService: es}
}

// GetPublicHandler handles GET /events/{eventID}
func (h *EventHandler) GetPublicHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	page, err := h.eventService.GetEventPage(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, page, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler handles GET /admin/events/{eventID}
func (h *EventHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	details, err := h.eventService.GetEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	resp := jsonResponse{"event": details.Event, "registeredPlayers": details.RegisteredPlayers}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler handles PATCH /admin/events/{eventID}
func (h *EventHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
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

	var input services.UpdateEventInput
	if err := readJSONLoose(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.UpdateEvent(r.Context(), actorID, eventID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"ok": true, "event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// HistoryHandler handles GET /admin/events/{eventID}/classification-history
func (h *EventHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	history, err := h.eventService.ClassificationHistory(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"ok": true, "data": history}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecalculatePointsHandler handles POST /admin/events/{eventID}/points/recalculate
func (h *EventHandler) RecalculatePointsHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	points, err := h.eventService.RecalculatePoints(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"eventPointsByCategory": points}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RankHandler handles POST /admin/events/{eventID}/classification/rank
func (h *EventHandler) RankHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RankInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rows, err := h.eventService.RankClassification(r.Context(), eventID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"positions": rows}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
