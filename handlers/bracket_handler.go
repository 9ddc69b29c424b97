package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Dosada05/golf-association/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bs services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bs}
}

type saveBracketInput struct {
	Rounds json.RawMessage `json:"rounds"`
}

// GetDisplayHandler handles GET /events/{eventID}/bracket
func (h *BracketHandler) GetDisplayHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.bracketService.GetDisplayBracket(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateHandler handles POST /admin/events/{eventID}/bracket
func (h *BracketHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.bracketService.GenerateBracket(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetManualHandler handles GET /admin/events/{eventID}/bracket/manual
func (h *BracketHandler) GetManualHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	manual, err := h.bracketService.GetManualBracket(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": manual}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SaveManualHandler handles PUT /admin/events/{eventID}/bracket/manual
func (h *BracketHandler) SaveManualHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input saveBracketInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	manual, err := h.bracketService.SaveManualBracket(r.Context(), eventID, input.Rounds)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": manual}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetManualHandler handles DELETE /admin/events/{eventID}/bracket/manual
func (h *BracketHandler) ResetManualHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	manual, err := h.bracketService.ResetManualBracket(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": manual}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateSlotHandler handles PATCH /admin/events/{eventID}/bracket/manual/slot
func (h *BracketHandler) UpdateSlotHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.SlotUpdate
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	manual, err := h.bracketService.UpdateManualSlot(r.Context(), eventID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": manual}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
