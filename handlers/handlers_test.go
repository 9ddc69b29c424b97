package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/golf-association/middleware"
	"github.com/Dosada05/golf-association/models"
	"github.com/Dosada05/golf-association/services"
)

type stubEventService struct {
	services.EventService
	page    *services.EventPage
	details *models.EventDetails
	update  func(actorID, eventID string, in services.UpdateEventInput) (*models.Event, error)
	history []models.ClassificationAudit
	points  models.PointsByCategory
	rank    func(in services.RankInput) ([]models.RankedRow, error)
	err     error
}

func (s *stubEventService) GetEventPage(ctx context.Context, eventID string) (*services.EventPage, error) {
	return s.page, s.err
}

func (s *stubEventService) GetEvent(ctx context.Context, eventID string) (*models.EventDetails, error) {
	return s.details, s.err
}

func (s *stubEventService) UpdateEvent(ctx context.Context, actorID, eventID string, in services.UpdateEventInput) (*models.Event, error) {
	return s.update(actorID, eventID, in)
}

func (s *stubEventService) ClassificationHistory(ctx context.Context, eventID string) ([]models.ClassificationAudit, error) {
	return s.history, s.err
}

func (s *stubEventService) RecalculatePoints(ctx context.Context, eventID string) (models.PointsByCategory, error) {
	return s.points, s.err
}

func (s *stubEventService) RankClassification(ctx context.Context, eventID string, in services.RankInput) ([]models.RankedRow, error) {
	return s.rank(in)
}

type stubBracketService struct {
	services.BracketService
	stored *models.StoredBracket
	manual *services.ManualBracket
	slot   services.SlotUpdate
	saved  json.RawMessage
	err    error
}

func (s *stubBracketService) GenerateBracket(ctx context.Context, eventID string) (*models.StoredBracket, error) {
	return s.stored, s.err
}

func (s *stubBracketService) GetDisplayBracket(ctx context.Context, eventID string) (*models.StoredBracket, error) {
	return s.stored, s.err
}

func (s *stubBracketService) GetManualBracket(ctx context.Context, eventID string) (*services.ManualBracket, error) {
	return s.manual, s.err
}

func (s *stubBracketService) UpdateManualSlot(ctx context.Context, eventID string, update services.SlotUpdate) (*services.ManualBracket, error) {
	s.slot = update
	return s.manual, s.err
}

func (s *stubBracketService) ResetManualBracket(ctx context.Context, eventID string) (*services.ManualBracket, error) {
	return s.manual, s.err
}

func (s *stubBracketService) SaveManualBracket(ctx context.Context, eventID string, rounds json.RawMessage) (*services.ManualBracket, error) {
	s.saved = rounds
	return s.manual, s.err
}

type stubChampionshipService struct {
	services.ChampionshipService
	actor string
	st    *models.ChampionshipStandings
	err   error
}

func (s *stubChampionshipService) RecomputeEvent(ctx context.Context, actorID, eventID string) (*models.ChampionshipStandings, error) {
	s.actor = actorID
	return s.st, s.err
}

// withActor stands in for the auth middleware.
func withActor(actor string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithClaims(r.Context(), jwt.MapClaims{"sub": actor})))
		})
	}
}

func newTestRouter(eh *EventHandler, bh *BracketHandler, ch *ChampionshipHandler) *chi.Mux {
	r := chi.NewRouter()
	if eh != nil {
		r.Get("/events/{eventID}", eh.GetPublicHandler)
	}
	if bh != nil {
		r.Get("/events/{eventID}/bracket", bh.GetDisplayHandler)
	}
	r.Route("/admin/events/{eventID}", func(r chi.Router) {
		r.Use(withActor("admin-1"))
		if eh != nil {
			r.Get("/", eh.GetHandler)
			r.Patch("/", eh.UpdateHandler)
			r.Get("/classification-history", eh.HistoryHandler)
			r.Post("/classification/rank", eh.RankHandler)
			r.Post("/points/recalculate", eh.RecalculatePointsHandler)
		}
		if bh != nil {
			r.Post("/bracket", bh.GenerateHandler)
			r.Get("/bracket/manual", bh.GetManualHandler)
			r.Put("/bracket/manual", bh.SaveManualHandler)
			r.Delete("/bracket/manual", bh.ResetManualHandler)
			r.Patch("/bracket/manual/slot", bh.UpdateSlotHandler)
		}
		if ch != nil {
			r.Post("/championship/recompute", ch.RecomputeHandler)
		}
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec, decoded
}

func TestEventHandler_GetPublic(t *testing.T) {
	svc := &stubEventService{page: &services.EventPage{
		Event:             &models.Event{ID: "e1", Name: "Copa", Config: models.NewEventConfig()},
		RegisteredPlayers: []models.Player{{ID: "u1", Name: "Ana"}},
	}}
	router := newTestRouter(NewEventHandler(svc), nil, nil)

	rec, body := do(t, router, http.MethodGet, "/events/e1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	event := body["event"].(map[string]any)
	assert.Equal(t, "Copa", event["name"])
	assert.Len(t, body["registeredPlayers"], 1)
}

func TestEventHandler_GetPublicNotFound(t *testing.T) {
	router := newTestRouter(NewEventHandler(&stubEventService{err: services.ErrEventNotFound}), nil, nil)

	rec, body := do(t, router, http.MethodGet, "/events/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "event not found", body["error"])
}

func TestEventHandler_Update(t *testing.T) {
	var gotActor, gotEvent string
	var gotInput services.UpdateEventInput
	svc := &stubEventService{update: func(actorID, eventID string, in services.UpdateEventInput) (*models.Event, error) {
		gotActor, gotEvent, gotInput = actorID, eventID, in
		return &models.Event{ID: eventID, Name: "Copa", Config: models.NewEventConfig()}, nil
	}}
	router := newTestRouter(NewEventHandler(svc), nil, nil)

	rec, body := do(t, router, http.MethodPatch, "/admin/events/e1",
		`{"name":"Copa","competition_mode":"stableford","has_handicap_ranking":true,"config":{"maxPlayers":40},"id":"ignored"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "admin-1", gotActor)
	assert.Equal(t, "e1", gotEvent)
	assert.Equal(t, "Copa", gotInput.Name)
	assert.Equal(t, true, gotInput.HasHandicapRanking)
	assert.JSONEq(t, `{"maxPlayers":40}`, string(gotInput.Config))
}

func TestEventHandler_UpdateErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"malformed body", `{"name":`, nil, http.StatusBadRequest},
		{"empty body", ``, nil, http.StatusBadRequest},
		{"validation", `{"name":""}`, services.ErrEventNameRequired, http.StatusBadRequest},
		{"config", `{"name":"x"}`, fmt.Errorf("%w: Config MP inválida: holesPerRound es obligatoria.", services.ErrInvalidConfig), http.StatusBadRequest},
		{"not found", `{"name":"x"}`, services.ErrEventNotFound, http.StatusNotFound},
		{"unexpected", `{"name":"x"}`, errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubEventService{update: func(string, string, services.UpdateEventInput) (*models.Event, error) {
				return nil, tt.err
			}}
			router := newTestRouter(NewEventHandler(svc), nil, nil)

			rec, body := do(t, router, http.MethodPatch, "/admin/events/e1", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestEventHandler_History(t *testing.T) {
	svc := &stubEventService{history: []models.ClassificationAudit{{ID: "a1", EventID: "e1", Action: models.AuditLock}}}
	router := newTestRouter(NewEventHandler(svc), nil, nil)

	rec, body := do(t, router, http.MethodGet, "/admin/events/e1/classification-history", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	row := data[0].(map[string]any)
	assert.Equal(t, "lock", row["action"])
	assert.Nil(t, row["actor"])
}

func TestEventHandler_RecalculatePoints(t *testing.T) {
	router := newTestRouter(NewEventHandler(&stubEventService{err: services.ErrClassificationMissing}), nil, nil)

	rec, _ := do(t, router, http.MethodPost, "/admin/events/e1/points/recalculate", "")

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestEventHandler_Rank(t *testing.T) {
	svc := &stubEventService{rank: func(in services.RankInput) ([]models.RankedRow, error) {
		require.Len(t, in.Entries, 2)
		return []models.RankedRow{{UserID: "u2", Position: 1}, {UserID: "u1", Position: 2}}, nil
	}}
	router := newTestRouter(NewEventHandler(svc), nil, nil)

	rec, body := do(t, router, http.MethodPost, "/admin/events/e1/classification/rank",
		`{"entries":[{"user_id":"u1","strokes":74},{"user_id":"u2","strokes":70}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	positions := body["positions"].([]any)
	assert.Equal(t, map[string]any{"user_id": "u2", "position": 1.0}, positions[0])
}

func TestEventHandler_RankRejectsUnknownFields(t *testing.T) {
	router := newTestRouter(NewEventHandler(&stubEventService{}), nil, nil)

	rec, body := do(t, router, http.MethodPost, "/admin/events/e1/classification/rank", `{"rows":[]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "unknown key")
}

func TestBracketHandler_Generate(t *testing.T) {
	svc := &stubBracketService{stored: &models.StoredBracket{SchemaVersion: 1, TargetPlayers: 4, Rounds: []models.BracketRound{}}}
	router := newTestRouter(nil, NewBracketHandler(svc), nil)

	rec, body := do(t, router, http.MethodPost, "/admin/events/e1/bracket", "")

	assert.Equal(t, http.StatusCreated, rec.Code)
	bracket := body["bracket"].(map[string]any)
	assert.Equal(t, 4.0, bracket["targetPlayers"])
}

func TestBracketHandler_GenerateErrors(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{services.ErrNotMatchPlay, http.StatusConflict},
		{services.ErrBracketFormat, http.StatusConflict},
		{services.ErrNotEnoughPlayers, http.StatusBadRequest},
		{services.ErrEventNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			router := newTestRouter(nil, NewBracketHandler(&stubBracketService{err: tt.err}), nil)

			rec, _ := do(t, router, http.MethodPost, "/admin/events/e1/bracket", "")

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestBracketHandler_ManualEditing(t *testing.T) {
	svc := &stubBracketService{manual: &services.ManualBracket{Rounds: []models.BracketRound{}, Players: []models.Player{}}}
	router := newTestRouter(nil, NewBracketHandler(svc), nil)

	rec, _ := do(t, router, http.MethodGet, "/admin/events/e1/bracket/manual", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, router, http.MethodPatch, "/admin/events/e1/bracket/manual/slot", `{"round":0,"match":1,"side":"p2","token":"bye"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.SlotUpdate{Round: 0, Match: 1, Side: "p2", Token: "bye"}, svc.slot)

	rec, _ = do(t, router, http.MethodPut, "/admin/events/e1/bracket/manual", `{"rounds":[{"name":"Final","matches":[]}]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"name":"Final","matches":[]}]`, string(svc.saved))

	rec, _ = do(t, router, http.MethodDelete, "/admin/events/e1/bracket/manual", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBracketHandler_SlotOutOfRange(t *testing.T) {
	router := newTestRouter(nil, NewBracketHandler(&stubBracketService{err: services.ErrSlotOutOfRange}), nil)

	rec, _ := do(t, router, http.MethodPatch, "/admin/events/e1/bracket/manual/slot", `{"round":9,"match":0,"side":"p1","token":"bye"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBracketHandler_Display(t *testing.T) {
	svc := &stubBracketService{stored: &models.StoredBracket{SchemaVersion: 1, Rounds: []models.BracketRound{{Name: "Final", Matches: []models.BracketMatch{{P1: "A", P2: "B"}}}}}}
	router := newTestRouter(nil, NewBracketHandler(svc), nil)

	rec, body := do(t, router, http.MethodGet, "/events/e1/bracket", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	rounds := body["bracket"].(map[string]any)["rounds"].([]any)
	assert.Len(t, rounds, 1)
}

func TestChampionshipHandler_Recompute(t *testing.T) {
	svc := &stubChampionshipService{st: &models.ChampionshipStandings{Categories: []string{"General"}}}
	router := newTestRouter(nil, nil, NewChampionshipHandler(svc))

	rec, body := do(t, router, http.MethodPost, "/admin/events/e1/championship/recompute", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin-1", svc.actor)
	assert.Equal(t, []any{"General"}, body["standings"].(map[string]any)["categories"])
}

func TestChampionshipHandler_Disabled(t *testing.T) {
	router := newTestRouter(nil, nil, NewChampionshipHandler(&stubChampionshipService{err: services.ErrChampionshipDisabled}))

	rec, _ := do(t, router, http.MethodPost, "/admin/events/e1/championship/recompute", "")

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestChampionshipHandler_RequiresActor(t *testing.T) {
	h := NewChampionshipHandler(&stubChampionshipService{})
	router := chi.NewRouter()
	router.Post("/admin/events/{eventID}/championship/recompute", h.RecomputeHandler)

	rec, _ := do(t, router, http.MethodPost, "/admin/events/e1/championship/recompute", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
