package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dosada05/golf-association/brackets"
	"github.com/Dosada05/golf-association/models"
	"github.com/Dosada05/golf-association/repositories"
)

type fakeEventRepo struct {
	mu        sync.Mutex
	events    map[string]*models.Event
	updates   int
	updateErr error
}

func newFakeEventRepo(events ...*models.Event) *fakeEventRepo {
	r := &fakeEventRepo{events: map[string]*models.Event{}}
	for _, e := range events {
		r.events[e.ID] = e
	}
	return r
}

func copyEvent(e *models.Event) *models.Event {
	out := *e
	out.Config = e.Config.Clone()
	return &out
}

func (r *fakeEventRepo) GetByID(ctx context.Context, id string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	return copyEvent(e), nil
}

func (r *fakeEventRepo) ListSummaries(ctx context.Context, ids []string) ([]models.EventSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.EventSummary
	for _, id := range ids {
		if e, ok := r.events[id]; ok {
			out = append(out, models.EventSummary{ID: e.ID, Name: e.Name, Config: e.Config.Clone()})
		}
	}
	return out, nil
}

func (r *fakeEventRepo) Update(ctx context.Context, exec repositories.SQLExecutor, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.events[event.ID]; !ok {
		return repositories.ErrEventNotFound
	}
	r.updates++
	r.events[event.ID] = copyEvent(event)
	return nil
}

func (r *fakeEventRepo) UpdateConfig(ctx context.Context, exec repositories.SQLExecutor, id string, config models.EventConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return repositories.ErrEventNotFound
	}
	r.updates++
	e.Config = config.Clone()
	return nil
}

func (r *fakeEventRepo) stored(t *testing.T, id string) *models.Event {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	require.True(t, ok, "event %s not stored", id)
	return copyEvent(e)
}

type fakeProfileRepo struct {
	profiles map[string]models.Profile
	admins   map[string]bool
}

func newFakeProfileRepo(profiles ...models.Profile) *fakeProfileRepo {
	r := &fakeProfileRepo{profiles: map[string]models.Profile{}, admins: map[string]bool{}}
	for _, p := range profiles {
		r.profiles[p.ID] = p
	}
	return r
}

func (r *fakeProfileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	return &p, nil
}

func (r *fakeProfileRepo) GetByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	var out []models.Profile
	for _, id := range ids {
		if p, ok := r.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) IsAssociationAdmin(ctx context.Context, userID string) (bool, error) {
	return r.admins[userID], nil
}

type fakeAuditRepo struct {
	mu        sync.Mutex
	audits    []models.ClassificationAudit
	insertErr error
}

func (r *fakeAuditRepo) Insert(ctx context.Context, exec repositories.SQLExecutor, audit *models.ClassificationAudit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.audits = append(r.audits, *audit)
	return nil
}

func (r *fakeAuditRepo) ListByEvent(ctx context.Context, eventID string, limit int) ([]models.ClassificationAudit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ClassificationAudit
	for i := len(r.audits) - 1; i >= 0 && len(out) < limit; i-- {
		if r.audits[i].EventID == eventID {
			out = append(out, r.audits[i])
		}
	}
	return out, nil
}

type broadcast struct {
	room    string
	message interface{}
}

type fakeBroadcaster struct {
	mu   sync.Mutex
	sent []broadcast
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, broadcast{room: roomID, message: message})
}

func (b *fakeBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, s := range b.sent {
		if msg, ok := s.message.(brackets.WebSocketMessage); ok {
			out = append(out, msg.Type)
		}
	}
	return out
}

type fakePublisher struct {
	published map[string]models.ChampionshipStandings
	removed   []string
	err       error
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{published: map[string]models.ChampionshipStandings{}}
}

func (p *fakePublisher) PublishStandings(ctx context.Context, eventID string, st models.ChampionshipStandings) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.published[eventID] = st
	return "https://cdn.example.com/standings/" + eventID + ".json", nil
}

func (p *fakePublisher) RemoveStandings(ctx context.Context, eventID string) error {
	p.removed = append(p.removed, eventID)
	return nil
}

func strPtr(s string) *string { return &s }

func eventWithConfig(t *testing.T, id, mode, config string) *models.Event {
	t.Helper()
	e := &models.Event{ID: id, Name: "Evento " + id, Config: models.DecodeEventConfig([]byte(config))}
	if mode != "" {
		e.CompetitionMode = strPtr(mode)
	}
	return e
}

func profile(id, first, last, category string) models.Profile {
	p := models.Profile{ID: id, FirstName: strPtr(first), LastName: strPtr(last)}
	if category != "" {
		p.Category = strPtr(category)
	}
	return p
}
