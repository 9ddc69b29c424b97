package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/golf-association/brackets"
	"github.com/Dosada05/golf-association/models"
	"github.com/Dosada05/golf-association/repositories"
	"github.com/Dosada05/golf-association/standings"
)

// UpdateEventInput is the admin PATCH body. Scalars stay loosely typed so the
// pipeline can apply the same coercions the admin UI relies on.
type UpdateEventInput struct {
	Name               any             `json:"name"`
	Status             any             `json:"status"`
	CompetitionMode    any             `json:"competition_mode"`
	RegistrationStart  any             `json:"registration_start"`
	RegistrationEnd    any             `json:"registration_end"`
	EventDate          any             `json:"event_date"`
	CourseID           any             `json:"course_id"`
	Location           any             `json:"location"`
	Description        any             `json:"description"`
	HasHandicapRanking any             `json:"has_handicap_ranking"`
	Config             json.RawMessage `json:"config"`
}

// RankInput is a set of stroke totals to turn into positions.
type RankInput struct {
	Entries []standings.ScoreEntry `json:"entries"`
	// TieBreakLimit overrides the event's podium count when set.
	TieBreakLimit *int `json:"tieBreakLimit"`
}

// EventPage is the public view of an event.
type EventPage struct {
	Event             *models.Event                 `json:"event"`
	RegisteredPlayers []models.Player               `json:"registeredPlayers"`
	Bracket           *models.StoredBracket         `json:"bracket,omitempty"`
	Points            models.PointsByCategory       `json:"eventPointsByCategory,omitempty"`
	Standings         *models.ChampionshipStandings `json:"championshipStandings,omitempty"`
}

type EventService interface {
	GetEvent(ctx context.Context, eventID string) (*models.EventDetails, error)
	GetEventPage(ctx context.Context, eventID string) (*EventPage, error)
	UpdateEvent(ctx context.Context, actorID, eventID string, input UpdateEventInput) (*models.Event, error)
	ClassificationHistory(ctx context.Context, eventID string) ([]models.ClassificationAudit, error)
	RecalculatePoints(ctx context.Context, eventID string) (models.PointsByCategory, error)
	RankClassification(ctx context.Context, eventID string, input RankInput) ([]models.RankedRow, error)
}

type eventService struct {
	eventRepo     repositories.EventRepository
	profileRepo   repositories.ProfileRepository
	auditRepo     repositories.ClassificationAuditRepository
	championships ChampionshipService
	broadcaster   Broadcaster
	labels        brackets.Labels
	logger        *slog.Logger
	now           func() time.Time
}

func NewEventService(
	eventRepo repositories.EventRepository,
	profileRepo repositories.ProfileRepository,
	auditRepo repositories.ClassificationAuditRepository,
	championships ChampionshipService,
	broadcaster Broadcaster,
	logger *slog.Logger,
) EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &eventService{
		eventRepo:     eventRepo,
		profileRepo:   profileRepo,
		auditRepo:     auditRepo,
		championships: championships,
		broadcaster:   broadcaster,
		labels:        brackets.DefaultLabels(),
		logger:        logger,
		now:           time.Now,
	}
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*models.EventDetails, error) {
	event, err := loadEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	players, err := registeredPlayers(ctx, s.profileRepo, event.RegisteredPlayerIDs)
	if err != nil {
		return nil, err
	}
	return &models.EventDetails{Event: event, RegisteredPlayers: players}, nil
}

func (s *eventService) GetEventPage(ctx context.Context, eventID string) (*EventPage, error) {
	details, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	event := details.Event
	page := &EventPage{
		Event:             event,
		RegisteredPlayers: details.RegisteredPlayers,
		Points:            event.Config.EventPoints(),
	}
	if event.Config.Has(models.KeyMainBracket) {
		stored, raw := event.Config.MainBracket()
		stored.Rounds = brackets.DecodeRounds(raw, s.labels)
		migrated := brackets.MigrateStoredBracket(stored, s.labels, s.labels.FirstRound)
		page.Bracket = &migrated
	}
	if hub := event.Config.ChampionshipHub(); hub.Enabled {
		page.Standings = hub.Standings
	}
	// the public page never exposes drafts or audit data
	page.Event.Config = publicConfig(event.Config)
	return page, nil
}

// publicConfig keeps the keys the public pages render.
func publicConfig(cfg models.EventConfig) models.EventConfig {
	out := models.NewEventConfig()
	for _, key := range []string{
		models.KeyMaxPlayers, models.KeyCompetitionMode, models.KeyScoringSystem,
		models.KeyHasConsolation, models.KeyMatchPlayFormat, models.KeyStableford,
		models.KeyFinalClassification, models.KeyFinalClassificationLocked,
	} {
		if cfg.Has(key) {
			out.Set(key, cfg.Value(key))
		}
	}
	return out
}

// optionalDate accepts null, "" or YYYY-MM-DD.
func optionalDate(field string, v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok && s == "" {
		return nil, nil
	}
	if !isISODate(v) {
		return nil, fmt.Errorf("%w: Invalid %s (YYYY-MM-DD)", ErrInvalidDate, field)
	}
	s := v.(string)
	return &s, nil
}

// trimmedOrNil is the trimmed string, or nil for blanks and non-strings.
func trimmedOrNil(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func sameClassification(a, b []models.FinalClassificationRow) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ja, jb)
}

func (s *eventService) UpdateEvent(ctx context.Context, actorID, eventID string, in UpdateEventInput) (*models.Event, error) {
	existing, err := loadEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}

	name := trimmedOrNil(in.Name)
	if name == nil {
		return nil, ErrEventNameRequired
	}
	eventDate, err := optionalDate("event_date", in.EventDate)
	if err != nil {
		return nil, err
	}
	registrationStart, err := optionalDate("registration_start", in.RegistrationStart)
	if err != nil {
		return nil, err
	}
	registrationEnd, err := optionalDate("registration_end", in.RegistrationEnd)
	if err != nil {
		return nil, err
	}
	courseID := trimmedOrNil(in.CourseID)
	if courseID != nil && !isEventCourseID(*courseID) {
		return nil, ErrInvalidCourseID
	}
	var mode *string
	if m := trimmedOrNil(in.CompetitionMode); m != nil {
		lowered := strings.ToLower(*m)
		mode = &lowered
	}
	modeName := ""
	if mode != nil {
		modeName = *mode
	}

	existingConfig := existing.Config
	existingLocked := existingConfig.FinalClassificationLocked()
	existingFinal := existingConfig.FinalClassification()

	incoming := models.DecodeConfigPatch(in.Config)
	hasFinal := incoming.Has(models.KeyFinalClassification)
	var incomingFinal []models.FinalClassificationRow
	if hasFinal {
		incomingFinal = incoming.FinalClassification()
	}
	incomingLocked, lockSubmitted := incoming.LockFlag()
	nextLocked := existingLocked
	if lockSubmitted {
		nextLocked = incomingLocked
	}
	finalChanged := hasFinal && !sameClassification(incomingFinal, existingFinal)
	lockedChanged := lockSubmitted && incomingLocked != existingLocked

	config := models.MergeConfig(existingConfig, incoming)
	obj := config.Object()
	if err := validateMaxPlayers(obj); err != nil {
		return nil, err
	}
	if models.IsMatchPlayMode(modeName) {
		if err := validateMatchPlayConfig(obj); err != nil {
			return nil, err
		}
		config.Set(models.KeyCompetitionMode, "match-play")
		config.Set(models.KeyScoringSystem, "match-play")
		config.Set(models.KeyHasConsolation, models.Truthy(obj[models.KeyHasConsolation]))
	}

	status := trimmedOrNil(in.Status)
	closing := status != nil && models.IsClosingStatus(*status)
	computePoints := closing && models.IsStablefordMode(modeName) && config.StablefordMode() == "classic"

	prevHub := existingConfig.ChampionshipHub()
	nextHub := config.ChampionshipHub()

	var points models.PointsByCategory
	g, gCtx := errgroup.WithContext(ctx)
	if computePoints {
		g.Go(func() error {
			var err error
			points, err = s.eventPoints(gCtx, config)
			return err
		})
	}
	g.Go(func() error {
		var err error
		nextHub, err = s.championships.Recompute(gCtx, prevHub, nextHub, &actorID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if points != nil {
		config.SetEventPoints(points, s.now())
	}
	config.SetChampionshipHub(nextHub)

	updated := &models.Event{
		ID:                  existing.ID,
		AssociationID:       existing.AssociationID,
		Name:                *name,
		Status:              status,
		CompetitionMode:     mode,
		RegistrationStart:   registrationStart,
		RegistrationEnd:     registrationEnd,
		EventDate:           eventDate,
		CourseID:            courseID,
		Location:            trimmedOrNil(in.Location),
		Description:         trimmedOrNil(in.Description),
		Config:              config,
		HasHandicapRanking:  models.Truthy(in.HasHandicapRanking),
		RegisteredPlayerIDs: existing.RegisteredPlayerIDs,
		CreatedBy:           existing.CreatedBy,
	}
	if err := s.eventRepo.Update(ctx, nil, updated); err != nil {
		switch {
		case errors.Is(err, repositories.ErrEventNotFound):
			return nil, ErrEventNotFound
		case errors.Is(err, repositories.ErrEventInvalidCourse):
			return nil, ErrInvalidCourse
		case errors.Is(err, repositories.ErrEventInvalidAssociation):
			return nil, ErrInvalidAssociation
		}
		return nil, fmt.Errorf("failed to update event %s: %w", eventID, err)
	}
	s.logger.Info("event updated", "event_id", eventID, "actor_id", actorID, "points_computed", points != nil)

	if finalChanged || lockedChanged {
		action := models.AuditUpdate
		if lockedChanged && !finalChanged {
			action = models.AuditUnlock
			if nextLocked {
				action = models.AuditLock
			}
		}
		snapshot := existingFinal
		if hasFinal {
			snapshot = incomingFinal
		}
		s.recordAudit(ctx, &models.ClassificationAudit{
			EventID:     eventID,
			ActorUserID: &actorID,
			Action:      action,
			Locked:      nextLocked,
			Snapshot:    snapshot,
		})
	}

	if points != nil {
		s.broadcastPoints(eventID, points)
	}
	if nextHub.Enabled || prevHub.Enabled {
		s.championships.Publish(ctx, eventID, nextHub)
	}
	return updated, nil
}

// recordAudit never fails the save it documents.
func (s *eventService) recordAudit(ctx context.Context, audit *models.ClassificationAudit) {
	if err := s.auditRepo.Insert(ctx, nil, audit); err != nil {
		s.logger.Warn("failed to record classification audit", "event_id", audit.EventID, "action", audit.Action, "error", err)
	}
}

func (s *eventService) broadcastPoints(eventID string, points models.PointsByCategory) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToRoom(brackets.EventRoom(eventID), brackets.WebSocketMessage{
		Type:    brackets.MessagePointsUpdated,
		Payload: points,
		RoomID:  brackets.EventRoom(eventID),
	})
}

// eventPoints computes the per-category points of config's final
// classification, nil when nobody is classified.
func (s *eventService) eventPoints(ctx context.Context, config models.EventConfig) (models.PointsByCategory, error) {
	final := config.FinalClassification()
	if len(final) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(final))
	for _, row := range final {
		ids = append(ids, row.UserID)
	}
	profiles, err := s.profileRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load classified players: %w", err)
	}
	return standings.CalculatePointsByCategory(final, models.IndexProfiles(profiles), config.ClassicPoints()), nil
}

func (s *eventService) ClassificationHistory(ctx context.Context, eventID string) ([]models.ClassificationAudit, error) {
	audits, err := s.auditRepo.ListByEvent(ctx, eventID, repositories.DefaultAuditLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load classification history for event %s: %w", eventID, err)
	}
	return audits, nil
}

func (s *eventService) RecalculatePoints(ctx context.Context, eventID string) (models.PointsByCategory, error) {
	event, err := loadEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	points, err := s.eventPoints(ctx, event.Config)
	if err != nil {
		return nil, err
	}
	if points == nil {
		return nil, ErrClassificationMissing
	}

	config := event.Config.Clone()
	config.SetEventPoints(points, s.now())
	if err := saveConfig(ctx, s.eventRepo, eventID, config); err != nil {
		return nil, err
	}
	s.logger.Info("event points recalculated", "event_id", eventID, "categories", len(points))
	s.broadcastPoints(eventID, points)
	return points, nil
}

func (s *eventService) RankClassification(ctx context.Context, eventID string, in RankInput) ([]models.RankedRow, error) {
	limit := 0
	if in.TieBreakLimit != nil {
		limit = *in.TieBreakLimit
	} else {
		event, err := loadEvent(ctx, s.eventRepo, eventID)
		if err != nil {
			return nil, err
		}
		limit = event.Config.ClassicPoints().PodiumCount
	}
	for _, e := range in.Entries {
		if strings.TrimSpace(e.UserID) == "" {
			return nil, fmt.Errorf("%w: every entry needs a user_id", ErrValidationFailed)
		}
	}
	return standings.AssignPositions(in.Entries, limit), nil
}
