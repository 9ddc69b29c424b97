package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/golf-association/brackets"
	"github.com/Dosada05/golf-association/models"
	"github.com/Dosada05/golf-association/repositories"
	"github.com/Dosada05/golf-association/standings"
)

// Broadcaster pushes a message to every websocket client of a room.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// StandingsPublisher mirrors standings to object storage.
type StandingsPublisher interface {
	PublishStandings(ctx context.Context, eventID string, st models.ChampionshipStandings) (string, error)
	RemoveStandings(ctx context.Context, eventID string) error
}

type ChampionshipService interface {
	// Recompute derives the next hub from the previous stored one and the
	// submitted settings. Disabled hubs keep their settings only.
	Recompute(ctx context.Context, prev, next models.ChampionshipHub, actorID *string) (models.ChampionshipHub, error)
	// RecomputeEvent recomputes and persists the hub stored on eventID.
	RecomputeEvent(ctx context.Context, actorID, eventID string) (*models.ChampionshipStandings, error)
	// Publish pushes fresh standings to storage and websocket clients.
	Publish(ctx context.Context, eventID string, hub models.ChampionshipHub)
}

type championshipService struct {
	eventRepo   repositories.EventRepository
	profileRepo repositories.ProfileRepository
	publisher   StandingsPublisher
	broadcaster Broadcaster
	logger      *slog.Logger
	now         func() time.Time
}

// NewChampionshipService wires the aggregator to storage. publisher and
// broadcaster may be nil.
func NewChampionshipService(
	eventRepo repositories.EventRepository,
	profileRepo repositories.ProfileRepository,
	publisher StandingsPublisher,
	broadcaster Broadcaster,
	logger *slog.Logger,
) ChampionshipService {
	if logger == nil {
		logger = slog.Default()
	}
	return &championshipService{
		eventRepo:   eventRepo,
		profileRepo: profileRepo,
		publisher:   publisher,
		broadcaster: broadcaster,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *championshipService) Recompute(ctx context.Context, prev, next models.ChampionshipHub, actorID *string) (models.ChampionshipHub, error) {
	if !next.Enabled {
		return next.Settings(), nil
	}

	input, err := s.loadInput(ctx, next)
	if err != nil {
		return models.ChampionshipHub{}, err
	}
	return standings.RecomputeHub(prev, input, actorID), nil
}

// loadInput fetches the linked events and the profiles of everyone
// classified in them.
func (s *championshipService) loadInput(ctx context.Context, hub models.ChampionshipHub) (standings.ChampionshipInput, error) {
	input := standings.ChampionshipInput{
		Hub:      hub,
		Events:   map[string]standings.LinkedEvent{},
		Profiles: models.ProfileIndex{},
		Now:      s.now().UTC(),
	}

	summaries, err := s.eventRepo.ListSummaries(ctx, hub.EventIDs())
	if err != nil {
		return input, fmt.Errorf("failed to load championship events: %w", err)
	}

	seen := map[string]bool{}
	var userIDs []string
	for _, sum := range summaries {
		linked := standings.LinkedEvent{ID: sum.ID, Name: sum.Name, Classification: sum.Config.FinalClassification()}
		input.Events[sum.ID] = linked
		for _, row := range linked.Classification {
			if !seen[row.UserID] {
				seen[row.UserID] = true
				userIDs = append(userIDs, row.UserID)
			}
		}
	}

	profiles, err := s.profileRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return input, fmt.Errorf("failed to load championship profiles: %w", err)
	}
	input.Profiles = models.IndexProfiles(profiles)
	return input, nil
}

func (s *championshipService) RecomputeEvent(ctx context.Context, actorID, eventID string) (*models.ChampionshipStandings, error) {
	event, err := loadEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}

	hub := event.Config.ChampionshipHub()
	if !hub.Enabled {
		return nil, ErrChampionshipDisabled
	}

	next, err := s.Recompute(ctx, hub, hub, &actorID)
	if err != nil {
		return nil, err
	}

	config := event.Config.Clone()
	config.SetChampionshipHub(next)
	if err := saveConfig(ctx, s.eventRepo, eventID, config); err != nil {
		return nil, err
	}

	s.logger.Info("championship recomputed", "event_id", eventID, "linked_events", len(next.Events))
	s.Publish(ctx, eventID, next)
	return next.Standings, nil
}

// Publish is best-effort: failures are logged, never returned.
func (s *championshipService) Publish(ctx context.Context, eventID string, hub models.ChampionshipHub) {
	if s.publisher != nil {
		if hub.Enabled && hub.Standings != nil {
			if location, err := s.publisher.PublishStandings(ctx, eventID, *hub.Standings); err != nil {
				s.logger.Warn("failed to publish standings", "event_id", eventID, "error", err)
			} else {
				s.logger.Debug("standings published", "event_id", eventID, "location", location)
			}
		} else if err := s.publisher.RemoveStandings(ctx, eventID); err != nil {
			s.logger.Warn("failed to remove published standings", "event_id", eventID, "error", err)
		}
	}

	if s.broadcaster != nil && hub.Standings != nil {
		s.broadcaster.BroadcastToRoom(brackets.EventRoom(eventID), brackets.WebSocketMessage{
			Type:    brackets.MessageStandingsUpdated,
			Payload: hub.Standings,
			RoomID:  brackets.EventRoom(eventID),
		})
	}
}
