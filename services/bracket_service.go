package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/golf-association/brackets"
	"github.com/Dosada05/golf-association/models"
	"github.com/Dosada05/golf-association/repositories"
)

// SlotUpdate is one manual editor change.
type SlotUpdate struct {
	Round int    `json:"round"`
	Match int    `json:"match"`
	Side  string `json:"side"`
	Token string `json:"token"`
}

// ManualBracket is the editor state of a match play event.
type ManualBracket struct {
	Rounds  []models.BracketRound `json:"rounds"`
	Players []models.Player       `json:"players"`
	// Slots holds the editor token of every slot, indexed like Rounds.
	Slots [][][2]string `json:"slots"`
}

type BracketService interface {
	GenerateBracket(ctx context.Context, eventID string) (*models.StoredBracket, error)
	GetDisplayBracket(ctx context.Context, eventID string) (*models.StoredBracket, error)
	GetManualBracket(ctx context.Context, eventID string) (*ManualBracket, error)
	UpdateManualSlot(ctx context.Context, eventID string, update SlotUpdate) (*ManualBracket, error)
	ResetManualBracket(ctx context.Context, eventID string) (*ManualBracket, error)
	SaveManualBracket(ctx context.Context, eventID string, rounds json.RawMessage) (*ManualBracket, error)
}

type bracketService struct {
	eventRepo   repositories.EventRepository
	profileRepo repositories.ProfileRepository
	broadcaster Broadcaster
	labels      brackets.Labels
	generator   brackets.BracketGenerator
	seeder      brackets.BracketGenerator
	logger      *slog.Logger
}

func NewBracketService(
	eventRepo repositories.EventRepository,
	profileRepo repositories.ProfileRepository,
	broadcaster Broadcaster,
	logger *slog.Logger,
) BracketService {
	if logger == nil {
		logger = slog.Default()
	}
	labels := brackets.DefaultLabels()
	return &bracketService{
		eventRepo:   eventRepo,
		profileRepo: profileRepo,
		broadcaster: broadcaster,
		labels:      labels,
		generator:   brackets.NewMatchPlayGenerator(labels),
		seeder:      brackets.NewManualSeedGenerator(labels),
		logger:      logger,
	}
}

func (s *bracketService) loadMatchPlayEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := loadEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	if !models.IsMatchPlayMode(event.Mode()) {
		return nil, ErrNotMatchPlay
	}
	return event, nil
}

func (s *bracketService) GenerateBracket(ctx context.Context, eventID string) (*models.StoredBracket, error) {
	event, err := s.loadMatchPlayEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Config.MatchPlayFormat() != "classic" {
		return nil, fmt.Errorf("%w: got %q", ErrBracketFormat, event.Config.MatchPlayFormat())
	}

	players, err := registeredPlayers(ctx, s.profileRepo, event.RegisteredPlayerIDs)
	if err != nil {
		return nil, err
	}

	// a renamed first round survives regeneration
	mainRoundName := s.labels.FirstRound
	if _, raw := event.Config.MainBracket(); len(raw) > 0 {
		if name := models.RawText(raw[0].Name); name != "" {
			mainRoundName = name
		}
	}

	stored, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		Players:       players,
		MainRoundName: mainRoundName,
	})
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughPlayers) {
			return nil, ErrNotEnoughPlayers
		}
		return nil, fmt.Errorf("failed to generate bracket for event %s: %w", eventID, err)
	}

	if err := s.save(ctx, event, stored); err != nil {
		return nil, err
	}
	s.logger.Info("bracket generated", "event_id", eventID, "players", len(players), "target_players", stored.TargetPlayers, "rounds", len(stored.Rounds))
	return &stored, nil
}

func (s *bracketService) GetDisplayBracket(ctx context.Context, eventID string) (*models.StoredBracket, error) {
	event, err := loadEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	stored, raw := event.Config.MainBracket()
	stored.Rounds = brackets.DecodeRounds(raw, s.labels)
	migrated := brackets.MigrateStoredBracket(stored, s.labels, s.labels.FirstRound)
	return &migrated, nil
}

func (s *bracketService) GetManualBracket(ctx context.Context, eventID string) (*ManualBracket, error) {
	event, err := s.loadMatchPlayEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	players, err := registeredPlayers(ctx, s.profileRepo, event.RegisteredPlayerIDs)
	if err != nil {
		return nil, err
	}
	seeded, err := s.seed(ctx, event, players)
	if err != nil {
		return nil, err
	}
	return s.editorState(seeded.Rounds, players), nil
}

func (s *bracketService) seed(ctx context.Context, event *models.Event, players []models.Player) (models.StoredBracket, error) {
	_, raw := event.Config.MainBracket()
	seeded, err := s.seeder.GenerateBracket(ctx, brackets.GenerateBracketParams{
		Players:  players,
		Existing: brackets.NormalizeManualBracketRounds(raw, s.labels),
	})
	if err != nil {
		return models.StoredBracket{}, fmt.Errorf("failed to seed manual bracket for event %s: %w", event.ID, err)
	}
	return seeded, nil
}

func (s *bracketService) UpdateManualSlot(ctx context.Context, eventID string, update SlotUpdate) (*ManualBracket, error) {
	side, err := brackets.ParseSide(update.Side)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}
	if err := brackets.ValidateToken(update.Token); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}

	event, err := s.loadMatchPlayEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	players, err := registeredPlayers(ctx, s.profileRepo, event.RegisteredPlayerIDs)
	if err != nil {
		return nil, err
	}
	seeded, err := s.seed(ctx, event, players)
	if err != nil {
		return nil, err
	}

	rounds := seeded.Rounds
	if update.Round < 0 || update.Round >= len(rounds) ||
		update.Match < 0 || update.Match >= len(rounds[update.Round].Matches) {
		return nil, fmt.Errorf("%w: round %d match %d", ErrSlotOutOfRange, update.Round, update.Match)
	}

	rounds = brackets.UpdateManualSlot(rounds, update.Round, update.Match, side, update.Token, brackets.PlayerNames(players), s.labels)
	if err := s.save(ctx, event, manualBracket(rounds)); err != nil {
		return nil, err
	}
	return s.editorState(rounds, players), nil
}

func (s *bracketService) ResetManualBracket(ctx context.Context, eventID string) (*ManualBracket, error) {
	event, err := s.loadMatchPlayEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	players, err := registeredPlayers(ctx, s.profileRepo, event.RegisteredPlayerIDs)
	if err != nil {
		return nil, err
	}

	rounds := brackets.ResetManualBracket(players, s.labels)
	if err := s.save(ctx, event, manualBracket(rounds)); err != nil {
		return nil, err
	}
	s.logger.Info("manual bracket reset", "event_id", eventID, "players", len(players))
	return s.editorState(rounds, players), nil
}

func (s *bracketService) SaveManualBracket(ctx context.Context, eventID string, rawRounds json.RawMessage) (*ManualBracket, error) {
	rounds := brackets.NormalizeManualBracketRounds(models.DecodeRawRounds(rawRounds), s.labels)
	if len(rounds) == 0 {
		return nil, ErrBracketEmpty
	}

	event, err := s.loadMatchPlayEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	players, err := registeredPlayers(ctx, s.profileRepo, event.RegisteredPlayerIDs)
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, event, manualBracket(rounds)); err != nil {
		return nil, err
	}
	s.logger.Info("manual bracket saved", "event_id", eventID, "rounds", len(rounds))
	return s.editorState(rounds, players), nil
}

// manualBracket wraps edited rounds. No target size is recorded, so the
// display migration leaves them as the admin drew them.
func manualBracket(rounds []models.BracketRound) models.StoredBracket {
	return models.StoredBracket{SchemaVersion: models.BracketSchemaVersion, Rounds: rounds}
}

func (s *bracketService) editorState(rounds []models.BracketRound, players []models.Player) *ManualBracket {
	slots := make([][][2]string, len(rounds))
	for i, round := range rounds {
		slots[i] = make([][2]string, len(round.Matches))
		for j, match := range round.Matches {
			slots[i][j] = [2]string{
				brackets.ManualSlotValue(match, brackets.SideP1, s.labels),
				brackets.ManualSlotValue(match, brackets.SideP2, s.labels),
			}
		}
	}
	return &ManualBracket{Rounds: rounds, Players: players, Slots: slots}
}

func (s *bracketService) save(ctx context.Context, event *models.Event, stored models.StoredBracket) error {
	config := event.Config.Clone()
	config.SetMainBracket(stored)
	if err := saveConfig(ctx, s.eventRepo, event.ID, config); err != nil {
		return err
	}
	event.Config = config

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(brackets.EventRoom(event.ID), brackets.WebSocketMessage{
			Type:    brackets.MessageBracketUpdated,
			Payload: stored,
			RoomID:  brackets.EventRoom(event.ID),
		})
	}
	return nil
}
