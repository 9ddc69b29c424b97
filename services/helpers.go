package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/golf-association/models"
	"github.com/Dosada05/golf-association/repositories"
)

func loadEvent(ctx context.Context, repo repositories.EventRepository, eventID string) (*models.Event, error) {
	event, err := repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %s: %w", eventID, err)
	}
	return event, nil
}

// saveConfig persists a config and maps the repository's not-found error.
func saveConfig(ctx context.Context, repo repositories.EventRepository, eventID string, config models.EventConfig) error {
	if err := repo.UpdateConfig(ctx, nil, eventID, config); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to save config of event %s: %w", eventID, err)
	}
	return nil
}

// registeredPlayers resolves ids in registration order. Unknown profiles
// still yield a player named by id.
func registeredPlayers(ctx context.Context, repo repositories.ProfileRepository, ids []string) ([]models.Player, error) {
	players := make([]models.Player, 0, len(ids))
	if len(ids) == 0 {
		return players, nil
	}
	profiles, err := repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load registered players: %w", err)
	}
	idx := models.IndexProfiles(profiles)
	for _, id := range ids {
		if p, ok := idx[id]; ok {
			players = append(players, p.ToPlayer())
			continue
		}
		players = append(players, models.Player{ID: id, Name: id})
	}
	return players, nil
}
