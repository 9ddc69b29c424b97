package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dosada05/golf-association/models"
)

// StandingsKey is the object key of an event's published standings.
func StandingsKey(eventID string) string {
	return "standings/" + eventID + ".json"
}

// StandingsPublisher mirrors championship standings to object storage so the
// public site can read them without hitting the API.
type StandingsPublisher struct {
	uploader FileUploader
}

func NewStandingsPublisher(uploader FileUploader) *StandingsPublisher {
	return &StandingsPublisher{uploader: uploader}
}

// PublishStandings uploads the standings and returns their public URL.
func (p *StandingsPublisher) PublishStandings(ctx context.Context, eventID string, standings models.ChampionshipStandings) (string, error) {
	body, err := json.Marshal(standings)
	if err != nil {
		return "", fmt.Errorf("failed to encode standings for event %s: %w", eventID, err)
	}
	result, err := p.uploader.Upload(ctx, StandingsKey(eventID), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return result.Location, nil
}

// RemoveStandings deletes published standings, used when a hub is disabled.
func (p *StandingsPublisher) RemoveStandings(ctx context.Context, eventID string) error {
	return p.uploader.Delete(ctx, StandingsKey(eventID))
}
