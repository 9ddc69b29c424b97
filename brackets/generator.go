package brackets

import (
	"context"
	"errors"

	"github.com/Dosada05/golf-association/models"
)

var ErrNotEnoughPlayers = errors.New("at least two players are required to build a bracket")

type GenerateBracketParams struct {
	Players       []models.Player
	MainRoundName string
	// Existing rounds, used by generators that keep prior edits.
	Existing []models.BracketRound
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (models.StoredBracket, error)

	GetName() string
}

// Labels are the localized texts written into generated rounds.
type Labels struct {
	Placeholder       string `json:"placeholder"`
	PreliminaryRound  string `json:"preliminaryRound"`
	PreliminaryWinner string `json:"preliminaryWinner"`
	FirstRound        string `json:"firstRound"`
	DefaultRound      string `json:"defaultRound"`
}

// DefaultLabels are the Spanish texts used by the association's site.
func DefaultLabels() Labels {
	return Labels{
		Placeholder:       "N/A",
		PreliminaryRound:  "Ronda previa",
		PreliminaryWinner: "Ganador previa #{order}",
		FirstRound:        "Primera ronda",
		DefaultRound:      "Ronda",
	}
}

// WithDefaults fills empty labels from DefaultLabels.
func (l Labels) WithDefaults() Labels {
	d := DefaultLabels()
	if l.Placeholder == "" {
		l.Placeholder = d.Placeholder
	}
	if l.PreliminaryRound == "" {
		l.PreliminaryRound = d.PreliminaryRound
	}
	if l.PreliminaryWinner == "" {
		l.PreliminaryWinner = d.PreliminaryWinner
	}
	if l.FirstRound == "" {
		l.FirstRound = d.FirstRound
	}
	if l.DefaultRound == "" {
		l.DefaultRound = d.DefaultRound
	}
	return l
}

type MatchPlayGenerator struct {
	labels Labels
}

func NewMatchPlayGenerator(labels Labels) BracketGenerator {
	return &MatchPlayGenerator{labels: labels.WithDefaults()}
}

func (g *MatchPlayGenerator) GetName() string {
	return "MatchPlay"
}

func (g *MatchPlayGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (models.StoredBracket, error) {
	if err := ctx.Err(); err != nil {
		return models.StoredBracket{}, err
	}
	if len(params.Players) < 2 {
		return models.StoredBracket{}, ErrNotEnoughPlayers
	}

	roundName := params.MainRoundName
	if roundName == "" {
		roundName = g.labels.FirstRound
	}
	return models.StoredBracket{
		SchemaVersion: models.BracketSchemaVersion,
		TargetPlayers: PreviousPowerOfTwo(len(params.Players)),
		Rounds:        BuildMatchPlayBracket(params.Players, roundName, g.labels),
	}, nil
}

// ManualSeedGenerator opens the manual editor: stored rounds win, otherwise a
// flat first round is seeded. Manual brackets carry no target size, so the
// display migration never re-expands them.
type ManualSeedGenerator struct {
	labels Labels
}

func NewManualSeedGenerator(labels Labels) BracketGenerator {
	return &ManualSeedGenerator{labels: labels.WithDefaults()}
}

func (g *ManualSeedGenerator) GetName() string {
	return "ManualSeed"
}

func (g *ManualSeedGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (models.StoredBracket, error) {
	if err := ctx.Err(); err != nil {
		return models.StoredBracket{}, err
	}
	return models.StoredBracket{
		SchemaVersion: models.BracketSchemaVersion,
		Rounds:        BuildManualBracketSeed(params.Existing, params.Players, g.labels),
	}, nil
}
