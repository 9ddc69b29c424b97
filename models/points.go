package models

import (
	"encoding/json"
	"strings"
)

// PointsMode selects how a points table is produced.
type PointsMode string

const (
	PointsPercent PointsMode = "percent"
	PointsManual  PointsMode = "manual"
)

func parsePointsMode(v any) PointsMode {
	if s, ok := v.(string); ok && s == string(PointsManual) {
		return PointsManual
	}
	return PointsPercent
}

const defaultPodiumCount = 3

// PointsConfig describes the table awarded by finishing position. In percent
// mode the table is generated from First and DecayPercent, in manual mode
// Table is used as-is.
type PointsConfig struct {
	Mode         PointsMode `json:"mode"`
	First        int        `json:"first"`
	DecayPercent float64    `json:"decayPercent"`
	PodiumCount  int        `json:"podiumCount"`
	Table        []float64  `json:"table"`
}

// UnmarshalJSON accepts numbers or numeric strings. A missing or zero
// podiumCount defaults to 3.
func (c *PointsConfig) UnmarshalJSON(data []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		// garbage decodes to the defaults
		obj = nil
	}
	*c = pointsConfigFrom(obj)
	return nil
}

func pointsConfigFrom(obj map[string]any) PointsConfig {
	mode := strings.ToLower(looseString(obj["mode"]))
	cfg := PointsConfig{Mode: parsePointsMode(mode), Table: []float64{}}
	cfg.First, _ = looseInt(obj["first"])
	cfg.DecayPercent, _ = looseFloat(obj["decayPercent"])
	cfg.PodiumCount = defaultPodiumCount
	if truthy(obj["podiumCount"]) {
		if n, ok := looseInt(obj["podiumCount"]); ok {
			cfg.PodiumCount = n
		}
	}
	cfg.Table = tableFrom(obj["table"])
	return cfg
}

func tableFrom(v any) []float64 {
	out := []float64{}
	for _, n := range looseIntList(v) {
		out = append(out, float64(n))
	}
	return out
}

// ChampionshipKind is display metadata of a linked event.
type ChampionshipKind string

const (
	KindSimple ChampionshipKind = "simple"
	KindDoble  ChampionshipKind = "doble"
)

// ChampHubEventConfig links one event into a championship with its own
// points settings.
type ChampHubEventConfig struct {
	EventID      string           `json:"eventId"`
	Kind         ChampionshipKind `json:"kind"`
	PointsMode   PointsMode       `json:"pointsMode"`
	First        int              `json:"first"`
	DecayPercent float64          `json:"decayPercent"`
	PodiumCount  int              `json:"podiumCount"`
	Table        []float64        `json:"table"`
}

// UnmarshalJSON is lenient; unlike PointsConfig a missing podiumCount is 0.
func (c *ChampHubEventConfig) UnmarshalJSON(data []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		obj = nil
	}
	*c = hubEventFrom(obj)
	return nil
}

func hubEventFrom(obj map[string]any) ChampHubEventConfig {
	ev := ChampHubEventConfig{
		EventID:    strings.TrimSpace(looseString(obj["eventId"])),
		Kind:       KindSimple,
		PointsMode: parsePointsMode(obj["pointsMode"]),
		Table:      tableFrom(obj["table"]),
	}
	if s, ok := obj["kind"].(string); ok && s == string(KindDoble) {
		ev.Kind = KindDoble
	}
	ev.First, _ = looseInt(obj["first"])
	ev.DecayPercent, _ = looseFloat(obj["decayPercent"])
	ev.PodiumCount, _ = looseInt(obj["podiumCount"])
	return ev
}

// ToPointsConfig projects the hub entry onto a PointsConfig.
func (c ChampHubEventConfig) ToPointsConfig() PointsConfig {
	return PointsConfig{
		Mode:         c.PointsMode,
		First:        c.First,
		DecayPercent: c.DecayPercent,
		PodiumCount:  c.PodiumCount,
		Table:        append([]float64{}, c.Table...),
	}
}

// PositionPoints is what one player earns in one ranking.
type PositionPoints struct {
	Position int `json:"position"`
	Points   int `json:"points"`
}

// CategoryPointsRow is one line of a per-category points list.
type CategoryPointsRow struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	Points   int    `json:"points"`
}

// PointsByCategory maps category name to its ordered list. It always
// contains GeneralCategory.
type PointsByCategory map[string][]CategoryPointsRow

// EventCategoryPoints maps category to user to points for one event.
type EventCategoryPoints map[string]map[string]PositionPoints
