package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// ConfigSchemaVersion is stamped on every config passing DecodeEventConfig.
const ConfigSchemaVersion = 1

// Config keys read or written by the server. Everything else in the column
// is carried through untouched.
const (
	KeySchemaVersion             = "schemaVersion"
	KeyMaxPlayers                = "maxPlayers"
	KeyCompetitionMode           = "competitionMode"
	KeyScoringSystem             = "scoringSystem"
	KeyHasConsolation            = "hasConsolation"
	KeyMatchPlayFormat           = "matchPlayFormat"
	KeyStableford                = "stableford"
	KeyFinalClassification       = "finalClassification"
	KeyFinalClassificationLocked = "finalClassificationLocked"
	KeyEventPointsByCategory     = "eventPointsByCategory"
	KeyEventPointsUpdatedAt      = "eventPointsUpdatedAt"
	KeyChampionshipHub           = "championshipHub"
	KeyIsChampionship            = "isChampionship"
	KeyMainBracket               = "mainBracket"
)

// EventConfig is the events.config JSONB column. Known keys are read through
// typed accessors, unknown keys survive a decode/encode cycle verbatim.
type EventConfig struct {
	raw map[string]json.RawMessage
}

// NewEventConfig returns an empty, current-version config.
func NewEventConfig() EventConfig {
	return DecodeEventConfig(nil)
}

// DecodeEventConfig is the only place stored configs are migrated. Anything
// that is not a JSON object decodes as an empty config.
func DecodeEventConfig(data []byte) EventConfig {
	c := DecodeConfigPatch(data)
	c.migrate()
	return c
}

// DecodeConfigPatch reads a submitted partial config without migrating it,
// so legacy keys in a patch never synthesize keys of their own.
func DecodeConfigPatch(data []byte) EventConfig {
	c := EventConfig{raw: map[string]json.RawMessage{}}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &c.raw); err != nil || c.raw == nil {
			c.raw = map[string]json.RawMessage{}
		}
	}
	return c
}

// migrate upgrades older layouts in place.
func (c *EventConfig) migrate() {
	version, _ := looseInt(decodeAny(c.raw[KeySchemaVersion]))
	if version < 1 {
		// v0 flagged championships with a bare boolean
		if truthy(decodeAny(c.raw[KeyIsChampionship])) {
			hubObj, _ := decodeAny(c.raw[KeyChampionshipHub]).(map[string]any)
			if hubObj == nil {
				hubObj = map[string]any{}
			}
			if _, ok := hubObj["enabled"]; !ok {
				hubObj["enabled"] = true
				c.setAny(KeyChampionshipHub, hubObj)
			}
		}
	}
	c.setAny(KeySchemaVersion, ConfigSchemaVersion)
}

// MarshalJSON emits every key, known or not.
func (c EventConfig) MarshalJSON() ([]byte, error) {
	if c.raw == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.raw)
}

// UnmarshalJSON runs the same migration as DecodeEventConfig.
func (c *EventConfig) UnmarshalJSON(data []byte) error {
	*c = DecodeEventConfig(data)
	return nil
}

// Clone returns an independent copy.
func (c EventConfig) Clone() EventConfig {
	out := EventConfig{raw: make(map[string]json.RawMessage, len(c.raw))}
	for k, v := range c.raw {
		out.raw[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// MergeConfig overlays incoming keys on existing ones, like an object spread.
func MergeConfig(existing, incoming EventConfig) EventConfig {
	out := existing.Clone()
	for k, v := range incoming.raw {
		if k == KeySchemaVersion {
			continue
		}
		out.raw[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// Has reports whether key was present in the stored or submitted object.
func (c EventConfig) Has(key string) bool {
	_, ok := c.raw[key]
	return ok
}

// Value decodes key into a generic JSON value.
func (c EventConfig) Value(key string) any {
	return decodeAny(c.raw[key])
}

// Set stores v under key. Values that cannot be encoded are ignored.
func (c *EventConfig) Set(key string, v any) {
	c.setAny(key, v)
}

func (c *EventConfig) setAny(key string, v any) {
	if c.raw == nil {
		c.raw = map[string]json.RawMessage{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.raw[key] = b
}

// Delete removes key.
func (c *EventConfig) Delete(key string) {
	delete(c.raw, key)
}

// Object exposes the config as a decoded JSON object for validators.
func (c EventConfig) Object() map[string]any {
	out := make(map[string]any, len(c.raw))
	for k := range c.raw {
		out[k] = c.Value(k)
	}
	return out
}

// FinalClassification is the normalized final classification.
func (c EventConfig) FinalClassification() []FinalClassificationRow {
	return NormalizeFinalClassification(c.raw[KeyFinalClassification])
}

// FinalClassificationLocked reports the lock flag.
func (c EventConfig) FinalClassificationLocked() bool {
	return truthy(c.Value(KeyFinalClassificationLocked))
}

// LockFlag returns the explicit boolean lock value, if one was submitted.
func (c EventConfig) LockFlag() (bool, bool) {
	b, ok := c.Value(KeyFinalClassificationLocked).(bool)
	return b, ok
}

// MatchPlayFormat is "classic" unless configured otherwise.
func (c EventConfig) MatchPlayFormat() string {
	s := strings.ToLower(strings.TrimSpace(looseString(c.Value(KeyMatchPlayFormat))))
	if s == "" {
		return "classic"
	}
	return s
}

func (c EventConfig) stableford() map[string]any {
	obj, _ := c.Value(KeyStableford).(map[string]any)
	return obj
}

// StablefordMode is the lower-cased stableford.mode, "classic" by default.
func (c EventConfig) StablefordMode() string {
	s := strings.ToLower(looseString(c.stableford()["mode"]))
	if s == "" {
		return "classic"
	}
	return s
}

// ClassicPoints decodes stableford.classicPoints.
func (c EventConfig) ClassicPoints() PointsConfig {
	obj, _ := c.stableford()["classicPoints"].(map[string]any)
	return pointsConfigFrom(obj)
}

// ChampionshipHub decodes the championship hub settings and history.
func (c EventConfig) ChampionshipHub() ChampionshipHub {
	return DecodeChampionshipHub(c.raw[KeyChampionshipHub])
}

// SetChampionshipHub replaces the hub.
func (c *EventConfig) SetChampionshipHub(hub ChampionshipHub) {
	c.setAny(KeyChampionshipHub, hub)
}

// SetEventPoints stores a points table and its computation time.
func (c *EventConfig) SetEventPoints(points PointsByCategory, at time.Time) {
	c.setAny(KeyEventPointsByCategory, points)
	c.setAny(KeyEventPointsUpdatedAt, at.UTC().Format(time.RFC3339Nano))
}

// EventPoints returns the stored points table, nil when never computed.
func (c EventConfig) EventPoints() PointsByCategory {
	raw := c.raw[KeyEventPointsByCategory]
	if len(raw) == 0 {
		return nil
	}
	var out PointsByCategory
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// MainBracket decodes the stored bracket and its raw rounds.
func (c EventConfig) MainBracket() (StoredBracket, []RawRound) {
	return DecodeStoredBracket(c.raw[KeyMainBracket])
}

// SetMainBracket replaces the stored bracket.
func (c *EventConfig) SetMainBracket(b StoredBracket) {
	if b.Rounds == nil {
		b.Rounds = []BracketRound{}
	}
	c.setAny(KeyMainBracket, b)
}
