package brackets

import (
	"errors"
	"strings"

	"github.com/Dosada05/golf-association/models"
)

// Side selects one half of a match.
type Side string

const (
	SideP1 Side = "p1"
	SideP2 Side = "p2"
)

// Slot tokens used by the manual editor.
const (
	TokenBye        = "bye"
	TokenIDPrefix   = "id:"
	TokenNamePrefix = "name:"
)

var (
	ErrInvalidSide  = errors.New("side must be p1 or p2")
	ErrInvalidToken = errors.New("slot token must be bye, id:<player> or name:<text>")
)

// ParseSide validates a side parameter.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideP1, SideP2:
		return Side(s), nil
	default:
		return "", ErrInvalidSide
	}
}

// ValidateToken rejects tokens UpdateManualSlot would ignore.
func ValidateToken(token string) error {
	if token == TokenBye || strings.HasPrefix(token, TokenIDPrefix) || strings.HasPrefix(token, TokenNamePrefix) {
		return nil
	}
	return ErrInvalidToken
}

// DecodeRounds coerces stored rounds to safe types without dropping any.
func DecodeRounds(raw []models.RawRound, labels Labels) []models.BracketRound {
	labels = labels.WithDefaults()
	rounds := make([]models.BracketRound, 0, len(raw))
	for _, rr := range raw {
		name := models.RawText(rr.Name)
		if !models.Truthy(rr.Name) {
			name = labels.DefaultRound
		}
		round := models.BracketRound{Name: name, Matches: make([]models.BracketMatch, 0, len(rr.Matches))}
		if rr.AnchorTargets != nil {
			round.AnchorTargets = make([]int, 0, len(rr.AnchorTargets))
			for _, t := range rr.AnchorTargets {
				round.AnchorTargets = append(round.AnchorTargets, int(t))
			}
		}
		for _, m := range rr.Matches {
			round.Matches = append(round.Matches, decodeMatch(m, labels.Placeholder))
		}
		rounds = append(rounds, round)
	}
	return rounds
}

func decodeMatch(m models.RawMatch, placeholder string) models.BracketMatch {
	out := models.BracketMatch{
		P1:     textOr(m.P1, placeholder),
		P2:     textOr(m.P2, placeholder),
		P1ID:   optionalText(m.P1ID),
		P2ID:   optionalText(m.P2ID),
		Winner: optionalText(m.Winner),
	}
	if s, ok := m.Result.(string); ok {
		out.Result = &s
	}
	return out
}

func textOr(v any, fallback string) string {
	if !models.Truthy(v) {
		return fallback
	}
	return models.RawText(v)
}

func optionalText(v any) *string {
	if v == nil {
		return nil
	}
	s := models.RawText(v)
	return &s
}

// NormalizeManualBracketRounds coerces stored rounds and drops the ones
// without matches.
func NormalizeManualBracketRounds(raw []models.RawRound, labels Labels) []models.BracketRound {
	decoded := DecodeRounds(raw, labels)
	rounds := make([]models.BracketRound, 0, len(decoded))
	for _, r := range decoded {
		if len(r.Matches) == 0 {
			continue
		}
		rounds = append(rounds, r)
	}
	return rounds
}

// BuildManualBracketSeed returns rounds untouched when there are any,
// otherwise one first round over players with a bye for an odd count.
func BuildManualBracketSeed(rounds []models.BracketRound, players []models.Player, labels Labels) []models.BracketRound {
	if len(rounds) > 0 {
		return rounds
	}
	labels = labels.WithDefaults()

	slots := playerSlots(players)
	if len(slots)%2 != 0 {
		slots = append(slots, &models.Slot{Name: labels.Placeholder})
	}
	return []models.BracketRound{{
		Name:    labels.FirstRound,
		Matches: BuildMatchesFromSlots(slots, labels.Placeholder),
	}}
}

// ResetManualBracket discards manual edits and reseeds from players.
func ResetManualBracket(players []models.Player, labels Labels) []models.BracketRound {
	return BuildManualBracketSeed(nil, players, labels)
}

// UpdateManualSlot applies one editor token to a slot and clears the match
// result. The input is not modified; out of range indices return an unchanged
// copy.
func UpdateManualSlot(rounds []models.BracketRound, roundIdx, matchIdx int, side Side, token string, playerNames map[string]string, labels Labels) []models.BracketRound {
	out := models.CloneRounds(rounds)
	if roundIdx < 0 || roundIdx >= len(out) {
		return out
	}
	if matchIdx < 0 || matchIdx >= len(out[roundIdx].Matches) {
		return out
	}
	labels = labels.WithDefaults()

	match := &out[roundIdx].Matches[matchIdx]
	match.Result = nil
	match.Winner = nil

	name, id, ok := resolveToken(token, playerNames, labels.Placeholder)
	if !ok {
		return out
	}
	if side == SideP1 {
		match.P1, match.P1ID = name, id
	} else {
		match.P2, match.P2ID = name, id
	}
	return out
}

func resolveToken(token string, playerNames map[string]string, placeholder string) (string, *string, bool) {
	switch {
	case token == TokenBye:
		return placeholder, nil, true
	case strings.HasPrefix(token, TokenIDPrefix):
		id := strings.TrimPrefix(token, TokenIDPrefix)
		name, ok := playerNames[id]
		if !ok || name == "" {
			name = placeholder
		}
		return name, &id, true
	case strings.HasPrefix(token, TokenNamePrefix):
		name := strings.TrimPrefix(token, TokenNamePrefix)
		if name == "" {
			name = placeholder
		}
		return name, nil, true
	default:
		return "", nil, false
	}
}

// ManualSlotValue encodes a slot back into its editor token.
func ManualSlotValue(match models.BracketMatch, side Side, labels Labels) string {
	labels = labels.WithDefaults()
	id, name := match.P1ID, match.P1
	if side == SideP2 {
		id, name = match.P2ID, match.P2
	}
	if id != nil && *id != "" {
		return TokenIDPrefix + *id
	}
	if name != "" && name != labels.Placeholder {
		return TokenNamePrefix + name
	}
	return TokenBye
}

// PlayerNames indexes player display names by id.
func PlayerNames(players []models.Player) map[string]string {
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}
	return names
}
