package brackets

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Dosada05/golf-association/models"
)

// roundKeywords map terminal round names to the slot count of that round.
// More specific names come first: "octavos de final" must not match "final".
var roundKeywords = []struct {
	keyword string
	target  func(playerCount int) int
}{
	{"semifinal", func(int) int { return 4 }},
	{"cuartos", func(int) int { return 8 }},
	{"octavos", func(int) int { return 16 }},
	{"dieciseisavos", func(n int) int {
		if n <= 20 {
			return 16
		}
		return 32
	}},
	{"final", func(int) int { return 2 }},
}

// NormalizeRoundName folds case and strips diacritics.
func NormalizeRoundName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.TrimSpace(strings.ToLower(folded))
}

// InferTargetPlayers guesses the main round size of a legacy bracket from the
// round name. It returns 0 when the name is not recognised.
func InferTargetPlayers(roundName string, playerCount int) int {
	key := NormalizeRoundName(roundName)
	if key == "" {
		return 0
	}
	for _, k := range roundKeywords {
		if strings.Contains(key, k.keyword) {
			return k.target(playerCount)
		}
	}
	return 0
}

// IsByeName reports whether a slot name stands for an empty slot.
func IsByeName(name string) bool {
	v := strings.ToLower(strings.TrimSpace(name))
	return v == "" || v == "n/a" || v == "bye"
}

// ExtractPlayers lists the distinct non-bye entrants of a round in slot order.
func ExtractPlayers(matches []models.BracketMatch) []models.Player {
	seen := make(map[string]bool)
	var players []models.Player
	add := func(name string, id *string) {
		if IsByeName(name) {
			return
		}
		key := "name:" + name
		pid := ""
		if id != nil && *id != "" {
			pid = *id
			key = "id:" + pid
		}
		if seen[key] {
			return
		}
		seen[key] = true
		players = append(players, models.Player{ID: pid, Name: name})
	}
	for _, m := range matches {
		add(m.P1, m.P1ID)
		add(m.P2, m.P2ID)
	}
	return players
}

// BuildDisplayRounds expands a legacy flat first round whose name implies a
// smaller main round than the number of entrants it holds.
func BuildDisplayRounds(rounds []models.BracketRound, labels Labels, fallbackRoundName string) []models.BracketRound {
	if len(rounds) == 0 {
		return []models.BracketRound{}
	}
	round0 := rounds[0]
	if len(round0.Matches) == 0 {
		return rounds
	}

	players := ExtractPlayers(round0.Matches)
	target := InferTargetPlayers(round0.Name, len(players))
	if target == 0 || len(players) <= target {
		return rounds
	}
	return rebuild(round0, players, labels, fallbackRoundName)
}

func rebuild(round0 models.BracketRound, players []models.Player, labels Labels, fallbackRoundName string) []models.BracketRound {
	name := round0.Name
	if name == "" {
		name = fallbackRoundName
	}
	return BuildMatchPlayBracket(players, name, labels)
}

// MigrateStoredBracket turns any stored bracket version into the current
// shape. Versioned brackets carry their main round size; legacy ones fall
// back to reading it from the round name.
func MigrateStoredBracket(stored models.StoredBracket, labels Labels, fallbackRoundName string) models.StoredBracket {
	out := models.StoredBracket{
		SchemaVersion: models.BracketSchemaVersion,
		TargetPlayers: stored.TargetPlayers,
		Rounds:        stored.Rounds,
	}
	if out.Rounds == nil {
		out.Rounds = []models.BracketRound{}
	}

	if stored.SchemaVersion < 1 {
		out.Rounds = BuildDisplayRounds(stored.Rounds, labels, fallbackRoundName)
		return out
	}

	if stored.TargetPlayers <= 0 || len(out.Rounds) == 0 {
		return out
	}
	round0 := out.Rounds[0]
	// a preliminary round is expected to hold more entrants than its target
	if round0.AnchorTargets != nil || len(round0.Matches) == 0 {
		return out
	}
	players := ExtractPlayers(round0.Matches)
	if len(players) <= stored.TargetPlayers {
		return out
	}
	out.Rounds = rebuild(round0, players, labels, fallbackRoundName)
	out.TargetPlayers = PreviousPowerOfTwo(len(players))
	return out
}
