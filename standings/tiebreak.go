package standings

import (
	"sort"

	"github.com/Dosada05/golf-association/models"
)

// CompareCardsForTieBreak compares two 18-hole cards over the last 9, last 6
// and last 3 holes, then hole 18. Negative means a wins (fewer strokes).
// Missing holes count as 0.
func CompareCardsForTieBreak(a, b []int) int {
	for _, from := range []int{9, 12, 15, 17} {
		if d := sumHoles(a, from, 18) - sumHoles(b, from, 18); d != 0 {
			return d
		}
	}
	return 0
}

func sumHoles(card []int, from, to int) int {
	sum := 0
	for i := from; i < to && i < len(card); i++ {
		sum += card[i]
	}
	return sum
}

// ScoreEntry is a player's stroke total with the optional hole-by-hole card.
type ScoreEntry struct {
	UserID  string `json:"user_id"`
	Strokes int    `json:"strokes"`
	Card    []int  `json:"card,omitempty"`
}

// AssignPositions ranks entries by strokes, fewest first. Equal totals share
// a position and the next one skips by the size of the tie. Ties starting
// inside the first tieBreakLimit positions are split by card when both cards
// have 18 holes.
func AssignPositions(entries []ScoreEntry, tieBreakLimit int) []models.RankedRow {
	sorted := append([]ScoreEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Strokes != sorted[j].Strokes {
			return sorted[i].Strokes < sorted[j].Strokes
		}
		if !breakable(sorted[i], sorted[j]) {
			return false
		}
		return CompareCardsForTieBreak(sorted[i].Card, sorted[j].Card) < 0
	})

	rows := make([]models.RankedRow, 0, len(sorted))
	for i, e := range sorted {
		pos := i + 1
		if i > 0 {
			prev := sorted[i-1]
			tied := prev.Strokes == e.Strokes
			prevPos := rows[i-1].Position
			if tied && (prevPos > tieBreakLimit || !breakable(prev, e) || CompareCardsForTieBreak(prev.Card, e.Card) == 0) {
				pos = prevPos
			}
		}
		rows = append(rows, models.RankedRow{UserID: e.UserID, Position: pos})
	}
	return rows
}

func breakable(a, b ScoreEntry) bool {
	return len(a.Card) >= 18 && len(b.Card) >= 18
}
