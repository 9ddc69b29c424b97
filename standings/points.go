package standings

import (
	"math"
	"sort"

	"github.com/Dosada05/golf-association/models"
)

// BuildPercentPoints decays first by decayPercent per position.
func BuildPercentPoints(first int, decayPercent float64, count int) []int {
	if count <= 0 {
		return []int{}
	}
	points := make([]int, count)
	factor := 1 - decayPercent/100
	current := float64(first)
	for i := range points {
		points[i] = clampRound(current)
		current *= factor
	}
	return points
}

// BuildManualPoints copies table, padding missing positions with 0.
func BuildManualPoints(table []float64, count int) []int {
	if count <= 0 {
		return []int{}
	}
	points := make([]int, count)
	for i := range points {
		if i < len(table) && !math.IsNaN(table[i]) && !math.IsInf(table[i], 0) {
			points[i] = clampRound(table[i])
		}
	}
	return points
}

func clampRound(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	// halves round up
	return int(math.Floor(v + 0.5))
}

// PointsTable builds count entries for cfg.
func PointsTable(cfg models.PointsConfig, count int) []int {
	if cfg.Mode == models.PointsManual {
		return BuildManualPoints(cfg.Table, count)
	}
	return BuildPercentPoints(cfg.First, cfg.DecayPercent, count)
}

// CalculatePointsForRows awards points by position. Podium positions and
// untied positions take their table entry. A tie outside the podium shares
// the mean of the entries it spans, rounded.
func CalculatePointsForRows(rows []models.RankedRow, cfg models.PointsConfig) map[string]models.PositionPoints {
	table := PointsTable(cfg, len(rows))
	at := func(idx int) int {
		if idx < 0 || idx >= len(table) {
			return 0
		}
		return table[idx]
	}

	groups := make(map[int][]string)
	for _, r := range rows {
		groups[r.Position] = append(groups[r.Position], r.UserID)
	}
	positions := make([]int, 0, len(groups))
	for pos := range groups {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	out := make(map[string]models.PositionPoints, len(rows))
	for _, pos := range positions {
		group := groups[pos]
		points := at(pos - 1)
		if pos > cfg.PodiumCount && len(group) > 1 {
			sum := 0
			for i := pos - 1; i < pos-1+len(group); i++ {
				sum += at(i)
			}
			points = clampRound(float64(sum) / float64(len(group)))
		}
		for _, userID := range group {
			out[userID] = models.PositionPoints{Position: pos, Points: points}
		}
	}
	return out
}

// RankWithinCategory renumbers rows sorted by position from 1. Ties stay
// tied and the next rank skips by the size of the tie.
func RankWithinCategory(rows []models.RankedRow) []models.RankedRow {
	sorted := append([]models.RankedRow(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	out := make([]models.RankedRow, 0, len(sorted))
	next := 1
	for i := 0; i < len(sorted); {
		current := sorted[i].Position
		size := 0
		for i < len(sorted) && sorted[i].Position == current {
			out = append(out, models.RankedRow{UserID: sorted[i].UserID, Position: next})
			i++
			size++
		}
		next += size
	}
	return out
}

// rankedRows keeps positioned rows sorted by position.
func rankedRows(classification []models.FinalClassificationRow) []models.RankedRow {
	rows := models.RankedRows(classification)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
	return rows
}
