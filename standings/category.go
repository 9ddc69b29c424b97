package standings

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Dosada05/golf-association/models"
)

// nameCollator orders names the Spanish way ("Ángel" next to "Andrés").
// Collators keep internal buffers, so one is created per sort.
func nameCollator() *collate.Collator {
	return collate.New(language.Spanish)
}

// categoryGroups splits rows by player category, keeping first-seen order.
func categoryGroups(rows []models.RankedRow, profiles models.ProfileIndex) ([]string, map[string][]models.RankedRow) {
	var order []string
	groups := make(map[string][]models.RankedRow)
	for _, r := range rows {
		cat := profiles.CategoryOf(r.UserID)
		if _, ok := groups[cat]; !ok {
			order = append(order, cat)
		}
		groups[cat] = append(groups[cat], r)
	}
	return order, groups
}

func pointsList(rows []models.RankedRow, points map[string]models.PositionPoints, profiles models.ProfileIndex) []models.CategoryPointsRow {
	list := make([]models.CategoryPointsRow, 0, len(rows))
	for _, r := range rows {
		p, ok := points[r.UserID]
		if !ok {
			continue
		}
		list = append(list, models.CategoryPointsRow{
			UserID:   r.UserID,
			Name:     profiles.NameOf(r.UserID),
			Position: p.Position,
			Points:   p.Points,
		})
	}
	col := nameCollator()
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Points != list[j].Points {
			return list[i].Points > list[j].Points
		}
		return col.CompareString(list[i].Name, list[j].Name) < 0
	})
	return list
}

// CalculatePointsByCategory computes the field-wide General list on the
// classification positions and one list per category on positions re-ranked
// inside the category.
func CalculatePointsByCategory(classification []models.FinalClassificationRow, profiles models.ProfileIndex, cfg models.PointsConfig) models.PointsByCategory {
	rows := rankedRows(classification)

	out := models.PointsByCategory{
		models.GeneralCategory: pointsList(rows, CalculatePointsForRows(rows, cfg), profiles),
	}

	order, groups := categoryGroups(rows, profiles)
	for _, cat := range order {
		ranked := RankWithinCategory(groups[cat])
		out[cat] = pointsList(ranked, CalculatePointsForRows(ranked, cfg), profiles)
	}
	return out
}

// EventPoints is one event's per-category points with categories in the
// order they appear in the classification.
type EventPoints struct {
	Categories []string
	Points     models.EventCategoryPoints
}

// CalculateEventPointsByCategory is the per-category half of
// CalculatePointsByCategory, keyed by user for aggregation.
func CalculateEventPointsByCategory(classification []models.FinalClassificationRow, profiles models.ProfileIndex, cfg models.PointsConfig) EventPoints {
	rows := rankedRows(classification)
	order, groups := categoryGroups(rows, profiles)

	out := EventPoints{Categories: order, Points: make(models.EventCategoryPoints, len(order))}
	for _, cat := range order {
		out.Points[cat] = CalculatePointsForRows(RankWithinCategory(groups[cat]), cfg)
	}
	return out
}
