package standings

import (
	"sort"
	"time"

	"github.com/Dosada05/golf-association/models"
)

// LinkedEvent is the stored state of one event linked into a hub.
type LinkedEvent struct {
	ID             string
	Name           string
	Classification []models.FinalClassificationRow
}

// ChampionshipInput is everything AggregateChampionship reads.
type ChampionshipInput struct {
	Hub models.ChampionshipHub
	// Events by id. Linked ids missing here contribute nothing.
	Events   map[string]LinkedEvent
	Profiles models.ProfileIndex
	Now      time.Time
}

// ChampionshipResult is the aggregation output plus the number of players
// that scored in any linked event.
type ChampionshipResult struct {
	Standings models.ChampionshipStandings
	Players   int
}

// EventMeta describes the linked events in hub order.
func EventMeta(hub models.ChampionshipHub, events map[string]LinkedEvent) []models.ChampionshipEventMeta {
	meta := make([]models.ChampionshipEventMeta, 0, len(hub.Events))
	for _, entry := range hub.Events {
		meta = append(meta, models.ChampionshipEventMeta{
			EventID: entry.EventID,
			Name:    eventName(entry.EventID, events),
			Kind:    entry.Kind,
		})
	}
	return meta
}

func eventName(id string, events map[string]LinkedEvent) string {
	if ev, ok := events[id]; ok && ev.Name != "" {
		return ev.Name
	}
	return id
}

// AggregateChampionship sums every player's category points over the linked
// events. General adds up each player's own category points rather than the
// field-wide lists. Players without points in a category are left out of it.
func AggregateChampionship(in ChampionshipInput) ChampionshipResult {
	perEvent := make([]EventPoints, len(in.Hub.Events))
	for i, entry := range in.Hub.Events {
		perEvent[i] = CalculateEventPointsByCategory(in.Events[entry.EventID].Classification, in.Profiles, entry.ToPointsConfig())
	}

	categories := championshipCategories(in.Hub.Categories, perEvent)
	players := scoringPlayers(perEvent)

	byCategory := make(map[string][]models.ChampionshipRow, len(categories))
	for _, cat := range categories {
		byCategory[cat] = categoryStandings(cat, players, in.Hub.Events, perEvent, in.Profiles)
	}

	return ChampionshipResult{
		Standings: models.ChampionshipStandings{
			UpdatedAt:  in.Now,
			Events:     EventMeta(in.Hub, in.Events),
			Categories: categories,
			ByCategory: byCategory,
		},
		Players: len(players),
	}
}

// championshipCategories puts General first, then the configured categories
// or, when none are configured, every category seen in the events.
func championshipCategories(configured []string, perEvent []EventPoints) []string {
	seen := map[string]bool{models.GeneralCategory: true}
	out := []string{models.GeneralCategory}
	add := func(cat string) {
		if !seen[cat] {
			seen[cat] = true
			out = append(out, cat)
		}
	}
	if len(configured) > 0 {
		for _, cat := range configured {
			add(cat)
		}
		return out
	}
	for _, ep := range perEvent {
		for _, cat := range ep.Categories {
			add(cat)
		}
	}
	return out
}

// scoringPlayers lists users ranked in any category of any event, in order
// of first appearance.
func scoringPlayers(perEvent []EventPoints) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ep := range perEvent {
		for _, cat := range ep.Categories {
			users := make([]string, 0, len(ep.Points[cat]))
			for userID := range ep.Points[cat] {
				users = append(users, userID)
			}
			sort.Strings(users)
			for _, userID := range users {
				if !seen[userID] {
					seen[userID] = true
					out = append(out, userID)
				}
			}
		}
	}
	return out
}

func categoryStandings(category string, players []string, entries []models.ChampHubEventConfig, perEvent []EventPoints, profiles models.ProfileIndex) []models.ChampionshipRow {
	rows := make([]models.ChampionshipRow, 0, len(players))
	for _, userID := range players {
		lookup := category
		if category == models.GeneralCategory {
			lookup = profiles.CategoryOf(userID)
		}
		row := models.ChampionshipRow{
			UserID: userID,
			Name:   profiles.NameOf(userID),
			Events: make(map[string]int, len(entries)),
		}
		for i, entry := range entries {
			points := perEvent[i].Points[lookup][userID].Points
			row.Events[entry.EventID] = points
			row.Total += points
		}
		if row.Total > 0 {
			rows = append(rows, row)
		}
	}

	col := nameCollator()
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return col.CompareString(rows[i].Name, rows[j].Name) < 0
	})
	return rows
}

// DiffLinkedEvents reports events added to and removed from a hub.
func DiffLinkedEvents(prevIDs []string, next []models.ChampHubEventConfig, events map[string]LinkedEvent, actor *string, now time.Time) []models.HubEventHistoryEntry {
	prev := make(map[string]bool, len(prevIDs))
	for _, id := range prevIDs {
		prev[id] = true
	}
	nextIDs := make(map[string]bool, len(next))
	for _, e := range next {
		nextIDs[e.EventID] = true
	}

	var out []models.HubEventHistoryEntry
	added := make(map[string]bool)
	for _, e := range next {
		if prev[e.EventID] || added[e.EventID] {
			continue
		}
		added[e.EventID] = true
		out = append(out, models.HubEventHistoryEntry{
			Ts:          now,
			ActorUserID: actor,
			Action:      models.HubEventAdd,
			EventID:     e.EventID,
			EventName:   eventName(e.EventID, events),
			Kind:        e.Kind,
		})
	}
	removed := make(map[string]bool)
	for _, id := range prevIDs {
		if nextIDs[id] || removed[id] {
			continue
		}
		removed[id] = true
		out = append(out, models.HubEventHistoryEntry{
			Ts:          now,
			ActorUserID: actor,
			Action:      models.HubEventRemove,
			EventID:     id,
		})
	}
	return out
}

// AppendHistory returns a new history with entry at the end.
func AppendHistory[T any](history []T, entries ...T) []T {
	out := make([]T, 0, len(history)+len(entries))
	out = append(out, history...)
	return append(out, entries...)
}

// RecomputeHub rebuilds the standings of an enabled hub and extends both
// histories from prev. A disabled hub keeps only its settings.
func RecomputeHub(prev models.ChampionshipHub, in ChampionshipInput, actor *string) models.ChampionshipHub {
	next := in.Hub.Settings()
	if !next.Enabled {
		return next
	}

	result := AggregateChampionship(in)
	standings := result.Standings
	next.Standings = &standings
	next.History = AppendHistory(prev.History, models.HubHistoryEntry{
		Ts:          in.Now,
		ActorUserID: actor,
		Events:      standings.Events,
		Categories:  standings.Categories,
		Totals: models.HubTotals{
			Categories: len(standings.ByCategory),
			Players:    result.Players,
		},
	})
	next.EventHistory = AppendHistory(prev.EventHistory, DiffLinkedEvents(prev.EventIDs(), next.Events, in.Events, actor, in.Now)...)
	return next
}
