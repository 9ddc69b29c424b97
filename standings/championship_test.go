package standings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/golf-association/models"
)

var champNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func championshipFixture() ChampionshipInput {
	return ChampionshipInput{
		Hub: models.ChampionshipHub{
			Enabled: true,
			Events: []models.ChampHubEventConfig{
				{EventID: "e1", Kind: models.KindSimple, PointsMode: models.PointsPercent, First: 100, DecayPercent: 50, PodiumCount: 3},
				{EventID: "e2", Kind: models.KindDoble, PointsMode: models.PointsManual, Table: []float64{10, 5}},
			},
		},
		Events: map[string]LinkedEvent{
			"e1": {ID: "e1", Name: "Torneo Apertura", Classification: classified("a", 1, "c", 2, "b", 3, "d", 4)},
			"e2": {ID: "e2", Classification: classified("b", 1, "a", 2, "c", 3, "e", 3)},
		},
		Profiles: models.IndexProfiles([]models.Profile{
			profile("a", "Ana", "", "Masculino"),
			profile("b", "Beto", "", "Masculino"),
			profile("c", "Cris", "", "Femenino"),
			profile("d", "Dani", "", ""),
			profile("e", "Eva", "", "Juvenil"),
			profile("z", "Zoe", "", "Masculino"),
		}),
		Now: champNow,
	}
}

func totals(rows []models.ChampionshipRow) map[string]int {
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.UserID] = r.Total
	}
	return out
}

func TestAggregateChampionship(t *testing.T) {
	result := AggregateChampionship(championshipFixture())
	st := result.Standings

	assert.Equal(t, champNow, st.UpdatedAt)
	assert.Equal(t, []models.ChampionshipEventMeta{
		{EventID: "e1", Name: "Torneo Apertura", Kind: models.KindSimple},
		{EventID: "e2", Name: "e2", Kind: models.KindDoble},
	}, st.Events)
	assert.Equal(t, []string{"General", "Masculino", "Femenino", "Sin categoria", "Juvenil"}, st.Categories)
	assert.Equal(t, 5, result.Players)

	general := st.ByCategory[models.GeneralCategory]
	require.Len(t, general, 5)
	assert.Equal(t, []string{"c", "a", "d", "b", "e"}, []string{general[0].UserID, general[1].UserID, general[2].UserID, general[3].UserID, general[4].UserID})
	assert.Equal(t, map[string]int{"e1": 100, "e2": 10}, general[0].Events)
	assert.Equal(t, map[string]int{"a": 105, "b": 60, "c": 110, "d": 100, "e": 10}, totals(general))

	masc := st.ByCategory["Masculino"]
	assert.Equal(t, map[string]int{"a": 105, "b": 60}, totals(masc))
	assert.Equal(t, "a", masc[0].UserID)
}

func TestAggregateChampionship_AbsentPlayerNeverListed(t *testing.T) {
	st := AggregateChampionship(championshipFixture()).Standings

	for cat, rows := range st.ByCategory {
		for _, r := range rows {
			assert.NotEqual(t, "z", r.UserID, "category %s", cat)
			assert.Greater(t, r.Total, 0)
		}
	}
}

func TestAggregateChampionship_ZeroTotalDroppedPerCategory(t *testing.T) {
	in := championshipFixture()
	in.Hub.Events[1].Table = []float64{10, 5, 0}
	in.Events["e2"] = LinkedEvent{ID: "e2", Classification: classified("b", 1, "a", 2, "z", 3)}

	st := AggregateChampionship(in).Standings

	assert.NotContains(t, totals(st.ByCategory["Masculino"]), "z")
	assert.NotContains(t, totals(st.ByCategory[models.GeneralCategory]), "z")
	assert.Contains(t, totals(st.ByCategory["Femenino"]), "c")
}

func TestAggregateChampionship_ConfiguredCategories(t *testing.T) {
	in := championshipFixture()
	in.Hub.Categories = []string{"Femenino", "General", "Femenino"}

	st := AggregateChampionship(in).Standings

	assert.Equal(t, []string{"General", "Femenino"}, st.Categories)
	assert.Len(t, st.ByCategory, 2)
	assert.Equal(t, map[string]int{"c": 110}, totals(st.ByCategory["Femenino"]))
}

func TestAggregateChampionship_MissingEventContributesNothing(t *testing.T) {
	in := championshipFixture()
	in.Hub.Events = append(in.Hub.Events, models.ChampHubEventConfig{EventID: "gone", Kind: models.KindSimple, First: 50})

	st := AggregateChampionship(in).Standings

	assert.Equal(t, "gone", st.Events[2].Name)
	for _, r := range st.ByCategory[models.GeneralCategory] {
		assert.Equal(t, 0, r.Events["gone"])
	}
}

func TestAggregateChampionship_Idempotent(t *testing.T) {
	assert.Equal(t, AggregateChampionship(championshipFixture()), AggregateChampionship(championshipFixture()))
}

func TestAggregateChampionship_NoEvents(t *testing.T) {
	result := AggregateChampionship(ChampionshipInput{Hub: models.ChampionshipHub{Enabled: true}, Now: champNow})

	assert.Equal(t, []string{"General"}, result.Standings.Categories)
	assert.Empty(t, result.Standings.ByCategory[models.GeneralCategory])
	assert.Zero(t, result.Players)
}

func TestDiffLinkedEvents(t *testing.T) {
	actor := strPtr("admin-1")
	next := []models.ChampHubEventConfig{{EventID: "e1"}, {EventID: "e3", Kind: models.KindDoble}}
	events := map[string]LinkedEvent{"e3": {ID: "e3", Name: "Clausura"}}

	diff := DiffLinkedEvents([]string{"e1", "e2"}, next, events, actor, champNow)

	require.Len(t, diff, 2)
	assert.Equal(t, models.HubEventHistoryEntry{
		Ts: champNow, ActorUserID: actor, Action: models.HubEventAdd,
		EventID: "e3", EventName: "Clausura", Kind: models.KindDoble,
	}, diff[0])
	assert.Equal(t, models.HubEventHistoryEntry{
		Ts: champNow, ActorUserID: actor, Action: models.HubEventRemove, EventID: "e2",
	}, diff[1])

	assert.Empty(t, DiffLinkedEvents([]string{"e1", "e3"}, next, events, actor, champNow))
}

func TestAppendHistory_DoesNotAlias(t *testing.T) {
	base := make([]int, 1, 4)
	a := AppendHistory(base, 1)
	b := AppendHistory(base, 2)

	assert.Equal(t, []int{0, 1}, a)
	assert.Equal(t, []int{0, 2}, b)
}

func TestRecomputeHub(t *testing.T) {
	prev := models.ChampionshipHub{
		Enabled: true,
		Events:  []models.ChampHubEventConfig{{EventID: "e1"}, {EventID: "old"}},
		History: []models.HubHistoryEntry{{Ts: champNow.Add(-time.Hour)}},
	}
	actor := strPtr("admin-1")

	next := RecomputeHub(prev, championshipFixture(), actor)

	require.NotNil(t, next.Standings)
	require.Len(t, next.History, 2)
	last := next.History[1]
	assert.Equal(t, actor, last.ActorUserID)
	assert.Equal(t, models.HubTotals{Categories: 5, Players: 5}, last.Totals)

	require.Len(t, next.EventHistory, 2)
	assert.Equal(t, models.HubEventAdd, next.EventHistory[0].Action)
	assert.Equal(t, "e2", next.EventHistory[0].EventID)
	assert.Equal(t, models.HubEventRemove, next.EventHistory[1].Action)
	assert.Equal(t, "old", next.EventHistory[1].EventID)

	assert.Len(t, prev.History, 1, "previous history must not grow")
}

func TestRecomputeHub_DisabledKeepsSettingsOnly(t *testing.T) {
	in := championshipFixture()
	in.Hub.Enabled = false
	in.Hub.History = []models.HubHistoryEntry{{Ts: champNow}}

	next := RecomputeHub(models.ChampionshipHub{}, in, nil)

	assert.False(t, next.Enabled)
	assert.Nil(t, next.Standings)
	assert.Nil(t, next.History)
	assert.Nil(t, next.EventHistory)
	assert.Len(t, next.Events, 2)
}
