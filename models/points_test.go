package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsConfig_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want PointsConfig
	}{
		{
			name: "defaults",
			in:   `{}`,
			want: PointsConfig{Mode: PointsPercent, PodiumCount: 3, Table: []float64{}},
		},
		{
			name: "numeric strings",
			in:   `{"mode": "Percent", "first": "100pts", "decayPercent": "8.5", "podiumCount": "5"}`,
			want: PointsConfig{Mode: PointsPercent, First: 100, DecayPercent: 8.5, PodiumCount: 5, Table: []float64{}},
		},
		{
			name: "zero podium falls back",
			in:   `{"mode": "manual", "podiumCount": 0, "table": [10, 5]}`,
			want: PointsConfig{Mode: PointsManual, PodiumCount: 3, Table: []float64{10, 5}},
		},
		{
			name: "unparseable podium falls back",
			in:   `{"podiumCount": "many"}`,
			want: PointsConfig{Mode: PointsPercent, PodiumCount: 3, Table: []float64{}},
		},
		{
			name: "not an object",
			in:   `[1, 2]`,
			want: PointsConfig{Mode: PointsPercent, PodiumCount: 3, Table: []float64{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got PointsConfig
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChampHubEventConfig_UnmarshalJSON(t *testing.T) {
	var ev ChampHubEventConfig
	require.NoError(t, json.Unmarshal([]byte(`{"eventId": " e1 ", "kind": "doble", "pointsMode": "MANUAL", "table": ["20", 10], "first": "x"}`), &ev))

	assert.Equal(t, "e1", ev.EventID)
	assert.Equal(t, KindDoble, ev.Kind)
	assert.Equal(t, PointsPercent, ev.PointsMode, "pointsMode is matched exactly")
	assert.Equal(t, []float64{20, 10}, ev.Table)
	assert.Zero(t, ev.First)
	assert.Zero(t, ev.PodiumCount, "hub entries do not default the podium")

	cfg := ev.ToPointsConfig()
	cfg.Table[0] = 99
	assert.Equal(t, 20.0, ev.Table[0])
}

func TestDecodeChampionshipHub(t *testing.T) {
	raw := json.RawMessage(`{
		"enabled": 1,
		"categories": [" Damas ", "", 7],
		"events": [{"eventId": "e1"}, {"kind": "doble"}, "junk"],
		"history": [{"ts": "2026-01-02T10:00:00Z", "events": [{"eventId": "e1", "name": "Apertura", "kind": "simple"}]}, {"ts": "not a time"}],
		"eventHistory": [{"ts": "2026-01-02T10:00:00Z", "action": "add", "eventId": "e1"}]
	}`)

	hub := DecodeChampionshipHub(raw)

	assert.True(t, hub.Enabled)
	assert.Equal(t, []string{"Damas", "7"}, hub.Categories)
	assert.Equal(t, []string{"e1"}, hub.EventIDs())
	assert.Len(t, hub.History, 1, "malformed history entries are skipped")
	require.Len(t, hub.EventHistory, 1)
	assert.Equal(t, HubEventAdd, hub.EventHistory[0].Action)
	assert.Nil(t, hub.Standings)

	settings := hub.Settings()
	assert.Nil(t, settings.History)
	assert.Nil(t, settings.EventHistory)
	assert.Equal(t, hub.Events, settings.Events)
}

func TestDecodeChampionshipHub_Empty(t *testing.T) {
	hub := DecodeChampionshipHub(nil)

	assert.False(t, hub.Enabled)
	assert.Empty(t, hub.Categories)
	assert.Empty(t, hub.Events)
}

func TestStringList(t *testing.T) {
	assert.Equal(t, []string{"a", "12", "b"}, stringList([]any{" a ", float64(12), "", nil, "b"}))
	assert.Empty(t, stringList("a"))
}
