package models

import (
	"encoding/json"
	"time"
)

// ChampionshipHub is the championshipHub key of an event config. The event
// holding it owns the cross-event standings.
type ChampionshipHub struct {
	Enabled      bool                   `json:"enabled"`
	Categories   []string               `json:"categories"`
	Events       []ChampHubEventConfig  `json:"events"`
	Standings    *ChampionshipStandings `json:"standings,omitempty"`
	History      []HubHistoryEntry      `json:"history,omitempty"`
	EventHistory []HubEventHistoryEntry `json:"eventHistory,omitempty"`
}

// DecodeChampionshipHub reads a hub leniently: categories are trimmed and
// emptied entries removed, events without an id are dropped.
func DecodeChampionshipHub(raw json.RawMessage) ChampionshipHub {
	obj, _ := decodeAny(raw).(map[string]any)
	hub := ChampionshipHub{
		Enabled:    truthy(obj["enabled"]),
		Categories: stringList(obj["categories"]),
		Events:     []ChampHubEventConfig{},
	}
	if evs, ok := obj["events"].([]any); ok {
		for _, e := range evs {
			eo, _ := e.(map[string]any)
			ev := hubEventFrom(eo)
			if ev.EventID == "" {
				continue
			}
			hub.Events = append(hub.Events, ev)
		}
	}
	if s, ok := obj["standings"]; ok && s != nil {
		var st ChampionshipStandings
		if b, err := json.Marshal(s); err == nil && json.Unmarshal(b, &st) == nil {
			hub.Standings = &st
		}
	}
	hub.History = decodeList[HubHistoryEntry](obj["history"])
	hub.EventHistory = decodeList[HubEventHistoryEntry](obj["eventHistory"])
	return hub
}

func decodeList[T any](v any) []T {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]T, 0, len(list))
	for _, item := range list {
		b, err := json.Marshal(item)
		if err != nil {
			continue
		}
		var t T
		if err := json.Unmarshal(b, &t); err != nil {
			continue
		}
		out = append(out, t)
	}
	return out
}

// EventIDs lists the linked event ids in hub order.
func (h ChampionshipHub) EventIDs() []string {
	ids := make([]string, 0, len(h.Events))
	for _, e := range h.Events {
		ids = append(ids, e.EventID)
	}
	return ids
}

// Settings returns only the editable part of the hub.
func (h ChampionshipHub) Settings() ChampionshipHub {
	return ChampionshipHub{
		Enabled:    h.Enabled,
		Categories: append([]string{}, h.Categories...),
		Events:     append([]ChampHubEventConfig{}, h.Events...),
	}
}

// ChampionshipEventMeta describes a linked event in the standings.
type ChampionshipEventMeta struct {
	EventID string           `json:"eventId"`
	Name    string           `json:"name"`
	Kind    ChampionshipKind `json:"kind"`
}

// ChampionshipRow is a player's accumulated championship score.
type ChampionshipRow struct {
	UserID string         `json:"user_id"`
	Name   string         `json:"name"`
	Total  int            `json:"total"`
	Events map[string]int `json:"events"`
}

// ChampionshipStandings is the computed cross-event table.
type ChampionshipStandings struct {
	UpdatedAt  time.Time                    `json:"updatedAt"`
	Events     []ChampionshipEventMeta      `json:"events"`
	Categories []string                     `json:"categories"`
	ByCategory map[string][]ChampionshipRow `json:"byCategory"`
}

// HubTotals summarises one recompute.
type HubTotals struct {
	Categories int `json:"categories"`
	Players    int `json:"players"`
}

// HubHistoryEntry is appended on every hub recompute.
type HubHistoryEntry struct {
	Ts          time.Time               `json:"ts"`
	ActorUserID *string                 `json:"actor_user_id"`
	Events      []ChampionshipEventMeta `json:"events"`
	Categories  []string                `json:"categories"`
	Totals      HubTotals               `json:"totals"`
}

// HubEventAction is the kind of change to the linked event set.
type HubEventAction string

const (
	HubEventAdd    HubEventAction = "add"
	HubEventRemove HubEventAction = "remove"
)

// HubEventHistoryEntry records one event being linked or unlinked.
type HubEventHistoryEntry struct {
	Ts          time.Time        `json:"ts"`
	ActorUserID *string          `json:"actor_user_id"`
	Action      HubEventAction   `json:"action"`
	EventID     string           `json:"eventId"`
	EventName   string           `json:"eventName,omitempty"`
	Kind        ChampionshipKind `json:"kind,omitempty"`
}
