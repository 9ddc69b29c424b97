package models

import "strings"

// Event statuses that close an event and trigger points computation.
var closingStatuses = map[string]bool{
	"closed":     true,
	"finished":   true,
	"finalizado": true,
	"cerrado":    true,
}

// IsClosingStatus reports whether status closes an event.
func IsClosingStatus(status string) bool {
	return closingStatuses[strings.ToLower(strings.TrimSpace(status))]
}

// Event is a row of the events table.
type Event struct {
	ID                  string      `json:"id" db:"id"`
	AssociationID       *string     `json:"association_id" db:"association_id"`
	Name                string      `json:"name" db:"name"`
	Status              *string     `json:"status" db:"status"`
	CompetitionMode     *string     `json:"competition_mode" db:"competition_mode"`
	RegistrationStart   *string     `json:"registration_start" db:"registration_start"`
	RegistrationEnd     *string     `json:"registration_end" db:"registration_end"`
	EventDate           *string     `json:"event_date" db:"event_date"`
	CourseID            *string     `json:"course_id" db:"course_id"`
	Location            *string     `json:"location" db:"location"`
	Description         *string     `json:"description" db:"description"`
	Config              EventConfig `json:"config" db:"config"`
	HasHandicapRanking  bool        `json:"has_handicap_ranking" db:"has_handicap_ranking"`
	RegisteredPlayerIDs []string    `json:"registered_player_ids" db:"registered_player_ids"`
	CreatedBy           *string     `json:"created_by" db:"created_by"`
}

// Mode is the lower-cased competition mode, "" when unset.
func (e Event) Mode() string {
	if e.CompetitionMode == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*e.CompetitionMode))
}

// IsMatchPlayMode reports whether a competition mode denotes match play.
func IsMatchPlayMode(mode string) bool {
	return mode != "" && (strings.Contains(mode, "match") || strings.Contains(mode, "mp"))
}

// IsStablefordMode reports whether a competition mode denotes stableford.
func IsStablefordMode(mode string) bool {
	return strings.Contains(mode, "stable")
}

// EventSummary is the id/name/config projection used by championships.
type EventSummary struct {
	ID     string      `json:"id" db:"id"`
	Name   string      `json:"name" db:"name"`
	Config EventConfig `json:"config" db:"config"`
}

// EventDetails is an event with its registered players resolved.
type EventDetails struct {
	Event             *Event   `json:"event"`
	RegisteredPlayers []Player `json:"registeredPlayers"`
}
