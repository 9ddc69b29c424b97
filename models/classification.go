package models

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// FinalClassificationRow is one stored line of an event's final classification.
type FinalClassificationRow struct {
	UserID   string     `json:"user_id"`
	Position *int       `json:"position"`
	Strokes  *float64   `json:"strokes"`
	Rounds   []*float64 `json:"rounds"`
	Note     *string    `json:"note"`
}

// unsetPosition sorts rows without a position last.
const unsetPosition = 9999

// NormalizeFinalClassification coerces a stored or submitted classification:
// rows without user_id are dropped, positions that are not positive become
// null, strokes default to the sum of the rounds, and rows are stably sorted
// by position with nulls last.
func NormalizeFinalClassification(raw json.RawMessage) []FinalClassificationRow {
	list, ok := decodeAny(raw).([]any)
	if !ok {
		return []FinalClassificationRow{}
	}
	rows := make([]FinalClassificationRow, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		userID := strings.TrimSpace(looseString(obj["user_id"]))
		if userID == "" {
			continue
		}
		row := FinalClassificationRow{UserID: userID, Rounds: []*float64{}}

		if pos, ok := looseInt(obj["position"]); ok && pos > 0 {
			row.Position = ptr(pos)
		}

		if rounds, ok := obj["rounds"].([]any); ok {
			for _, r := range rounds {
				row.Rounds = append(row.Rounds, optionalNumber(r))
			}
		}

		if isBlank(obj["strokes"]) {
			row.Strokes = sumRounds(row.Rounds)
		} else {
			row.Strokes = optionalNumber(obj["strokes"])
		}

		if note, ok := obj["note"].(string); ok {
			row.Note = ptr(note)
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].sortPosition() < rows[j].sortPosition()
	})
	return rows
}

func (r FinalClassificationRow) sortPosition() int {
	if r.Position == nil {
		return unsetPosition
	}
	return *r.Position
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func optionalNumber(v any) *float64 {
	if isBlank(v) {
		return nil
	}
	f, ok := strictNumber(v)
	if !ok {
		return nil
	}
	return ptr(f)
}

func sumRounds(rounds []*float64) *float64 {
	var sum float64
	seen := false
	for _, r := range rounds {
		if r == nil {
			continue
		}
		seen = true
		sum += *r
	}
	if !seen {
		return nil
	}
	return ptr(sum)
}

// RankedRow is the minimal input of the points engine.
type RankedRow struct {
	UserID   string `json:"user_id"`
	Position int    `json:"position"`
}

// RankedRows keeps rows with a position, in classification order.
func RankedRows(rows []FinalClassificationRow) []RankedRow {
	out := make([]RankedRow, 0, len(rows))
	for _, r := range rows {
		if r.Position == nil {
			continue
		}
		out = append(out, RankedRow{UserID: r.UserID, Position: *r.Position})
	}
	return out
}

// AuditAction tells what a classification audit row records.
type AuditAction string

const (
	AuditUpdate AuditAction = "update"
	AuditLock   AuditAction = "lock"
	AuditUnlock AuditAction = "unlock"
)

// ClassificationAudit is a row of the final classification audit trail.
type ClassificationAudit struct {
	ID          string                   `json:"id" db:"id"`
	EventID     string                   `json:"event_id" db:"event_id"`
	ActorUserID *string                  `json:"actor_user_id" db:"actor_user_id"`
	CreatedAt   time.Time                `json:"created_at" db:"created_at"`
	Action      AuditAction              `json:"action" db:"action"`
	Locked      bool                     `json:"locked" db:"locked"`
	Snapshot    []FinalClassificationRow `json:"final_classification_snapshot" db:"final_classification_snapshot"`

	Actor *AuditActor `json:"actor" db:"-"`
}

// AuditActor is the resolved author of an audit row. Name is nil when the
// profile has no name.
type AuditActor struct {
	ID   string  `json:"id"`
	Name *string `json:"name"`
}
