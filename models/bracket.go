package models

import (
	"encoding/json"
	"math"
)

// BracketSchemaVersion is the current StoredBracket layout. Version 0 is the
// legacy shape that only carried rounds.
const BracketSchemaVersion = 1

// BracketMatch is one pairing. A nil id next to a non-placeholder name is an
// unresolved slot such as a preliminary winner.
type BracketMatch struct {
	P1     string  `json:"p1"`
	P2     string  `json:"p2"`
	P1ID   *string `json:"p1_id"`
	P2ID   *string `json:"p2_id"`
	Result *string `json:"result"`
	Winner *string `json:"winner"`
}

// BracketRound is an ordered list of matches. AnchorTargets is only set on a
// preliminary round: AnchorTargets[i] is the next-round match fed by match i.
type BracketRound struct {
	Name          string         `json:"name"`
	Matches       []BracketMatch `json:"matches"`
	AnchorTargets []int          `json:"anchorTargets,omitempty"`
}

// StoredBracket is the persisted mainBracket value.
type StoredBracket struct {
	SchemaVersion int            `json:"schemaVersion,omitempty"`
	TargetPlayers int            `json:"targetPlayers,omitempty"`
	Rounds        []BracketRound `json:"rounds"`
}

// Slot is one side of a match before pairing. A nil *Slot is a bye.
type Slot struct {
	Name string
	ID   *string
}

// CloneRounds deep-copies rounds so callers can edit without aliasing.
func CloneRounds(rounds []BracketRound) []BracketRound {
	if rounds == nil {
		return nil
	}
	out := make([]BracketRound, len(rounds))
	for i, r := range rounds {
		out[i] = BracketRound{Name: r.Name}
		if r.Matches != nil {
			out[i].Matches = make([]BracketMatch, len(r.Matches))
			for j, m := range r.Matches {
				out[i].Matches[j] = m.clone()
			}
		}
		if r.AnchorTargets != nil {
			out[i].AnchorTargets = append([]int(nil), r.AnchorTargets...)
		}
	}
	return out
}

func (m BracketMatch) clone() BracketMatch {
	return BracketMatch{
		P1:     m.P1,
		P2:     m.P2,
		P1ID:   cloneString(m.P1ID),
		P2ID:   cloneString(m.P2ID),
		Result: cloneString(m.Result),
		Winner: cloneString(m.Winner),
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	return ptr(*s)
}

// RawMatch is a stored match decoded leniently: every field may be missing or
// of the wrong JSON type.
type RawMatch struct {
	P1, P2         any
	P1ID, P2ID     any
	Result, Winner any
}

// RawRound is a stored round decoded leniently.
type RawRound struct {
	Name          any
	Matches       []RawMatch
	AnchorTargets []float64
}

// DecodeRawRounds parses whatever is stored under a rounds key. Non-array
// input yields nil; non-object entries decode as empty rounds.
func DecodeRawRounds(raw json.RawMessage) []RawRound {
	list, ok := decodeAny(raw).([]any)
	if !ok {
		return nil
	}
	out := make([]RawRound, 0, len(list))
	for _, item := range list {
		obj, _ := item.(map[string]any)
		rr := RawRound{Name: obj["name"]}
		if matches, ok := obj["matches"].([]any); ok {
			for _, m := range matches {
				mo, _ := m.(map[string]any)
				rr.Matches = append(rr.Matches, RawMatch{
					P1: mo["p1"], P2: mo["p2"],
					P1ID: mo["p1_id"], P2ID: mo["p2_id"],
					Result: mo["result"], Winner: mo["winner"],
				})
			}
		}
		if targets, ok := obj["anchorTargets"].([]any); ok {
			rr.AnchorTargets = []float64{}
			for _, t := range targets {
				if f, ok := anchorNumber(t); ok {
					rr.AnchorTargets = append(rr.AnchorTargets, f)
				}
			}
		}
		out = append(out, rr)
	}
	return out
}

// anchorNumber reads an anchor target with JS Number() rules: numeric
// strings count, null is 0, anything non-finite is dropped.
func anchorNumber(v any) (float64, bool) {
	if v == nil {
		return 0, true
	}
	f, ok := strictNumber(v)
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// RawText renders a loose JSON value the way it would be printed, "" for null.
func RawText(v any) string {
	return looseString(v)
}

// DecodeStoredBracket reads a mainBracket value. Legacy values that are a
// bare array of rounds decode as schema version 0.
func DecodeStoredBracket(raw json.RawMessage) (StoredBracket, []RawRound) {
	v := decodeAny(raw)
	switch t := v.(type) {
	case []any:
		return StoredBracket{}, DecodeRawRounds(raw)
	case map[string]any:
		sb := StoredBracket{}
		if n, ok := looseInt(t["schemaVersion"]); ok {
			sb.SchemaVersion = n
		}
		if n, ok := looseInt(t["targetPlayers"]); ok {
			sb.TargetPlayers = n
		}
		var roundsRaw json.RawMessage
		if r, ok := t["rounds"]; ok {
			roundsRaw, _ = json.Marshal(r)
		}
		return sb, DecodeRawRounds(roundsRaw)
	default:
		return StoredBracket{}, nil
	}
}
