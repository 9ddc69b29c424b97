package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Stored configs are written by several generations of the admin UI, so numbers
// arrive as JSON numbers, numeric strings or garbage. These helpers follow the
// parseInt/parseFloat semantics the stored data was produced with.

func decodeAny(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

func looseString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// truthy mirrors JS double negation for decoded JSON values.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	default:
		return true
	}
}

// numericPrefix returns the leading numeric part of s ("12abc" -> "12").
func numericPrefix(s string, allowFraction bool) string {
	s = strings.TrimSpace(s)
	end := 0
	seenDigit, seenDot := false, false
	for i, r := range s {
		switch {
		case (r == '-' || r == '+') && i == 0:
		case r >= '0' && r <= '9':
			seenDigit = true
		case r == '.' && allowFraction && !seenDot:
			seenDot = true
		default:
			if !seenDigit {
				return ""
			}
			return s[:end]
		}
		end = i + 1
	}
	if !seenDigit {
		return ""
	}
	return s[:end]
}

func looseInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int(t), true
	case nil, bool:
		return 0, false
	default:
		p := numericPrefix(looseString(t), false)
		if p == "" {
			return 0, false
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, false
		}
		return n, true
	}
}

func looseFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case nil, bool:
		return 0, false
	default:
		p := numericPrefix(looseString(t), true)
		if p == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
}

// strictNumber follows JS Number(): the whole string must be numeric.
func strictNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func looseIntList(v any) []int {
	list, ok := v.([]any)
	if !ok {
		return []int{}
	}
	out := make([]int, 0, len(list))
	for _, item := range list {
		if n, ok := looseInt(item); ok {
			out = append(out, n)
		}
	}
	return out
}

// stringList reads a list of strings: stringified, trimmed, empty entries dropped.
func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s := strings.TrimSpace(looseString(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}

// Truthy reports whether a decoded JSON value is truthy in the sense the
// stored data was written with: false, 0, "" and null are not.
func Truthy(v any) bool {
	return truthy(v)
}
