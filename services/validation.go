package services

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/Dosada05/golf-association/models"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func isISODate(v any) bool {
	s, ok := v.(string)
	return ok && isoDatePattern.MatchString(s)
}

// isEventCourseID accepts canonical RFC 4122 ids of versions 1 to 5.
func isEventCourseID(s string) bool {
	if len(s) != 36 {
		return false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return id.Variant() == uuid.RFC4122 && id.Version() >= 1 && id.Version() <= 5
}

// integerValue accepts JSON numbers without a fractional part only.
func integerValue(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func mpError(msg string) error {
	return fmt.Errorf("%w: Config MP inválida: %s", ErrInvalidConfig, msg)
}

func validateMaxPlayers(cfg map[string]any) error {
	v, ok := cfg[models.KeyMaxPlayers]
	if !ok || v == nil {
		return nil
	}
	n, ok := integerValue(v)
	if !ok || n < 2 || n > 256 {
		return fmt.Errorf("%w: Config inválida: maxPlayers debe ser entero (2..256).", ErrInvalidConfig)
	}
	return nil
}

func validHoleList(v any) (bool, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return false, false
	}
	for _, item := range list {
		n, ok := integerValue(item)
		if !ok || n <= 0 || n > 36 {
			return true, false
		}
	}
	return true, true
}

// validateMatchPlayConfig checks the merged config of a match play event.
func validateMatchPlayConfig(cfg map[string]any) error {
	format := strings.ToLower(strings.TrimSpace(stringOr(cfg[models.KeyMatchPlayFormat], "classic")))

	if format == "groups" {
		holes, ok := integerValue(cfg["groupHoles"])
		if !ok || holes < 1 || holes > 36 {
			return mpError("groupHoles debe ser entero (1..36).")
		}

		if perDay, present := cfg["groupMatchesPerDay"]; present && perDay != nil {
			n, ok := integerValue(perDay)
			if !ok || n < 1 {
				return mpError("groupMatchesPerDay debe ser entero (>0).")
			}
		}

		if dates, ok := cfg["groupDates"].([]any); ok {
			for _, d := range dates {
				if !isISODate(d) {
					return mpError("groupDates debe ser array YYYY-MM-DD.")
				}
			}
		}

		groupMode := strings.ToLower(strings.TrimSpace(stringOr(cfg["groupMode"], "single")))
		if groupMode == "multi" {
			count, ok := integerValue(cfg["groupCount"])
			if !ok || count < 2 {
				return mpError("groupCount debe ser entero (>=2).")
			}
			advance, ok := integerValue(cfg["groupAdvanceCount"])
			if !ok || advance < 1 || advance > count {
				return mpError("groupAdvanceCount debe ser entero (1..groupCount).")
			}
		}
	} else {
		present, valid := validHoleList(cfg["holesPerRound"])
		if !present {
			return mpError("holesPerRound es obligatoria.")
		}
		if !valid {
			return mpError("holesPerRound debe ser array de enteros (1..36).")
		}

		if models.Truthy(cfg[models.KeyHasConsolation]) {
			present, valid := validHoleList(cfg["consolationHolesPerRound"])
			if !present {
				return mpError("consolationHolesPerRound es obligatoria si hay consolación.")
			}
			if !valid {
				return mpError("consolationHolesPerRound debe ser array de enteros (1..36).")
			}
		}
	}

	if err := validateMaxPlayers(cfg); err != nil {
		return err
	}

	if models.Truthy(cfg["hasSeeds"]) {
		seedCount, ok := integerValue(cfg["seedCount"])
		if !ok || !allowedSeedCounts[seedCount] {
			return mpError("seedCount debe ser 2/4/8/16/32/64.")
		}
		if maxPlayers, ok := cfg[models.KeyMaxPlayers].(float64); ok && float64(seedCount) > maxPlayers {
			return mpError("seedCount no puede exceder maxPlayers.")
		}
	}

	return nil
}

var allowedSeedCounts = map[int]bool{2: true, 4: true, 8: true, 16: true, 32: true, 64: true}

// stringOr stringifies a truthy value, returning def otherwise.
func stringOr(v any, def string) string {
	if !models.Truthy(v) {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
