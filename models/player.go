package models

import "strings"

// DefaultCategory is used for players whose profile carries no category.
const DefaultCategory = "Sin categoria"

// GeneralCategory is the synthetic field-wide ranking.
const GeneralCategory = "General"

// Player is a registered entrant as seen by the bracket builder.
type Player struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category *string `json:"category"`
}

// Profile is a row of the profiles table.
type Profile struct {
	ID                   string  `json:"id" db:"id"`
	FirstName            *string `json:"first_name,omitempty" db:"first_name"`
	LastName             *string `json:"last_name,omitempty" db:"last_name"`
	Category             *string `json:"category,omitempty" db:"category"`
	Role                 *string `json:"role,omitempty" db:"role"`
	AssociationID        *string `json:"association_id,omitempty" db:"association_id"`
	DefaultAssociationID *string `json:"default_association_id,omitempty" db:"default_association_id"`
}

// DisplayName is "first last", falling back to the profile id.
func (p Profile) DisplayName() string {
	var first, last string
	if p.FirstName != nil {
		first = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		last = strings.TrimSpace(*p.LastName)
	}
	if name := strings.TrimSpace(first + " " + last); name != "" {
		return name
	}
	return p.ID
}

// CategoryOrDefault returns the profile category or DefaultCategory.
func (p Profile) CategoryOrDefault() string {
	if p.Category != nil && *p.Category != "" {
		return *p.Category
	}
	return DefaultCategory
}

// NormalizedRole is the lower-cased, trimmed role.
func (p Profile) NormalizedRole() string {
	if p.Role == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*p.Role))
}

// ToPlayer converts a profile to a bracket entrant.
func (p Profile) ToPlayer() Player {
	var category *string
	if p.Category != nil && *p.Category != "" {
		category = ptr(*p.Category)
	}
	return Player{ID: p.ID, Name: p.DisplayName(), Category: category}
}

// ProfileIndex maps profile ids to profiles.
type ProfileIndex map[string]Profile

// IndexProfiles builds a ProfileIndex.
func IndexProfiles(profiles []Profile) ProfileIndex {
	idx := make(ProfileIndex, len(profiles))
	for _, p := range profiles {
		idx[p.ID] = p
	}
	return idx
}

// NameOf returns the display name for id, or id itself when unknown.
func (idx ProfileIndex) NameOf(id string) string {
	if p, ok := idx[id]; ok {
		return p.DisplayName()
	}
	return id
}

// CategoryOf returns the category for id, or DefaultCategory when unknown.
func (idx ProfileIndex) CategoryOf(id string) string {
	if p, ok := idx[id]; ok {
		return p.CategoryOrDefault()
	}
	return DefaultCategory
}
