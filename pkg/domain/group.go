package domain

import "slices"

// CategoryGroup is a user-defined named bundle of categories.
type CategoryGroup struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Contains reports whether the category is a member of the group.
func (g CategoryGroup) Contains(category string) bool {
	return slices.Contains(g.Members, category)
}
