package domain

import (
	"slices"
	"time"
)

// SelectionSession is the per-user accumulated selection state.
// A session without a Source is idle and cannot generate a document.
type SelectionSession struct {
	UserID     string    `json:"user_id"`
	Source     string    `json:"source,omitempty"`
	Chosen     []string  `json:"chosen,omitempty"` // first-toggle-on order, no duplicates
	LastActive time.Time `json:"last_active"`
	Page       int       `json:"page"`
	GroupPage  int       `json:"group_page"`
	Phase      Phase     `json:"phase"`
}

// NewSelectionSession creates a zero-valued session for the user.
func NewSelectionSession(userID string, now time.Time) *SelectionSession {
	return &SelectionSession{
		UserID:     userID,
		LastActive: now,
		Phase:      Browsing(Filter{}),
	}
}

// Selecting reports whether a source list has been set.
func (s *SelectionSession) Selecting() bool {
	return s.Source != ""
}

// IsChosen reports whether the category is in the chosen set.
func (s *SelectionSession) IsChosen(category string) bool {
	return slices.Contains(s.Chosen, category)
}

// Snapshot returns a deep copy of the session.
func (s *SelectionSession) Snapshot() *SelectionSession {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Chosen = slices.Clone(s.Chosen)
	return &cp
}

// GroupEditSession is the working copy of a category group being edited.
// It is created by an explicit edit command and destroyed on save or cancel.
type GroupEditSession struct {
	UserID  string   `json:"user_id"`
	Group   string   `json:"group"`
	Members []string `json:"members,omitempty"`
	Page    int      `json:"page"`
	Phase   Phase    `json:"phase"`
}

// NewGroupEditSession starts editing group with the given current members.
func NewGroupEditSession(userID, group string, members []string) *GroupEditSession {
	return &GroupEditSession{
		UserID:  userID,
		Group:   group,
		Members: dedupe(members),
		Phase:   Browsing(Filter{}),
	}
}

// IsMember reports whether the category is in the working set.
func (e *GroupEditSession) IsMember(category string) bool {
	return slices.Contains(e.Members, category)
}

// Snapshot returns a deep copy of the edit session.
func (e *GroupEditSession) Snapshot() *GroupEditSession {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Members = slices.Clone(e.Members)
	return &cp
}

// Toggle flips membership of item in an ordered set, appending when added.
func Toggle(set []string, item string) []string {
	if i := slices.Index(set, item); i >= 0 {
		return slices.Delete(slices.Clone(set), i, i+1)
	}
	return append(slices.Clone(set), item)
}

// Without returns set minus every item in remove.
func Without(set []string, remove []string) []string {
	out := make([]string, 0, len(set))
	for _, s := range set {
		if !slices.Contains(remove, s) {
			out = append(out, s)
		}
	}
	return out
}

// Union appends the items not yet present in set, keeping order.
func Union(set []string, add []string) []string {
	out := slices.Clone(set)
	for _, a := range add {
		if !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	return out
}

func dedupe(in []string) []string {
	return Union(nil, in)
}
