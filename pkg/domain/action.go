package domain

import (
	"fmt"
	"strings"
)

// ActionKind identifies a user interaction on the choice surface.
type ActionKind string

// Selection actions.
const (
	ActionToggleCategory ActionKind = "TOGGLE_"
	ActionToggleGroup    ActionKind = "TOGGLE_GROUP_"
	ActionNextPage       ActionKind = "NEXT"
	ActionPrevPage       ActionKind = "PREV"
	ActionNextGroupPage  ActionKind = "GNEXT"
	ActionPrevGroupPage  ActionKind = "GPREV"
	ActionLetter         ActionKind = "LETTER_"
	ActionSearch         ActionKind = "SEARCH"
	ActionClearFilter    ActionKind = "CLEAR_FILTER"
	ActionGenerate       ActionKind = "GENERATE"
)

// Group editor actions.
const (
	ActionEditToggle      ActionKind = "EG_TOGGLE_"
	ActionEditNextPage    ActionKind = "EG_NEXT"
	ActionEditPrevPage    ActionKind = "EG_PREV"
	ActionEditSearch      ActionKind = "EG_SEARCH"
	ActionEditClearFilter ActionKind = "EG_CLEAR_FILTER"
	ActionEditSave        ActionKind = "EG_SAVE"
	ActionEditCancel      ActionKind = "EG_CANCEL"
)

// Action is a decoded user interaction. Item carries the list-item identifier
// (category, group name or letter) for the kinds that take one.
type Action struct {
	Kind ActionKind `json:"kind"`
	Item string     `json:"item,omitempty"`
}

// Editor reports whether the action targets the group editor.
func (a Action) Editor() bool {
	return strings.HasPrefix(string(a.Kind), "EG_")
}

// categoryEscape marks a category item that would otherwise read as another
// prefixed kind, such as a category named GROUP_x.
const categoryEscape = "="

// Encode renders the action as compact callback data.
func (a Action) Encode() string {
	if !a.Kind.takesItem() {
		return string(a.Kind)
	}
	if a.Kind == ActionToggleCategory && needsEscape(a.Item) {
		return string(a.Kind) + categoryEscape + a.Item
	}
	return string(a.Kind) + a.Item
}

func needsEscape(category string) bool {
	return strings.HasPrefix(category, "GROUP_") || strings.HasPrefix(category, categoryEscape)
}

func (k ActionKind) takesItem() bool {
	switch k {
	case ActionToggleCategory, ActionToggleGroup, ActionLetter, ActionEditToggle:
		return true
	}
	return false
}

// prefixed kinds, longest prefix first so TOGGLE_GROUP_ wins over TOGGLE_.
var prefixedKinds = []ActionKind{
	ActionEditToggle,
	ActionToggleGroup,
	ActionToggleCategory,
	ActionLetter,
}

var plainKinds = []ActionKind{
	ActionNextPage, ActionPrevPage, ActionNextGroupPage, ActionPrevGroupPage,
	ActionSearch, ActionClearFilter, ActionGenerate,
	ActionEditNextPage, ActionEditPrevPage, ActionEditSearch, ActionEditClearFilter,
	ActionEditSave, ActionEditCancel,
}

// DecodeAction parses callback data produced by Encode.
func DecodeAction(data string) (Action, error) {
	for _, k := range plainKinds {
		if data == string(k) {
			return Action{Kind: k}, nil
		}
	}
	for _, k := range prefixedKinds {
		if item, ok := strings.CutPrefix(data, string(k)); ok {
			if k == ActionToggleCategory {
				item = strings.TrimPrefix(item, categoryEscape)
			}
			if item == "" {
				return Action{}, fmt.Errorf("%w: %q has no item", ErrUnknownAction, data)
			}
			return Action{Kind: k, Item: item}, nil
		}
	}
	return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
}
