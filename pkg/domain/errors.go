package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrCorruptSession is returned when a stored session exists but cannot be
// decoded. Retrying the load will not help.
var ErrCorruptSession = errors.New("corrupt session")

// ErrNotASource is returned when free text is neither a filter term nor a source-list reference.
var ErrNotASource = errors.New("not a valid source reference")

// ErrUnknownAction is returned when callback data cannot be decoded.
var ErrUnknownAction = errors.New("unknown action")

// ErrNoEditSession is returned when an editor action arrives without an open edit session.
var ErrNoEditSession = errors.New("no group edit in progress")

// ErrGroupNotFound is returned when a group name is not defined.
var ErrGroupNotFound = errors.New("group not found")

// ErrGroupExists is returned when creating a group whose name is taken.
var ErrGroupExists = errors.New("group already exists")

// MalformedNodeError reports a node-list line that could not be parsed.
// It aborts the whole generation.
type MalformedNodeError struct {
	Line   int // 1-based; 0 when parsing a single line outside a list
	Text   string
	Reason string
	Cause  error
}

func (e *MalformedNodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed node at line %d (%q): %s", e.Line, e.Text, e.Reason)
	}
	return fmt.Sprintf("malformed node %q: %s", e.Text, e.Reason)
}

func (e *MalformedNodeError) Unwrap() error { return e.Cause }

// CategorySourceError reports a failed category listing. Callers degrade to an empty list.
type CategorySourceError struct {
	Cause error
}

func (e *CategorySourceError) Error() string {
	return fmt.Sprintf("category source unavailable: %v", e.Cause)
}

func (e *CategorySourceError) Unwrap() error { return e.Cause }

// Requirement names what a generate attempt is missing.
type Requirement string

const (
	RequireSource     Requirement = "source"
	RequireCategories Requirement = "categories"
)

// PreconditionError is returned when generate runs without a source or without categories.
type PreconditionError struct {
	Missing Requirement
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("cannot generate: missing %s", e.Missing)
}

// FetchKind names what was being fetched when a FetchError happened.
type FetchKind string

const (
	FetchNodeList FetchKind = "node_list"
	FetchListing  FetchKind = "category_listing"
	FetchRuleBody FetchKind = "rule_body"
)

// FetchError reports a failed remote fetch (unreachable, non-2xx, timeout, too large, bad text).
type FetchError struct {
	Kind   FetchKind
	Code   string // FETCH_FAILED, FETCH_TIMEOUT, TOO_LARGE, FETCH_INVALID_UTF8, INVALID_ARGUMENT
	URL    string
	Status int // upstream status, 0 when no response
	Cause  error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s: fetch %s %s", e.Code, e.Kind, e.URL)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Cause }

// Timeout reports whether the fetch failed on its deadline.
func (e *FetchError) Timeout() bool {
	return e.Code == "FETCH_TIMEOUT"
}

// PersistenceError reports a group mutation that could not be durably saved.
type PersistenceError struct {
	Group string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist group %q: %v", e.Group, e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }
