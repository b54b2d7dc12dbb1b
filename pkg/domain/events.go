package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventAction   EventType = "action"
	EventGenerate EventType = "generate"
	EventSweep    EventType = "sweep"
	EventGroup    EventType = "group"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
}

// ActionEvent is emitted after a user action has been applied.
type ActionEvent struct {
	EventBase
	Action string `json:"action"`
	Err    error  `json:"-"`
}

// GenerateEvent is emitted after each generate attempt.
type GenerateEvent struct {
	EventBase
	Nodes      int           `json:"nodes"`
	Categories int           `json:"categories"`
	Duration   time.Duration `json:"duration"`
	Err        error         `json:"-"`
}

// SweepEvent is emitted after each idle sweep.
type SweepEvent struct {
	EventBase
	Evicted   int `json:"evicted"`
	Remaining int `json:"remaining"`
}

// GroupEvent is emitted after a group mutation attempt.
type GroupEvent struct {
	EventBase
	Group string `json:"group"`
	Op    string `json:"op"`
	Err   error  `json:"-"`
}

// LifecycleHooks defines callbacks for observability.
type LifecycleHooks struct {
	OnAction   func(context.Context, *ActionEvent)
	OnGenerate func(context.Context, *GenerateEvent)
	OnSweep    func(context.Context, *SweepEvent)
	OnGroup    func(context.Context, *GroupEvent)
}
