package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/rulecraft/pkg/domain"
)

// EventKind names which Presenter method produced an Event.
type EventKind string

const (
	EventText     EventKind = "text"
	EventChoices  EventKind = "choices"
	EventUpdate   EventKind = "update"
	EventDocument EventKind = "document"
)

// Event is one recorded Presenter call.
type Event struct {
	Kind     EventKind    `json:"kind"`
	UserID   string       `json:"user_id"`
	Text     string       `json:"text,omitempty"`
	View     *domain.View `json:"view,omitempty"`
	Filename string       `json:"filename,omitempty"`
	Document []byte       `json:"document,omitempty"`
}

// Recorder implements ports.Presenter by recording every call.
// It backs the HTTP transport and tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// SendText records a text message.
func (r *Recorder) SendText(ctx context.Context, userID, text string) error {
	return r.record(Event{Kind: EventText, UserID: userID, Text: text})
}

// PresentChoices records a new choice surface.
func (r *Recorder) PresentChoices(ctx context.Context, userID, text string, view domain.View) error {
	return r.record(Event{Kind: EventChoices, UserID: userID, Text: text, View: &view})
}

// UpdateChoices records a redraw.
func (r *Recorder) UpdateChoices(ctx context.Context, userID string, view domain.View) error {
	return r.record(Event{Kind: EventUpdate, UserID: userID, View: &view})
}

// DeliverDocument records a delivered file.
func (r *Recorder) DeliverDocument(ctx context.Context, userID string, doc []byte, filename, caption string) error {
	return r.record(Event{Kind: EventDocument, UserID: userID, Document: slices.Clone(doc), Filename: filename, Text: caption})
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Last returns the most recent event, if any.
func (r *Recorder) Last() (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}, false
	}
	return r.events[len(r.events)-1], true
}

// Drain returns the recorded events and clears the recorder.
func (r *Recorder) Drain() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}
