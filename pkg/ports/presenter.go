package ports

import (
	"context"

	"github.com/aretw0/rulecraft/pkg/domain"
)

// Presenter is the user-facing action surface. The assistant calls it, never the reverse.
type Presenter interface {
	// SendText delivers a plain message.
	SendText(ctx context.Context, userID, text string) error

	// PresentChoices shows a new message with an interactive choice surface.
	PresentChoices(ctx context.Context, userID, text string, view domain.View) error

	// UpdateChoices redraws the most recent choice surface in place.
	// An empty view removes the surface.
	UpdateChoices(ctx context.Context, userID string, view domain.View) error

	// DeliverDocument sends a generated file.
	DeliverDocument(ctx context.Context, userID string, doc []byte, filename, caption string) error
}
