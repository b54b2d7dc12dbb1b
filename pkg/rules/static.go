package rules

import (
	"context"
	"errors"
	"slices"
)

var errNoLister = errors.New("no category lister configured")

// StaticLister serves a fixed category list. Useful offline and in tests.
type StaticLister []string

// ListCategories returns a copy of the list.
func (s StaticLister) ListCategories(ctx context.Context) ([]string, error) {
	return slices.Clone([]string(s)), nil
}

// FailingLister always fails with Err.
type FailingLister struct {
	Err error
}

// ListCategories returns f.Err.
func (f FailingLister) ListCategories(ctx context.Context) ([]string, error) {
	return nil, f.Err
}
