package rules

import (
	"context"
	"slices"
	"sync"
)

// Catalog is the read-mostly snapshot of available categories.
// Load is the only writer; everything else reads copies.
type Catalog struct {
	resolver *Resolver

	mu    sync.RWMutex
	names []string
}

// NewCatalog creates an empty catalog backed by resolver.
func NewCatalog(resolver *Resolver) *Catalog {
	return &Catalog{resolver: resolver}
}

// Load refreshes the list from the resolver. A listing failure is logged and
// leaves the catalog empty; the error is returned for callers that care.
func (c *Catalog) Load(ctx context.Context) error {
	names, err := c.resolver.Categories(ctx)
	if err != nil {
		c.resolver.logger.Warn("Failed to fetch categories", "err", err)
		names = nil
	} else {
		c.resolver.CheckAliases(names)
	}

	c.mu.Lock()
	c.names = names
	c.mu.Unlock()
	return err
}

// Names returns a copy of the current list.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.names)
}

// Len returns the number of categories.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}

// Resolver returns the resolver backing the catalog.
func (c *Catalog) Resolver() *Resolver {
	return c.resolver
}
