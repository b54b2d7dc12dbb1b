package rules

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/aretw0/rulecraft/internal/logging"
	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/ports"
)

// DefaultBaseURL is the root of the Clash rule-set tree.
const DefaultBaseURL = "https://raw.githubusercontent.com/blackmatrix7/ios_rule_script/refs/heads/master/rule/Clash"

// Location is where a category's rule body can be fetched and cached.
type Location struct {
	Folder string // canonical folder name
	URL    string // remote rule body
	Path   string // local cache path used by the client
}

// Resolver lists categories and resolves them to rule-set locations.
type Resolver struct {
	lister  ports.CategoryLister
	aliases AliasTable
	baseURL string
	logger  *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAliases replaces the alias table.
func WithAliases(t AliasTable) Option {
	return func(r *Resolver) {
		r.aliases = t
	}
}

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(base string) Option {
	return func(r *Resolver) {
		if base != "" {
			r.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithLogger sets the logger used for advisory warnings.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// New creates a resolver. lister may be nil when only Resolve is needed.
func New(lister ports.CategoryLister, opts ...Option) *Resolver {
	r := &Resolver{
		lister:  lister,
		aliases: DefaultAliases(),
		baseURL: DefaultBaseURL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Aliases returns the resolver's alias table. Callers must not modify it.
func (r *Resolver) Aliases() AliasTable {
	return r.aliases
}

// Categories returns the available categories, sorted by canonical name and
// shown under their display names. Any listing failure is a *domain.CategorySourceError.
func (r *Resolver) Categories(ctx context.Context) ([]string, error) {
	if r.lister == nil {
		return nil, &domain.CategorySourceError{Cause: errNoLister}
	}
	folders, err := r.lister.ListCategories(ctx)
	if err != nil {
		return nil, &domain.CategorySourceError{Cause: err}
	}

	folders = slices.Clone(folders)
	slices.Sort(folders)

	names := make([]string, 0, len(folders))
	for _, f := range folders {
		names = append(names, r.aliases.Display(f))
	}
	return names, nil
}

// Resolve returns the location of a category's rule body.
func (r *Resolver) Resolve(display string) Location {
	folder := r.aliases.Alias(display)
	return Location{
		Folder: folder,
		URL:    r.baseURL + "/" + folder + "/" + folder + ".yaml",
		Path:   "./rules/" + folder + ".yaml",
	}
}

// AliasWarning flags an alias whose target looks unrelated to its name.
type AliasWarning struct {
	Name   string
	Target string
}

// CheckAliases reports, and logs, every listed name whose alias target is
// neither a substring nor a superstring of the name. It never fails.
func (r *Resolver) CheckAliases(names []string) []AliasWarning {
	var out []AliasWarning
	for _, name := range names {
		target, ok := r.aliases[name]
		if !ok {
			continue
		}
		if strings.Contains(target, name) || strings.Contains(name, target) {
			continue
		}
		out = append(out, AliasWarning{Name: name, Target: target})
		r.logger.Warn("Alias target looks unrelated to its name", "name", name, "target", target)
	}
	return out
}
