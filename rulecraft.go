package rulecraft

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/rulecraft/internal/logging"
	"github.com/aretw0/rulecraft/pkg/adapters/memory"
	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/fetch"
	"github.com/aretw0/rulecraft/pkg/groups"
	"github.com/aretw0/rulecraft/pkg/node"
	"github.com/aretw0/rulecraft/pkg/ports"
	"github.com/aretw0/rulecraft/pkg/rules"
	"github.com/aretw0/rulecraft/pkg/selection"
	"github.com/aretw0/rulecraft/pkg/session"
)

// DocumentName is the file name of every delivered configuration.
const DocumentName = "clash.yaml"

// Assistant dispatches user input to the selection machine and runs generation.
// Safe for concurrent use; work for one user is serialized, users run in parallel.
type Assistant struct {
	machine   selection.Machine
	resolver  *rules.Resolver
	catalog   *rules.Catalog
	groups    *groups.Table
	sessions  *session.Manager
	fetcher   ports.TextFetcher
	ruleCache *fetch.RuleCache
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	now       func() time.Time

	cfg config
}

type config struct {
	sessionStore ports.SessionStore
	groupStore   ports.GroupStore
	lister       ports.CategoryLister
	fetcher      ports.TextFetcher
	locker       ports.DistributedLocker
	aliases      rules.AliasTable
	baseURL      string
	ttl          time.Duration
	ruleCacheTTL time.Duration
	markers      []string
	prefetch     bool
	machine      *selection.Machine
	clock        func() time.Time
}

// Option defines a functional option for configuring the Assistant.
type Option func(*Assistant)

// WithSessionStore sets where selection sessions live (default: in memory).
func WithSessionStore(s ports.SessionStore) Option {
	return func(a *Assistant) {
		a.cfg.sessionStore = s
	}
}

// WithGroupStore sets where category groups are persisted (default: in memory).
func WithGroupStore(s ports.GroupStore) Option {
	return func(a *Assistant) {
		a.cfg.groupStore = s
	}
}

// WithCategoryLister sets the category source (default: the GitHub contents API).
func WithCategoryLister(l ports.CategoryLister) Option {
	return func(a *Assistant) {
		a.cfg.lister = l
	}
}

// WithFetcher sets the fetcher used for node lists and rule bodies.
func WithFetcher(f ports.TextFetcher) Option {
	return func(a *Assistant) {
		a.cfg.fetcher = f
	}
}

// WithLocker enables cross-replica session locking.
func WithLocker(l ports.DistributedLocker) Option {
	return func(a *Assistant) {
		a.cfg.locker = l
	}
}

// WithAliases replaces the category alias table.
func WithAliases(t rules.AliasTable) Option {
	return func(a *Assistant) {
		a.cfg.aliases = t
	}
}

// WithRulesBaseURL overrides where rule bodies are fetched from.
func WithRulesBaseURL(base string) Option {
	return func(a *Assistant) {
		a.cfg.baseURL = base
	}
}

// WithSessionTTL sets the idle timeout of selection sessions.
func WithSessionTTL(ttl time.Duration) Option {
	return func(a *Assistant) {
		a.cfg.ttl = ttl
	}
}

// WithRuleCacheTTL sets how long fetched rule bodies are reused.
func WithRuleCacheTTL(ttl time.Duration) Option {
	return func(a *Assistant) {
		a.cfg.ruleCacheTTL = ttl
	}
}

// WithMarkers replaces the node-name fragments that mark non-proxy entries.
func WithMarkers(markers ...string) Option {
	return func(a *Assistant) {
		a.cfg.markers = markers
	}
}

// WithRulePrefetch controls whether generation fetches every chosen rule body
// before delivering, so a missing rule set fails the request (default: on).
func WithRulePrefetch(enabled bool) Option {
	return func(a *Assistant) {
		a.cfg.prefetch = enabled
	}
}

// WithMachine replaces the selection machine layout.
func WithMachine(m selection.Machine) Option {
	return func(a *Assistant) {
		a.cfg.machine = &m
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) {
		a.cfg.clock = now
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Assistant) {
		a.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		a.logger = logger
	}
}

// New builds an Assistant. Nothing is fetched until Load.
func New(opts ...Option) (*Assistant, error) {
	a := &Assistant{
		cfg: config{prefetch: true, markers: node.DefaultMarkers},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logging.NewNop()
	}

	cfg := a.cfg
	if cfg.clock == nil {
		cfg.clock = time.Now
	}
	a.now = cfg.clock
	if cfg.sessionStore == nil {
		cfg.sessionStore = memory.NewStore()
	}
	if cfg.groupStore == nil {
		cfg.groupStore = memory.NewGroupStore()
	}
	if cfg.fetcher == nil {
		cfg.fetcher = fetch.NewClient(fetch.Options{})
	}
	if cfg.lister == nil {
		client, ok := cfg.fetcher.(*fetch.Client)
		if !ok {
			return nil, errors.New("a category lister is required with a custom fetcher")
		}
		cfg.lister = fetch.NewGitHubLister(client, "")
	}
	if cfg.aliases == nil {
		cfg.aliases = rules.DefaultAliases()
	}

	a.machine = selection.New()
	if cfg.machine != nil {
		a.machine = *cfg.machine
	}

	a.resolver = rules.New(cfg.lister,
		rules.WithAliases(cfg.aliases),
		rules.WithBaseURL(cfg.baseURL),
		rules.WithLogger(a.logger),
	)
	a.catalog = rules.NewCatalog(a.resolver)
	a.groups = groups.New(cfg.groupStore,
		groups.WithLogger(a.logger),
		groups.WithHooks(a.hooks),
	)

	sessOpts := []session.Option{
		session.WithTTL(cfg.ttl),
		session.WithClock(cfg.clock),
		session.WithLogger(a.logger),
		session.WithHooks(a.hooks),
	}
	if cfg.locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(cfg.locker))
	}
	a.sessions = session.NewManager(cfg.sessionStore, sessOpts...)

	a.fetcher = cfg.fetcher
	a.ruleCache = fetch.NewRuleCache(cfg.fetcher, cfg.ruleCacheTTL)
	a.cfg = cfg
	return a, nil
}

// Load refreshes the category catalog and the group table. Failures are
// logged and leave the affected list empty; the assistant stays usable.
func (a *Assistant) Load(ctx context.Context) error {
	return errors.Join(a.catalog.Load(ctx), a.groups.Load(ctx))
}

// Categories returns the current category list.
func (a *Assistant) Categories() []string {
	return a.catalog.Names()
}

// Groups returns the category group table.
func (a *Assistant) Groups() *groups.Table {
	return a.groups
}

// Sessions returns the session manager.
func (a *Assistant) Sessions() *session.Manager {
	return a.sessions
}

// Resolver returns the category resolver.
func (a *Assistant) Resolver() *rules.Resolver {
	return a.resolver
}

// RunSweeper evicts idle sessions every interval until ctx is cancelled.
func (a *Assistant) RunSweeper(ctx context.Context, interval time.Duration) {
	a.sessions.RunSweeper(ctx, interval)
}

func (a *Assistant) selectionCatalog() selection.Catalog {
	return selection.Catalog{
		Categories: a.catalog.Names(),
		Groups:     a.groups.List(),
	}
}

// GroupList returns every category group, sorted by name.
func (a *Assistant) GroupList() []domain.CategoryGroup {
	return a.groups.List()
}
