package selection

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/aretw0/rulecraft/pkg/domain"
)

// Effect tells the caller what a transition requires of the surface.
type Effect int

const (
	EffectNone         Effect = iota // nothing changed (e.g. paging past the end)
	EffectRerender                   // redraw the choice surface
	EffectPromptSearch               // ask the user for a filter term
	EffectGenerate                   // preconditions hold; run generation
	EffectSave                       // editor: commit the working set
	EffectCancel                     // editor: discard the working set
)

func (e Effect) String() string {
	switch e {
	case EffectNone:
		return "none"
	case EffectRerender:
		return "rerender"
	case EffectPromptSearch:
		return "prompt_search"
	case EffectGenerate:
		return "generate"
	case EffectSave:
		return "save"
	case EffectCancel:
		return "cancel"
	}
	return fmt.Sprintf("effect(%d)", int(e))
}

// Catalog is the read-only input every transition is evaluated against.
type Catalog struct {
	Categories []string
	Groups     []domain.CategoryGroup
}

// Group returns the named group.
func (c Catalog) Group(name string) (domain.CategoryGroup, bool) {
	for _, g := range c.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return domain.CategoryGroup{}, false
}

const (
	DefaultPageSize         = 10
	DefaultGroupPageSize    = 5
	DefaultAlphabetRowWidth = 7
)

// DefaultAlphabet is the letter-jump row.
const DefaultAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Machine holds the fixed layout parameters. The zero value is not usable;
// start from New.
type Machine struct {
	PageSize         int
	GroupPageSize    int
	Alphabet         string
	AlphabetRowWidth int

	// AllowAnyURL accepts any http(s) URL as a source, not only GitHub gists
	// and raw GitHub content.
	AllowAnyURL bool
}

// New returns a Machine with the default layout.
func New() Machine {
	return Machine{
		PageSize:         DefaultPageSize,
		GroupPageSize:    DefaultGroupPageSize,
		Alphabet:         DefaultAlphabet,
		AlphabetRowWidth: DefaultAlphabetRowWidth,
	}
}

// SourceHosts are the hosts a node list may live on unless AllowAnyURL is set.
var SourceHosts = []string{"gist.github.com", "gist.githubusercontent.com", "raw.githubusercontent.com"}

// IsSourceReference reports whether text is an http(s) link to a node list.
// The host must be one of SourceHosts unless AllowAnyURL is set.
func (m Machine) IsSourceReference(text string) bool {
	u, err := url.Parse(strings.TrimSpace(text))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return false
	}
	return m.AllowAnyURL || slices.Contains(SourceHosts, strings.ToLower(u.Hostname()))
}

// CheckSource returns domain.ErrNotASource unless ref is a source reference.
func (m Machine) CheckSource(ref string) error {
	if !m.IsSourceReference(ref) {
		return fmt.Errorf("%w: %q", domain.ErrNotASource, strings.TrimSpace(ref))
	}
	return nil
}

// SetSource starts a fresh selection for ref, discarding all prior state.
func (m Machine) SetSource(s domain.SelectionSession, ref string) (domain.SelectionSession, error) {
	if err := m.CheckSource(ref); err != nil {
		return s, err
	}
	next := domain.NewSelectionSession(s.UserID, s.LastActive)
	next.Source = strings.TrimSpace(ref)
	return *next, nil
}

// Apply runs one selection action.
func (m Machine) Apply(s domain.SelectionSession, a domain.Action, c Catalog) (domain.SelectionSession, Effect, error) {
	s = *s.Snapshot()

	switch a.Kind {
	case domain.ActionToggleCategory:
		s.Chosen = domain.Toggle(s.Chosen, a.Item)
		return s, EffectRerender, nil

	case domain.ActionToggleGroup:
		g, ok := c.Group(a.Item)
		if !ok {
			return s, EffectNone, fmt.Errorf("%w: %s", domain.ErrGroupNotFound, a.Item)
		}
		if allChosen(s.Chosen, g.Members) {
			s.Chosen = domain.Without(s.Chosen, g.Members)
		} else {
			s.Chosen = domain.Union(s.Chosen, g.Members)
		}
		return s, EffectRerender, nil

	case domain.ActionNextPage, domain.ActionPrevPage:
		items := s.Phase.ActiveFilter().Apply(c.Categories)
		page, moved := step(s.Page, len(items), m.PageSize, a.Kind == domain.ActionNextPage)
		s.Page = page
		return s, effectOf(moved), nil

	case domain.ActionNextGroupPage, domain.ActionPrevGroupPage:
		page, moved := step(s.GroupPage, len(c.Groups), m.GroupPageSize, a.Kind == domain.ActionNextGroupPage)
		s.GroupPage = page
		return s, effectOf(moved), nil

	case domain.ActionLetter:
		s.Phase = domain.Browsing(domain.PrefixFilter(a.Item))
		s.Page = 0
		s.GroupPage = 0
		return s, EffectRerender, nil

	case domain.ActionSearch:
		s.Phase = domain.AwaitingFilter()
		return s, EffectPromptSearch, nil

	case domain.ActionClearFilter:
		s.Phase = domain.Browsing(domain.Filter{})
		s.Page = 0
		return s, EffectRerender, nil

	case domain.ActionGenerate:
		if err := m.CheckGenerate(s); err != nil {
			return s, EffectNone, err
		}
		return s, EffectGenerate, nil
	}

	return s, EffectNone, fmt.Errorf("%w: %s is not a selection action", domain.ErrUnknownAction, a.Kind)
}

// ReceiveText consumes a filter term. It reports false, leaving s as is,
// when the session is not awaiting one.
func (m Machine) ReceiveText(s domain.SelectionSession, text string) (domain.SelectionSession, bool) {
	if !s.Phase.Awaiting() {
		return s, false
	}
	s = *s.Snapshot()
	s.Phase = domain.Browsing(domain.SubstringFilter(strings.TrimSpace(text)))
	s.Page = 0
	return s, true
}

// CheckGenerate validates the generate preconditions.
func (m Machine) CheckGenerate(s domain.SelectionSession) error {
	if !s.Selecting() {
		return &domain.PreconditionError{Missing: domain.RequireSource}
	}
	if len(s.Chosen) == 0 {
		return &domain.PreconditionError{Missing: domain.RequireCategories}
	}
	return nil
}

func allChosen(chosen, members []string) bool {
	for _, m := range members {
		if !slices.Contains(chosen, m) {
			return false
		}
	}
	return true
}

func effectOf(moved bool) Effect {
	if moved {
		return EffectRerender
	}
	return EffectNone
}

// lastPage is the highest valid page index for n items.
func lastPage(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n - 1) / size
}

// clampPage brings page into [0, lastPage].
func clampPage(page, n, size int) int {
	return max(0, min(page, lastPage(n, size)))
}

// step moves page by one in the given direction. Moving off either end is a
// no-op; a page left out of range by a shrunk list is clamped first.
func step(page, n, size int, forward bool) (int, bool) {
	cur := clampPage(page, n, size)
	next := cur - 1
	if forward {
		next = cur + 1
	}
	if next < 0 || next > lastPage(n, size) {
		return cur, cur != page
	}
	return next, true
}
