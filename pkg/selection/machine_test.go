package selection_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gist = "https://gist.github.com/user/abc"

func categories(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Cat%02d", i)
	}
	return out
}

func selecting(t *testing.T, m selection.Machine) domain.SelectionSession {
	t.Helper()
	s, err := m.SetSource(*domain.NewSelectionSession("u1", time.Unix(0, 0)), gist)
	require.NoError(t, err)
	return s
}

func apply(t *testing.T, m selection.Machine, s domain.SelectionSession, a domain.Action, c selection.Catalog) (domain.SelectionSession, selection.Effect) {
	t.Helper()
	next, eff, err := m.Apply(s, a, c)
	require.NoError(t, err)
	return next, eff
}

func TestIsSourceReference(t *testing.T) {
	m := selection.New()
	assert.True(t, m.IsSourceReference("https://gist.github.com/u/abc"))
	assert.True(t, m.IsSourceReference(" https://raw.githubusercontent.com/u/r/main/nodes.txt "))
	assert.False(t, m.IsSourceReference("https://example.com/nodes.txt"))
	assert.False(t, m.IsSourceReference("hello"))
	assert.False(t, m.IsSourceReference("gist.github.com/u/abc"), "a scheme is required")
	assert.False(t, m.IsSourceReference("http://10.0.0.1/?gist.github.com"), "the host decides, not a substring")
	assert.False(t, m.IsSourceReference("https://gist.github.com@169.254.169.254/latest"))
	assert.False(t, m.IsSourceReference("https://raw.githubusercontent.com.evil.example/x"))
	assert.True(t, m.IsSourceReference("https://GIST.github.com/u/abc"))
	assert.ErrorIs(t, m.CheckSource("https://example.com/nodes.txt"), domain.ErrNotASource)
	assert.NoError(t, m.CheckSource("https://gist.github.com/u/abc"))

	m.AllowAnyURL = true
	assert.True(t, m.IsSourceReference("https://example.com/nodes.txt"))
	assert.False(t, m.IsSourceReference("ftp://example.com/nodes.txt"))
}

func TestSetSource_FullReset(t *testing.T) {
	m := selection.New()
	c := selection.Catalog{Categories: categories(30)}
	s := selecting(t, m)
	s, _ = apply(t, m, s, domain.Action{Kind: domain.ActionToggleCategory, Item: "Cat01"}, c)
	s, _ = apply(t, m, s, domain.Action{Kind: domain.ActionNextPage}, c)
	s, _ = apply(t, m, s, domain.Action{Kind: domain.ActionSearch}, c)

	s, err := m.SetSource(s, "https://raw.githubusercontent.com/x/y/z")
	require.NoError(t, err)
	assert.Equal(t, "https://raw.githubusercontent.com/x/y/z", s.Source)
	assert.Empty(t, s.Chosen)
	assert.Zero(t, s.Page)
	assert.Zero(t, s.GroupPage)
	assert.Equal(t, domain.Browsing(domain.Filter{}), s.Phase)
}

func TestSetSource_Rejects(t *testing.T) {
	m := selection.New()
	s := selecting(t, m)
	s.Chosen = []string{"A"}

	next, err := m.SetSource(s, "just chatting")
	assert.ErrorIs(t, err, domain.ErrNotASource)
	assert.Equal(t, s, next)
}

func TestToggleCategory_Involution(t *testing.T) {
	m := selection.New()
	c := selection.Catalog{Categories: categories(5)}
	s := selecting(t, m)
	s.Chosen = []string{"Cat03"}

	once, _ := apply(t, m, s, domain.Action{Kind: domain.ActionToggleCategory, Item: "Cat01"}, c)
	assert.Equal(t, []string{"Cat03", "Cat01"}, once.Chosen)

	twice, _ := apply(t, m, once, domain.Action{Kind: domain.ActionToggleCategory, Item: "Cat01"}, c)
	assert.Equal(t, s.Chosen, twice.Chosen)
}

func TestApply_DoesNotAliasInput(t *testing.T) {
	m := selection.New()
	c := selection.Catalog{Categories: categories(5)}
	s := selecting(t, m)
	s.Chosen = make([]string, 1, 8)
	s.Chosen[0] = "Cat00"

	_, _ = apply(t, m, s, domain.Action{Kind: domain.ActionToggleCategory, Item: "Cat01"}, c)
	assert.Equal(t, []string{"Cat00"}, s.Chosen)
}

func TestToggleGroup(t *testing.T) {
	m := selection.New()
	c := selection.Catalog{
		Categories: []string{"YouTube", "Netflix", "Spotify", "OpenAI"},
		Groups:     []domain.CategoryGroup{{Name: "streaming", Members: []string{"YouTube", "Netflix"}}},
	}
	toggle := domain.Action{Kind: domain.ActionToggleGroup, Item: "streaming"}

	t.Run("mixed selects all", func(t *testing.T) {
		s := selecting(t, m)
		s.Chosen = []string{"Netflix", "OpenAI"}
		s, _ = apply(t, m, s, toggle, c)
		assert.ElementsMatch(t, []string{"Netflix", "OpenAI", "YouTube"}, s.Chosen)
	})

	t.Run("all chosen deselects all", func(t *testing.T) {
		s := selecting(t, m)
		s.Chosen = []string{"YouTube", "OpenAI", "Netflix"}
		s, _ = apply(t, m, s, toggle, c)
		assert.Equal(t, []string{"OpenAI"}, s.Chosen)
	})

	t.Run("subset property", func(t *testing.T) {
		s := selecting(t, m)
		s, _ = apply(t, m, s, toggle, c)
		for _, member := range c.Groups[0].Members {
			assert.True(t, s.IsChosen(member))
		}
		s, _ = apply(t, m, s, toggle, c)
		for _, member := range c.Groups[0].Members {
			assert.False(t, s.IsChosen(member))
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		_, eff, err := m.Apply(selecting(t, m), domain.Action{Kind: domain.ActionToggleGroup, Item: "nope"}, c)
		assert.ErrorIs(t, err, domain.ErrGroupNotFound)
		assert.Equal(t, selection.EffectNone, eff)
	})
}

func TestPagination_Clamped(t *testing.T) {
	m := selection.New()
	c := selection.Catalog{Categories: categories(25)} // pages 0,1,2
	s := selecting(t, m)

	s, eff := apply(t, m, s, domain.Action{Kind: domain.ActionPrevPage}, c)
	assert.Equal(t, 0, s.Page)
	assert.Equal(t, selection.EffectNone, eff, "prev on first page is a no-op")

	for i := 0; i < 5; i++ {
		s, _ = apply(t, m, s, domain.Action{Kind: domain.ActionNextPage}, c)
	}
	assert.Equal(t, 2, s.Page)

	s, eff = apply(t, m, s, domain.Action{Kind: domain.ActionNextPage}, c)
	assert.Equal(t, 2, s.Page)
	assert.Equal(t, selection.EffectNone, eff)
}

func TestPagination_Inverse(t *testing.T) {
	m := selection.New()
	c := selection.Catalog{Categories: categories(35)}
	s := selecting(t, m)
	s.Page = 1

	fwd, _ := apply(t, m, s, domain.Action{Kind: domain.ActionNextPage}, c)
	back, _ := apply(t, m, fwd, domain.Action{Kind: domain.ActionPrevPage}, c)
	assert.Equal(t, s.Page, back.Page)
}

func TestPagination_RespectsFilter(t *testing.T) {
	m := selection.New()
	c := selection.Catalog{Categories: categories(40)}
	s := selecting(t, m)
	s.Phase = domain.Browsing(domain.SubstringFilter("cat0")) // Cat00..Cat09: one page

	s, eff := apply(t, m, s, domain.Action{Kind: domain.ActionNextPage}, c)
	assert.Equal(t, 0, s.Page)
	assert.Equal(t, selection.EffectNone, eff)
}

func TestPagination_StalePageIsClamped(t *testing.T) {
	m := selection.New()
	c := selection.Catalog{Categories: categories(12)}
	s := selecting(t, m)
	s.Page = 7 // catalog shrank since

	s, _ = apply(t, m, s, domain.Action{Kind: domain.ActionPrevPage}, c)
	assert.Equal(t, 0, s.Page)
}

func TestGroupPagination(t *testing.T) {
	m := selection.New()
	var groups []domain.CategoryGroup
	for i := 0; i < 7; i++ {
		groups = append(groups, domain.CategoryGroup{Name: fmt.Sprintf("g%d", i)})
	}
	c := selection.Catalog{Groups: groups}
	s := selecting(t, m)

	s, eff := apply(t, m, s, domain.Action{Kind: domain.ActionNextGroupPage}, c)
	assert.Equal(t, 1, s.GroupPage)
	assert.Equal(t, selection.EffectRerender, eff)

	s, eff = apply(t, m, s, domain.Action{Kind: domain.ActionNextGroupPage}, c)
	assert.Equal(t, 1, s.GroupPage)
	assert.Equal(t, selection.EffectNone, eff)

	s, _ = apply(t, m, s, domain.Action{Kind: domain.ActionPrevGroupPage}, c)
	assert.Equal(t, 0, s.GroupPage)
}

func TestLetterJump(t *testing.T) {
	m := selection.New()
	c := selection.Catalog{Categories: []string{"Apple", "Amazon", "Bilibili", "Spotify"}}
	s := selecting(t, m)
	s.Page = 3
	s.GroupPage = 2

	s, _ = apply(t, m, s, domain.Action{Kind: domain.ActionLetter, Item: "A"}, c)
	assert.Equal(t, domain.Browsing(domain.PrefixFilter("A")), s.Phase)
	assert.Zero(t, s.Page)
	assert.Zero(t, s.GroupPage)

	var shown []string
	for _, b := range m.Render(s, c).Buttons(domain.RowCategories) {
		shown = append(shown, b.Data)
	}
	assert.Equal(t, []string{"TOGGLE_Apple", "TOGGLE_Amazon"}, shown)
}

func TestSearchFlow(t *testing.T) {
	m := selection.New()
	c := selection.Catalog{Categories: []string{"Netflix", "YouTube", "YouTubeMusic"}}
	s := selecting(t, m)
	s.Phase = domain.Browsing(domain.PrefixFilter("N"))

	s, eff := apply(t, m, s, domain.Action{Kind: domain.ActionSearch}, c)
	assert.Equal(t, selection.EffectPromptSearch, eff)
	assert.True(t, s.Phase.Awaiting())
	assert.False(t, s.Phase.ActiveFilter().Active(), "begin search drops the previous filter")

	s, ok := m.ReceiveText(s, " youtube ")
	require.True(t, ok)
	assert.Equal(t, domain.Browsing(domain.SubstringFilter("youtube")), s.Phase)
	assert.Len(t, m.Render(s, c).Buttons(domain.RowCategories), 2)

	_, ok = m.ReceiveText(s, "again")
	assert.False(t, ok, "text is only a filter while awaiting")

	s.Page = 1
	s, _ = apply(t, m, s, domain.Action{Kind: domain.ActionClearFilter}, c)
	assert.Equal(t, domain.Browsing(domain.Filter{}), s.Phase)
	assert.Zero(t, s.Page)
}

func TestGenerate_Preconditions(t *testing.T) {
	m := selection.New()
	c := selection.Catalog{Categories: []string{"YouTube"}}
	gen := domain.Action{Kind: domain.ActionGenerate}

	_, _, err := m.Apply(*domain.NewSelectionSession("u1", time.Now()), gen, c)
	var pe *domain.PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.RequireSource, pe.Missing)

	s := selecting(t, m)
	_, _, err = m.Apply(s, gen, c)
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.RequireCategories, pe.Missing)

	s.Chosen = []string{"YouTube"}
	next, eff, err := m.Apply(s, gen, c)
	require.NoError(t, err)
	assert.Equal(t, selection.EffectGenerate, eff)
	assert.Equal(t, s, next, "generate leaves the session unchanged")
}

func TestApply_RejectsEditorActions(t *testing.T) {
	m := selection.New()
	_, _, err := m.Apply(selecting(t, m), domain.Action{Kind: domain.ActionEditSave}, selection.Catalog{})
	assert.ErrorIs(t, err, domain.ErrUnknownAction)
}

func TestEffectString(t *testing.T) {
	assert.Equal(t, "generate", selection.EffectGenerate.String())
	assert.Equal(t, "effect(42)", selection.Effect(42).String())
}
