package domain_test

import (
	"testing"
	"time"

	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestToggle_Involution(t *testing.T) {
	set := []string{"A", "B"}
	once := domain.Toggle(set, "C")
	assert.Equal(t, []string{"A", "B", "C"}, once)
	assert.Equal(t, set, domain.Toggle(once, "C"))

	// Toggle never mutates its input.
	assert.Equal(t, []string{"A", "B"}, set)
}

func TestUnionWithout(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C"}, domain.Union([]string{"A"}, []string{"B", "A", "C"}))
	assert.Equal(t, []string{"A"}, domain.Without([]string{"A", "B", "C"}, []string{"C", "B"}))
}

func TestFilter_Match(t *testing.T) {
	sub := domain.SubstringFilter("tube")
	assert.True(t, sub.Match("YouTube"))
	assert.False(t, sub.Match("Netflix"))

	pre := domain.PrefixFilter("N")
	assert.True(t, pre.Match("netflix"))
	assert.False(t, pre.Match("Spotify"))
	assert.False(t, pre.Match("TikTokNow"))

	assert.True(t, domain.Filter{}.Match("anything"))
}

func TestPhase_AwaitingHasNoFilter(t *testing.T) {
	p := domain.AwaitingFilter()
	assert.True(t, p.Awaiting())
	assert.False(t, p.ActiveFilter().Active())

	b := domain.Browsing(domain.SubstringFilter("x"))
	assert.False(t, b.Awaiting())
	assert.Equal(t, "x", b.ActiveFilter().Term)
}

func TestSelectionSession_Snapshot(t *testing.T) {
	s := domain.NewSelectionSession("u1", time.Unix(100, 0))
	s.Chosen = []string{"A"}
	cp := s.Snapshot()
	cp.Chosen[0] = "B"
	assert.Equal(t, "A", s.Chosen[0])
	assert.False(t, s.Selecting())
}

func TestNewGroupEditSession_Dedupes(t *testing.T) {
	e := domain.NewGroupEditSession("u1", "g", []string{"A", "B", "A"})
	assert.Equal(t, []string{"A", "B"}, e.Members)
	assert.True(t, e.IsMember("B"))
}
