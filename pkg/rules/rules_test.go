package rules_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	r := rules.New(nil)

	loc := r.Resolve("YouTube")
	assert.Equal(t, "YouTube", loc.Folder)
	assert.Equal(t, rules.DefaultBaseURL+"/YouTube/YouTube.yaml", loc.URL)
	assert.Equal(t, "./rules/YouTube.yaml", loc.Path)

	loc = r.Resolve("PrimeVideo")
	assert.Equal(t, "AmazonPrimeVideo", loc.Folder)
	assert.Equal(t, rules.DefaultBaseURL+"/AmazonPrimeVideo/AmazonPrimeVideo.yaml", loc.URL)
}

func TestResolve_BaseURL(t *testing.T) {
	r := rules.New(nil, rules.WithBaseURL("http://mirror.local/rules/"))
	assert.Equal(t, "http://mirror.local/rules/X1/X1.yaml", r.Resolve("X1").URL)
}

func TestCategories_SortedAndReverseMapped(t *testing.T) {
	r := rules.New(rules.StaticLister{"YouTube", "OpenAI", "DouYin", "Netflix"})

	names, err := r.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"TikTok", "Netflix", "ChatGPT", "YouTube"}, names)
}

func TestCategories_FirstAliasWinsDeterministically(t *testing.T) {
	aliases := rules.AliasTable{"Zed": "Folder", "Alpha": "Folder"}
	r := rules.New(rules.StaticLister{"Folder"}, rules.WithAliases(aliases))

	for i := 0; i < 20; i++ {
		names, err := r.Categories(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"Alpha"}, names)
	}
}

func TestCategories_SourceError(t *testing.T) {
	r := rules.New(rules.FailingLister{Err: errors.New("offline")})

	_, err := r.Categories(context.Background())
	var cse *domain.CategorySourceError
	require.ErrorAs(t, err, &cse)
	assert.EqualError(t, cse.Cause, "offline")
}

func TestCheckAliases(t *testing.T) {
	r := rules.New(nil)

	warnings := r.CheckAliases([]string{"PrimeVideo", "ChatGPT", "YouTube"})
	assert.Equal(t, []rules.AliasWarning{{Name: "ChatGPT", Target: "OpenAI"}}, warnings)
}

func TestLoadAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Disney+: Disney\nX: XCorp\n"), 0644))

	table, err := rules.LoadAliases(path)
	require.NoError(t, err)
	assert.Equal(t, "Disney", table.Alias("Disney+"))
	assert.Equal(t, "XCorp", table.Alias("X"), "file entries override built-ins")
	assert.Equal(t, "DouYin", table.Alias("TikTok"))
	assert.Equal(t, "Unknown", table.Alias("Unknown"))
}

func TestLoadAliases_Empty(t *testing.T) {
	table, err := rules.LoadAliases("")
	require.NoError(t, err)
	assert.Equal(t, rules.DefaultAliases(), table)
}

func TestCatalog_DegradesToEmpty(t *testing.T) {
	c := rules.NewCatalog(rules.New(rules.FailingLister{Err: errors.New("down")}))

	err := c.Load(context.Background())
	assert.Error(t, err)
	assert.Empty(t, c.Names())
}

func TestCatalog_NamesIsACopy(t *testing.T) {
	c := rules.NewCatalog(rules.New(rules.StaticLister{"B", "A"}))
	require.NoError(t, c.Load(context.Background()))

	names := c.Names()
	names[0] = "mutated"
	assert.Equal(t, []string{"A", "B"}, c.Names())
	assert.Equal(t, 2, c.Len())
}
