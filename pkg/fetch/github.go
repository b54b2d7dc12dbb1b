package fetch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/rulecraft/pkg/domain"
)

// DefaultListingURL lists the Clash rule-set folders.
const DefaultListingURL = "https://api.github.com/repos/blackmatrix7/ios_rule_script/contents/rule/Clash?ref=master"

// GitHubLister implements ports.CategoryLister with the GitHub contents API.
type GitHubLister struct {
	client *Client
	url    string
}

// NewGitHubLister lists directories under url. An empty url selects DefaultListingURL.
func NewGitHubLister(client *Client, url string) *GitHubLister {
	if url == "" {
		url = DefaultListingURL
	}
	return &GitHubLister{client: client, url: url}
}

type contentEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ListCategories returns the names of directory entries, in listing order.
func (g *GitHubLister) ListCategories(ctx context.Context) ([]string, error) {
	body, err := g.client.FetchText(ctx, domain.FetchListing, g.url)
	if err != nil {
		return nil, err
	}

	var entries []contentEntry
	if err := json.Unmarshal([]byte(body), &entries); err != nil {
		return nil, fmt.Errorf("failed to decode category listing: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type == "dir" && e.Name != "" {
			names = append(names, e.Name)
		}
	}
	return names, nil
}
