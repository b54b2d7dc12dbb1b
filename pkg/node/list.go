package node

import (
	"errors"
	"strings"

	"github.com/aretw0/rulecraft/pkg/domain"
)

type listConfig struct {
	markers []string
}

// ListOption configures ParseList.
type ListOption func(*listConfig)

// WithMarkers replaces the non-proxy marker fragments used by the post-filter.
func WithMarkers(markers ...string) ListOption {
	return func(c *listConfig) {
		c.markers = markers
	}
}

// ParseList parses a multi-line node list. Blank lines are skipped.
// Parsing is all-or-nothing: the first malformed line aborts the batch and the
// returned *domain.MalformedNodeError carries its 1-based line number.
// Nodes whose name carries a quota/expiry marker are dropped afterwards.
func ParseList(text string, opts ...ListOption) ([]domain.ProxyNode, error) {
	cfg := listConfig{markers: DefaultMarkers}
	for _, opt := range opts {
		opt(&cfg)
	}

	var nodes []domain.ProxyNode
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		n, err := Parse(line)
		if err != nil {
			var me *domain.MalformedNodeError
			if errors.As(err, &me) {
				me.Line = i + 1
			}
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return Exclude(nodes, cfg.markers), nil
}

// Exclude drops nodes whose name contains any of the markers, keeping order.
func Exclude(nodes []domain.ProxyNode, markers []string) []domain.ProxyNode {
	if len(markers) == 0 {
		return nodes
	}
	out := nodes[:0:0]
	for _, n := range nodes {
		if !hasMarker(n.Name, markers) {
			out = append(out, n)
		}
	}
	return out
}

func hasMarker(name string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(name, m) {
			return true
		}
	}
	return false
}
