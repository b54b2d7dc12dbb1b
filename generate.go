package rulecraft

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/fetch"
	"github.com/aretw0/rulecraft/pkg/node"
	"github.com/aretw0/rulecraft/pkg/ports"
	"github.com/aretw0/rulecraft/pkg/synth"
)

// Result is a generated configuration.
type Result struct {
	Document   []byte
	Nodes      int
	Categories int
}

// Caption describes the result in one line.
func (r Result) Caption() string {
	return fmt.Sprintf("%d nodes, %d rule categories", r.Nodes, r.Categories)
}

// RuleSetError reports a chosen category whose rule set could not be fetched.
type RuleSetError struct {
	Category string
	Err      error
}

func (e *RuleSetError) Error() string {
	return fmt.Sprintf("rule set %s: %v", e.Category, e.Err)
}

func (e *RuleSetError) Unwrap() error { return e.Err }

// Generate fetches the node list at source, validates it and synthesizes a
// configuration routing the given categories, in order. It touches no session.
// A source that is not a node list link fails with domain.ErrNotASource before
// anything is fetched.
func (a *Assistant) Generate(ctx context.Context, source string, categories []string) (Result, error) {
	if err := a.machine.CheckSource(source); err != nil {
		return Result{}, err
	}
	text, err := a.fetcher.FetchText(ctx, domain.FetchNodeList, fetch.NormalizeSourceURL(source))
	if err != nil {
		return Result{}, err
	}
	return a.Compile(ctx, text, categories)
}

// Compile is Generate for an already fetched node list. Repeated categories
// are dropped, keeping the first occurrence.
func (a *Assistant) Compile(ctx context.Context, nodeList string, categories []string) (Result, error) {
	categories = domain.Union(nil, categories)
	nodes, err := node.ParseList(nodeList, node.WithMarkers(a.cfg.markers...))
	if err != nil {
		return Result{}, err
	}

	if a.cfg.prefetch {
		for _, c := range categories {
			if _, err := a.ruleCache.Get(ctx, a.resolver.Resolve(c).URL); err != nil {
				return Result{}, &RuleSetError{Category: c, Err: err}
			}
		}
	}

	data, err := synth.Synthesize(nodes, categories, a.resolver).Bytes()
	if err != nil {
		return Result{}, err
	}
	return Result{Document: data, Nodes: len(nodes), Categories: len(categories)}, nil
}

// generateFor runs generation for a session snapshot and delivers the result.
// It runs outside the user's lock; the session is never modified.
func (a *Assistant) generateFor(ctx context.Context, s *domain.SelectionSession, p ports.Presenter) error {
	start := a.now()
	res, err := a.Generate(ctx, s.Source, s.Chosen)

	if a.hooks.OnGenerate != nil {
		a.hooks.OnGenerate(ctx, &domain.GenerateEvent{
			EventBase:  domain.EventBase{Timestamp: start, Type: domain.EventGenerate, UserID: s.UserID},
			Nodes:      res.Nodes,
			Categories: len(s.Chosen),
			Duration:   time.Since(start),
			Err:        err,
		})
	}

	if err != nil {
		a.logger.Warn("Generate failed", "user_id", s.UserID, "err", err)
		return p.SendText(ctx, s.UserID, UserMessage(err))
	}
	a.logger.Info("Generated configuration", "user_id", s.UserID, "nodes", res.Nodes, "categories", res.Categories)
	return p.DeliverDocument(ctx, s.UserID, res.Document, DocumentName, res.Caption())
}
