/*
Package rulecraft is a chat-driven assistant that turns a proxy node list and
a handful of chosen rule categories into a Clash routing configuration.

A user sends a link to a node list, browses the available rule categories on
a paged, filterable choice surface (toggling single categories or whole named
groups), and asks for the configuration. The assistant fetches the node list,
validates it, and delivers the synthesized YAML.

# Architecture

The Assistant is transport agnostic. Text messages and button presses enter
through HandleText and HandleAction; everything the user sees leaves through
a ports.Presenter. Sessions are kept by a session.Manager over any
ports.SessionStore (memory or Redis), groups by a groups.Table over any
ports.GroupStore (JSON file, Redis or memory).

# Usage

	a, err := rulecraft.New(
		rulecraft.WithCategoryLister(rules.StaticLister{"Netflix", "YouTube"}),
	)
	if err != nil {
		log.Fatal(err)
	}
	_ = a.Load(ctx) // categories and groups; failures degrade to empty lists

	p := memory.NewRecorder()
	_ = a.HandleText(ctx, "alice", "https://gist.github.com/alice/abc", p)
	_ = a.HandleAction(ctx, "alice", "TOGGLE_YouTube", p)
	_ = a.HandleAction(ctx, "alice", "GENERATE", p)
*/
package rulecraft
