package rulecraft

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/ports"
)

// command runs a slash command. A "@name" suffix on the command word is ignored.
func (a *Assistant) command(ctx context.Context, userID, text string, p ports.Presenter) error {
	fields := strings.Fields(text)
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	args := fields[1:]

	switch name {
	case "/start":
		return p.SendText(ctx, userID, MsgStart)
	case "/help":
		return p.SendText(ctx, userID, MsgHelp)
	case "/groups":
		return p.SendText(ctx, userID, a.groupListing())

	case "/newgroup":
		if len(args) < 1 {
			return p.SendText(ctx, userID, "Usage: /newgroup <name> [rules...]")
		}
		if err := a.groups.Create(ctx, args[0], args[1:]); err != nil {
			return a.reply(ctx, userID, err, p)
		}
		return p.SendText(ctx, userID, fmt.Sprintf("Group %s created with %d rules.", args[0], len(domain.Union(nil, args[1:]))))

	case "/addrules":
		if len(args) < 2 {
			return p.SendText(ctx, userID, "Usage: /addrules <name> <rules...>")
		}
		if err := a.groups.AddRules(ctx, args[0], args[1:]); err != nil {
			return a.reply(ctx, userID, err, p)
		}
		return p.SendText(ctx, userID, a.groupSummary(args[0]))

	case "/removerules":
		if len(args) < 2 {
			return p.SendText(ctx, userID, "Usage: /removerules <name> <rules...>")
		}
		if err := a.groups.RemoveRules(ctx, args[0], args[1:]); err != nil {
			return a.reply(ctx, userID, err, p)
		}
		return p.SendText(ctx, userID, a.groupSummary(args[0]))

	case "/deletegroup":
		if len(args) != 1 {
			return p.SendText(ctx, userID, "Usage: /deletegroup <name>")
		}
		if err := a.groups.Delete(ctx, args[0]); err != nil {
			return a.reply(ctx, userID, err, p)
		}
		return p.SendText(ctx, userID, fmt.Sprintf("Group %s deleted.", args[0]))

	case "/editgroup":
		if len(args) != 1 {
			return p.SendText(ctx, userID, "Usage: /editgroup <name>")
		}
		return a.beginEdit(ctx, userID, args[0], p)

	case "/cancel":
		return a.cancel(ctx, userID, p)
	}
	return p.SendText(ctx, userID, MsgUnknownCmd)
}

// beginEdit opens the editor on a copy of the group. A group that does not
// exist yet starts empty and is created on save.
func (a *Assistant) beginEdit(ctx context.Context, userID, group string, p ports.Presenter) error {
	var members []string
	if g, err := a.groups.Get(group); err == nil {
		members = g.Members
	}
	es, err := a.sessions.BeginEdit(ctx, userID, group, members)
	if err != nil {
		return a.reply(ctx, userID, err, p)
	}
	return p.PresentChoices(ctx, userID, editTitle(es), a.machine.RenderEdit(*es, a.catalog.Names()))
}

// cancel leaves the group editor, or else a pending search prompt.
func (a *Assistant) cancel(ctx context.Context, userID string, p ports.Presenter) error {
	_, err := a.sessions.EndEdit(ctx, userID)
	if err == nil {
		return p.SendText(ctx, userID, MsgEditCancelled)
	}
	if !errors.Is(err, domain.ErrNoEditSession) {
		return a.reply(ctx, userID, err, p)
	}

	var wasAwaiting bool
	s, err := a.sessions.Update(ctx, userID, func(s *domain.SelectionSession) error {
		if s.Phase.Awaiting() {
			wasAwaiting = true
			s.Phase = domain.Browsing(domain.Filter{})
		}
		return nil
	})
	if err != nil {
		return a.reply(ctx, userID, err, p)
	}
	if !wasAwaiting {
		return p.SendText(ctx, userID, MsgNothingToStop)
	}
	return p.PresentChoices(ctx, userID, MsgChoose, a.machine.Render(*s, a.selectionCatalog()))
}

func (a *Assistant) groupListing() string {
	list := a.groups.List()
	if len(list) == 0 {
		return MsgNoGroups
	}
	var b strings.Builder
	for i, g := range list {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", g.Name, memberList(g.Members))
	}
	return b.String()
}

func (a *Assistant) groupSummary(name string) string {
	g, err := a.groups.Get(name)
	if err != nil {
		return UserMessage(err)
	}
	return fmt.Sprintf("Group %s: %s", g.Name, memberList(g.Members))
}

func memberList(members []string) string {
	if len(members) == 0 {
		return "(empty)"
	}
	return strings.Join(members, ", ")
}
