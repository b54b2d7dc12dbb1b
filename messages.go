package rulecraft

import (
	"errors"
	"fmt"

	"github.com/aretw0/rulecraft/pkg/domain"
)

// Fixed replies.
const (
	MsgStart = "Send a link to your node list (a GitHub gist or raw.githubusercontent.com file), " +
		"then tick the rule categories you need and press Generate."
	MsgChoose        = "Choose the rule categories to route:"
	MsgSearchPrompt  = "Send the text to search for."
	MsgNoGroups      = "No groups defined yet."
	MsgEditBusy      = "You are editing a group. Save or cancel it first (/cancel)."
	MsgEditCancelled = "Group edit cancelled."
	MsgNothingToStop = "Nothing to cancel."
	MsgUnknownCmd    = "Unknown command. Send /help for the list."
)

// MsgHelp lists the commands. It is Markdown so terminals can render it.
const MsgHelp = `# Commands

- ` + "`/start`" + ` how to begin
- ` + "`/groups`" + ` list category groups
- ` + "`/newgroup <name> [rules...]`" + ` create a group
- ` + "`/addrules <name> <rules...>`" + ` add rules to a group
- ` + "`/removerules <name> <rules...>`" + ` remove rules from a group
- ` + "`/deletegroup <name>`" + ` delete a group
- ` + "`/editgroup <name>`" + ` edit a group with buttons
- ` + "`/cancel`" + ` leave the group editor or the search prompt
`

// UserMessage turns any error into one sentence fit for the user.
func UserMessage(err error) string {
	msg, _ := describe(err)
	return msg
}

// describe reports the user sentence for err and whether err is one the
// assistant expects, as opposed to an infrastructure failure.
func describe(err error) (string, bool) {
	var (
		pre  *domain.PreconditionError
		mal  *domain.MalformedNodeError
		fe   *domain.FetchError
		cse  *domain.CategorySourceError
		perr *domain.PersistenceError
	)
	switch {
	case err == nil:
		return "", true
	case errors.As(err, &pre):
		if pre.Missing == domain.RequireSource {
			return "Send a node list link first.", true
		}
		return "Choose at least one rule category first.", true
	case errors.As(err, &mal):
		if mal.Line > 0 {
			return fmt.Sprintf("The node list is malformed at line %d: %s.", mal.Line, mal.Reason), true
		}
		return fmt.Sprintf("The node list is malformed: %s.", mal.Reason), true
	case errors.As(err, &fe):
		var rse *RuleSetError
		if errors.As(err, &rse) {
			return fetchMessage(fe, rse.Category), true
		}
		return fetchMessage(fe, ""), true
	case errors.As(err, &cse):
		return "The category list is unavailable right now, try again later.", true
	case errors.As(err, &perr):
		return fmt.Sprintf("Could not save group %s; nothing was changed.", perr.Group), true
	case errors.Is(err, domain.ErrNotASource):
		return "That is not a valid node list link. Send a GitHub gist or raw.githubusercontent.com link.", true
	case errors.Is(err, domain.ErrUnknownAction):
		return "That button is no longer valid.", true
	case errors.Is(err, domain.ErrNoEditSession):
		return "No group edit in progress.", true
	case errors.Is(err, domain.ErrGroupNotFound):
		return "No such group.", true
	case errors.Is(err, domain.ErrGroupExists):
		return "That group already exists.", true
	case errors.Is(err, ErrInputTooLarge):
		return "That message is too long.", true
	case errors.Is(err, ErrInvalidUTF8):
		return "That message is not valid text.", true
	}
	return "Something went wrong, please try again.", false
}

func fetchMessage(fe *domain.FetchError, category string) string {
	what := "the node list"
	switch fe.Kind {
	case domain.FetchRuleBody:
		what = "a rule set"
		if category != "" {
			what = "the rule set for " + category
		}
	case domain.FetchListing:
		what = "the category list"
	}
	switch {
	case fe.Timeout():
		return fmt.Sprintf("Timed out fetching %s.", what)
	case fe.Status != 0:
		return fmt.Sprintf("Could not fetch %s (HTTP %d).", what, fe.Status)
	}
	return fmt.Sprintf("Could not fetch %s.", what)
}
