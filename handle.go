package rulecraft

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/ports"
	"github.com/aretw0/rulecraft/pkg/selection"
)

// HandleText processes one free-text message from userID.
//
// Commands start with "/". Anything else goes, in order, to an open group
// editor, to a pending search prompt, or is taken as a node list link.
func (a *Assistant) HandleText(ctx context.Context, userID, text string, p ports.Presenter) error {
	text, err := sanitizeInput(text)
	if err != nil {
		return a.reply(ctx, userID, err, p)
	}
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "/") {
		return a.command(ctx, userID, text, p)
	}

	if _, editing := a.sessions.Edit(userID); editing {
		handled, err := a.editText(ctx, userID, text, p)
		if handled || err != nil {
			return err
		}
	}

	var sourced bool
	s, err := a.sessions.Update(ctx, userID, func(s *domain.SelectionSession) error {
		if next, ok := a.machine.ReceiveText(*s, text); ok {
			*s = next
			return nil
		}
		next, err := a.machine.SetSource(*s, text)
		if err != nil {
			return err
		}
		*s = next
		sourced = true
		return nil
	})
	if err != nil {
		return a.reply(ctx, userID, err, p)
	}
	if sourced {
		a.logger.Debug("Source set", "user_id", userID, "source", s.Source)
		if a.catalog.Len() == 0 {
			if err := p.SendText(ctx, userID, UserMessage(&domain.CategorySourceError{})); err != nil {
				return err
			}
		}
	}
	return p.PresentChoices(ctx, userID, MsgChoose, a.machine.Render(*s, a.selectionCatalog()))
}

// editText feeds text to the group editor. It reports false when the edit
// session ended in the meantime.
func (a *Assistant) editText(ctx context.Context, userID, text string, p ports.Presenter) (bool, error) {
	var consumed bool
	es, err := a.sessions.UpdateEdit(ctx, userID, func(es *domain.GroupEditSession) error {
		next, ok := a.machine.ReceiveEditText(*es, text)
		*es = next
		consumed = ok
		return nil
	})
	switch {
	case errors.Is(err, domain.ErrNoEditSession):
		return false, nil
	case err != nil:
		return true, a.reply(ctx, userID, err, p)
	case !consumed:
		return true, p.SendText(ctx, userID, MsgEditBusy)
	}
	return true, p.PresentChoices(ctx, userID, editTitle(es), a.machine.RenderEdit(*es, a.catalog.Names()))
}

// HandleAction processes one button press. data is the encoded action.
func (a *Assistant) HandleAction(ctx context.Context, userID, data string, p ports.Presenter) error {
	act, err := domain.DecodeAction(data)
	if err != nil {
		a.emitAction(ctx, userID, data, err)
		return a.reply(ctx, userID, err, p)
	}
	if act.Editor() {
		return a.editAction(ctx, userID, act, p)
	}
	return a.selectAction(ctx, userID, act, p)
}

func (a *Assistant) selectAction(ctx context.Context, userID string, act domain.Action, p ports.Presenter) error {
	cat := a.selectionCatalog()

	var effect selection.Effect
	s, err := a.sessions.Update(ctx, userID, func(s *domain.SelectionSession) error {
		next, eff, err := a.machine.Apply(*s, act, cat)
		if err != nil {
			return err
		}
		*s = next
		effect = eff
		return nil
	})
	a.emitAction(ctx, userID, act.Encode(), err)
	if err != nil {
		return a.reply(ctx, userID, err, p)
	}

	switch effect {
	case selection.EffectRerender:
		return p.UpdateChoices(ctx, userID, a.machine.Render(*s, cat))
	case selection.EffectPromptSearch:
		return p.SendText(ctx, userID, MsgSearchPrompt)
	case selection.EffectGenerate:
		return a.generateFor(ctx, s, p)
	}
	return nil
}

func (a *Assistant) editAction(ctx context.Context, userID string, act domain.Action, p ports.Presenter) error {
	categories := a.catalog.Names()

	var effect selection.Effect
	es, err := a.sessions.UpdateEdit(ctx, userID, func(es *domain.GroupEditSession) error {
		next, eff, err := a.machine.ApplyEdit(*es, act, categories)
		if err != nil {
			return err
		}
		*es = next
		effect = eff
		return nil
	})
	a.emitAction(ctx, userID, act.Encode(), err)
	if err != nil {
		return a.reply(ctx, userID, err, p)
	}

	switch effect {
	case selection.EffectRerender:
		return p.UpdateChoices(ctx, userID, a.machine.RenderEdit(*es, categories))
	case selection.EffectPromptSearch:
		return p.SendText(ctx, userID, MsgSearchPrompt)
	case selection.EffectSave:
		// The editor stays open when the write fails so the user can retry.
		if err := a.groups.Replace(ctx, es.Group, es.Members); err != nil {
			return a.reply(ctx, userID, err, p)
		}
		if _, err := a.sessions.EndEdit(ctx, userID); err != nil && !errors.Is(err, domain.ErrNoEditSession) {
			return err
		}
		if err := p.UpdateChoices(ctx, userID, domain.View{}); err != nil {
			return err
		}
		return p.SendText(ctx, userID, fmt.Sprintf("Group %s saved with %d rules.", es.Group, len(es.Members)))
	case selection.EffectCancel:
		if _, err := a.sessions.EndEdit(ctx, userID); err != nil && !errors.Is(err, domain.ErrNoEditSession) {
			return err
		}
		if err := p.UpdateChoices(ctx, userID, domain.View{}); err != nil {
			return err
		}
		return p.SendText(ctx, userID, MsgEditCancelled)
	}
	return nil
}

// reply answers err with its user message. Expected failures end there;
// anything else is logged and returned as well.
func (a *Assistant) reply(ctx context.Context, userID string, err error, p ports.Presenter) error {
	msg, expected := describe(err)
	if sendErr := p.SendText(ctx, userID, msg); sendErr != nil {
		return errors.Join(err, sendErr)
	}
	if expected {
		return nil
	}
	a.logger.Error("Request failed", "user_id", userID, "err", err)
	return err
}

func (a *Assistant) emitAction(ctx context.Context, userID, action string, err error) {
	if a.hooks.OnAction == nil {
		return
	}
	a.hooks.OnAction(ctx, &domain.ActionEvent{
		EventBase: domain.EventBase{Timestamp: a.now(), Type: domain.EventAction, UserID: userID},
		Action:    action,
		Err:       err,
	})
}

func editTitle(es *domain.GroupEditSession) string {
	return fmt.Sprintf("Editing group %s (%d rules):", es.Group, len(es.Members))
}
