package selection

import (
	"fmt"
	"strings"

	"github.com/aretw0/rulecraft/pkg/domain"
)

// ApplyEdit runs one group editor action against the full category universe.
func (m Machine) ApplyEdit(es domain.GroupEditSession, a domain.Action, categories []string) (domain.GroupEditSession, Effect, error) {
	es = *es.Snapshot()

	switch a.Kind {
	case domain.ActionEditToggle:
		es.Members = domain.Toggle(es.Members, a.Item)
		return es, EffectRerender, nil

	case domain.ActionEditNextPage, domain.ActionEditPrevPage:
		items := es.Phase.ActiveFilter().Apply(categories)
		page, moved := step(es.Page, len(items), m.PageSize, a.Kind == domain.ActionEditNextPage)
		es.Page = page
		return es, effectOf(moved), nil

	case domain.ActionEditSearch:
		es.Phase = domain.AwaitingFilter()
		return es, EffectPromptSearch, nil

	case domain.ActionEditClearFilter:
		es.Phase = domain.Browsing(domain.Filter{})
		es.Page = 0
		return es, EffectRerender, nil

	case domain.ActionEditSave:
		return es, EffectSave, nil

	case domain.ActionEditCancel:
		return es, EffectCancel, nil
	}

	return es, EffectNone, fmt.Errorf("%w: %s is not an editor action", domain.ErrUnknownAction, a.Kind)
}

// ReceiveEditText consumes a filter term for the editor. It reports false
// when the editor is not awaiting one.
func (m Machine) ReceiveEditText(es domain.GroupEditSession, text string) (domain.GroupEditSession, bool) {
	if !es.Phase.Awaiting() {
		return es, false
	}
	es = *es.Snapshot()
	es.Phase = domain.Browsing(domain.SubstringFilter(strings.TrimSpace(text)))
	es.Page = 0
	return es, true
}

// RenderEdit builds the editor surface for es.
func (m Machine) RenderEdit(es domain.GroupEditSession, categories []string) domain.View {
	var v domain.View

	items := es.Phase.ActiveFilter().Apply(categories)
	visible, page := pageOf(items, es.Page, m.PageSize)
	v.Rows = append(v.Rows, categoryRows(visible, es.IsMember, domain.ActionEditToggle)...)
	if row, ok := pagingRow(domain.RowPagination, page, len(items), m.PageSize, domain.ActionEditPrevPage, domain.ActionEditNextPage); ok {
		v.Rows = append(v.Rows, row)
	}

	v.Rows = append(v.Rows, searchRow(es.Phase, domain.ActionEditSearch, domain.ActionEditClearFilter))
	v.Rows = append(v.Rows, domain.Row{
		Kind: domain.RowEditorControls,
		Buttons: []domain.Button{
			button(LabelSave, domain.Action{Kind: domain.ActionEditSave}),
			button(LabelCancel, domain.Action{Kind: domain.ActionEditCancel}),
		},
	})
	return v
}
