package selection

import (
	"github.com/aretw0/rulecraft/pkg/domain"
)

// Button labels.
const (
	LabelChosen    = "✅"
	LabelNotChosen = "⬜️"
	LabelGroup     = "📂"
	LabelPrev      = "⬅️ Prev"
	LabelNext      = "Next ➡️"
	LabelSearch    = "🔍 Search"
	LabelClear     = "❌ Clear"
	LabelGenerate  = "✅ Generate config"
	LabelSave      = "✅ Save"
	LabelCancel    = "Cancel"
)

// categoriesPerRow is how many category toggles share a row.
const categoriesPerRow = 2

func button(label string, a domain.Action) domain.Button {
	return domain.Button{Label: label, Data: a.Encode()}
}

func toggleLabel(on bool, name string) string {
	if on {
		return LabelChosen + " " + name
	}
	return LabelNotChosen + " " + name
}

// pageOf returns the visible window of items and the clamped page index.
func pageOf(items []string, page, size int) ([]string, int) {
	page = clampPage(page, len(items), size)
	start := page * size
	end := min(start+size, len(items))
	if start >= end {
		return nil, page
	}
	return items[start:end], page
}

func categoryRows(items []string, on func(string) bool, kind domain.ActionKind) []domain.Row {
	var rows []domain.Row
	for i := 0; i < len(items); i += categoriesPerRow {
		row := domain.Row{Kind: domain.RowCategories}
		for _, name := range items[i:min(i+categoriesPerRow, len(items))] {
			row.Buttons = append(row.Buttons, button(toggleLabel(on(name), name), domain.Action{Kind: kind, Item: name}))
		}
		rows = append(rows, row)
	}
	return rows
}

func pagingRow(kind domain.RowKind, page, n, size int, prev, next domain.ActionKind) (domain.Row, bool) {
	row := domain.Row{Kind: kind}
	if page > 0 {
		row.Buttons = append(row.Buttons, button(LabelPrev, domain.Action{Kind: prev}))
	}
	if (page+1)*size < n {
		row.Buttons = append(row.Buttons, button(LabelNext, domain.Action{Kind: next}))
	}
	return row, len(row.Buttons) > 0
}

// Render builds the choice surface for s. It is a pure function of its inputs.
func (m Machine) Render(s domain.SelectionSession, c Catalog) domain.View {
	var v domain.View

	items := s.Phase.ActiveFilter().Apply(c.Categories)
	visible, page := pageOf(items, s.Page, m.PageSize)
	v.Rows = append(v.Rows, categoryRows(visible, s.IsChosen, domain.ActionToggleCategory)...)
	if row, ok := pagingRow(domain.RowPagination, page, len(items), m.PageSize, domain.ActionPrevPage, domain.ActionNextPage); ok {
		v.Rows = append(v.Rows, row)
	}

	if len(c.Groups) > 0 {
		gpage := clampPage(s.GroupPage, len(c.Groups), m.GroupPageSize)
		start := gpage * m.GroupPageSize
		row := domain.Row{Kind: domain.RowGroups}
		for _, g := range c.Groups[start:min(start+m.GroupPageSize, len(c.Groups))] {
			label := LabelGroup + " " + g.Name
			if len(g.Members) > 0 && allChosen(s.Chosen, g.Members) {
				label = LabelChosen + " " + label
			}
			row.Buttons = append(row.Buttons, button(label, domain.Action{Kind: domain.ActionToggleGroup, Item: g.Name}))
		}
		v.Rows = append(v.Rows, row)
		if len(c.Groups) > m.GroupPageSize {
			if row, ok := pagingRow(domain.RowGroupPaging, gpage, len(c.Groups), m.GroupPageSize, domain.ActionPrevGroupPage, domain.ActionNextGroupPage); ok {
				v.Rows = append(v.Rows, row)
			}
		}
	}

	v.Rows = append(v.Rows, m.alphabetRows()...)
	v.Rows = append(v.Rows, searchRow(s.Phase, domain.ActionSearch, domain.ActionClearFilter))
	v.Rows = append(v.Rows, domain.Row{
		Kind:    domain.RowGenerate,
		Buttons: []domain.Button{button(LabelGenerate, domain.Action{Kind: domain.ActionGenerate})},
	})
	return v
}

func (m Machine) alphabetRows() []domain.Row {
	width := m.AlphabetRowWidth
	if width <= 0 {
		width = DefaultAlphabetRowWidth
	}
	var rows []domain.Row
	var row domain.Row
	for _, ch := range m.Alphabet {
		letter := string(ch)
		row.Buttons = append(row.Buttons, button(letter, domain.Action{Kind: domain.ActionLetter, Item: letter}))
		if len(row.Buttons) == width {
			row.Kind = domain.RowAlphabet
			rows = append(rows, row)
			row = domain.Row{}
		}
	}
	if len(row.Buttons) > 0 {
		row.Kind = domain.RowAlphabet
		rows = append(rows, row)
	}
	return rows
}

func searchRow(p domain.Phase, search, clear domain.ActionKind) domain.Row {
	row := domain.Row{
		Kind:    domain.RowSearch,
		Buttons: []domain.Button{button(LabelSearch, domain.Action{Kind: search})},
	}
	if p.ActiveFilter().Active() {
		row.Buttons = append(row.Buttons, button(LabelClear, domain.Action{Kind: clear}))
	}
	return row
}
