package domain

// RowKind tags a row of the render model.
type RowKind string

const (
	RowCategories     RowKind = "categories"
	RowPagination     RowKind = "pagination"
	RowGroups         RowKind = "groups"
	RowGroupPaging    RowKind = "group_pagination"
	RowAlphabet       RowKind = "alphabet"
	RowSearch         RowKind = "search"
	RowGenerate       RowKind = "generate"
	RowEditorControls RowKind = "editor_controls"
)

// Button is one pressable choice. Data is the encoded Action.
type Button struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// Row is one line of buttons.
type Row struct {
	Kind    RowKind  `json:"kind"`
	Buttons []Button `json:"buttons"`
}

// View is the render model of a choice surface, ordered top to bottom.
type View struct {
	Rows []Row `json:"rows"`
}

// Empty reports whether there is nothing to draw (e.g. after an editor closes).
func (v View) Empty() bool {
	return len(v.Rows) == 0
}

// RowsOf returns the rows with the given kind.
func (v View) RowsOf(kind RowKind) []Row {
	var out []Row
	for _, r := range v.Rows {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Buttons flattens every button of the given row kind.
func (v View) Buttons(kind RowKind) []Button {
	var out []Button
	for _, r := range v.RowsOf(kind) {
		out = append(out, r.Buttons...)
	}
	return out
}
