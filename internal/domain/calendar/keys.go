package calendar

type Key string

const (
	KeyArrowLeft  Key = "ArrowLeft"
	KeyArrowRight Key = "ArrowRight"
	KeyArrowUp    Key = "ArrowUp"
	KeyArrowDown  Key = "ArrowDown"
	KeyHome       Key = "Home"
	KeyEnd        Key = "End"
	KeyPageUp     Key = "PageUp"
	KeyPageDown   Key = "PageDown"
	KeyEnter      Key = "Enter"
	KeySpace      Key = " "
	KeyEscape     Key = "Escape"
)

type ActionKind string

const (
	ActionNone        ActionKind = "none"
	ActionFocus       ActionKind = "focus"
	ActionSelect      ActionKind = "select"
	ActionChangeMonth ActionKind = "month"
	ActionBlur        ActionKind = "blur"
)

// Action is what a key press asks the owner of the grid to do.
type Action struct {
	Kind  ActionKind `json:"kind"`
	Date  Date       `json:"date,omitempty"`
	Month Date       `json:"month,omitempty"`
}

var none = Action{Kind: ActionNone}

// HandleKey resolves a key pressed while from has focus.
func (g *Grid) HandleKey(from Date, key Key) Action {
	cell, ok := g.Cell(from)
	if !ok {
		return none
	}

	switch key {
	case KeyArrowRight:
		return g.move(from, 1)
	case KeyArrowLeft:
		return g.move(from, -1)
	case KeyArrowDown:
		return g.move(from, 7)
	case KeyArrowUp:
		return g.move(from, -7)
	case KeyHome:
		if idx := from.MondayIndex(); idx > 0 {
			return g.move(from, -idx)
		}
		return g.focusIfSelectable(cell)
	case KeyEnd:
		if idx := from.MondayIndex(); idx < 6 {
			return g.move(from, 6-idx)
		}
		return g.focusIfSelectable(cell)
	case KeyPageUp:
		return Action{Kind: ActionChangeMonth, Month: g.Month.AddMonths(-1)}
	case KeyPageDown:
		return Action{Kind: ActionChangeMonth, Month: g.Month.AddMonths(1)}
	case KeyEnter, KeySpace:
		if cell.Selectable() {
			return Action{Kind: ActionSelect, Date: from}
		}
		return none
	case KeyEscape:
		return Action{Kind: ActionBlur}
	}
	return none
}

// Select is the pointer path: picking a day that is selectable.
func (g *Grid) Select(d Date) Action {
	if c, ok := g.Cell(d); ok && c.Selectable() {
		return Action{Kind: ActionSelect, Date: d}
	}
	return none
}

func (g *Grid) focusIfSelectable(c Cell) Action {
	if c.Selectable() {
		return Action{Kind: ActionFocus, Date: c.Date}
	}
	return none
}

// move walks in steps of step days until it finds a selectable day in the
// displayed month. Walking backwards past MinDate or leaving the month
// abandons the move.
func (g *Grid) move(from Date, step int) Action {
	candidate := from
	for i := 0; i < GridDays; i++ {
		candidate = candidate.AddDays(step)
		if g.MinDate != "" && candidate.Before(g.MinDate) {
			if step < 0 {
				return none
			}
			continue
		}
		if !candidate.SameMonth(g.Month) {
			return none
		}
		c, ok := g.Cell(candidate)
		if !ok {
			return none
		}
		if c.Selectable() {
			return Action{Kind: ActionFocus, Date: candidate}
		}
	}
	return none
}
