package calendar

const (
	GridDays  = 42
	GridWeeks = 6
)

type Cell struct {
	Date     Date
	Outside  bool
	State    DayState
	Selected bool
	TabStop  bool
}

// Selectable reports whether the cell can receive focus or be picked.
func (c Cell) Selectable() bool {
	return !c.Outside && !c.State.Disabled
}

// AriaLabel joins the long date with the cell's reason or info.
func (c Cell) AriaLabel(longDate func(Date) string) string {
	label := string(c.Date)
	if longDate != nil {
		label = longDate(c.Date)
	}
	if note := c.State.Note(); note != "" {
		label += " — " + note
	}
	return label
}

type GridParams struct {
	Month    Date
	MinDate  Date
	Selected Date
	Focused  Date
	State    StateFunc
}

// Grid is one rendered month: six Monday-first weeks with leading and
// trailing days from the neighbouring months.
type Grid struct {
	Month    Date
	MinDate  Date
	Selected Date
	Focus    Date
	Cells    []Cell

	index map[Date]int
}

func BuildGrid(p GridParams) *Grid {
	month := p.Month.StartOfMonth()
	start := month.AddDays(-month.MondayIndex())

	g := &Grid{
		Month:    month,
		MinDate:  p.MinDate,
		Selected: p.Selected,
		Cells:    make([]Cell, GridDays),
		index:    make(map[Date]int, GridDays),
	}

	for i := 0; i < GridDays; i++ {
		d := start.AddDays(i)
		cell := Cell{Date: d, Selected: d == p.Selected}
		if !d.SameMonth(month) {
			cell.Outside = true
			cell.State = DayState{Disabled: true, Code: CodeOutside}
		} else if p.State != nil {
			cell.State = p.State(d)
		}
		g.Cells[i] = cell
		g.index[d] = i
	}

	g.Focus = g.tabStop(p.Focused)
	if i, ok := g.index[g.Focus]; ok && g.Focus != "" {
		g.Cells[i].TabStop = true
	} else {
		g.Cells[0].TabStop = true
	}
	return g
}

// tabStop picks the single focus target: the requested focus, then the
// selection, then the first selectable day. Empty when nothing qualifies.
func (g *Grid) tabStop(focused Date) Date {
	if c, ok := g.Cell(focused); ok && c.Selectable() {
		return focused
	}
	if c, ok := g.Cell(g.Selected); ok && c.Selectable() {
		return g.Selected
	}
	for _, c := range g.Cells {
		if c.Selectable() {
			return c.Date
		}
	}
	return ""
}

func (g *Grid) Cell(d Date) (Cell, bool) {
	if d == "" {
		return Cell{}, false
	}
	i, ok := g.index[d]
	if !ok {
		return Cell{}, false
	}
	return g.Cells[i], true
}

// Weeks splits the cells into rows of seven.
func (g *Grid) Weeks() [][]Cell {
	weeks := make([][]Cell, 0, GridWeeks)
	for i := 0; i < len(g.Cells); i += 7 {
		weeks = append(weeks, g.Cells[i:i+7])
	}
	return weeks
}

// HasSelectable reports whether any day in the month can be picked.
func (g *Grid) HasSelectable() bool {
	for _, c := range g.Cells {
		if c.Selectable() {
			return true
		}
	}
	return false
}
