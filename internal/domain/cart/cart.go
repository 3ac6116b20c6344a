package cart

// Cart is an ordered collection of lines, unique by product id. Insertion order is
// preserved and shown to the shopper.
//
// Every method keeps 1 <= Quantity <= MaxQuantity for all lines; invalid input is
// normalized instead of rejected.
type Cart struct {
	lines []Line
}

// New builds a cart from already validated lines (see DecodeSnapshot).
func New(lines []Line) Cart {
	c := Cart{lines: make([]Line, 0, len(lines))}
	for _, line := range lines {
		if line.ProductID == "" || c.indexOf(line.ProductID) >= 0 {
			continue
		}
		line.Quantity = ClampQuantity(line.Quantity)
		c.lines = append(c.lines, line)
	}
	return c
}

// Add merges quantity into an existing line or appends a new one. A quantity below 1
// counts as 1. The resulting line is returned.
func (c *Cart) Add(p Product, quantity int) Line {
	if quantity < MinQuantity {
		quantity = MinQuantity
	}

	if idx := c.indexOf(p.ID); idx >= 0 {
		c.lines[idx].Quantity = min(c.lines[idx].Quantity+quantity, MaxQuantity)
		return c.lines[idx]
	}

	line := newLine(p, quantity)
	c.lines = append(c.lines, line)
	return line
}

// Remove drops the line for id and reports whether one existed.
func (c *Cart) Remove(id ProductID) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	return true
}

// SetQuantity behaves like Remove when quantity <= 0 and otherwise clamps it onto the
// existing line. Unknown ids are ignored; the bool reports whether a line matched.
func (c *Cart) SetQuantity(id ProductID, quantity int) (Line, bool) {
	if quantity <= 0 {
		idx := c.indexOf(id)
		if idx < 0 {
			return Line{}, false
		}
		line := c.lines[idx]
		c.Remove(id)
		line.Quantity = 0
		return line, true
	}

	idx := c.indexOf(id)
	if idx < 0 {
		return Line{}, false
	}
	c.lines[idx].Quantity = ClampQuantity(quantity)
	return c.lines[idx], true
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy in insertion order.
func (c Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c Cart) Find(id ProductID) (Line, bool) {
	idx := c.indexOf(id)
	if idx < 0 {
		return Line{}, false
	}
	return c.lines[idx], true
}

func (c Cart) Contains(id ProductID) bool {
	return c.indexOf(id) >= 0
}

// QuantityOf returns 0 for ids not in the cart.
func (c Cart) QuantityOf(id ProductID) int {
	line, _ := c.Find(id)
	return line.Quantity
}

func (c Cart) Len() int {
	return len(c.lines)
}

func (c Cart) ItemCount() int {
	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

func (c Cart) Totals() Totals {
	return ComputeTotals(c.lines)
}

func (c Cart) indexOf(id ProductID) int {
	for i, line := range c.lines {
		if line.ProductID == id {
			return i
		}
	}
	return -1
}
