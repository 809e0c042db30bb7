package hunt

import "sort"

// Catalog is a game's puzzles. Stores return it sorted by ascending Order;
// the traversal helpers do not depend on that.
type Catalog []Puzzle

// NewCatalog copies puzzles and sorts the copy by order.
func NewCatalog(puzzles []Puzzle) Catalog {
	c := make(Catalog, len(puzzles))
	copy(c, puzzles)
	sort.SliceStable(c, func(i, j int) bool { return c[i].Order < c[j].Order })
	return c
}

func (c Catalog) Find(id string) (Puzzle, bool) {
	for _, p := range c {
		if p.ID == id {
			return p, true
		}
	}
	return Puzzle{}, false
}

func (c Catalog) ByOrder(order int) (Puzzle, bool) {
	for _, p := range c {
		if p.Order == order {
			return p, true
		}
	}
	return Puzzle{}, false
}

// Next returns the puzzle with the smallest order strictly greater than
// order.
func (c Catalog) Next(order int) (Puzzle, bool) {
	var next Puzzle
	found := false
	for _, p := range c {
		if p.Order > order && (!found || p.Order < next.Order) {
			next, found = p, true
		}
	}
	return next, found
}

// Prev returns the puzzle with the largest order strictly less than order.
func (c Catalog) Prev(order int) (Puzzle, bool) {
	var prev Puzzle
	found := false
	for _, p := range c {
		if p.Order < order && (!found || p.Order > prev.Order) {
			prev, found = p, true
		}
	}
	return prev, found
}

// MaxOrder is 0 for an empty catalog.
func (c Catalog) MaxOrder() int {
	m := 0
	for _, p := range c {
		m = max(m, p.Order)
	}
	return m
}
