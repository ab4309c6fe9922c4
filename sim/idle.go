package sim

// IdleGrid is the per-role pool of standing cells couriers wait in between
// pickups. The simulator owns one grid per role and hands cells out by index.
// Cells fill right to left, then top to bottom, from Origin.
type IdleGrid struct {
	cells []Vec2
	taken []bool
}

// NewIdleGrid lays out cfg.Cols x cfg.Rows free cells.
func NewIdleGrid(cfg IdleGridConfig) *IdleGrid {
	g := &IdleGrid{}
	for row := 0; row < cfg.Rows; row++ {
		for col := 0; col < cfg.Cols; col++ {
			g.cells = append(g.cells, V(cfg.Origin.X-float64(col)*cfg.Spacing, cfg.Origin.Y+float64(row)*cfg.Spacing))
		}
	}
	g.taken = make([]bool, len(g.cells))
	return g
}

// Claim hands out the lowest free cell.
func (g *IdleGrid) Claim() (int, Vec2, bool) {
	for i, taken := range g.taken {
		if !taken {
			g.taken[i] = true
			return i, g.cells[i], true
		}
	}
	return -1, Vec2{}, false
}

// Release returns a cell to the pool. Out-of-range indexes are ignored.
func (g *IdleGrid) Release(i int) {
	if i >= 0 && i < len(g.taken) {
		g.taken[i] = false
	}
}
