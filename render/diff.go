package render

// DefaultMergeGap is the widest run of unchanged cells rewritten instead of repositioning the cursor
const DefaultMergeGap = 3

// WriteOp is one cursor reposition followed by one batched write of cells
// Cells never begins with a continuation cell and always ends on a whole glyph
type WriteOp struct {
	Row   int
	Col   int
	Cells []Cell
}

// End returns the column after the last cell of the op
func (op WriteOp) End() int {
	return op.Col + len(op.Cells)
}

// Diff compares next against prev row by row and returns the runs that differ
// Runs separated by at most mergeGap unchanged cells are merged; grids of different
// size cannot be compared and yield a full repaint of next
// Returned cells alias next's storage; next must not be mutated afterwards
func Diff(prev, next *Grid, mergeGap int) []WriteOp {
	if next == nil {
		return nil
	}
	if prev == nil || !prev.SameSize(next) {
		return FullRepaint(next)
	}
	if mergeGap < 0 {
		mergeGap = 0
	}

	var ops []WriteOp
	for r := 0; r < next.rows; r++ {
		ops = diffRow(ops, r, prev.Row(r), next.Row(r), mergeGap)
	}
	return ops
}

// diffRow appends the ops for a single row
func diffRow(ops []WriteOp, row int, old, cur []Cell, mergeGap int) []WriteOp {
	cols := len(cur)
	start, end := -1, -1

	flush := func() {
		if start >= 0 {
			ops = append(ops, WriteOp{Row: row, Col: start, Cells: cur[start:end:end]})
		}
	}

	for c := 0; c < cols; {
		if old[c] == cur[c] {
			c++
			continue
		}

		s := c
		// A changed right half is redrawn through its left half
		if cur[s].IsContinuation() && s > 0 {
			s--
		}
		e := c + 1
		for e < cols && old[e] != cur[e] {
			e++
		}
		// A changed left half carries its right half along
		if e < cols && cur[e].IsContinuation() {
			e++
		}

		if start >= 0 && s-end <= mergeGap {
			if e > end {
				end = e
			}
		} else {
			flush()
			start, end = s, e
		}
		c = e
	}
	flush()
	return ops
}

// FullRepaint returns one op per row covering every cell of g
func FullRepaint(g *Grid) []WriteOp {
	if g == nil || g.cols == 0 {
		return nil
	}
	ops := make([]WriteOp, 0, g.rows)
	for r := 0; r < g.rows; r++ {
		ops = append(ops, WriteOp{Row: r, Col: 0, Cells: g.Row(r)})
	}
	return ops
}

// Apply writes ops into g as a terminal would, clipping out of range cells
func Apply(ops []WriteOp, g *Grid) {
	for _, op := range ops {
		for i, c := range op.Cells {
			g.Set(op.Row, op.Col+i, c)
		}
	}
}

// CellCount returns the total number of cells carried by ops
func CellCount(ops []WriteOp) int {
	n := 0
	for _, op := range ops {
		n += len(op.Cells)
	}
	return n
}

// DifferOptions configures a Differ
type DifferOptions struct {
	// ScrubInterval forces a full repaint every N frames, 0 disables
	ScrubInterval int
	// MergeGap is passed to Diff
	MergeGap int
}

// Differ owns the front grid and decides between incremental diff and scrub
// Not safe for concurrent use; the paint loop is its only owner
type Differ struct {
	front      *Grid
	opts       DifferOptions
	frames     uint64
	sinceScrub int
	forced     bool
	lastHash   uint64
}

// NewDiffer creates a differ whose front grid matches a freshly cleared terminal
func NewDiffer(rows, cols int, opts DifferOptions) *Differ {
	if opts.ScrubInterval < 0 {
		opts.ScrubInterval = 0
	}
	front := NewGrid(rows, cols)
	return &Differ{
		front:    front,
		opts:     opts,
		lastHash: front.Hash(),
	}
}

// Front returns the grid the terminal currently shows
func (d *Differ) Front() *Grid {
	return d.front
}

// Frames returns the number of frames passed through ApplyAndSwap
func (d *Differ) Frames() uint64 {
	return d.frames
}

// LastHash returns the glyph hash of the current front grid
func (d *Differ) LastHash() uint64 {
	return d.lastHash
}

// ForceScrub makes the next ApplyAndSwap emit a full repaint
func (d *Differ) ForceScrub() {
	d.forced = true
}

// Resize reallocates the front grid and forces a scrub
func (d *Differ) Resize(rows, cols int) {
	d.front = d.front.Resize(rows, cols)
	d.lastHash = d.front.Hash()
	d.forced = true
}

// ScrubDue reports whether the next frame will be a full repaint
// Counts both frames applied and ticks skipped since the last scrub
func (d *Differ) ScrubDue() bool {
	return d.forced || (d.opts.ScrubInterval > 0 && d.sinceScrub+1 >= d.opts.ScrubInterval)
}

// Skip records a paint tick that kept the front grid
// Skipped ticks count toward the scrub interval
func (d *Differ) Skip() {
	d.sinceScrub++
}

// ApplyAndSwap produces the ops turning front into next, then makes next the front
// Ownership of next transfers to the differ
func (d *Differ) ApplyAndSwap(next *Grid) (ops []WriteOp, scrubbed bool) {
	d.frames++
	d.sinceScrub++

	scrubbed = d.forced || !d.front.SameSize(next) ||
		(d.opts.ScrubInterval > 0 && d.sinceScrub >= d.opts.ScrubInterval)

	if scrubbed {
		ops = FullRepaint(next)
		d.sinceScrub = 0
		d.forced = false
	} else {
		ops = Diff(d.front, next, d.opts.MergeGap)
	}

	d.front = next
	d.lastHash = next.Hash()
	return ops, scrubbed
}
