// Implements the box pile and the slot pool couriers queue in to reach it.
// Rows are independent directional queues; couriers join at the tail and
// advance one slot per compaction pass until they hold slot 0.

package sim

import (
	"fmt"
	"math/rand"
	"strings"
)

// BoxPile is the shared stock of unsorted boxes trucks unload into.
type BoxPile struct {
	Position Vec2
	Boxes    int // never negative
}

// Add puts n boxes on the pile. Non-positive n is ignored.
func (p *BoxPile) Add(n int) {
	if n > 0 {
		p.Boxes += n
	}
}

// Take removes up to n boxes and returns how many were actually taken.
// The count saturates at zero.
func (p *BoxPile) Take(n int) int {
	if n <= 0 || p.Boxes <= 0 {
		return 0
	}
	taken := min(n, p.Boxes)
	p.Boxes -= taken
	return taken
}

// SlotRef is a handle to one slot of one queue row.
type SlotRef struct {
	Row   int `json:"row"`
	Index int `json:"index"`
}

// NoSlot is the zero handle: the courier holds no slot.
var NoSlot = SlotRef{Row: -1, Index: -1}

// Held reports whether the handle refers to a slot.
func (r SlotRef) Held() bool {
	return r.Row >= 0 && r.Index >= 0
}

func (r SlotRef) String() string {
	if !r.Held() {
		return "none"
	}
	return fmt.Sprintf("r%d/s%d", r.Row, r.Index)
}

// occupant is what a slot stores about its holder.
type occupant struct {
	id   CourierID
	role Role
}

var vacant = occupant{id: NoCourier}

type queueRow struct {
	dir   Vec2 // unit direction away from the pile
	role  Role // "" admits every role
	slots []occupant
	dirty bool // claimed, released or hopped since the last pass
}

func (r *queueRow) admits(role Role) bool {
	return r.role == "" || r.role == role
}

// SlotPool is the set of queue rows around the box pile.
// Each slot is exclusively held by at most one courier.
//
// Thread-safety: NOT thread-safe. Owned by the tick goroutine.
type SlotPool struct {
	rows    []*queueRow
	spacing float64
	origin  Vec2
}

// NewSlotPool builds an empty pool from a validated QueueConfig.
// Panics on a config that Validate would reject.
func NewSlotPool(cfg QueueConfig) *SlotPool {
	if len(cfg.Rows) == 0 || cfg.Slots <= 0 {
		panic(fmt.Sprintf("NewSlotPool: need rows>0 and slots>0, got rows=%d slots=%d", len(cfg.Rows), cfg.Slots))
	}
	p := &SlotPool{spacing: cfg.Spacing}
	for _, rc := range cfg.Rows {
		dir := rc.Direction
		if l := dir.Len(); l > 0 {
			dir = dir.Scale(1 / l)
		}
		row := &queueRow{dir: dir, role: rc.Role, slots: make([]occupant, cfg.Slots)}
		for i := range row.slots {
			row.slots[i] = vacant
		}
		p.rows = append(p.rows, row)
	}
	return p
}

// Rows returns the number of rows.
func (p *SlotPool) Rows() int { return len(p.rows) }

// Slots returns the number of slots per row.
func (p *SlotPool) Slots() int { return len(p.rows[0].slots) }

// SetOrigin anchors the rows to the pile position.
func (p *SlotPool) SetOrigin(v Vec2) { p.origin = v }

// Position returns the scene coordinate of a slot.
func (p *SlotPool) Position(ref SlotRef) Vec2 {
	row := p.rows[ref.Row]
	return p.origin.Add(row.dir.Scale(p.spacing * float64(ref.Index+1)))
}

// Occupant returns the courier holding ref, or NoCourier.
func (p *SlotPool) Occupant(ref SlotRef) CourierID {
	if !p.valid(ref) {
		return NoCourier
	}
	return p.rows[ref.Row].slots[ref.Index].id
}

func (p *SlotPool) valid(ref SlotRef) bool {
	return ref.Row >= 0 && ref.Row < len(p.rows) && ref.Index >= 0 && ref.Index < len(p.rows[ref.Row].slots)
}

// EligibleRows lists rows whose tail slot is free and which admit role.
func (p *SlotPool) EligibleRows(role Role) []int {
	var rows []int
	for i, row := range p.rows {
		if row.admits(role) && row.slots[len(row.slots)-1].id == NoCourier {
			rows = append(rows, i)
		}
	}
	return rows
}

// Claim gives courier id the tail slot of one eligible row, chosen uniformly
// at random with rng. Only the tail may be claimed so couriers keep arrival
// order within a row. Returns NoSlot and false when no row is eligible.
func (p *SlotPool) Claim(id CourierID, role Role, rng *rand.Rand) (SlotRef, bool) {
	rows := p.EligibleRows(role)
	if len(rows) == 0 {
		return NoSlot, false
	}
	pick := rows[0]
	if len(rows) > 1 {
		pick = rows[rng.Intn(len(rows))]
	}
	row := p.rows[pick]
	tail := len(row.slots) - 1
	row.slots[tail] = occupant{id: id, role: role}
	row.dirty = true
	return SlotRef{Row: pick, Index: tail}, true
}

// Release frees ref. Panics if id does not hold it: a courier can only give
// up the slot it owns.
func (p *SlotPool) Release(ref SlotRef, id CourierID) {
	if !p.valid(ref) {
		panic(fmt.Sprintf("SlotPool.Release: invalid slot %v", ref))
	}
	row := p.rows[ref.Row]
	if row.slots[ref.Index].id != id {
		panic(fmt.Sprintf("SlotPool.Release: courier %d does not hold %v (holder %d)", id, ref, row.slots[ref.Index].id))
	}
	row.slots[ref.Index] = vacant
	row.dirty = true
}

// Compact runs one resolution pass over every row touched since the last
// pass (claim, release or hop). When slot i is empty and
// slot i+1 holds a courier the row admits, that courier advances to i.
// The ascending scan moves each courier at most one hop per pass.
// onMove is called for every hop so the caller can update back-references
// in the same step. Returns the number of hops.
func (p *SlotPool) Compact(onMove func(id CourierID, from, to SlotRef)) int {
	moves := 0
	for r, row := range p.rows {
		if !row.dirty {
			continue
		}
		moved := false
		for i := 0; i < len(row.slots)-1; i++ {
			if row.slots[i].id != NoCourier {
				continue
			}
			next := row.slots[i+1]
			if next.id == NoCourier || !row.admits(next.role) {
				continue
			}
			row.slots[i] = next
			row.slots[i+1] = vacant
			moves++
			moved = true
			if onMove != nil {
				onMove(next.id, SlotRef{Row: r, Index: i + 1}, SlotRef{Row: r, Index: i})
			}
			// the slot just vacated is refilled on the next pass
			i++
		}
		row.dirty = moved
	}
	return moves
}

// Occupied returns the number of held slots across all rows.
func (p *SlotPool) Occupied() int {
	n := 0
	for _, row := range p.rows {
		for _, o := range row.slots {
			if o.id != NoCourier {
				n++
			}
		}
	}
	return n
}

// Occupancy returns a copy of the per-row holders, NoCourier for free slots.
func (p *SlotPool) Occupancy() [][]CourierID {
	out := make([][]CourierID, len(p.rows))
	for r, row := range p.rows {
		out[r] = make([]CourierID, len(row.slots))
		for i, o := range row.slots {
			out[r][i] = o.id
		}
	}
	return out
}

func (p *SlotPool) String() string {
	var sb strings.Builder
	for r, row := range p.rows {
		if r > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString("[")
		for i, o := range row.slots {
			if i > 0 {
				sb.WriteString(" ")
			}
			if o.id == NoCourier {
				sb.WriteString("_")
			} else {
				sb.WriteString(fmt.Sprint(int(o.id)))
			}
		}
		sb.WriteString("]")
	}
	return sb.String()
}
