// Package reservation implements the per-node interval-resource reservation
// engine: a piecewise-constant function avail(t) over simulated time,
// stored as an ordered breakpoint list, supporting insertion of a
// reservation over a half-open interval and querying infeasible intervals
// for a candidate request.
//
// The four invariants (§4.2 of the design) hold after every mutation:
//   - the map is non-empty and begins at key 0
//   - every stored value v satisfies (0,0) <= v <= total
//   - adjacent entries have distinct values
//   - the last entry's value equals total
package reservation

import (
	"container/list"
	"fmt"
	"math"

	"github.com/cuemby/clustersim/internal/resource"
)

// Inf is the sentinel used to represent an unbounded right endpoint --
// "capacity returns to full at +∞" per §4.2. It is large enough that no
// simulated-time arithmetic in this package will overflow against it.
const Inf = math.MaxInt32

// point is one breakpoint: avail(t) == Value for t in [Time, nextTime).
type point struct {
	Time  int
	Value resource.Resource
}

// Reservation describes one running job's claim on a node, used by
// Rebuild. Start/End are the half-open interval the job occupies.
type Reservation struct {
	Start int
	End   int
	Req   resource.Resource
}

// Interval is a maximal [L, R) window on which avail(t) fails to cover a
// requested resource. R == Inf marks the trailing unbounded interval.
type Interval struct {
	L int
	R int
}

// Map is one node's avail(t) function.
type Map struct {
	total  resource.Resource
	points *list.List // of *point, strictly increasing Time, points.Front().Value.Time == 0
}

// New creates a Map for a node with the given total capacity, with
// avail(t) == total for all t >= 0.
func New(total resource.Resource) *Map {
	m := &Map{total: total, points: list.New()}
	m.points.PushBack(&point{Time: 0, Value: total})
	return m
}

// Total returns the node's permanent capacity.
func (m *Map) Total() resource.Resource {
	return m.total
}

// Rebuild discards the map's contents and replays it from scratch: insert
// (0, total), then reserve each running job's interval. Per §4.2 this uses
// the pessimistic window (caller passes timelimit-based Reservations for
// already-running jobs) -- Rebuild itself is agnostic to that policy, it
// just replays whatever intervals it's given.
func (m *Map) Rebuild(reservations []Reservation) {
	m.points = list.New()
	m.points.PushBack(&point{Time: 0, Value: m.total})
	for _, r := range reservations {
		m.Reserve(r.Req, r.Start, r.End)
	}
}

// floor returns the element with the largest Time <= t. The map always has
// an entry at 0, so this never returns nil for t >= 0.
func (m *Map) floor(t int) *list.Element {
	var last *list.Element
	for e := m.points.Front(); e != nil; e = e.Next() {
		p := e.Value.(*point)
		if p.Time > t {
			break
		}
		last = e
	}
	if last == nil {
		panic("reservation: map missing (0, total) sentinel")
	}
	return last
}

// insertAfter inserts p immediately after at (or at the front if at is
// nil) and returns the new element.
func (m *Map) insertAfter(at *list.Element, p *point) *list.Element {
	if at == nil {
		return m.points.PushFront(p)
	}
	return m.points.InsertAfter(p, at)
}

// Reserve updates the map so that avail(t) -= req for t in [l, r). The
// caller guarantees 0 <= l < r.
func (m *Map) Reserve(req resource.Resource, l, r int) {
	if l < 0 || l >= r {
		panic(fmt.Sprintf("reservation: invalid interval [%d, %d)", l, r))
	}

	e := m.floor(l)
	for e != nil {
		p := e.Value.(*point)
		if p.Time >= r {
			break
		}

		segL := p.Time
		segR := Inf
		if next := e.Next(); next != nil {
			segR = next.Value.(*point).Time
		}
		origVal := p.Value
		following := e.Next()

		overlapL := max(segL, l)
		overlapR := min(segR, r)

		prev := e.Prev()
		m.points.Remove(e)
		at := prev

		if overlapL > segL {
			at = m.insertAfter(at, &point{Time: segL, Value: origVal})
		}
		if overlapL < overlapR {
			at = m.insertAfter(at, &point{Time: overlapL, Value: origVal.Sub(req)})
		}
		if overlapR < segR {
			at = m.insertAfter(at, &point{Time: overlapR, Value: origVal})
		}

		e = following
	}

	m.coalesce()
	m.assertTerminal()
}

// coalesce removes redundant adjacent breakpoints with equal values.
func (m *Map) coalesce() {
	for e := m.points.Front(); e != nil; {
		next := e.Next()
		if next == nil {
			break
		}
		if e.Value.(*point).Value.Equal(next.Value.(*point).Value) {
			m.points.Remove(next)
			continue // re-check e against its new next
		}
		e = next
	}
}

func (m *Map) assertTerminal() {
	back := m.points.Back()
	if back == nil {
		panic("reservation: empty map after mutation")
	}
	p := back.Value.(*point)
	if !p.Value.Equal(m.total) {
		panic(fmt.Sprintf("reservation: terminal value %v != total %v", p.Value, m.total))
	}
}

// AvailAt returns avail(t) for t >= 0.
func (m *Map) AvailAt(t int) resource.Resource {
	e := m.floor(t)
	return e.Value.(*point).Value
}

// QueryInfeasibleIntervals scans the map from the breakpoint covering
// `from` and emits every maximal interval on which avail(t) does not cover
// req (componentwise not->=), clipped to [from, +inf). Adjacent infeasible
// segments are merged into one interval. An interval that runs past the
// last breakpoint is returned with R == Inf.
func (m *Map) QueryInfeasibleIntervals(req resource.Resource, from int) []Interval {
	var out []Interval
	e := m.floor(from)
	for e != nil {
		p := e.Value.(*point)
		segL := p.Time
		segR := Inf
		if next := e.Next(); next != nil {
			segR = next.Value.(*point).Time
		}
		if !p.Value.GreaterEq(req) {
			l := segL
			if l < from {
				l = from
			}
			if l < segR {
				if n := len(out); n > 0 && out[n-1].R == l {
					out[n-1].R = segR
				} else {
					out = append(out, Interval{L: l, R: segR})
				}
			}
		}
		e = e.Next()
	}
	return out
}
