package reservation

import (
	"testing"

	"github.com/cuemby/clustersim/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func totalOf(t *testing.T, m *Map) resource.Resource {
	t.Helper()
	return m.Total()
}

// checkInvariants walks the map and asserts §4.2's four invariants.
func checkInvariants(t *testing.T, m *Map) {
	t.Helper()
	prevTime := -1
	var prevVal resource.Resource
	hasPrev := false
	var lastVal resource.Resource
	n := 0
	for e := m.points.Front(); e != nil; e = e.Next() {
		p := e.Value.(*point)
		n++
		if !hasPrev {
			require.Equal(t, 0, p.Time, "map must begin at key 0")
		} else {
			require.Greater(t, p.Time, prevTime, "breakpoints must be strictly increasing")
			require.NotEqual(t, prevVal, p.Value, "adjacent entries must differ")
		}
		require.True(t, resource.Zero.LessEq(p.Value), "value must be >= 0")
		require.True(t, p.Value.LessEq(totalOf(t, m)), "value must be <= total")
		prevTime, prevVal, hasPrev = p.Time, p.Value, true
		lastVal = p.Value
	}
	require.Greater(t, n, 0, "map must be non-empty")
	require.True(t, lastVal.Equal(totalOf(t, m)), "terminal value must equal total")
}

func TestNewMapInvariants(t *testing.T) {
	m := New(resource.Resource{CPU: 8, Mem: 32})
	checkInvariants(t, m)
	assert.Equal(t, resource.Resource{CPU: 8, Mem: 32}, m.AvailAt(0))
	assert.Equal(t, resource.Resource{CPU: 8, Mem: 32}, m.AvailAt(1_000_000))
}

func TestReserveSplitsAndCoalesces(t *testing.T) {
	m := New(resource.Resource{CPU: 8, Mem: 0})
	m.Reserve(resource.Resource{CPU: 4}, 10, 20)
	checkInvariants(t, m)

	assert.Equal(t, resource.Resource{CPU: 8}, m.AvailAt(0))
	assert.Equal(t, resource.Resource{CPU: 8}, m.AvailAt(9))
	assert.Equal(t, resource.Resource{CPU: 4}, m.AvailAt(10))
	assert.Equal(t, resource.Resource{CPU: 4}, m.AvailAt(19))
	assert.Equal(t, resource.Resource{CPU: 8}, m.AvailAt(20))
	assert.Equal(t, resource.Resource{CPU: 8}, m.AvailAt(1000))
}

func TestReserveOverlappingNarrows(t *testing.T) {
	m := New(resource.Resource{CPU: 8})
	m.Reserve(resource.Resource{CPU: 4}, 0, 100)
	m.Reserve(resource.Resource{CPU: 4}, 10, 20)
	checkInvariants(t, m)

	assert.Equal(t, resource.Resource{CPU: 4}, m.AvailAt(0))
	assert.Equal(t, resource.Resource{CPU: 0}, m.AvailAt(10))
	assert.Equal(t, resource.Resource{CPU: 0}, m.AvailAt(19))
	assert.Equal(t, resource.Resource{CPU: 4}, m.AvailAt(20))
	assert.Equal(t, resource.Resource{CPU: 8}, m.AvailAt(100))
}

// TestReserveInverseRestores covers the round-trip property from §8:
// reserve(req, [L,R)) followed by reserve(-req, [L,R)) restores the
// original map.
func TestReserveInverseRestores(t *testing.T) {
	m := New(resource.Resource{CPU: 8, Mem: 32})
	m.Reserve(resource.Resource{CPU: 4, Mem: 8}, 5, 15)
	m.Reserve(resource.Resource{CPU: -4, Mem: -8}, 5, 15)
	checkInvariants(t, m)

	want := New(resource.Resource{CPU: 8, Mem: 32})
	assert.Equal(t, want.points.Len(), m.points.Len())
	for t0 := 0; t0 < 30; t0++ {
		assert.Equal(t, want.AvailAt(t0), m.AvailAt(t0))
	}
}

func TestRebuildIdempotent(t *testing.T) {
	m := New(resource.Resource{CPU: 8})
	reservations := []Reservation{
		{Start: 0, End: 10, Req: resource.Resource{CPU: 4}},
		{Start: 5, End: 20, Req: resource.Resource{CPU: 2}},
	}
	m.Rebuild(reservations)
	checkInvariants(t, m)
	first := make([]point, 0)
	for e := m.points.Front(); e != nil; e = e.Next() {
		first = append(first, *e.Value.(*point))
	}

	m.Rebuild(reservations)
	checkInvariants(t, m)
	second := make([]point, 0)
	for e := m.points.Front(); e != nil; e = e.Next() {
		second = append(second, *e.Value.(*point))
	}

	assert.Equal(t, first, second, "rebuild() twice must produce an identical map")
}

func TestQueryInfeasibleIntervals(t *testing.T) {
	m := New(resource.Resource{CPU: 8})
	m.Reserve(resource.Resource{CPU: 8}, 0, 100)

	intervals := m.QueryInfeasibleIntervals(resource.Resource{CPU: 4}, 0)
	require.Len(t, intervals, 1)
	assert.Equal(t, Interval{L: 0, R: 100}, intervals[0])

	// From inside the infeasible window, clipped to `from`.
	intervals = m.QueryInfeasibleIntervals(resource.Resource{CPU: 4}, 50)
	require.Len(t, intervals, 1)
	assert.Equal(t, Interval{L: 50, R: 100}, intervals[0])

	// A request that always fits produces no infeasible intervals.
	assert.Empty(t, m.QueryInfeasibleIntervals(resource.Resource{}, 0))
}

func TestQueryInfeasibleIntervalsUnboundedTail(t *testing.T) {
	m := New(resource.Resource{CPU: 4})
	m.Reserve(resource.Resource{CPU: 4}, 10, 20)
	// After 20, capacity returns to total (4) which is feasible for a
	// request of 4, so there should be no unbounded tail here -- to get
	// an unbounded tail we need an infeasible request against the full
	// node (impossible, since total always fits itself), so instead we
	// verify the terminal segment (t=20 onward) is feasible and only the
	// [10,20) window is reported.
	intervals := m.QueryInfeasibleIntervals(resource.Resource{CPU: 4}, 0)
	require.Len(t, intervals, 1)
	assert.Equal(t, Interval{L: 10, R: 20}, intervals[0])
}

func TestReservePanicsOnInvalidInterval(t *testing.T) {
	m := New(resource.Resource{CPU: 8})
	assert.Panics(t, func() { m.Reserve(resource.Resource{CPU: 1}, 10, 10) })
	assert.Panics(t, func() { m.Reserve(resource.Resource{CPU: 1}, 10, 5) })
}
