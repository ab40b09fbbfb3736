package zone

import (
	"math"
	"sync"
	"time"
)

// dwellDebounce filters single-tick flicker from noisy detection: an
// occupancy interval must exceed this to be recorded as a closed dwell.
const dwellDebounce = 100 * time.Millisecond

// DwellStats is a read-only view of one zone's dwell state.
type DwellStats struct {
	AvgDwellSeconds     float64 `json:"avg_dwell_seconds"`
	InteractionCount    int     `json:"interaction_count"`
	IsOccupied          bool    `json:"is_occupied"`
	CurrentDwellSeconds float64 `json:"current_dwell_seconds"`
}

// DwellTracker is a per-zone state machine over {idle, occupied}, keyed by
// zone list position. Update consumes an occupancy set each analytics tick;
// enter events increment the interaction count, leave events close a dwell
// interval. No operation fails: malformed indices are silently dropped so
// analytics never take down the live pipeline.
type DwellTracker struct {
	mu           sync.Mutex
	enterTime    []time.Time // zero value means idle
	closedDwells [][]time.Duration
	interactions []int
	lastOccupied map[int]struct{}
}

// NewDwellTracker creates an all-idle tracker for n zones.
func NewDwellTracker(n int) *DwellTracker {
	if n < 0 {
		n = 0
	}
	return &DwellTracker{
		enterTime:    make([]time.Time, n),
		closedDwells: make([][]time.Duration, n),
		interactions: make([]int, n),
		lastOccupied: make(map[int]struct{}),
	}
}

// Update is the single mutating entry point, called once per analytics tick.
// It sweeps every zone index even when the occupied set is empty, so dwells
// close correctly when everyone leaves. It returns the entered and left
// index deltas relative to the previous tick, computed atomically with the
// state transition.
func (t *DwellTracker) Update(occupied map[int]struct{}, now time.Time) (entered, left []int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.enterTime)
	current := make(map[int]struct{}, len(occupied))
	for i := range occupied {
		if i >= 0 && i < n {
			current[i] = struct{}{}
		}
	}

	for i := 0; i < n; i++ {
		_, occ := current[i]
		if occ {
			if t.enterTime[i].IsZero() {
				t.enterTime[i] = now
				t.interactions[i]++
			}
			if _, was := t.lastOccupied[i]; !was {
				entered = append(entered, i)
			}
		} else {
			if !t.enterTime[i].IsZero() {
				dwell := now.Sub(t.enterTime[i])
				if dwell > dwellDebounce {
					t.closedDwells[i] = append(t.closedDwells[i], dwell)
				}
				t.enterTime[i] = time.Time{}
			}
			if _, was := t.lastOccupied[i]; was {
				left = append(left, i)
			}
		}
	}

	t.lastOccupied = current
	return entered, left
}

// Stats returns per-zone statistics. Pure read: dashboards may poll this at
// any rate without mutating tracker state.
func (t *DwellTracker) Stats(now time.Time) []DwellStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := make([]DwellStats, len(t.enterTime))
	for i := range t.enterTime {
		var avg float64
		if n := len(t.closedDwells[i]); n > 0 {
			var total time.Duration
			for _, d := range t.closedDwells[i] {
				total += d
			}
			avg = total.Seconds() / float64(n)
		}
		occupied := !t.enterTime[i].IsZero()
		var current float64
		if occupied {
			current = now.Sub(t.enterTime[i]).Seconds()
		}
		stats[i] = DwellStats{
			AvgDwellSeconds:     round1(avg),
			InteractionCount:    t.interactions[i],
			IsOccupied:          occupied,
			CurrentDwellSeconds: round1(current),
		}
	}
	return stats
}

// OccupiedNow returns a snapshot copy of the currently occupied index set.
func (t *DwellTracker) OccupiedNow() map[int]struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[int]struct{}, len(t.lastOccupied))
	for i := range t.lastOccupied {
		out[i] = struct{}{}
	}
	return out
}

// Resize truncates or pads per-zone state to n zones, preserving
// index-aligned state for retained positions. Used after reconciliation;
// positions, not physical products, are what carries over.
func (t *DwellTracker) Resize(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n < 0 {
		n = 0
	}
	if n == len(t.enterTime) {
		return
	}

	enter := make([]time.Time, n)
	closed := make([][]time.Duration, n)
	counts := make([]int, n)
	copy(enter, t.enterTime)
	copy(closed, t.closedDwells)
	copy(counts, t.interactions)

	t.enterTime = enter
	t.closedDwells = closed
	t.interactions = counts
	t.lastOccupied = make(map[int]struct{})
}

// Reset discards all state and starts over with n idle zones. Used when the
// zone list is rebuilt wholesale by a full detection pass.
func (t *DwellTracker) Reset(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n < 0 {
		n = 0
	}
	t.enterTime = make([]time.Time, n)
	t.closedDwells = make([][]time.Duration, n)
	t.interactions = make([]int, n)
	t.lastOccupied = make(map[int]struct{})
}

// Len returns the current zone count.
func (t *DwellTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.enterTime)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
