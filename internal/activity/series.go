// Package activity reconstructs per-day solve counts from cumulative
// "total solved" snapshots reported by external judges. The stored
// history is a per-day high-water mark: flaky fetches that report zero
// or a stale total can never make a day's value regress.
package activity

import (
	"sort"

	"github.com/sadopc/cpcdash/internal/dates"
)

// DefaultWindowDays is the trailing window used for the heatmap.
const DefaultWindowDays = 365

// DailyActivity is one derived day: the increment over the previous
// recorded day and its quantized heat level (0–4).
type DailyActivity struct {
	Day   dates.Day
	Delta int
	Level int
}

// Storage persists the raw history. Implementations must tolerate being
// handed the full map on every save; the series is small (one row per
// active day).
type Storage interface {
	LoadHistory() (map[dates.Day]int, error)
	SaveHistory(history map[dates.Day]int) error
}

// Series owns the ratcheted cumulative history for one user.
type Series struct {
	history map[dates.Day]int
	storage Storage
}

// New creates a Series backed by storage. A load failure yields an
// empty history rather than an error: activity data is cosmetic and a
// corrupt store must not block startup.
func New(storage Storage) *Series {
	s := &Series{history: make(map[dates.Day]int), storage: storage}
	if storage != nil {
		if h, err := storage.LoadHistory(); err == nil && h != nil {
			for d, total := range h {
				if total > 0 {
					s.history[d] = total
				}
			}
		}
	}
	return s
}

// RecordObservation records a cumulative total reported for day. The
// value is kept only if it exceeds what is already stored for that day;
// totals ≤ 0 carry no information (a failed poll, not a real count) and
// are ignored. Reports whether the history changed.
func (s *Series) RecordObservation(day dates.Day, total int) bool {
	if total <= 0 {
		return false
	}
	if stored, ok := s.history[day]; ok && total <= stored {
		return false
	}
	s.history[day] = total
	if s.storage != nil {
		s.storage.SaveHistory(s.history)
	}
	return true
}

// Recorded returns the stored total for day, if any.
func (s *Series) Recorded(day dates.Day) (int, bool) {
	total, ok := s.history[day]
	return total, ok
}

// DeriveDailyActivity derives the dense trailing window ending today:
// exactly windowDays entries in ascending day order, one per calendar
// day, with delta 0 for days that have no recorded observation. The
// first recorded day always derives delta 0: the initial snapshot is
// accumulated history of unknown age and must not be attributed to a
// single day.
func (s *Series) DeriveDailyActivity(windowDays int, today dates.Day) []DailyActivity {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	recorded := make([]dates.Day, 0, len(s.history))
	for d := range s.history {
		recorded = append(recorded, d)
	}
	sort.Slice(recorded, func(i, j int) bool { return recorded[i].Before(recorded[j]) })

	deltas := make(map[dates.Day]int, len(recorded))
	for i, d := range recorded {
		if i == 0 {
			deltas[d] = 0
			continue
		}
		delta := s.history[d] - s.history[recorded[i-1]]
		if delta < 0 {
			delta = 0
		}
		deltas[d] = delta
	}

	out := make([]DailyActivity, 0, windowDays)
	for d := today.AddDays(1 - windowDays); !d.After(today); d = d.AddDays(1) {
		delta := deltas[d]
		out = append(out, DailyActivity{Day: d, Delta: delta, Level: levelFor(delta)})
	}
	return out
}

// RecentSum sums deltas over the last days entries of the derived
// window, clamped to what exists. days larger than the window just sums
// the whole window.
func (s *Series) RecentSum(days int, today dates.Day) int {
	seq := s.DeriveDailyActivity(DefaultWindowDays, today)
	if days > len(seq) {
		days = len(seq)
	}
	if days < 0 {
		days = 0
	}
	sum := 0
	for _, a := range seq[len(seq)-days:] {
		sum += a.Delta
	}
	return sum
}

// levelFor buckets a daily delta into the 0–4 heat level used by the
// heatmap. The breakpoints mirror the rendered palette: 0, 1–2, 3–5,
// 6–9, 10 and up.
func levelFor(delta int) int {
	switch {
	case delta <= 0:
		return 0
	case delta <= 2:
		return 1
	case delta <= 5:
		return 2
	case delta <= 9:
		return 3
	default:
		return 4
	}
}
