package activity

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sadopc/cpcdash/internal/dates"
)

func day(t *testing.T, s string) dates.Day {
	t.Helper()
	d, err := dates.Parse(s)
	if err != nil {
		t.Fatalf("parse day %s: %v", s, err)
	}
	return d
}

// fakeStorage records saves so tests can assert persistence behavior.
type fakeStorage struct {
	loaded  map[dates.Day]int
	loadErr error
	saves   int
	last    map[dates.Day]int
}

func (f *fakeStorage) LoadHistory() (map[dates.Day]int, error) {
	return f.loaded, f.loadErr
}

func (f *fakeStorage) SaveHistory(h map[dates.Day]int) error {
	f.saves++
	f.last = make(map[dates.Day]int, len(h))
	for d, v := range h {
		f.last[d] = v
	}
	return nil
}

// ============================================================
// Ratchet
// ============================================================

func TestRecordObservationRatchet(t *testing.T) {
	s := New(nil)
	d := day(t, "2024-01-01")

	if !s.RecordObservation(d, 50) {
		t.Fatal("first observation should be recorded")
	}
	if s.RecordObservation(d, 10) {
		t.Fatal("smaller total must not be recorded")
	}
	if total, _ := s.Recorded(d); total != 50 {
		t.Fatalf("stored value regressed: got %d, want 50", total)
	}

	if !s.RecordObservation(d, 51) {
		t.Fatal("larger total should be recorded")
	}
	if total, _ := s.Recorded(d); total != 51 {
		t.Fatalf("expected 51, got %d", total)
	}
}

func TestRecordObservationIgnoresZeroAndNegative(t *testing.T) {
	s := New(nil)
	d := day(t, "2024-01-01")

	if s.RecordObservation(d, 0) {
		t.Fatal("zero total is no information, must not be recorded")
	}
	if s.RecordObservation(d, -3) {
		t.Fatal("negative total must not be recorded")
	}
	if _, ok := s.Recorded(d); ok {
		t.Fatal("nothing should be stored")
	}
}

func TestRecordObservationEqualIsNoop(t *testing.T) {
	st := &fakeStorage{}
	s := New(st)
	d := day(t, "2024-01-01")

	s.RecordObservation(d, 7)
	saves := st.saves
	if s.RecordObservation(d, 7) {
		t.Fatal("equal total should be a no-op")
	}
	if st.saves != saves {
		t.Fatal("no-op observation should not hit storage")
	}
}

func TestRecordObservationPersists(t *testing.T) {
	st := &fakeStorage{}
	s := New(st)
	d := day(t, "2024-01-02")

	s.RecordObservation(d, 12)
	if st.saves != 1 {
		t.Fatalf("expected 1 save, got %d", st.saves)
	}
	if st.last[d] != 12 {
		t.Fatalf("persisted history wrong: %v", st.last)
	}
}

func TestNewLoadsHistory(t *testing.T) {
	d := dates.Day{Year: 2024, Month: 1, Dom: 1}
	st := &fakeStorage{loaded: map[dates.Day]int{d: 30}}
	s := New(st)
	if total, ok := s.Recorded(d); !ok || total != 30 {
		t.Fatalf("loaded history not visible: %d %v", total, ok)
	}
}

func TestNewToleratesLoadFailure(t *testing.T) {
	st := &fakeStorage{loadErr: errors.New("corrupt")}
	s := New(st)
	today := day(t, "2024-06-01")
	if got := len(s.DeriveDailyActivity(30, today)); got != 30 {
		t.Fatalf("series should start empty but usable, got %d entries", got)
	}
}

func TestNewDropsNonPositiveLoadedTotals(t *testing.T) {
	bad := dates.Day{Year: 2024, Month: 1, Dom: 1}
	good := dates.Day{Year: 2024, Month: 1, Dom: 2}
	st := &fakeStorage{loaded: map[dates.Day]int{bad: -5, good: 4}}
	s := New(st)
	if _, ok := s.Recorded(bad); ok {
		t.Fatal("negative stored total should be treated as absent")
	}
	if total, _ := s.Recorded(good); total != 4 {
		t.Fatal("valid stored total should survive load")
	}
}

// ============================================================
// Derivation
// ============================================================

func TestFirstDayDeltaIsZero(t *testing.T) {
	s := New(nil)
	first := day(t, "2024-01-05")
	today := day(t, "2024-01-10")
	s.RecordObservation(first, 37)

	seq := s.DeriveDailyActivity(10, today)
	for _, a := range seq {
		if a.Day == first && a.Delta != 0 {
			t.Fatalf("first recorded day must derive delta 0, got %d", a.Delta)
		}
	}
}

func TestGapFilling(t *testing.T) {
	s := New(nil)
	today := day(t, "2024-01-03")
	s.RecordObservation(day(t, "2024-01-01"), 5)
	s.RecordObservation(day(t, "2024-01-03"), 8)

	seq := s.DeriveDailyActivity(3, today)
	if len(seq) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(seq))
	}
	if seq[0].Delta != 0 { // first recorded day
		t.Fatalf("2024-01-01 should be 0, got %d", seq[0].Delta)
	}
	if seq[1].Delta != 0 { // gap day
		t.Fatalf("2024-01-02 gap should be 0, got %d", seq[1].Delta)
	}
	if seq[2].Delta != 3 { // 8 - 5
		t.Fatalf("2024-01-03 should be 3, got %d", seq[2].Delta)
	}
}

func TestDeltaNonNegative(t *testing.T) {
	s := New(nil)
	today := day(t, "2024-01-05")
	// Bypass the ratchet to simulate inconsistent stored data.
	s.history[day(t, "2024-01-01")] = 50
	s.history[day(t, "2024-01-02")] = 20

	for _, a := range s.DeriveDailyActivity(5, today) {
		if a.Delta < 0 {
			t.Fatalf("delta must never be negative, got %d on %s", a.Delta, a.Day)
		}
	}
}

func TestWindowLengthAndOrder(t *testing.T) {
	s := New(nil)
	today := day(t, "2024-06-15")
	seq := s.DeriveDailyActivity(365, today)
	if len(seq) != 365 {
		t.Fatalf("expected exactly 365 entries, got %d", len(seq))
	}
	if seq[len(seq)-1].Day != today {
		t.Fatalf("window must end today, ends %s", seq[len(seq)-1].Day)
	}
	for i := 1; i < len(seq); i++ {
		if !seq[i-1].Day.Before(seq[i].Day) {
			t.Fatalf("sequence not strictly ascending at %d", i)
		}
	}
}

func TestWindowDeterminism(t *testing.T) {
	s := New(nil)
	today := day(t, "2024-03-01")
	s.RecordObservation(day(t, "2024-02-01"), 10)
	s.RecordObservation(day(t, "2024-02-10"), 16)
	s.RecordObservation(day(t, "2024-02-20"), 30)

	a := s.DeriveDailyActivity(365, today)
	b := s.DeriveDailyActivity(365, today)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("derivation must be a pure function of stored state")
	}
}

func TestObservationsOutsideWindowStillAnchorDeltas(t *testing.T) {
	s := New(nil)
	today := day(t, "2024-06-10")
	// First observation long before the window: it anchors the baseline
	// so the in-window day derives a real increment.
	s.RecordObservation(day(t, "2023-01-01"), 100)
	s.RecordObservation(day(t, "2024-06-10"), 104)

	seq := s.DeriveDailyActivity(7, today)
	if got := seq[len(seq)-1].Delta; got != 4 {
		t.Fatalf("expected delta 4 against out-of-window baseline, got %d", got)
	}
}

// ============================================================
// Levels
// ============================================================

func TestLevelThresholds(t *testing.T) {
	cases := []struct {
		delta, level int
	}{
		{0, 0},
		{1, 1}, {2, 1},
		{3, 2}, {5, 2},
		{6, 3}, {9, 3},
		{10, 4}, {57, 4},
	}
	for _, c := range cases {
		if got := levelFor(c.delta); got != c.level {
			t.Errorf("levelFor(%d) = %d, want %d", c.delta, got, c.level)
		}
	}
}

// ============================================================
// Recent sums
// ============================================================

func TestRecentSum(t *testing.T) {
	s := New(nil)
	today := day(t, "2024-01-10")
	s.RecordObservation(day(t, "2024-01-01"), 10) // first day, delta 0
	s.RecordObservation(day(t, "2024-01-08"), 15) // +5
	s.RecordObservation(day(t, "2024-01-09"), 17) // +2
	s.RecordObservation(day(t, "2024-01-10"), 20) // +3

	if got := s.RecentSum(1, today); got != 3 {
		t.Fatalf("today: expected 3, got %d", got)
	}
	if got := s.RecentSum(2, today); got != 5 {
		t.Fatalf("today+yesterday: expected 5, got %d", got)
	}
	if got := s.RecentSum(7, today); got != 10 {
		t.Fatalf("last 7 days: expected 10, got %d", got)
	}
	if got := s.RecentSum(10000, today); got != 10 {
		t.Fatalf("oversized range should clamp, got %d", got)
	}
}

func TestRecentSumEmpty(t *testing.T) {
	s := New(nil)
	if got := s.RecentSum(30, day(t, "2024-01-01")); got != 0 {
		t.Fatalf("empty history should sum to 0, got %d", got)
	}
}
