// Package schedule owns the multi-day task collection: which tasks are
// visible on a viewed day, how urgent each active task is, and the
// carry-over of unfinished work onto today's view.
package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/cpcdash/internal/dates"
)

var (
	ErrEmptyTitle = errors.New("schedule: task title is required")
	ErrNotFound   = errors.New("schedule: task not found")
)

// Task spans [StartDate, StartDate+Duration) in calendar days.
type Task struct {
	ID        string
	Title     string
	Link      string
	Note      string
	Completed bool
	StartDate dates.Day
	Duration  int // days, always ≥ 1
	CreatedAt time.Time
}

// End returns the first day after the task's window.
func (t Task) End() dates.Day {
	return t.StartDate.AddDays(t.Duration)
}

// Urgency is a presentation label derived from the elapsed fraction of
// a task's window. It is recomputed on every read and never stored.
type Urgency int

const (
	UrgencyScheduled Urgency = iota // viewed day before the window
	UrgencyEarly                    // under half the window elapsed
	UrgencyMid                      // half to 80%
	UrgencyNearDeadline             // 80% to the end
	UrgencyOverdue                  // window fully elapsed, unfinished
)

func (u Urgency) String() string {
	switch u {
	case UrgencyScheduled:
		return "scheduled"
	case UrgencyEarly:
		return "early"
	case UrgencyMid:
		return "mid"
	case UrgencyNearDeadline:
		return "near deadline"
	case UrgencyOverdue:
		return "overdue"
	default:
		return "unknown"
	}
}

// UrgencyOn classifies t as seen from viewed. Elapsed fraction is
// measured in whole calendar days so the label flips at local-midnight
// boundaries, consistent with the day key used everywhere else.
func (t Task) UrgencyOn(viewed dates.Day) Urgency {
	if viewed.Before(t.StartDate) {
		return UrgencyScheduled
	}
	dur := t.Duration
	if dur < 1 {
		dur = 1
	}
	f := float64(viewed.Sub(t.StartDate)) / float64(dur)
	switch {
	case f >= 1.0:
		return UrgencyOverdue
	case f >= 0.8:
		return UrgencyNearDeadline
	case f >= 0.5:
		return UrgencyMid
	default:
		return UrgencyEarly
	}
}

// Visible partitions the tasks shown for one viewed day.
type Visible struct {
	Active    []Task
	Completed []Task
}

// Storage persists the full ordered collection.
type Storage interface {
	LoadTasks() ([]Task, error)
	SaveTasks(tasks []Task) error
}

// Scheduler owns the task collection. All mutation goes through it;
// subscribers are notified after each successful change.
type Scheduler struct {
	tasks       []Task
	storage     Storage
	subscribers []func()
}

// New creates a Scheduler backed by storage. Load failures fall back to
// an empty collection; rows with invalid durations are coerced to 1 day
// and tasks with a zero start date default to today.
func New(storage Storage) *Scheduler {
	s := &Scheduler{storage: storage}
	if storage != nil {
		if tasks, err := storage.LoadTasks(); err == nil {
			for _, t := range tasks {
				if t.Duration < 1 {
					t.Duration = 1
				}
				if t.StartDate.IsZero() {
					t.StartDate = dates.Today()
				}
				s.tasks = append(s.tasks, t)
			}
		}
	}
	return s
}

// Subscribe registers fn to run after every successful mutation. Used
// by views that must refresh when another view changes the collection.
func (s *Scheduler) Subscribe(fn func()) {
	s.subscribers = append(s.subscribers, fn)
}

func (s *Scheduler) notify() {
	if s.storage != nil {
		s.storage.SaveTasks(s.tasks)
	}
	for _, fn := range s.subscribers {
		fn()
	}
}

// AddTask validates and prepends a new task. A duration under 1 is
// coerced to 1 rather than rejected.
func (s *Scheduler) AddTask(title, link, note string, startDate dates.Day, duration int) (*Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}
	if duration < 1 {
		duration = 1
	}
	if startDate.IsZero() {
		startDate = dates.Today()
	}
	t := Task{
		ID:        uuid.NewString(),
		Title:     title,
		Link:      link,
		Note:      note,
		StartDate: startDate,
		Duration:  duration,
		CreatedAt: time.Now(),
	}
	// Newest first, so same-day peers surface in reverse creation order
	// after the stable day sort at read time.
	s.tasks = append([]Task{t}, s.tasks...)
	s.notify()
	return &t, nil
}

// Patch carries the mutable fields for a whole-record update.
type Patch struct {
	Title     string
	Link      string
	Note      string
	StartDate dates.Day
	Duration  int
	Completed bool
}

// UpdateTask replaces the mutable fields of the task with the given id.
// The collection is left unchanged on any validation failure.
func (s *Scheduler) UpdateTask(id string, p Patch) error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("update task %s: %w", id, ErrNotFound)
	}
	if p.Duration < 1 {
		p.Duration = 1
	}
	if p.StartDate.IsZero() {
		p.StartDate = s.tasks[i].StartDate
	}
	t := &s.tasks[i]
	t.Title = p.Title
	t.Link = p.Link
	t.Note = p.Note
	t.StartDate = p.StartDate
	t.Duration = p.Duration
	t.Completed = p.Completed
	s.notify()
	return nil
}

// ToggleComplete flips the completed flag; reopening a completed task
// is always allowed.
func (s *Scheduler) ToggleComplete(id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("toggle task %s: %w", id, ErrNotFound)
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.notify()
	return nil
}

// DeleteTask removes the task. An absent id is a no-op so that a
// duplicated delete confirmation cannot fail.
func (s *Scheduler) DeleteTask(id string) {
	i := s.index(id)
	if i < 0 {
		return
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.notify()
}

// Get returns a copy of the task with the given id.
func (s *Scheduler) Get(id string) (Task, bool) {
	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// All returns a copy of the collection in insertion order (newest
// first).
func (s *Scheduler) All() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// VisibleOn partitions the tasks visible on viewed, where today is the
// actual current day. A task shows up when its window contains viewed,
// or, only when viewed is today, when its window has fully elapsed
// without completion (carry-over). Past days never inherit carried-over
// tasks. Active tasks come back sorted by start date ascending; the
// sort is stable so same-day peers keep their insertion order.
func (s *Scheduler) VisibleOn(viewed, today dates.Day) Visible {
	isToday := viewed == today

	var v Visible
	for _, t := range s.tasks {
		inWindow := !viewed.Before(t.StartDate) && viewed.Before(t.End())
		carried := isToday && !t.Completed && !t.End().After(today)
		if !inWindow && !carried {
			continue
		}
		if t.Completed {
			v.Completed = append(v.Completed, t)
		} else {
			v.Active = append(v.Active, t)
		}
	}

	sort.SliceStable(v.Active, func(i, j int) bool {
		return v.Active[i].StartDate.Before(v.Active[j].StartDate)
	})
	return v
}

func (s *Scheduler) index(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
