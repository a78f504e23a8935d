package tui

import (
	"time"

	"github.com/sadopc/cpcdash/internal/dates"
	"github.com/sadopc/cpcdash/internal/platform"
	"github.com/sadopc/cpcdash/internal/schedule"
)

// viewState represents the currently active view.
type viewState int

const (
	viewContests viewState = iota
	viewPlatforms
	viewTasks
	viewActivity
	viewSettings
)

var viewNames = []string{"Contests", "Platforms", "Tasks", "Activity", "Settings"}

// --- Messages ---

type contestsDataMsg struct {
	contests []platform.Contest
	err      error
}

type statsDataMsg struct {
	result platform.RefreshResult
}

type taskAddedMsg struct {
	task *schedule.Task
}

type tasksChangedMsg struct{}

type settingsSavedMsg struct{}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func dayOf(t time.Time) dates.Day {
	return dates.FromTime(t.Local())
}

// truncate shortens s to at most w runes, never splitting a multibyte
// character mid-sequence.
func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= w {
		return s
	}
	if w == 1 {
		return string(runes[:1])
	}
	return string(runes[:w-1]) + "…"
}
