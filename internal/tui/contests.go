package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/cpcdash/internal/platform"
	"github.com/sadopc/cpcdash/internal/schedule"
)

type contestsModel struct {
	clients   []platform.ContestClient
	scheduler *schedule.Scheduler
	width     int
	height    int

	contests []platform.Contest
	cursor   int
	loading  bool
	fetchErr error
}

func newContestsModel(clients []platform.ContestClient, scheduler *schedule.Scheduler) contestsModel {
	return contestsModel{clients: clients, scheduler: scheduler}
}

func (c *contestsModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

func (c contestsModel) refresh() tea.Cmd {
	clients := c.clients
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		contests, err := platform.FetchAllContests(ctx, clients...)
		return contestsDataMsg{contests: contests, err: err}
	}
}

func (c contestsModel) update(msg tea.Msg) (contestsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case contestsDataMsg:
		c.loading = false
		c.fetchErr = msg.err
		if msg.err == nil {
			c.contests = msg.contests
		}
		if c.cursor >= len(c.contests) {
			c.cursor = max(0, len(c.contests)-1)
		}
		return c, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if c.cursor > 0 {
				c.cursor--
			}
		case key.Matches(msg, keys.Down):
			if c.cursor < len(c.contests)-1 {
				c.cursor++
			}
		case key.Matches(msg, keys.Refresh):
			c.loading = true
			return c, c.refresh()
		case key.Matches(msg, keys.Enter):
			// Queue the selected contest as a practice task for its day.
			if c.cursor < len(c.contests) {
				return c, c.addPracticeTask(c.contests[c.cursor])
			}
		}
	}
	return c, nil
}

// addPracticeTask writes the task immediately, on the update loop that
// owns the scheduler. The returned command only reports the outcome.
func (c contestsModel) addPracticeTask(contest platform.Contest) tea.Cmd {
	task, err := c.scheduler.AddTask(contest.Name, contest.URL, "", dayOf(contest.StartTime), 1)
	if err != nil {
		return func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	return func() tea.Msg {
		return taskAddedMsg{task: task}
	}
}

func (c contestsModel) view() string {
	w := c.width - 4
	title := titleStyle.Render("Upcoming Contests")

	if c.loading {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("Fetching...")))
	}
	if c.fetchErr != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", errorStyle.Render("Contests unavailable. Press r to retry.")))
	}
	if len(c.contests) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No contests loaded. Press r to refresh.")))
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-3s %-40s %-18s %s", "", "Contest", "Starts", "In"))
	rows = append(rows, header)

	now := time.Now()
	for i, contest := range c.contests {
		dot := lipgloss.NewStyle().Foreground(platformColor(contest.Platform)).Render("●")
		cursor := "  "
		style := normalItemStyle
		if i == c.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		startStr := contest.StartTime.Local().Format("Jan 02 15:04")
		row := style.Render(fmt.Sprintf("%s%s %-40s %-18s %s",
			cursor, dot, truncate(contest.Name, 40), startStr, formatUntil(contest.StartTime.Sub(now))))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  r: refresh  enter: add as task"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func formatUntil(d time.Duration) string {
	if d < 0 {
		return "live"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}
