package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/cpcdash/internal/activity"
	"github.com/sadopc/cpcdash/internal/dates"
	"github.com/sadopc/cpcdash/internal/export"
	"github.com/sadopc/cpcdash/internal/platform"
	"github.com/sadopc/cpcdash/internal/schedule"
	"github.com/sadopc/cpcdash/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	store     *store.Store
	series    *activity.Series
	scheduler *schedule.Scheduler
	width     int
	height    int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	contests  contestsModel
	platforms platformsModel
	tasks     tasksModel
	activity  activityModel
	settings  settingsModel

	help   help.Model
	status string
}

func NewApp(s *store.Store) App {
	h := help.New()
	h.ShowAll = false

	series := activity.New(s)
	scheduler := schedule.New(s)
	refresher := platform.DefaultRefresher()

	return App{
		store:      s,
		series:     series,
		scheduler:  scheduler,
		activeView: viewTasks,
		contests:   newContestsModel(platform.DefaultContestClients(), scheduler),
		platforms:  newPlatformsModel(s, refresher),
		tasks:      newTasksModel(scheduler),
		activity:   newActivityModel(series, windowSetting(s)),
		settings:   newSettingsModel(s),
		help:       h,
	}
}

// windowSetting reads the configured heatmap window, falling back to
// the full-year default.
func windowSetting(s *store.Store) int {
	if v, err := s.GetSetting("window_days"); err == nil {
		if n, convErr := strconv.Atoi(v); convErr == nil && n > 0 {
			return n
		}
	}
	return activity.DefaultWindowDays
}

func (a App) Init() tea.Cmd {
	return a.contests.refresh()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.contests.setSize(a.width, contentHeight)
		a.platforms.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.activity.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewContests
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewPlatforms
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewTasks
			a.tasks.reload()
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewActivity
			a.activity.reload()
			return a, nil
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			a.settings.reload()
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 5
			return a, nil
		}

	case statusMsg:
		a.status = msg.text
		return a, nil

	case settingsSavedMsg:
		a.activity.setWindow(windowSetting(a.store))
		return a, nil

	case taskAddedMsg:
		a.status = "Added task: " + msg.task.Title
		// The collection changed outside the tasks view; refresh it.
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.update(tasksChangedMsg{})
		return a, cmd

	case statsDataMsg:
		// The fetch command never writes; the observation is applied
		// here so the series is only ever touched from the update loop.
		msg.result.Apply(a.series, dates.Today())
		// Route to both the cards and the heatmap.
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.platforms, cmd = a.platforms.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		a.activity, cmd = a.activity.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewContests:
		a.contests, cmd = a.contests.update(msg)
	case viewPlatforms:
		a.platforms, cmd = a.platforms.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewActivity:
		a.activity, cmd = a.activity.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasks.formActive || a.tasks.confirmingDelete
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewContests:
		content = a.contests.view()
	case viewPlatforms:
		content = a.platforms.view()
	case viewTasks:
		content = a.tasks.view()
	case viewActivity:
		content = a.activity.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("cpcdash")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Today's solved count lives in the footer on every tab.
	todayInfo := ""
	if solved := a.series.RecentSum(1, dates.Today()); solved > 0 {
		todayInfo = successStyle.Render(fmt.Sprintf(" ● %d today", solved))
	}

	left := footerStyle.Render(helpView)
	right := todayInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	tasks := a.scheduler.All()
	days := a.series.DeriveDailyActivity(activity.DefaultWindowDays, dates.Today())
	return func() tea.Msg {
		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("cpcdash-tasks-%s.csv", dateStr))
			if err := export.TasksToCSV(tasks, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
			activityPath := filepath.Join(home, fmt.Sprintf("cpcdash-activity-%s.csv", dateStr))
			if err := export.ActivityToCSV(days, activityPath); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("cpcdash-export-%s.json", dateStr))
			if err := export.ToJSON(tasks, days, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
