package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/cpcdash/internal/dates"
	"github.com/sadopc/cpcdash/internal/schedule"
)

type tasksModel struct {
	scheduler *schedule.Scheduler
	width     int
	height    int

	viewDate dates.Day
	visible  schedule.Visible
	cursor   int

	confirmingDelete bool
	deleteID         string

	formActive bool
	form       *huh.Form
	editingID  string // empty while adding

	// Form field pointers (survive value copies)
	formTitle    *string
	formLink     *string
	formNote     *string
	formStart    *string
	formDuration *string
}

func newTasksModel(scheduler *schedule.Scheduler) tasksModel {
	title, link, note, start, duration := "", "", "", "", ""
	m := tasksModel{
		scheduler:    scheduler,
		viewDate:     dates.Today(),
		formTitle:    &title,
		formLink:     &link,
		formNote:     &note,
		formStart:    &start,
		formDuration: &duration,
	}
	m.reload()
	return m
}

func (t *tasksModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t *tasksModel) reload() {
	t.visible = t.scheduler.VisibleOn(t.viewDate, dates.Today())
	if t.cursor >= t.rowCount() {
		t.cursor = max(0, t.rowCount()-1)
	}
}

func (t tasksModel) rowCount() int {
	return len(t.visible.Active) + len(t.visible.Completed)
}

func (t tasksModel) taskAt(i int) (schedule.Task, bool) {
	if i < 0 || i >= t.rowCount() {
		return schedule.Task{}, false
	}
	if i < len(t.visible.Active) {
		return t.visible.Active[i], true
	}
	return t.visible.Completed[i-len(t.visible.Active)], true
}

func (t tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksChangedMsg:
		t.reload()
		return t, nil

	case tea.KeyMsg:
		if t.confirmingDelete {
			return t.updateDeleteConfirm(msg)
		}
		return t.updateList(msg)
	}
	return t, nil
}

func (t tasksModel) updateList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
	case key.Matches(msg, keys.Down):
		if t.cursor < t.rowCount()-1 {
			t.cursor++
		}
	case key.Matches(msg, keys.Left):
		t.viewDate = t.viewDate.AddDays(-1)
		t.cursor = 0
		t.reload()
	case key.Matches(msg, keys.Right):
		t.viewDate = t.viewDate.AddDays(1)
		t.cursor = 0
		t.reload()
	case key.Matches(msg, keys.Today):
		t.viewDate = dates.Today()
		t.cursor = 0
		t.reload()
	case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
		if task, ok := t.taskAt(t.cursor); ok {
			t.scheduler.ToggleComplete(task.ID)
			t.reload()
		}
	case key.Matches(msg, keys.New):
		return t.showAddForm()
	case key.Matches(msg, keys.Edit):
		if task, ok := t.taskAt(t.cursor); ok {
			return t.showEditForm(task)
		}
	case key.Matches(msg, keys.Delete):
		// First press arms the confirmation, second press deletes.
		if task, ok := t.taskAt(t.cursor); ok {
			t.confirmingDelete = true
			t.deleteID = task.ID
		}
	}
	return t, nil
}

func (t tasksModel) updateDeleteConfirm(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Delete), key.Matches(msg, keys.Enter):
		t.scheduler.DeleteTask(t.deleteID)
		t.confirmingDelete = false
		t.deleteID = ""
		t.reload()
		return t, func() tea.Msg { return statusMsg{text: "Task deleted"} }
	default:
		t.confirmingDelete = false
		t.deleteID = ""
	}
	return t, nil
}

func (t tasksModel) showAddForm() (tasksModel, tea.Cmd) {
	*t.formTitle = ""
	*t.formLink = ""
	*t.formNote = ""
	*t.formStart = t.viewDate.String()
	*t.formDuration = "1"
	t.editingID = ""

	t.form = t.buildForm()
	t.formActive = true
	return t, t.form.Init()
}

func (t tasksModel) showEditForm(task schedule.Task) (tasksModel, tea.Cmd) {
	*t.formTitle = task.Title
	*t.formLink = task.Link
	*t.formNote = task.Note
	*t.formStart = task.StartDate.String()
	*t.formDuration = strconv.Itoa(task.Duration)
	t.editingID = task.ID

	t.form = t.buildForm()
	t.formActive = true
	return t, t.form.Init()
}

func (t tasksModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(t.formTitle),
			huh.NewInput().Title("Link").Value(t.formLink),
			huh.NewInput().Title("Note").Value(t.formNote),
			huh.NewInput().Title("Start (YYYY-MM-DD)").Value(t.formStart),
			huh.NewInput().Title("Duration (days)").Value(t.formDuration),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (t tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		return t.submitForm()
	}

	return t, cmd
}

func (t tasksModel) submitForm() (tasksModel, tea.Cmd) {
	start, err := dates.Parse(strings.TrimSpace(*t.formStart))
	if err != nil {
		start = t.viewDate
	}
	duration, err := strconv.Atoi(strings.TrimSpace(*t.formDuration))
	if err != nil {
		duration = 1
	}

	if t.editingID == "" {
		_, err = t.scheduler.AddTask(*t.formTitle, *t.formLink, *t.formNote, start, duration)
	} else {
		completed := false
		if existing, ok := t.scheduler.Get(t.editingID); ok {
			completed = existing.Completed
		}
		err = t.scheduler.UpdateTask(t.editingID, schedule.Patch{
			Title:     *t.formTitle,
			Link:      *t.formLink,
			Note:      *t.formNote,
			StartDate: start,
			Duration:  duration,
			Completed: completed,
		})
	}
	t.reload()
	if err != nil {
		return t, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	return t, nil
}

func (t tasksModel) view() string {
	w := t.width - 4

	if t.formActive && t.form != nil {
		title := titleStyle.Render("New Task")
		if t.editingID != "" {
			title = titleStyle.Render("Edit Task")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", t.form.View()),
		)
	}

	today := dates.Today()
	dayLabel := t.viewDate.String()
	switch t.viewDate {
	case today:
		dayLabel += " (today)"
	case today.AddDays(-1):
		dayLabel += " (yesterday)"
	case today.AddDays(1):
		dayLabel += " (tomorrow)"
	}
	title := titleStyle.Render("Tasks") + "  " + highlightStyle.Render(dayLabel)

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	if t.rowCount() == 0 {
		rows = append(rows, mutedStyle.Render("Nothing scheduled. Press n to add a task."))
	}

	for i := 0; i < t.rowCount(); i++ {
		task, _ := t.taskAt(i)
		rows = append(rows, t.renderTask(i, task, today))
	}

	rows = append(rows, "")
	if t.confirmingDelete {
		rows = append(rows, errorStyle.Render("  Delete this task? d/enter: confirm  esc: cancel"))
	} else {
		rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  space: done  ←/→: day  t: today"))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (t tasksModel) renderTask(i int, task schedule.Task, today dates.Day) string {
	cursor := "  "
	if i == t.cursor {
		cursor = "> "
	}

	check := "[ ]"
	style := normalItemStyle
	if task.Completed {
		check = "[x]"
		style = strikeStyle
	}
	if i == t.cursor {
		style = selectedItemStyle
	}
	if t.confirmingDelete && task.ID == t.deleteID {
		style = errorStyle
	}

	line := cursor + check + " " + style.Render(truncate(task.Title, 36))

	if !task.Completed {
		u := task.UrgencyOn(t.viewDate)
		badge := lipgloss.NewStyle().Foreground(urgencyColors[u]).Render("[" + u.String() + "]")
		line += " " + badge
	}

	if task.Duration > 1 {
		line += " " + mutedStyle.Render(fmt.Sprintf("%s +%dd", task.StartDate.String(), task.Duration))
	}

	// Window already elapsed but showing on today's view anyway.
	if !task.Completed && t.viewDate == today && !task.End().After(today) {
		line += " " + warningStyle.Render("↻ carried over")
	}

	if task.Note != "" {
		line += " " + mutedStyle.Render("("+truncate(task.Note, 24)+")")
	}
	return line
}
