package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/cpcdash/internal/platform"
	"github.com/sadopc/cpcdash/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	handles    []store.Handle
	windowDays string

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	cfHandle   *string
	lcHandle   *string
	acHandle   *string
	formWindow *string
}

func newSettingsModel(s *store.Store) settingsModel {
	cf, lc, ac, win := "", "", "", ""
	m := settingsModel{
		store:      s,
		cfHandle:   &cf,
		lcHandle:   &lc,
		acHandle:   &ac,
		formWindow: &win,
	}
	m.reload()
	return m
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s *settingsModel) reload() {
	s.handles, _ = s.store.AllHandles()
	s.windowDays = s.getVal("window_days", "365")
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) handleFor(name string) string {
	for _, h := range s.handles {
		if h.Platform == name {
			return h.Value
		}
	}
	return ""
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.cfHandle = s.handleFor(platform.Codeforces)
	*s.lcHandle = s.handleFor(platform.LeetCode)
	*s.acHandle = s.handleFor(platform.AtCoder)
	*s.formWindow = s.windowDays

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Codeforces handle").Value(s.cfHandle),
			huh.NewInput().Title("LeetCode username").Value(s.lcHandle),
			huh.NewInput().Title("AtCoder user").Value(s.acHandle),
		).Title("Handles"),
		huh.NewGroup(
			huh.NewInput().Title("Heatmap window (days)").Value(s.formWindow),
		).Title("Display"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.save()
		s.reload()
		return s, tea.Batch(
			func() tea.Msg { return settingsSavedMsg{} },
			func() tea.Msg { return statusMsg{text: "Settings saved"} },
		)
	}

	return s, cmd
}

func (s settingsModel) save() {
	s.store.SetHandle(platform.Codeforces, strings.TrimSpace(*s.cfHandle))
	s.store.SetHandle(platform.LeetCode, strings.TrimSpace(*s.lcHandle))
	s.store.SetHandle(platform.AtCoder, strings.TrimSpace(*s.acHandle))

	if days, err := strconv.Atoi(strings.TrimSpace(*s.formWindow)); err == nil && days > 0 {
		s.store.SetSetting("window_days", strconv.Itoa(days))
	}
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	title := titleStyle.Render("Settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, name := range platform.Names {
		dot := lipgloss.NewStyle().Foreground(platformColor(name)).Render("●")
		label := lipgloss.NewStyle().Width(16).Render(name)
		value := s.handleFor(name)
		if value == "" {
			rows = append(rows, fmt.Sprintf("  %s %s %s", dot, label, mutedStyle.Render("not set")))
		} else {
			rows = append(rows, fmt.Sprintf("  %s %s %s", dot, label, highlightStyle.Render(value)))
		}
	}

	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("  %s %s",
		lipgloss.NewStyle().Width(18).Render("heatmap window"),
		highlightStyle.Render(s.windowDays+" days")))

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("Press enter to edit"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
