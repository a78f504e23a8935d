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
	"github.com/sadopc/cpcdash/internal/store"
)

type platformsModel struct {
	store     *store.Store
	refresher *platform.Refresher
	width     int
	height    int

	stats    map[string]platform.UserStats
	errs     map[string]error
	handles  map[string]string
	loading  bool
	lastSync time.Time
}

func newPlatformsModel(s *store.Store, refresher *platform.Refresher) platformsModel {
	return platformsModel{
		store:     s,
		refresher: refresher,
		stats:     make(map[string]platform.UserStats),
		errs:      make(map[string]error),
		handles:   make(map[string]string),
	}
}

func (p *platformsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p platformsModel) loadHandles() platformsModel {
	p.handles = make(map[string]string)
	all, err := p.store.AllHandles()
	if err != nil {
		return p
	}
	for _, h := range all {
		p.handles[h.Platform] = h.Value
	}
	return p
}

// refreshAll fetches every configured platform concurrently. The
// command only fetches; the summed total is applied to the series in
// App.Update once the result message lands back on the update loop.
func (p platformsModel) refreshAll() tea.Cmd {
	refresher := p.refresher
	handles := make(map[string]string, len(p.handles))
	for k, v := range p.handles {
		handles[k] = v
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		result := refresher.FetchAll(ctx, handles)
		return statsDataMsg{result: result}
	}
}

func (p platformsModel) update(msg tea.Msg) (platformsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		p.loading = false
		p.lastSync = time.Now()
		p.errs = msg.result.Errors
		for _, s := range msg.result.Stats {
			p.stats[s.Platform] = s
		}
		var cmd tea.Cmd
		if msg.result.Recorded {
			cmd = func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Synced: %d solved total", msg.result.Total)}
			}
		}
		return p, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Refresh):
			p = p.loadHandles()
			if len(p.handles) == 0 {
				return p, func() tea.Msg {
					return statusMsg{text: "No handles configured. Press 5 to set them up.", isError: true}
				}
			}
			p.loading = true
			return p, p.refreshAll()
		}
	}
	return p, nil
}

func (p platformsModel) view() string {
	w := p.width - 4
	title := titleStyle.Render("Platforms")

	sync := ""
	if !p.lastSync.IsZero() {
		sync = mutedStyle.Render("  synced " + p.lastSync.Format("15:04"))
	}
	if p.loading {
		sync = warningStyle.Render("  syncing...")
	}

	var cards []string
	for _, name := range platform.Names {
		cards = append(cards, p.renderCard(name))
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	hint := mutedStyle.Render("  r: refresh all")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title+sync, "", row, "", hint),
	)
}

func (p platformsModel) renderCard(name string) string {
	dot := lipgloss.NewStyle().Foreground(platformColor(name)).Render("●")
	header := titleStyle.Render(fmt.Sprintf("%s %s", dot, name))

	var lines []string
	lines = append(lines, header)

	handle := p.handles[name]
	if handle == "" {
		lines = append(lines, mutedStyle.Render("no handle"))
	} else {
		lines = append(lines, highlightStyle.Render(handle))
	}

	if _, failed := p.errs[name]; failed {
		lines = append(lines, errorStyle.Render("unavailable"))
	} else if stats, ok := p.stats[name]; ok {
		lines = append(lines, fmt.Sprintf("solved %s", successStyle.Render(fmt.Sprintf("%d", stats.SolvedCount))))
		if stats.Rating > 0 {
			lines = append(lines, fmt.Sprintf("rating %s", warningStyle.Render(fmt.Sprintf("%d", stats.Rating))))
		}
		if stats.Rank != "" {
			lines = append(lines, mutedStyle.Render(stats.Rank))
		}
	} else {
		lines = append(lines, mutedStyle.Render("not synced"))
	}

	cardWidth := max(20, (p.width-12)/len(platform.Names))
	return panelStyle.Width(cardWidth).Render(strings.Join(lines, "\n"))
}
