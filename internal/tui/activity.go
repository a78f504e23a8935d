package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/cpcdash/internal/activity"
	"github.com/sadopc/cpcdash/internal/dates"
)

type activityModel struct {
	series     *activity.Series
	windowDays int
	width      int
	height     int

	days  []activity.DailyActivity
	chart barchart.Model
}

func newActivityModel(series *activity.Series, windowDays int) activityModel {
	if windowDays <= 0 {
		windowDays = activity.DefaultWindowDays
	}
	m := activityModel{
		series:     series,
		windowDays: windowDays,
		chart:      barchart.New(60, 10),
	}
	m.reload()
	return m
}

func (a *activityModel) setSize(w, h int) {
	a.width = w
	a.height = h
	a.buildChart()
}

func (a *activityModel) setWindow(days int) {
	if days <= 0 {
		days = activity.DefaultWindowDays
	}
	a.windowDays = days
	a.reload()
}

func (a *activityModel) reload() {
	a.days = a.series.DeriveDailyActivity(a.windowDays, dates.Today())
	a.buildChart()
}

func (a activityModel) update(msg tea.Msg) (activityModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		if msg.result.Recorded {
			a.reload()
		}
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Refresh) {
			a.reload()
			return a, nil
		}
	}
	return a, nil
}

func (a activityModel) view() string {
	w := a.width - 4
	title := titleStyle.Render("Activity")

	heatmap := a.renderHeatmap()
	cards := a.renderStatCards()
	chartTitle := mutedStyle.Render("Last 14 days")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title, "", cards, "", heatmap, "", chartTitle, a.chart.View(),
		),
	)
}

// renderHeatmap draws the year grid: one column per week, one row per
// weekday, Sunday on top, brightest cell for the busiest days.
func (a activityModel) renderHeatmap() string {
	if len(a.days) == 0 {
		return mutedStyle.Render("No activity recorded yet.")
	}

	byDay := make(map[dates.Day]int, len(a.days))
	for _, d := range a.days {
		byDay[d.Day] = d.Level
	}

	first := a.days[0].Day
	last := a.days[len(a.days)-1].Day

	// Align the first column to the Sunday on or before the window start.
	start := first.AddDays(-int(first.Weekday()))

	weeks := a.width - 12
	if weeks > 53 {
		weeks = 53
	}
	if weeks < 4 {
		weeks = 4
	}
	// Keep the rightmost columns when the terminal is narrow.
	totalWeeks := last.Sub(start)/7 + 1
	if totalWeeks > weeks {
		start = start.AddDays(7 * (totalWeeks - weeks))
	}

	var rows []string
	labels := [7]string{"   ", "Mon", "   ", "Wed", "   ", "Fri", "   "}
	for weekday := 0; weekday < 7; weekday++ {
		var sb strings.Builder
		sb.WriteString(mutedStyle.Render(labels[weekday]) + " ")
		for d := start.AddDays(weekday); !d.After(last); d = d.AddDays(7) {
			if d.Before(first) {
				sb.WriteString(" ")
				continue
			}
			level := byDay[d]
			sb.WriteString(lipgloss.NewStyle().Foreground(levelColors[level]).Render("■"))
		}
		rows = append(rows, sb.String())
	}

	legend := mutedStyle.Render("    less ")
	for _, c := range levelColors {
		legend += lipgloss.NewStyle().Foreground(c).Render("■")
	}
	legend += mutedStyle.Render(" more")
	rows = append(rows, legend)

	return strings.Join(rows, "\n")
}

func (a activityModel) renderStatCards() string {
	today := dates.Today()
	cards := []struct {
		label string
		value int
	}{
		{"Today", a.series.RecentSum(1, today)},
		{"Yesterday", a.series.RecentSum(2, today) - a.series.RecentSum(1, today)},
		{"7 days", a.series.RecentSum(7, today)},
		{"30 days", a.series.RecentSum(30, today)},
		{"365 days", a.series.RecentSum(365, today)},
	}

	var rendered []string
	for _, c := range cards {
		content := lipgloss.JoinVertical(lipgloss.Center,
			successStyle.Bold(true).Render(fmt.Sprintf("%d", c.value)),
			mutedStyle.Render(c.label),
		)
		rendered = append(rendered, panelStyle.Padding(0, 2).Render(content))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (a *activityModel) buildChart() {
	chartWidth := a.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	a.chart = barchart.New(chartWidth, 8)

	if len(a.days) == 0 {
		return
	}

	n := min(14, len(a.days))
	recent := a.days[len(a.days)-n:]

	var bars []barchart.BarData
	for _, d := range recent {
		style := lipgloss.NewStyle().Foreground(levelColors[max(d.Level, 1)])
		if d.Delta == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: d.Day.Time().Format("02"),
			Values: []barchart.BarValue{
				{Name: d.Day.String(), Value: float64(d.Delta), Style: style},
			},
		})
	}

	a.chart.PushAll(bars)
	a.chart.Draw()
}
