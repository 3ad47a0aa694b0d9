package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/cardwatch/internal/cards"
	"github.com/five82/cardwatch/internal/query"
)

const (
	cardWidth   = 24
	cardGap     = 1
	defaultCols = 3
)

// View implements tea.Model.
func (m Model) View() string {
	styles := m.theme.Styles()

	sections := []string{m.renderHeader(styles)}
	if banner := m.renderBanner(styles); banner != "" {
		sections = append(sections, banner)
	}
	sections = append(sections, m.renderCards(styles))
	if m.found != nil {
		sections = append(sections, m.renderFound(styles))
	}
	if m.finding {
		sections = append(sections, m.findInput.View())
	}
	if m.status != "" {
		style := styles.MutedText
		if m.statusErr {
			style = styles.DangerText
		}
		sections = append(sections, style.Render(m.status))
	}
	sections = append(sections, styles.Footer.Render(m.help.View(m.keys)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(styles Styles) string {
	snap := m.snapshot
	parts := []string{
		styles.Logo.Render("cardwatch"),
		styles.StateStyle(snap.State).Render(snap.State.String()),
		styles.Text.Render(fmt.Sprintf("%d cards", len(snap.Data))),
	}
	if !snap.LastUpdated.IsZero() {
		parts = append(parts, styles.MutedText.Render("updated "+snap.LastUpdated.Format("15:04:05")))
	}
	if snap.PollInterval > 0 {
		parts = append(parts, styles.InfoText.Render("polling every "+snap.PollInterval.String()))
	}
	if m.pending > 0 {
		parts = append(parts, styles.WarningText.Render(fmt.Sprintf("%d pending", m.pending)))
	}
	return styles.Header.Render(strings.Join(parts, "  "))
}

// renderBanner describes network activity and errors. Stale data stays on
// screen underneath it.
func (m Model) renderBanner(styles Styles) string {
	snap := m.snapshot
	switch {
	case snap.State == query.Loading && !snap.HasData:
		return m.spinner.View() + " " + styles.AccentText.Render("Loading cards...")
	case snap.State == query.Refetching:
		return m.spinner.View() + " " + styles.WarningText.Render("Refetching...")
	case snap.State == query.PollingRefetch:
		return m.spinner.View() + " " + styles.FaintText.Render("Polling...")
	case snap.Err != nil:
		msg := "Error: " + snap.Err.Error()
		if snap.IsOffline() {
			msg += fmt.Sprintf(" (offline, %d failures in a row)", snap.ConsecutiveFailures)
		}
		return styles.DangerText.Render(msg)
	}
	return ""
}

func (m Model) renderCards(styles Styles) string {
	data := m.snapshot.Data
	if len(data) == 0 {
		if !m.snapshot.HasData {
			return styles.FaintText.Render("No data yet.")
		}
		return styles.MutedText.Render("No cards. Press a to add one.")
	}

	cols := defaultCols
	if m.width > 0 {
		cols = max(m.width/(cardWidth+4+cardGap), 1)
	}

	var rows []string
	for start := 0; start < len(data); start += cols {
		end := min(start+cols, len(data))
		boxes := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			style := styles.Card
			if i == m.selected {
				style = styles.SelectedCard
			}
			boxes = append(boxes, style.MarginRight(cardGap).Render(cardBody(data[i])))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderFound(styles Styles) string {
	label := styles.AccentText.Render(fmt.Sprintf("Find %q:", m.found.name))
	if m.found.card == nil {
		return label + " " + styles.MutedText.Render("no match")
	}
	c := m.found.card
	return label + " " + styles.Text.Render(fmt.Sprintf("%s %s (%s)", c.CaseName, c.Name, c.Sex))
}

func cardBody(c cards.Card) string {
	return strings.Join([]string{
		lipgloss.NewStyle().Bold(true).Render(c.CaseName),
		c.Name,
		c.Sex,
		shortID(c.ID),
	}, "\n")
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
