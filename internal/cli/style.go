package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/JaimeStill/consult/internal/consultations"
)

// palette renders against one writer so that colour is dropped when the
// output is not a terminal.
type palette struct {
	title   lipgloss.Style
	header  lipgloss.Style
	muted   lipgloss.Style
	today   lipgloss.Style
	urgency map[consultations.Urgency]lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)

	return palette{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1),
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("241")),
		today:  r.NewStyle().Bold(true).Underline(true),
		urgency: map[consultations.Urgency]lipgloss.Style{
			consultations.UrgencyOverdue:        r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
			consultations.UrgencyDueToday:       r.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
			consultations.UrgencyActionRequired: r.NewStyle().Foreground(lipgloss.Color("226")),
			consultations.UrgencyNormal:         r.NewStyle().Foreground(lipgloss.Color("69")),
			consultations.UrgencyCompleted:      r.NewStyle().Foreground(lipgloss.Color("46")),
		},
	}
}

func (p palette) paint(u consultations.Urgency, s string) string {
	style, ok := p.urgency[u]
	if !ok {
		return s
	}
	return style.Render(s)
}
