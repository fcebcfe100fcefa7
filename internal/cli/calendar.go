package cli

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/consult/internal/calendar"
	"github.com/JaimeStill/consult/internal/consultations"
)

const monthCellWidth = 16

func newCalendarCommand(opts *options) *cobra.Command {
	var (
		view        string
		date        string
		nav         string
		pendingOnly bool
	)

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Render the deadline calendar",
		Long: `Render a week (Monday to Sunday) or month grid of consultation deadlines.

--date anchors the grid (default today) and --nav moves it one period with
prev, next or today. Month cells show two consultations and a +N overflow.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := opts.clock()
			if err != nil {
				return err
			}

			state, err := calendar.StateFromQuery(date, view, nav, now)
			if err != nil {
				return err
			}

			span := calendar.Range(state)
			records, err := opts.load(cmd.Context(), url.Values{
				"deadline_from": {span.Start.Key()},
				"deadline_to":   {span.End.Key()},
			})
			if err != nil {
				return err
			}

			if pendingOnly {
				records = unresolved(records)
			}

			grid := calendar.Build(state, records, now)
			if grid.View == calendar.ViewMonth {
				renderMonth(cmd.OutOrStdout(), grid)
			} else {
				renderWeek(cmd.OutOrStdout(), grid)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&view, "view", "week", "Calendar view: week or month")
	cmd.Flags().StringVar(&date, "date", "", "Anchor date (2006-01-02)")
	cmd.Flags().StringVar(&nav, "nav", "", "Navigate from the anchor: prev, next or today")
	cmd.Flags().BoolVar(&pendingOnly, "pending-only", false, "Show only consultations without a final decision")
	return cmd
}

func unresolved(records []consultations.Consultation) []consultations.Consultation {
	out := make([]consultations.Consultation, 0, len(records))
	for _, c := range records {
		if !c.Resolved() {
			out = append(out, c)
		}
	}
	return out
}

func renderWeek(w io.Writer, g calendar.Grid) {
	p := newPalette(w)
	fmt.Fprintln(w, p.title.Render(g.Label))

	for _, cell := range g.Weeks[0] {
		heading := cell.Date.Format("Mon Jan 2")
		if cell.IsToday {
			heading = p.today.Render(heading)
		}
		fmt.Fprintln(w, p.header.Render(heading))

		if len(cell.Consultations) == 0 {
			fmt.Fprintln(w, p.muted.Render("  -"))
			continue
		}
		for _, card := range cell.Consultations {
			fmt.Fprintf(w, "  %s %s / %s (%s)\n",
				p.paint(card.Urgency, "●"),
				card.Company,
				card.Project,
				card.DecisionLabel,
			)
		}
	}

	fmt.Fprintln(w, p.muted.Render(fmt.Sprintf("%d consultations", g.Total)))
}

func renderMonth(w io.Writer, g calendar.Grid) {
	p := newPalette(w)
	fmt.Fprintln(w, p.title.Render(g.Label))

	var head strings.Builder
	for _, name := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
		head.WriteString(pad(name, monthCellWidth))
	}
	fmt.Fprintln(w, p.header.Render(strings.TrimRight(head.String(), " ")))

	// day number, inline cards, overflow
	const linesPerWeek = calendar.MonthInlineLimit + 2

	for _, week := range g.Weeks {
		var lines [linesPerWeek]strings.Builder

		for _, cell := range week {
			day := pad(cell.Date.Format("2"), monthCellWidth)
			switch {
			case cell.IsToday:
				day = p.today.Render(day)
			case !cell.InCurrentMonth:
				day = p.muted.Render(day)
			}
			lines[0].WriteString(day)

			for i := range calendar.MonthInlineLimit {
				if i >= len(cell.Inline) {
					lines[i+1].WriteString(pad("", monthCellWidth))
					continue
				}
				card := cell.Inline[i]
				lines[i+1].WriteString(p.paint(card.Urgency, pad(truncate(card.Company, monthCellWidth-1), monthCellWidth)))
			}

			overflow := ""
			if cell.Overflow > 0 {
				overflow = fmt.Sprintf("+%d more", cell.Overflow)
			}
			lines[linesPerWeek-1].WriteString(p.muted.Render(pad(overflow, monthCellWidth)))
		}

		for i := range lines {
			fmt.Fprintln(w, strings.TrimRight(lines[i].String(), " "))
		}
	}

	fmt.Fprintln(w, p.muted.Render(fmt.Sprintf("%d consultations", g.Total)))
}

func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
