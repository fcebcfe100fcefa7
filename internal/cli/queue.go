package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/consult/internal/consultations"
)

func newQueueCommand(opts *options) *cobra.Command {
	var (
		search      string
		includeSent bool
	)

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show the review queue",
		Long: `Show consultations in review order: undecided before resolved, then by
days remaining. Consultations whose decision email was sent are hidden
unless --include-sent is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := opts.clock()
			if err != nil {
				return err
			}

			records, err := opts.load(cmd.Context(), nil)
			if err != nil {
				return err
			}

			queue := consultations.ReviewQueue(records, search, includeSent, now)
			renderQueue(cmd.OutOrStdout(), queue, now)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Match company or project (case-insensitive)")
	cmd.Flags().BoolVar(&includeSent, "include-sent", false, "Include consultations whose email was sent")
	return cmd
}

func renderQueue(w io.Writer, queue []consultations.Consultation, now time.Time) {
	p := newPalette(w)

	if len(queue) == 0 {
		fmt.Fprintln(w, p.muted.Render("No consultations to review."))
		return
	}

	fmt.Fprintln(w, p.title.Render(fmt.Sprintf("Review queue (%d)", len(queue))))
	fmt.Fprintln(w, p.header.Render(fmt.Sprintf("%-10s %5s  %-16s %-24s %-28s %-30s %s",
		"DEADLINE", "DAYS", "URGENCY", "COMPANY", "PROJECT", "DECISION", "EMAIL")))

	for _, row := range consultations.AnnotateAll(queue, now, nil) {
		urgency := fmt.Sprintf("%-16s", row.Urgency)
		fmt.Fprintf(w, "%-10s %5d  %s %-24s %-28s %-30s %s\n",
			row.Deadline,
			row.DaysRemaining,
			p.paint(row.Urgency, urgency),
			truncate(row.Company, 24),
			truncate(row.Project, 28),
			row.DecisionLabel,
			row.EmailAction,
		)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
