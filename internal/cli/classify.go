package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/consult/internal/consultations"
)

func newClassifyCommand(opts *options) *cobra.Command {
	var (
		deadline string
		decision string
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a single decision and deadline",
		Long: `Print both deadline counts and the resulting decision status and urgency.

The status counts whole days to the start of the deadline day, rounded up,
and treats one day left as overdue. The urgency counts to the end of the
deadline day, rounded down, so a deadline of tomorrow is overdue by status and
action_required by urgency.`,
		Example: "  consult classify --deadline 2026-10-20 --decision conditional_endorsement",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := opts.clock()
			if err != nil {
				return err
			}

			due, err := consultations.ParseDate(deadline)
			if err != nil {
				return err
			}

			d, err := consultations.ParseDecision(decision)
			if err != nil {
				return err
			}

			urgency := consultations.ClassifyUrgency(d, due, now)
			p := newPalette(cmd.OutOrStdout())
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "deadline:            %s\n", due)
			fmt.Fprintf(out, "decision:            %s\n", d.Label())
			fmt.Fprintf(out, "days until deadline: %d\n", consultations.DaysUntilDeadline(due, now))
			fmt.Fprintf(out, "days remaining:      %d\n", consultations.DaysRemaining(due, now))
			fmt.Fprintf(out, "status:              %s\n", consultations.ClassifyDecisionStatus(d, due, now))
			fmt.Fprintf(out, "urgency:             %s\n", p.paint(urgency, string(urgency)))
			return nil
		},
	}

	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline date (2006-01-02)")
	cmd.Flags().StringVar(&decision, "decision", "", "Decision value; empty means no decision")
	cmd.MarkFlagRequired("deadline")
	return cmd
}
