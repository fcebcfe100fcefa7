package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/consult/pkg/formatting"
)

func newDraftsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "drafts [consultation-id]",
		Short: "List stored conditional endorsement drafts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var prefix string
			if len(args) == 1 {
				prefix = args[0] + "/"
			}

			blobs, err := opts.drafts(cmd.Context(), prefix)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			p := newPalette(out)

			if len(blobs) == 0 {
				fmt.Fprintln(out, p.muted.Render("No drafts stored."))
				return nil
			}

			fmt.Fprintln(out, p.header.Render(fmt.Sprintf("%-64s %10s  %s", "KEY", "SIZE", "MODIFIED")))
			for _, b := range blobs {
				fmt.Fprintf(out, "%-64s %10s  %s\n", b.Key, formatting.FormatBytes(b.Size), b.LastModified.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}
