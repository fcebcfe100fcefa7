// Package cli implements the consult operator command line: terminal
// renderings of the review queue and the deadline calendar, single-record
// classification, and draft listings.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/consult/internal/consultations"
)

// EnvAPIURL supplies the default for --api.
const EnvAPIURL = "CONSULT_API_URL"

type options struct {
	file    string
	api     string
	now     string
	version string
}

func (o *options) clock() (time.Time, error) {
	if o.now == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339, o.now); err == nil {
		return t, nil
	}
	d, err := consultations.ParseDate(o.now)
	if err != nil {
		return time.Time{}, fmt.Errorf("--now: %w", err)
	}
	return d.Midnight(time.Local), nil
}

// NewRootCommand assembles the consult command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &options{version: version}

	root := &cobra.Command{
		Use:   "consult",
		Short: "Consultation request tracking from the terminal",
		Long: `consult renders the consultation review queue and deadline calendar.

Records come from a JSON export (--file, as written by GET /api/consultations/export)
or from a running service (--api, default $CONSULT_API_URL).`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.file, "file", "", "Read consultations from a JSON export file")
	flags.StringVar(&opts.api, "api", os.Getenv(EnvAPIURL), "Base URL of the consult API, e.g. http://localhost:8080/api")
	flags.StringVar(&opts.now, "now", "", "Evaluate deadlines as of this date or RFC 3339 time")

	root.AddCommand(
		newQueueCommand(opts),
		newCalendarCommand(opts),
		newClassifyCommand(opts),
		newDraftsCommand(opts),
		newVersionCommand(opts),
	)

	return root
}

// Execute runs the command tree against os.Args.
func Execute(version string) error {
	return NewRootCommand(version).Execute()
}

func newVersionCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "consult %s\n", opts.version)
		},
	}
}
