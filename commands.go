package main

import (
	"github.com/spf13/cobra"

	"syncbot/internal/config"
	"syncbot/internal/jobs"
)

func newRootCmd() *cobra.Command {
	var (
		opts       jobs.Options
		configPath string
	)

	root := &cobra.Command{
		Use:           "syncbot",
		Short:         "Automation scripts for keeping the org's services in sync",
		Long:          "syncbot bundles the community org's automation tasks: roster sync, booking status announcements, shortlink sync, pitch thanks, card sweeps, and role announcements.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default CONFIG_PATH, then ./config.yaml)")
	root.PersistentFlags().BoolVar(&opts.Noop, "noop", false, "Skip API calls that change/destroy data")
	root.PersistentFlags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip confirmation prompts")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show output for each action")

	add := func(use, short string, run func(config.Config, jobs.Options) error) *cobra.Command {
		cmd := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runJob(run, &configPath, &opts)()
			},
		}
		root.AddCommand(cmd)
		return cmd
	}

	add("roster", "Update the member spreadsheet from Slack channel membership", jobs.RunRoster)
	bookingCmd := add("booking", "Announce venue & speaker booking status for upcoming hacknights", jobs.RunBooking)
	bookingCmd.Flags().StringVar(&opts.File, "file", "", "Classify a local CSV or .xlsx export instead of fetching the events sheet")
	add("shortlinks", "Create/update shortlinks from the shortlink spreadsheet", jobs.RunShortlinks)
	add("pitches", "Thank this week's pitch-givers in the public channel", jobs.RunPitches)
	add("cards", "Move pitched cards to the active list", jobs.RunCards)
	add("roles", "Announce this month's hacknight role signups", jobs.RunRoles)
	add("daemon", "Run configured jobs on their cron schedules", jobs.RunDaemon)
	add("history", "Show the recent audit trail of sync runs", jobs.RunHistory)

	return root
}
