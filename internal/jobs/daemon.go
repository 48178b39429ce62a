package jobs

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/robfig/cron/v3"

	"syncbot/internal/config"
)

// jobRunners maps schedule names to their entry points. Interactive
// confirmation makes no sense under cron, so scheduled runs always behave
// as --yes.
var jobRunners = map[string]func(config.Config, Options) error{
	"roster":     RunRoster,
	"booking":    RunBooking,
	"shortlinks": RunShortlinks,
	"pitches":    RunPitches,
	"cards":      RunCards,
	"roles":      RunRoles,
}

// RunDaemon schedules the jobs named in the config's schedules map, each on
// its own 5-field cron expression, and blocks forever.
func RunDaemon(cfg config.Config, opts Options) error {
	if len(cfg.Schedules) == 0 {
		return fmt.Errorf("no schedules configured")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser), cron.WithLocation(cfg.Location))

	names := make([]string, 0, len(cfg.Schedules))
	for name := range cfg.Schedules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		runner, ok := jobRunners[name]
		if !ok {
			return fmt.Errorf("unknown job %q in schedules", name)
		}
		schedule := cfg.Schedules[name]

		name := name
		_, err := c.AddFunc(schedule, func() {
			log.Printf("daemon: running %s", name)
			jobOpts := opts
			jobOpts.Yes = true
			if err := runner(cfg, jobOpts); err != nil {
				log.Printf("daemon: %s failed: %v", name, err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid schedule for %s (%q): %w", name, schedule, err)
		}
		log.Printf("daemon: scheduled %s (cron: %s)", name, schedule)
	}

	log.Printf("daemon: %d jobs scheduled (%s)", len(names), strings.Join(names, ", "))
	c.Run()
	return nil
}
