// Package jobs holds one orchestrator per automation task. Each job is a
// linear fetch -> transform -> push pipeline; the transform steps live in
// the sheet, reconcile and booking packages and stay pure, so every job can
// be exercised in tests with a dry-run writer or stdout poster.
package jobs

import (
	"bufio"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/slack-go/slack"

	"syncbot/internal/config"
	slackbot "syncbot/internal/integrations/slack"
	"syncbot/internal/notify"
	"syncbot/internal/reconcile"
	"syncbot/internal/sheet"
	"syncbot/internal/storage/sqlite"
)

// Options are the flags shared by every subcommand.
type Options struct {
	Noop    bool // skip API calls that change data
	Yes     bool // skip confirmation prompts
	Verbose bool

	// File points the booking command at a local CSV or .xlsx export
	// instead of the published events sheet.
	File string
}

var nowFn = time.Now

// confirm prompts before a job writes anywhere. --yes skips it.
func (o Options) confirm(prompt string) bool {
	if o.Yes {
		return true
	}
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func reconcileOptions(cfg config.Config) reconcile.Options {
	return reconcile.Options{
		LockPrefix:   cfg.LockPrefix,
		SkipKeywords: cfg.SkipKeywords,
	}
}

func unsetKeywords(cfg config.Config) []string {
	if cfg.UnsetKeywords != nil {
		return cfg.UnsetKeywords
	}
	return sheet.DefaultUnsetKeywords
}

// poster picks where an announcement goes: Slack when a token is configured
// and the run is live, stdout otherwise.
func poster(cfg config.Config, opts Options) notify.Poster {
	if opts.Noop || !cfg.SlackConfigured() {
		return notify.StdoutPoster{Out: os.Stdout}
	}
	return slackPoster{api: slackbot.NewClient(cfg.SlackAPIToken)}
}

type slackPoster struct {
	api *slack.Client
}

func (p slackPoster) Post(channel, text string) error {
	return slackbot.PostAnnouncement(p.api, channel, text)
}

// recordRun appends the run and its applied changes to the audit trail when
// a database is configured. Audit failures are logged, never fatal; the sync
// itself already happened.
func recordRun(cfg config.Config, run sqlite.SyncRun, changes []sqlite.AppliedChange) {
	if !cfg.DBConfigured() {
		return
	}
	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		log.Printf("audit: open db: %v", err)
		return
	}
	defer db.Close()
	recordRunTo(db, run, changes)
}

func recordRunTo(db *sql.DB, run sqlite.SyncRun, changes []sqlite.AppliedChange) {
	if err := sqlite.InsertSyncRun(db, run); err != nil {
		log.Printf("audit: insert run: %v", err)
		return
	}
	if len(changes) > 0 {
		if _, err := sqlite.InsertAppliedChanges(db, changes); err != nil {
			log.Printf("audit: insert changes: %v", err)
		}
	}
}

func newRun(job string) sqlite.SyncRun {
	return sqlite.SyncRun{
		ID:        uuid.NewString(),
		Job:       job,
		StartedAt: nowFn(),
	}
}
