package jobs

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"syncbot/internal/config"
	"syncbot/internal/storage/sqlite"
)

const historyLimit = 20

// RunHistory prints the recent audit-trail entries for every job, plus the
// cell changes of each roster run when --verbose is set.
func RunHistory(cfg config.Config, opts Options) error {
	if !cfg.DBConfigured() {
		return fmt.Errorf("no db_path configured, no audit trail to show")
	}
	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	return writeHistory(db, os.Stdout, opts.Verbose)
}

func writeHistory(db *sql.DB, out io.Writer, verbose bool) error {
	names := make([]string, 0, len(jobRunners))
	for name := range jobRunners {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "JOB\tSTARTED\tMATCHED\tUPDATED\tAPPENDED\tSKIPPED\tERRORS")
	for _, name := range names {
		runs, err := sqlite.RecentRuns(db, name, historyLimit)
		if err != nil {
			return err
		}
		for _, run := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
				run.Job, run.StartedAt.Format("2006-01-02 15:04"),
				run.Matched, run.Updated, run.Appended, run.Skipped, run.Errors)
			if verbose {
				changes, err := sqlite.ChangesForRun(db, run.ID)
				if err != nil {
					return err
				}
				for _, ch := range changes {
					fmt.Fprintf(w, "\trow %d %s\t%q -> %q\n", ch.RowNumber, ch.Column, ch.OldValue, ch.NewValue)
				}
			}
		}
	}
	return w.Flush()
}
