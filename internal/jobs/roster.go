package jobs

import (
	"fmt"
	"log"
	"strings"

	"syncbot/internal/config"
	"syncbot/internal/integrations/gsheet"
	slackbot "syncbot/internal/integrations/slack"
	"syncbot/internal/reconcile"
	"syncbot/internal/storage/sqlite"
)

// RosterResult tracks separate counters for each reconciliation outcome.
type RosterResult struct {
	Members  int
	Matched  int
	Updated  int // cells written
	Appended int // new rows for members with no matching row
	Skipped  int // cells fenced off by locks or skip keywords
	Errors   []string
}

// RunRoster syncs the member spreadsheet from the configured Slack channel's
// membership: one reconciliation pass per member, cell updates for matched
// rows, one appended row per unmatched member.
func RunRoster(cfg config.Config, opts Options) error {
	cfg.RequireFields(map[string]string{
		"slack_api_token":  cfg.SlackAPIToken,
		"roster_sheet_url": cfg.RosterSheetURL,
		"roster_channel":   cfg.RosterChannel,
	})
	if !opts.Noop {
		cfg.RequireFields(map[string]string{"google_api_token": cfg.GoogleAPIToken})
	}

	ws, err := gsheet.Fetch(cfg.RosterSheetURL)
	if err != nil {
		return err
	}

	api := slackbot.NewClient(cfg.SlackAPIToken)
	records, err := slackbot.ChannelMembers(api, cfg.RosterChannel)
	if err != nil {
		return err
	}

	if opts.Verbose || !opts.Yes {
		fmt.Print(cfg.Describe(
			[2]string{"Slack Channel", "#" + strings.TrimPrefix(cfg.RosterChannel, "#")},
			[2]string{"Spreadsheet - Worksheet", ws.Title},
			[2]string{"Spreadsheet URL", cfg.RosterSheetURL},
		))
	}
	if !opts.confirm("Do you want to continue?") {
		return fmt.Errorf("aborted")
	}

	var writer gsheet.Writer
	dry := &gsheet.DryRun{}
	if opts.Noop {
		writer = dry
	} else {
		writer = gsheet.NewAPIWriter(cfg.GoogleAPIToken)
	}

	run := newRun("roster")
	result, changes := SyncRoster(ws, records, cfg, writer, opts.Verbose)
	for i := range changes {
		changes[i].RunID = run.ID
	}

	run.FinishedAt = nowFn()
	run.Matched = result.Matched
	run.Updated = result.Updated
	run.Appended = result.Appended
	run.Skipped = result.Skipped
	run.Errors = strings.Join(result.Errors, "; ")
	if !opts.Noop {
		recordRun(cfg, run, changes)
	}

	log.Printf("roster: members=%d matched=%d updated=%d appended=%d skipped=%d errors=%d",
		result.Members, result.Matched, result.Updated, result.Appended, result.Skipped, len(result.Errors))
	if opts.Noop {
		log.Printf("roster: no-op mode, %d cell writes and %d appends skipped", len(dry.Cells), len(dry.Appends))
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("roster sync finished with %d errors: %s", len(result.Errors), result.Errors[0])
	}
	return nil
}

// SyncRoster reconciles every member record against the worksheet and
// applies the resulting plans through the writer. One failing member never
// stops the rest; failures are collected in the result.
func SyncRoster(ws *gsheet.Worksheet, records []reconcile.Record, cfg config.Config, writer gsheet.Writer, verbose bool) (RosterResult, []sqlite.AppliedChange) {
	result := RosterResult{Members: len(records)}
	var audit []sqlite.AppliedChange

	rosterOpts := reconcileOptions(cfg)
	for _, rec := range records {
		plan := reconcile.Reconcile(ws.Sheet, rec, cfg.RosterIDColumn, cfg.RosterColumns, rosterOpts)

		if !plan.Matched {
			values := reconcile.AppendValues(ws.Sheet, rec, cfg.RosterColumns)
			if err := writer.AppendRow(ws, values); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("append %s: %v", rec.ID, err))
				continue
			}
			result.Appended++
			if verbose {
				log.Printf("roster: appended row for %s", rec.ID)
			}
			continue
		}

		result.Matched++
		result.Skipped += plan.Skipped
		for _, ch := range plan.Changes {
			col, ok := ws.Sheet.ColumnIndex(ch.Column)
			if !ok {
				continue
			}
			write := gsheet.CellWrite{Row: plan.RowNumber, Column: col + 1, Value: ch.New}
			if err := writer.UpdateCell(ws, write); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("update %s %s: %v", rec.ID, ch.Column, err))
				continue
			}
			result.Updated++
			audit = append(audit, sqlite.AppliedChange{
				RowNumber: plan.RowNumber,
				Column:    ch.Column,
				OldValue:  ch.Old,
				NewValue:  ch.New,
			})
			if verbose {
				log.Printf("roster: row %d %s: %q -> %q", plan.RowNumber, ch.Column, ch.Old, ch.New)
			}
		}
	}
	return result, audit
}
