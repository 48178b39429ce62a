package jobs

import (
	"fmt"
	"log"
	"strings"

	"syncbot/internal/config"
	"syncbot/internal/integrations/gsheet"
	"syncbot/internal/integrations/rebrandly"
	"syncbot/internal/sheet"
)

// ShortlinkPlan separates rows into links to create, links whose destination
// or title changed, and rows skipped for missing data.
type ShortlinkPlan struct {
	Create  []rebrandly.Link
	Update  []rebrandly.Link
	Skipped int
}

// RunShortlinks syncs the shortlink sheet (slashtag, destination_url,
// optional title columns) against the links on the shortlink domain.
func RunShortlinks(cfg config.Config, opts Options) error {
	cfg.RequireFields(map[string]string{
		"shortlink_sheet_url": cfg.ShortlinkSheetURL,
		"rebrandly_api_key":   cfg.RebrandlyAPIKey,
	})

	ws, err := gsheet.Fetch(cfg.ShortlinkSheetURL)
	if err != nil {
		return err
	}

	client := rebrandly.NewClient(cfg.RebrandlyAPIKey)
	domain, err := client.ResolveDomain(cfg.ShortlinkDomain)
	if err != nil {
		return err
	}

	if opts.Verbose || !opts.Yes {
		fmt.Print(cfg.Describe(
			[2]string{"Shortlink Domain", domain.FullName},
			[2]string{"Spreadsheet - Worksheet", ws.Title},
			[2]string{"Spreadsheet URL", cfg.ShortlinkSheetURL},
		))
	}
	if !opts.confirm("Do you want to continue?") {
		return fmt.Errorf("aborted")
	}

	run := newRun("shortlinks")

	links, err := client.Links(domain)
	if err != nil {
		return err
	}

	plan := PlanShortlinks(ws.Sheet, links, unsetKeywords(cfg))
	log.Printf("shortlinks: domain=%s create=%d update=%d skipped=%d",
		domain.FullName, len(plan.Create), len(plan.Update), plan.Skipped)

	if opts.Noop {
		for _, l := range plan.Create {
			log.Printf("shortlinks: would create /%s -> %s", l.Slashtag, l.Destination)
		}
		for _, l := range plan.Update {
			log.Printf("shortlinks: would update /%s -> %s", l.Slashtag, l.Destination)
		}
		return nil
	}

	var errs []string
	created, updated := 0, 0
	for _, l := range plan.Create {
		if err := client.CreateLink(domain, l); err != nil {
			errs = append(errs, fmt.Sprintf("create /%s: %v", l.Slashtag, err))
			continue
		}
		created++
	}
	for _, l := range plan.Update {
		if err := client.UpdateLink(l); err != nil {
			errs = append(errs, fmt.Sprintf("update /%s: %v", l.Slashtag, err))
			continue
		}
		updated++
	}

	run.FinishedAt = nowFn()
	run.Appended = created
	run.Updated = updated
	run.Skipped = plan.Skipped
	run.Errors = strings.Join(errs, "; ")
	recordRun(cfg, run, nil)

	if len(errs) > 0 {
		return fmt.Errorf("shortlink sync finished with %d errors: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

// PlanShortlinks diffs sheet rows against existing links. Rows without a
// slashtag or with an empty/unset destination are skipped; matching is by
// exact slashtag; an existing link is updated only when something differs,
// so re-running against a synced domain plans nothing.
func PlanShortlinks(s *sheet.Sheet, links []rebrandly.Link, unset []string) ShortlinkPlan {
	var plan ShortlinkPlan
	for _, row := range s.Rows() {
		slashtag := strings.TrimSpace(row.Get("slashtag"))
		destination := strings.TrimSpace(row.Get("destination_url"))
		if slashtag == "" || destination == "" || sheet.IsUnset(destination, unset) {
			plan.Skipped++
			continue
		}

		want := rebrandly.Link{
			Slashtag:    slashtag,
			Destination: destination,
			Title:       strings.TrimSpace(row.Get("title")),
		}

		existing := rebrandly.LookupLink(links, slashtag)
		if existing == nil {
			plan.Create = append(plan.Create, want)
			continue
		}
		if existing.Destination == want.Destination && (want.Title == "" || existing.Title == want.Title) {
			continue
		}
		want.ID = existing.ID
		if want.Title == "" {
			want.Title = existing.Title
		}
		plan.Update = append(plan.Update, want)
	}
	return plan
}
