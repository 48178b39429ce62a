package jobs

import (
	"log"
	"path/filepath"
	"strings"

	"syncbot/internal/booking"
	"syncbot/internal/config"
	"syncbot/internal/integrations/gsheet"
	"syncbot/internal/notify"
	"syncbot/internal/sheet"
)

// RunBooking announces venue and speaker booking status for the upcoming
// hacknights listed on the events sheet. With --file the events come from a
// local CSV or .xlsx export instead.
func RunBooking(cfg config.Config, opts Options) error {
	cfg.RequireFields(map[string]string{
		"slack_announce_channel_org": cfg.SlackOrgChannel,
	})

	run := newRun("booking")

	var (
		events *sheet.Sheet
		source string
	)
	if opts.File != "" {
		s, err := loadLocalSheet(opts.File)
		if err != nil {
			return err
		}
		events, source = s, opts.File
	} else {
		cfg.RequireFields(map[string]string{"events_sheet_url": cfg.EventsSheetURL})
		ws, err := gsheet.Fetch(cfg.EventsSheetURL)
		if err != nil {
			return err
		}
		events, source = ws.Sheet, ws.Title
	}

	report := booking.Classify(events, nowFn().In(cfg.Location), booking.Options{
		UnsetKeywords: unsetKeywords(cfg),
		RenderCap:     cfg.RenderCap,
	})
	log.Printf("booking: source=%q upcoming=%d venue_line=%q speaker_line=%q",
		source, len(report.Venue), report.VenueLine(), report.SpeakerLine())

	text, err := notify.RenderBooking(notify.BookingMessage{
		VenueLine:   report.VenueLine(),
		SpeakerLine: report.SpeakerLine(),
	})
	if err != nil {
		return err
	}

	if err := poster(cfg, opts).Post(cfg.SlackOrgChannel, text); err != nil {
		return err
	}
	if !opts.Noop {
		run.FinishedAt = nowFn()
		run.Matched = len(report.Venue)
		recordRun(cfg, run, nil)
	}
	return nil
}

func loadLocalSheet(path string) (*sheet.Sheet, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return sheet.LoadWorkbook(path, "")
	}
	return sheet.LoadCSVFile(path)
}
