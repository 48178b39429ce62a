// Package booking derives venue and speaker booking statuses from the
// loosely-edited hacknight events sheet, and renders them as a short emoji
// strip for the announcement message.
package booking

import (
	"strings"
	"time"

	"syncbot/internal/sheet"
)

type Status string

const (
	StatusBooked   Status = "booked"
	StatusUnbooked Status = "unbooked"
	StatusUnknown  Status = "unknown"
	StatusUpdates  Status = "updates"
)

var statusEmoji = map[Status]string{
	StatusBooked:   ":white_check_mark:",
	StatusUnbooked: ":heavy_multiplication_x:",
	StatusUnknown:  ":question:",
	StatusUpdates:  ":ctto:",
}

// DefaultRenderCap bounds the emoji strip; past that many upcoming events
// the announcement stops being readable.
const DefaultRenderCap = 10

// Options name the sheet columns and tune filtering. Zero values fall back
// to the conventional column names and defaults.
type Options struct {
	DateColumn  string
	VenueColumn string
	NameColumn  string
	OrgColumn   string

	// UnsetKeywords are treated as "venue not yet booked" in addition to
	// a blank cell.
	UnsetKeywords []string

	RenderCap int
}

func (o *Options) fillDefaults() {
	if o.DateColumn == "" {
		o.DateColumn = "date"
	}
	if o.VenueColumn == "" {
		o.VenueColumn = "venue"
	}
	if o.NameColumn == "" {
		o.NameColumn = "name"
	}
	if o.OrgColumn == "" {
		o.OrgColumn = "org"
	}
	if o.UnsetKeywords == nil {
		o.UnsetKeywords = sheet.DefaultUnsetKeywords
	}
	if o.RenderCap == 0 {
		o.RenderCap = DefaultRenderCap
	}
}

// Report holds the per-row classifications for each tracked dimension, in
// source order, restricted to rows whose date is still upcoming.
type Report struct {
	Venue   []Status
	Speaker []Status

	renderCap int
}

// Classify walks the sheet and classifies every upcoming row. Rows with a
// blank or unparseable date, or a date strictly before now, are dropped
// entirely; a bad row never aborts the rest. The current time is a
// parameter, not a clock read, so the function is deterministic under test.
func Classify(s *sheet.Sheet, now time.Time, opts Options) Report {
	opts.fillDefaults()
	report := Report{renderCap: opts.RenderCap}

	for _, row := range s.Rows() {
		date, ok := parseDate(row.Get(opts.DateColumn))
		if !ok || date.Before(now) {
			continue
		}

		report.Venue = append(report.Venue, classifyVenue(row.Get(opts.VenueColumn), opts.UnsetKeywords))
		report.Speaker = append(report.Speaker, classifySpeaker(row.Get(opts.NameColumn), row.Get(opts.OrgColumn)))
	}
	return report
}

func classifyVenue(venue string, unsetKeywords []string) Status {
	if strings.TrimSpace(venue) == "" || sheet.IsUnset(venue, unsetKeywords) {
		return StatusUnbooked
	}
	return StatusBooked
}

// classifySpeaker applies the derivation rules in fixed precedence: the
// project-update check runs before the unknown-prefix check, so a name like
// "-- project update" counts as updates, never unknown.
func classifySpeaker(name, org string) Status {
	if strings.TrimSpace(name) == "" && strings.TrimSpace(org) == "" {
		return StatusUnbooked
	}
	if strings.Contains(strings.ToLower(name), "project update") {
		return StatusUpdates
	}
	trimmed := strings.TrimSpace(name)
	if strings.HasPrefix(trimmed, "(") || strings.HasPrefix(trimmed, "--") {
		return StatusUnknown
	}
	return StatusBooked
}

// VenueLine renders the venue statuses as a capped emoji strip.
func (r Report) VenueLine() string {
	return Render(r.Venue, r.cap())
}

// SpeakerLine renders the speaker statuses as a capped emoji strip.
func (r Report) SpeakerLine() string {
	return Render(r.Speaker, r.cap())
}

func (r Report) cap() int {
	if r.renderCap == 0 {
		return DefaultRenderCap
	}
	return r.renderCap
}

// Render maps statuses to their indicators and joins the first max of them.
// The cap is presentation only; the status slices stay full length.
func Render(statuses []Status, max int) string {
	if max > 0 && len(statuses) > max {
		statuses = statuses[:max]
	}
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = statusEmoji[s]
	}
	return strings.Join(parts, " ")
}

// Sheet dates are human-edited, so several common forms are accepted.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
	"2 Jan 2006",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
