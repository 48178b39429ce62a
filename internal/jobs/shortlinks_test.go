package jobs

import (
	"testing"

	"syncbot/internal/integrations/rebrandly"
	"syncbot/internal/sheet"
)

func shortlinkSheet(t *testing.T, rows ...[]string) *sheet.Sheet {
	t.Helper()
	records := append([][]string{{"slashtag", "destination_url", "title"}}, rows...)
	s, err := sheet.New(records)
	if err != nil {
		t.Fatalf("building sheet: %v", err)
	}
	return s
}

func TestPlanShortlinksCreatesMissingLinks(t *testing.T) {
	s := shortlinkSheet(t,
		[]string{"meetup", "https://example.org/meetup", "Monthly Meetup"},
		[]string{"slack", "https://example.org/slack", ""},
	)

	plan := PlanShortlinks(s, nil, sheet.DefaultUnsetKeywords)
	if len(plan.Create) != 2 || len(plan.Update) != 0 || plan.Skipped != 0 {
		t.Fatalf("plan = %+v, want two creates", plan)
	}
	if plan.Create[0].Slashtag != "meetup" || plan.Create[0].Title != "Monthly Meetup" {
		t.Fatalf("first create = %+v", plan.Create[0])
	}
}

func TestPlanShortlinksSkipsIncompleteRows(t *testing.T) {
	s := shortlinkSheet(t,
		[]string{"", "https://example.org/a", ""},
		[]string{"nowhere", "", ""},
		[]string{"later", "TBD", ""},
	)

	plan := PlanShortlinks(s, nil, sheet.DefaultUnsetKeywords)
	if len(plan.Create) != 0 || plan.Skipped != 3 {
		t.Fatalf("plan = %+v, want all three rows skipped", plan)
	}
}

func TestPlanShortlinksUpdatesChangedDestination(t *testing.T) {
	s := shortlinkSheet(t, []string{"meetup", "https://example.org/new", ""})
	links := []rebrandly.Link{
		{ID: "abc", Slashtag: "meetup", Destination: "https://example.org/old", Title: "Monthly Meetup"},
	}

	plan := PlanShortlinks(s, links, sheet.DefaultUnsetKeywords)
	if len(plan.Update) != 1 || len(plan.Create) != 0 {
		t.Fatalf("plan = %+v, want one update", plan)
	}
	up := plan.Update[0]
	if up.ID != "abc" {
		t.Fatalf("update must carry the existing link id, got %q", up.ID)
	}
	if up.Title != "Monthly Meetup" {
		t.Fatalf("blank sheet title must inherit the existing title, got %q", up.Title)
	}
}

func TestPlanShortlinksSyncedDomainPlansNothing(t *testing.T) {
	s := shortlinkSheet(t, []string{"meetup", "https://example.org/meetup", "Monthly Meetup"})
	links := []rebrandly.Link{
		{ID: "abc", Slashtag: "meetup", Destination: "https://example.org/meetup", Title: "Monthly Meetup"},
	}

	plan := PlanShortlinks(s, links, sheet.DefaultUnsetKeywords)
	if len(plan.Create) != 0 || len(plan.Update) != 0 {
		t.Fatalf("plan = %+v, want no work on a synced domain", plan)
	}
}

func TestPlanShortlinksTitleOnlyChange(t *testing.T) {
	s := shortlinkSheet(t, []string{"meetup", "https://example.org/meetup", "Renamed"})
	links := []rebrandly.Link{
		{ID: "abc", Slashtag: "meetup", Destination: "https://example.org/meetup", Title: "Old Name"},
	}

	plan := PlanShortlinks(s, links, sheet.DefaultUnsetKeywords)
	if len(plan.Update) != 1 || plan.Update[0].Title != "Renamed" {
		t.Fatalf("plan = %+v, want a title update", plan)
	}
}
