package jobs

import (
	"testing"

	"syncbot/internal/config"
	"syncbot/internal/integrations/gsheet"
	"syncbot/internal/reconcile"
	"syncbot/internal/sheet"
)

func testConfig() config.Config {
	return config.Config{
		RosterIDColumn: "slack_id",
		RosterColumns: map[string]string{
			"first_name":     "first_name",
			"slack_id":       "slack_id",
			"slack_username": "slack_username",
		},
		LockPrefix:   "lock:",
		SkipKeywords: []string{"pass", "skip", "none"},
	}
}

func rosterWorksheet(t *testing.T, rows ...[]string) *gsheet.Worksheet {
	t.Helper()
	records := append([][]string{{"slack_id", "first_name", "slack_username"}}, rows...)
	s, err := sheet.New(records)
	if err != nil {
		t.Fatalf("building sheet: %v", err)
	}
	return &gsheet.Worksheet{Sheet: s, Key: "test", Title: "Roster"}
}

func TestSyncRosterUpdatesMatchedRow(t *testing.T) {
	ws := rosterWorksheet(t,
		[]string{"U1", "Old", "stale"},
		[]string{"U2", "Grace", "grace"},
	)
	records := []reconcile.Record{
		{ID: "U1", Fields: map[string]string{"first_name": "New", "slack_id": "U1", "slack_username": "fresh"}},
		{ID: "U2", Fields: map[string]string{"first_name": "Grace", "slack_id": "U2", "slack_username": "grace"}},
	}

	dry := &gsheet.DryRun{}
	result, changes := SyncRoster(ws, records, testConfig(), dry, false)

	if result.Members != 2 || result.Matched != 2 {
		t.Fatalf("result = %+v, want 2 members matched", result)
	}
	if result.Updated != 2 {
		t.Fatalf("updated = %d, want 2 cell writes for U1", result.Updated)
	}
	if result.Appended != 0 {
		t.Fatalf("appended = %d, want 0", result.Appended)
	}
	if len(dry.Cells) != 2 {
		t.Fatalf("writer cells = %+v", dry.Cells)
	}
	// first_name is column 2 of the sheet, row 2.
	if dry.Cells[0].Row != 2 || dry.Cells[0].Column != 2 || dry.Cells[0].Value != "New" {
		t.Fatalf("first write = %+v", dry.Cells[0])
	}
	if len(changes) != 2 {
		t.Fatalf("audit changes = %+v, want 2", changes)
	}
	if changes[0].Column != "first_name" || changes[0].OldValue != "Old" || changes[0].NewValue != "New" {
		t.Fatalf("audit change = %+v", changes[0])
	}
}

func TestSyncRosterAppendsUnmatchedMember(t *testing.T) {
	ws := rosterWorksheet(t, []string{"U1", "Ada", "ada"})
	records := []reconcile.Record{
		{ID: "U9", Fields: map[string]string{"first_name": "Nye", "slack_id": "U9", "slack_username": "nye"}},
	}

	dry := &gsheet.DryRun{}
	result, changes := SyncRoster(ws, records, testConfig(), dry, false)

	if result.Matched != 0 || result.Appended != 1 {
		t.Fatalf("result = %+v, want one append", result)
	}
	if len(changes) != 0 {
		t.Fatalf("appends should not produce cell-change audit rows, got %+v", changes)
	}
	if len(dry.Appends) != 1 {
		t.Fatalf("writer appends = %+v", dry.Appends)
	}
	want := []string{"U9", "Nye", "nye"}
	for i, v := range want {
		if dry.Appends[0][i] != v {
			t.Fatalf("append values = %v, want %v", dry.Appends[0], want)
		}
	}
}

func TestSyncRosterHonorsLocks(t *testing.T) {
	ws := rosterWorksheet(t, []string{"U1", "lock: do not touch", "old"})
	records := []reconcile.Record{
		{ID: "U1", Fields: map[string]string{"first_name": "New", "slack_id": "U1", "slack_username": "new"}},
	}

	dry := &gsheet.DryRun{}
	result, _ := SyncRoster(ws, records, testConfig(), dry, false)

	if result.Updated != 1 {
		t.Fatalf("updated = %d, want only the username write", result.Updated)
	}
	if result.Skipped != 1 {
		t.Fatalf("skipped = %d, want the locked cell counted", result.Skipped)
	}
	for _, cell := range dry.Cells {
		if cell.Column == 2 {
			t.Fatalf("locked first_name column written: %+v", cell)
		}
	}
}

func TestSyncRosterSecondPassIsNoop(t *testing.T) {
	ws := rosterWorksheet(t, []string{"U1", "Old", "stale"})
	records := []reconcile.Record{
		{ID: "U1", Fields: map[string]string{"first_name": "New", "slack_id": "U1", "slack_username": "fresh"}},
	}
	cfg := testConfig()

	dry := &gsheet.DryRun{}
	_, first := SyncRoster(ws, records, cfg, dry, false)
	if len(first) == 0 {
		t.Fatal("first pass should plan changes")
	}

	// Rebuild the sheet with the writes applied; the rerun must plan nothing.
	ws2 := rosterWorksheet(t, []string{"U1", "New", "fresh"})
	dry2 := &gsheet.DryRun{}
	result, second := SyncRoster(ws2, records, cfg, dry2, false)
	if result.Updated != 0 || len(second) != 0 || len(dry2.Cells) != 0 {
		t.Fatalf("second pass not idempotent: result=%+v changes=%+v", result, second)
	}
}
