package reconcile

import (
	"testing"

	"syncbot/internal/sheet"
)

var rosterMapping = map[string]string{
	"first_name":     "first_name",
	"slack_id":       "slack_id",
	"slack_username": "slack_username",
}

func rosterSheet(t *testing.T, rows ...[]string) *sheet.Sheet {
	t.Helper()
	records := append([][]string{{"slack_id", "first_name", "slack_username"}}, rows...)
	s, err := sheet.New(records)
	if err != nil {
		t.Fatalf("building sheet: %v", err)
	}
	return s
}

func TestReconcileLockedCellNeverChanges(t *testing.T) {
	s := rosterSheet(t, []string{"U123", "lock: do not touch", "old"})
	rec := Record{ID: "U123", Fields: map[string]string{
		"first_name":     "New",
		"slack_id":       "U123",
		"slack_username": "new",
	}}

	plan := Reconcile(s, rec, "slack_id", rosterMapping, DefaultOptions())
	if !plan.Matched {
		t.Fatal("expected a match")
	}
	if len(plan.Changes) != 1 {
		t.Fatalf("changes = %v, want exactly one", plan.Changes)
	}
	ch := plan.Changes[0]
	if ch.Column != "slack_username" || ch.Old != "old" || ch.New != "new" {
		t.Fatalf("change = %+v, want slack_username old->new", ch)
	}
	if plan.Skipped != 1 {
		t.Fatalf("skipped = %d, want the locked cell counted", plan.Skipped)
	}
}

func TestReconcileLockPrefixCaseInsensitive(t *testing.T) {
	s := rosterSheet(t, []string{"U123", "  LOCK: keep ", "old"})
	rec := Record{ID: "U123", Fields: map[string]string{"first_name": "New", "slack_username": "old"}}

	plan := Reconcile(s, rec, "slack_id", rosterMapping, DefaultOptions())
	for _, ch := range plan.Changes {
		if ch.Column == "first_name" {
			t.Fatalf("locked cell proposed for change: %+v", ch)
		}
	}
}

func TestReconcileSkipKeywords(t *testing.T) {
	for _, marker := range []string{"pass", "SKIP", " none "} {
		s := rosterSheet(t, []string{"U123", marker, "old"})
		rec := Record{ID: "U123", Fields: map[string]string{"first_name": "New", "slack_username": "old"}}

		plan := Reconcile(s, rec, "slack_id", rosterMapping, DefaultOptions())
		for _, ch := range plan.Changes {
			if ch.Column == "first_name" {
				t.Fatalf("skip-marked cell %q proposed for change: %+v", marker, ch)
			}
		}
	}
}

func TestReconcileNoOpSuppression(t *testing.T) {
	s := rosterSheet(t, []string{"U123", "Ada", "ada"})
	rec := Record{ID: "U123", Fields: map[string]string{
		"first_name":     "Ada",
		"slack_id":       "U123",
		"slack_username": "ada",
	}}

	plan := Reconcile(s, rec, "slack_id", rosterMapping, DefaultOptions())
	if !plan.Matched {
		t.Fatal("expected a match")
	}
	if len(plan.Changes) != 0 {
		t.Fatalf("expected empty plan for identical values, got %v", plan.Changes)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	rows := [][]string{
		{"slack_id", "first_name", "slack_username"},
		{"U123", "Old", "stale"},
	}
	s, err := sheet.New(rows)
	if err != nil {
		t.Fatalf("building sheet: %v", err)
	}
	rec := Record{ID: "U123", Fields: map[string]string{
		"first_name":     "New",
		"slack_id":       "U123",
		"slack_username": "fresh",
	}}

	plan := Reconcile(s, rec, "slack_id", rosterMapping, DefaultOptions())
	if len(plan.Changes) != 2 {
		t.Fatalf("first pass changes = %v, want 2", plan.Changes)
	}

	// Apply the plan to a rebuilt sheet, then recompute.
	applied := [][]string{rows[0], append([]string(nil), rows[1]...)}
	for _, ch := range plan.Changes {
		for i, header := range rows[0] {
			if header == ch.Column {
				applied[1][i] = ch.New
			}
		}
	}
	s2, err := sheet.New(applied)
	if err != nil {
		t.Fatalf("rebuilding sheet: %v", err)
	}
	again := Reconcile(s2, rec, "slack_id", rosterMapping, DefaultOptions())
	if len(again.Changes) != 0 {
		t.Fatalf("second pass should be empty, got %v", again.Changes)
	}
}

func TestReconcileNoMatch(t *testing.T) {
	s := rosterSheet(t, []string{"U999", "Ada", "ada"})
	rec := Record{ID: "U123", Fields: map[string]string{"first_name": "New"}}

	plan := Reconcile(s, rec, "slack_id", rosterMapping, DefaultOptions())
	if plan.Matched {
		t.Fatal("expected NoMatch")
	}
	if plan.RowNumber != 0 || len(plan.Changes) != 0 {
		t.Fatalf("NoMatch plan should be empty, got %+v", plan)
	}
}

func TestReconcileIdentifierIsCaseSensitive(t *testing.T) {
	s := rosterSheet(t, []string{"u123", "Ada", "ada"})
	rec := Record{ID: "U123", Fields: map[string]string{"first_name": "New"}}

	plan := Reconcile(s, rec, "slack_id", rosterMapping, DefaultOptions())
	if plan.Matched {
		t.Fatal("identifiers are opaque; case must not be folded")
	}
}

func TestReconcileFirstMatchingRowWins(t *testing.T) {
	s := rosterSheet(t,
		[]string{"U123", "First", "one"},
		[]string{"U123", "Second", "two"},
	)
	rec := Record{ID: "U123", Fields: map[string]string{"first_name": "New"}}

	plan := Reconcile(s, rec, "slack_id", rosterMapping, DefaultOptions())
	if plan.RowNumber != 2 {
		t.Fatalf("row number = %d, want 2 (first match)", plan.RowNumber)
	}
}

func TestReconcileMappedColumnAbsentFromSheet(t *testing.T) {
	s := rosterSheet(t, []string{"U123", "Ada", "ada"})
	mapping := map[string]string{
		"first_name": "first_name",
		"avatar_url": "avatar_url", // not a column on this sheet
	}
	rec := Record{ID: "U123", Fields: map[string]string{
		"first_name": "Ada",
		"avatar_url": "https://example.com/a.png",
	}}

	plan := Reconcile(s, rec, "slack_id", mapping, DefaultOptions())
	if len(plan.Changes) != 0 {
		t.Fatalf("absent mapped column should be ignored, got %v", plan.Changes)
	}
}

func TestReconcileMissingFieldClearsCell(t *testing.T) {
	s := rosterSheet(t, []string{"U123", "Stale Name", "ada"})
	rec := Record{ID: "U123", Fields: map[string]string{
		"slack_id":       "U123",
		"slack_username": "ada",
		// no first_name: clearing is a legitimate outcome
	}}

	plan := Reconcile(s, rec, "slack_id", rosterMapping, DefaultOptions())
	if len(plan.Changes) != 1 {
		t.Fatalf("changes = %v, want one clearing change", plan.Changes)
	}
	ch := plan.Changes[0]
	if ch.Column != "first_name" || ch.Old != "Stale Name" || ch.New != "" {
		t.Fatalf("change = %+v, want first_name cleared", ch)
	}
}

func TestReconcileChangesFollowColumnOrder(t *testing.T) {
	s := rosterSheet(t, []string{"U123", "Old", "stale"})
	rec := Record{ID: "U123", Fields: map[string]string{
		"first_name":     "New",
		"slack_username": "fresh",
	}}

	plan := Reconcile(s, rec, "slack_id", rosterMapping, DefaultOptions())
	if len(plan.Changes) != 2 {
		t.Fatalf("changes = %v, want 2", plan.Changes)
	}
	if plan.Changes[0].Column != "first_name" || plan.Changes[1].Column != "slack_username" {
		t.Fatalf("changes out of column order: %v", plan.Changes)
	}
}

func TestAppendValues(t *testing.T) {
	s := rosterSheet(t)
	rec := Record{ID: "U777", Fields: map[string]string{
		"first_name":     "Grace",
		"slack_id":       "U777",
		"slack_username": "grace",
	}}

	values := AppendValues(s, rec, rosterMapping)
	want := []string{"U777", "Grace", "grace"}
	if len(values) != len(want) {
		t.Fatalf("values = %v, want %v", values, want)
	}
	for i := range want {
		if values[i] != want[i] {
			t.Fatalf("values[%d] = %q, want %q", i, values[i], want[i])
		}
	}
}

func TestAppendValuesUnmappedColumnsEmpty(t *testing.T) {
	s, err := sheet.New([][]string{{"slack_id", "notes", "first_name"}})
	if err != nil {
		t.Fatalf("building sheet: %v", err)
	}
	rec := Record{ID: "U1", Fields: map[string]string{"slack_id": "U1", "first_name": "Ada"}}

	values := AppendValues(s, rec, rosterMapping)
	if values[1] != "" {
		t.Fatalf("unmapped column should stay empty, got %q", values[1])
	}
}
