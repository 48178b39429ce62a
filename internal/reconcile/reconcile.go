// Package reconcile computes the minimal set of cell changes needed to bring
// a spreadsheet row in line with a record from an external roster. It is a
// pure in-memory diff: fetching rows and writing cells back are the caller's
// job, which keeps every rule here testable without network seams.
package reconcile

import (
	"strings"

	"syncbot/internal/sheet"
)

// Record is one entry from an external source (for example a chat-service
// channel member), keyed by an opaque, case-sensitive identifier.
type Record struct {
	ID     string
	Fields map[string]string
}

// Field returns a record field, with a missing field reading as the empty
// string. Clearing a cell is a legitimate sync outcome, so an absent source
// value still participates in the diff as an explicit "".
func (r Record) Field(name string) string {
	return r.Fields[name]
}

// Change is one proposed cell edit on the matched row.
type Change struct {
	Column string
	Old    string
	New    string
}

// Plan is the outcome of reconciling one record against a sheet. When no row
// carries the record's identifier, Matched is false and the caller decides
// what to do (append a row, report, or skip) — that policy deliberately does
// not live here.
type Plan struct {
	Matched   bool
	RowNumber int // 1-based worksheet row of the match, 0 if none
	Changes   []Change
	Skipped   int // mapped cells fenced off by a lock prefix or skip keyword
}

// Options carry the per-cell override markers organizers can place in the
// sheet to fence cells off from automation.
type Options struct {
	// LockPrefix marks a cell as hands-off regardless of the incoming
	// value. Matched case-insensitively against the trimmed cell.
	LockPrefix string

	// SkipKeywords are whole-cell values that likewise exempt a cell.
	SkipKeywords []string
}

func DefaultOptions() Options {
	return Options{
		LockPrefix:   "lock:",
		SkipKeywords: []string{"pass", "skip", "none"},
	}
}

// Reconcile finds the first row whose cell under idColumn equals rec.ID
// exactly, then diffs every mapped field against its target column. The
// mapping is record field name → column header. Mapped columns missing from
// the sheet are ignored; identifiers are compared without normalization
// since service user IDs are opaque and case-sensitive.
func Reconcile(s *sheet.Sheet, rec Record, idColumn string, mapping map[string]string, opts Options) Plan {
	row, ok := match(s, idColumn, rec.ID)
	if !ok {
		return Plan{}
	}

	plan := Plan{Matched: true, RowNumber: row.Number}

	// Walk sheet columns in document order so the plan is deterministic.
	byColumn := columnToField(mapping)
	for _, header := range s.Headers() {
		field, mapped := byColumn[header]
		if !mapped {
			continue
		}

		current := row.Get(header)
		if locked(current, opts.LockPrefix) || sheet.IsUnset(current, opts.SkipKeywords) {
			plan.Skipped++
			continue
		}

		next := rec.Field(field)
		if next == current {
			continue
		}
		plan.Changes = append(plan.Changes, Change{Column: header, Old: current, New: next})
	}
	return plan
}

// AppendValues orders a record's fields by the sheet's headers, ready to be
// appended as a fresh row. Columns with no mapped field come back empty.
func AppendValues(s *sheet.Sheet, rec Record, mapping map[string]string) []string {
	byColumn := columnToField(mapping)
	values := make([]string, len(s.Headers()))
	for i, header := range s.Headers() {
		if field, ok := byColumn[header]; ok {
			values[i] = rec.Field(field)
		}
	}
	return values
}

func match(s *sheet.Sheet, idColumn, id string) (sheet.Row, bool) {
	for _, row := range s.Rows() {
		if row.Get(idColumn) == id {
			return row, true
		}
	}
	return sheet.Row{}, false
}

func locked(value, prefix string) bool {
	if prefix == "" {
		return false
	}
	return strings.HasPrefix(sheet.NormalizeKey(value), sheet.NormalizeKey(prefix))
}

func columnToField(mapping map[string]string) map[string]string {
	out := make(map[string]string, len(mapping))
	for field, column := range mapping {
		out[sheet.NormalizeKey(column)] = field
	}
	return out
}
