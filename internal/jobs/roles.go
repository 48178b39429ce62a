package jobs

import (
	"fmt"
	"log"
	"strings"

	"syncbot/internal/config"
	"syncbot/internal/integrations/gsheet"
	"syncbot/internal/notify"
	"syncbot/internal/sheet"
)

// Role rows that never belong in the public announcement. Overridable via
// role_exclude_list.
var defaultRoleExcludes = []string{
	"leads wrangler",
	"transparency wrangler",
	"venue booking",
	"speaker booking",
	"venue",
}

// RunRoles announces who signed up for this month's hacknight roles. The
// roles sheet has one column per month, headed like "Jan 2006"; vacant
// roles get a help-wanted callout instead of a name.
func RunRoles(cfg config.Config, opts Options) error {
	cfg.RequireFields(map[string]string{
		"roles_sheet_url":            cfg.RolesSheetURL,
		"slack_announce_channel_org": cfg.SlackOrgChannel,
	})

	ws, err := gsheet.Fetch(cfg.RolesSheetURL)
	if err != nil {
		return err
	}

	monthHeader := nowFn().In(cfg.Location).Format("Jan 2006")
	excludes := cfg.RoleExcludeList
	if excludes == nil {
		excludes = defaultRoleExcludes
	}

	roles, err := RolesForMonth(ws.Sheet, monthHeader, excludes)
	if err != nil {
		return err
	}
	log.Printf("roles: month=%q roles=%d", monthHeader, len(roles))

	text, err := notify.RenderRoles(roles)
	if err != nil {
		return err
	}
	if err := poster(cfg, opts).Post(cfg.SlackOrgChannel, text); err != nil {
		return err
	}
	if !opts.Noop {
		run := newRun("roles")
		run.FinishedAt = nowFn()
		run.Matched = len(roles)
		recordRun(cfg, run, nil)
	}
	return nil
}

// RolesForMonth reads the role column and the month's organizer column,
// drops excluded and fully-empty rows, and fills vacancies with the
// help-wanted text.
func RolesForMonth(s *sheet.Sheet, monthHeader string, excludes []string) ([]notify.RoleAssignment, error) {
	if !s.HasColumn("role") {
		return nil, fmt.Errorf("roles sheet has no 'role' column")
	}
	if !s.HasColumn(monthHeader) {
		return nil, fmt.Errorf("roles sheet has no column for %q", monthHeader)
	}

	var roles []notify.RoleAssignment
	for _, row := range s.Rows() {
		role := strings.TrimSpace(row.Get("role"))
		organizer := strings.TrimSpace(row.Get(monthHeader))
		if role == "" && organizer == "" {
			continue
		}
		if role == "" || excludedRole(role, excludes) {
			continue
		}
		if organizer == "" {
			organizer = notify.HelpWanted
		}
		roles = append(roles, notify.RoleAssignment{Role: role, Organizer: organizer})
	}
	return roles, nil
}

func excludedRole(role string, excludes []string) bool {
	for _, ex := range excludes {
		if sheet.NormalizeKey(role) == sheet.NormalizeKey(ex) {
			return true
		}
	}
	return false
}
