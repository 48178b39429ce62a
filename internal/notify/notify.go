// Package notify renders the announcement messages and hands them to a
// Poster. The stdout poster covers no-op and debug runs; the Slack poster
// lives with the rest of the Slack glue in the jobs layer.
package notify

import (
	"fmt"
	"io"
	"strings"
	"text/template"
)

// Poster delivers one rendered announcement to a channel.
type Poster interface {
	Post(channel, text string) error
}

// StdoutPoster prints instead of posting, used when no token is configured
// or the run is a dry run.
type StdoutPoster struct {
	Out io.Writer
}

func (p StdoutPoster) Post(channel, text string) error {
	fmt.Fprintf(p.Out, "--- would post to %s ---\n%s\n", channel, text)
	return nil
}

var bookingTmpl = template.Must(template.New("booking").Parse(strings.TrimSpace(`
:ctto: :ctto: :ctto: :ctto: :ctto:

Here's how our upcoming hacknights are shaping up!

:round_pushpin: *Venues:*   {{.VenueLine}}
:speaking_head_in_silhouette: *Speakers:* {{.SpeakerLine}}

Each icon is one upcoming hacknight, nearest first.
`)))

type BookingMessage struct {
	VenueLine   string
	SpeakerLine string
}

func RenderBooking(msg BookingMessage) (string, error) {
	return render(bookingTmpl, msg)
}

var pitchesTmpl = template.Must(template.New("pitches").Parse(strings.TrimSpace(`
:ctto: :ctto: :ctto: :ctto: :ctto:

Yay! Thanks to everyone who gave *this week's pitches*:

{{range .Projects}}:small_blue_diamond: {{.Name}}{{if .ChatRoom}} {{.ChatRoom}}{{end}}
{{end}}
`)))

type PitchProject struct {
	Name     string
	ChatRoom string
}

func RenderPitches(projects []PitchProject) (string, error) {
	return render(pitchesTmpl, struct{ Projects []PitchProject }{projects})
}

var rolesTmpl = template.Must(template.New("roles").Parse(strings.TrimSpace(`
:ctto: :ctto: :ctto: :ctto: :ctto:

Who's signed up for this month's hacknight roles? These heros!

{{range .Roles}}:small_blue_diamond: *{{.Role}}:* {{.Organizer}}
{{end}}
`)))

type RoleAssignment struct {
	Role      string
	Organizer string
}

// HelpWanted is what an unfilled role renders as in the announcement.
const HelpWanted = "HAALP WANTED :woman-raising-hand: <-- You?"

func RenderRoles(roles []RoleAssignment) (string, error) {
	return render(rolesTmpl, struct{ Roles []RoleAssignment }{roles})
}

func render(tmpl *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s template: %w", tmpl.Name(), err)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
