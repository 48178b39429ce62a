package notify

import (
	"strings"
	"testing"
)

func TestRenderBooking(t *testing.T) {
	text, err := RenderBooking(BookingMessage{
		VenueLine:   ":white_check_mark: :question:",
		SpeakerLine: ":heavy_multiplication_x: :ctto:",
	})
	if err != nil {
		t.Fatalf("RenderBooking failed: %v", err)
	}
	if !strings.Contains(text, "*Venues:*   :white_check_mark: :question:") {
		t.Fatalf("missing venue line:\n%s", text)
	}
	if !strings.Contains(text, "*Speakers:* :heavy_multiplication_x: :ctto:") {
		t.Fatalf("missing speaker line:\n%s", text)
	}
	if strings.HasSuffix(text, "\n") {
		t.Fatal("rendered message should not end with a newline")
	}
}

func TestRenderPitches(t *testing.T) {
	text, err := RenderPitches([]PitchProject{
		{Name: "Civic Data", ChatRoom: "#civic-data"},
		{Name: "Budget Viz"},
	})
	if err != nil {
		t.Fatalf("RenderPitches failed: %v", err)
	}
	if !strings.Contains(text, ":small_blue_diamond: Civic Data #civic-data") {
		t.Fatalf("missing project with chat room:\n%s", text)
	}
	if !strings.Contains(text, ":small_blue_diamond: Budget Viz") {
		t.Fatalf("missing project without chat room:\n%s", text)
	}
	if strings.Contains(text, "Budget Viz ") {
		t.Fatalf("unexpected trailing space after room-less project:\n%s", text)
	}
}

func TestRenderRoles(t *testing.T) {
	text, err := RenderRoles([]RoleAssignment{
		{Role: "Greeter", Organizer: "Ada"},
		{Role: "Notetaker", Organizer: HelpWanted},
	})
	if err != nil {
		t.Fatalf("RenderRoles failed: %v", err)
	}
	if !strings.Contains(text, "*Greeter:* Ada") {
		t.Fatalf("missing filled role:\n%s", text)
	}
	if !strings.Contains(text, "*Notetaker:* "+HelpWanted) {
		t.Fatalf("missing help-wanted role:\n%s", text)
	}
}

func TestStdoutPoster(t *testing.T) {
	var b strings.Builder
	p := StdoutPoster{Out: &b}
	if err := p.Post("#general", "hello"); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "#general") || !strings.Contains(out, "hello") {
		t.Fatalf("unexpected output: %q", out)
	}
}
