package jobs

import (
	"log"

	"syncbot/internal/config"
	"syncbot/internal/integrations/trello"
	"syncbot/internal/notify"
)

const (
	pitchListName  = "Tonight's Pitches"
	activeListName = "Active"

	// Under this many cards the board probably wasn't used this week, so
	// stay quiet rather than announce a near-empty list.
	minPitchCount = 3
)

// RunPitches thanks this week's pitch-givers in the public channel, linking
// each project's chat room where one is attached to its card.
func RunPitches(cfg config.Config, opts Options) error {
	cfg.RequireFields(map[string]string{
		"trello_app_key":             cfg.TrelloAppKey,
		"trello_token":               cfg.TrelloToken,
		"trello_board_url":           cfg.TrelloBoardURL,
		"slack_announce_channel_pub": cfg.SlackPublicChannel,
	})

	client := trello.NewClient(cfg.TrelloAppKey, cfg.TrelloToken)
	cards, err := pitchCards(client, cfg.TrelloBoardURL)
	if err != nil {
		return err
	}
	if len(cards) < minPitchCount {
		log.Printf("pitches: only %d cards on %q, assuming board unused this week", len(cards), pitchListName)
		return nil
	}

	projects := make([]notify.PitchProject, 0, len(cards))
	for _, card := range cards {
		attachments, err := client.Attachments(card.ID)
		if err != nil {
			log.Printf("pitches: attachments for %q: %v", card.Name, err)
			attachments = nil
		}
		projects = append(projects, notify.PitchProject{
			Name:     card.Name,
			ChatRoom: trello.ChatRoom(attachments),
		})
	}

	text, err := notify.RenderPitches(projects)
	if err != nil {
		return err
	}
	if err := poster(cfg, opts).Post(cfg.SlackPublicChannel, text); err != nil {
		return err
	}
	if !opts.Noop {
		run := newRun("pitches")
		run.FinishedAt = nowFn()
		run.Matched = len(projects)
		recordRun(cfg, run, nil)
	}
	return nil
}

func pitchCards(client *trello.Client, boardURL string) ([]trello.Card, error) {
	boardID, err := trello.BoardIDFromURL(boardURL)
	if err != nil {
		return nil, err
	}
	lists, err := client.OpenLists(boardID)
	if err != nil {
		return nil, err
	}
	pitchList, ok := trello.FindList(lists, pitchListName)
	if !ok {
		return nil, nil
	}
	return client.Cards(pitchList.ID)
}
