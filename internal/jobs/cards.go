package jobs

import (
	"fmt"
	"log"

	"syncbot/internal/config"
	"syncbot/internal/integrations/trello"
	"syncbot/internal/sheet"
)

// RunCards sweeps the pitch list after a hacknight: every card moves to the
// active list except ones on the configured ignore list.
func RunCards(cfg config.Config, opts Options) error {
	cfg.RequireFields(map[string]string{
		"trello_app_key":   cfg.TrelloAppKey,
		"trello_token":     cfg.TrelloToken,
		"trello_board_url": cfg.TrelloBoardURL,
	})

	client := trello.NewClient(cfg.TrelloAppKey, cfg.TrelloToken)
	boardID, err := trello.BoardIDFromURL(cfg.TrelloBoardURL)
	if err != nil {
		return err
	}
	lists, err := client.OpenLists(boardID)
	if err != nil {
		return err
	}
	pitchList, ok := trello.FindList(lists, pitchListName)
	if !ok {
		return fmt.Errorf("list %q not found on board", pitchListName)
	}
	activeList, ok := trello.FindList(lists, activeListName)
	if !ok {
		return fmt.Errorf("list %q not found on board", activeListName)
	}

	cards, err := client.Cards(pitchList.ID)
	if err != nil {
		return err
	}

	log.Printf("cards: moving from %q to %q", pitchList.Name, activeList.Name)
	run := newRun("cards")
	moved, skipped := 0, 0
	for _, card := range cards {
		if ignoredCard(card.Name, cfg.CardIgnoreList) {
			skipped++
			continue
		}
		if opts.Noop {
			log.Printf("cards: would move %q", card.Name)
			moved++
			continue
		}
		if err := client.MoveCard(card.ID, activeList.ID); err != nil {
			log.Printf("cards: move %q: %v", card.Name, err)
			continue
		}
		moved++
		if opts.Verbose {
			log.Printf("cards: moved %q", card.Name)
		}
	}
	log.Printf("cards: moved=%d skipped=%d", moved, skipped)
	if !opts.Noop {
		run.FinishedAt = nowFn()
		run.Updated = moved
		run.Skipped = skipped
		recordRun(cfg, run, nil)
	}
	return nil
}

func ignoredCard(name string, ignoreList []string) bool {
	for _, ignored := range ignoreList {
		if sheet.NormalizeKey(name) == sheet.NormalizeKey(ignored) {
			return true
		}
	}
	return false
}
