// Package trello is a thin client for the kanban board: open lists, cards,
// card moves, and the chat-room attachment convention used on pitch cards.
package trello

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"syncbot/internal/httpx"
)

const defaultBaseURL = "https://api.trello.com"

type Client struct {
	AppKey  string
	Token   string
	BaseURL string // overridden in tests
}

func NewClient(appKey, token string) *Client {
	return &Client{AppKey: appKey, Token: token, BaseURL: defaultBaseURL}
}

type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Card struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

var boardURLRe = regexp.MustCompile(`^https://trello\.com/b/(.+?)(?:/.*)?$`)

// BoardIDFromURL extracts the board shortlink from a board URL.
func BoardIDFromURL(boardURL string) (string, error) {
	m := boardURLRe.FindStringSubmatch(strings.TrimSpace(boardURL))
	if m == nil {
		return "", fmt.Errorf("could not parse board id from url %q", boardURL)
	}
	return m[1], nil
}

// OpenLists returns the board's open (unarchived) lists.
func (c *Client) OpenLists(boardID string) ([]List, error) {
	var lists []List
	path := fmt.Sprintf("/1/boards/%s/lists?filter=open", url.PathEscape(boardID))
	if err := c.get(path, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// FindList locates a list by exact name.
func FindList(lists []List, name string) (List, bool) {
	for _, l := range lists {
		if l.Name == name {
			return l, true
		}
	}
	return List{}, false
}

func (c *Client) Cards(listID string) ([]Card, error) {
	var cards []Card
	path := fmt.Sprintf("/1/lists/%s/cards", url.PathEscape(listID))
	if err := c.get(path, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (c *Client) Attachments(cardID string) ([]Attachment, error) {
	var attachments []Attachment
	path := fmt.Sprintf("/1/cards/%s/attachments", url.PathEscape(cardID))
	if err := c.get(path, &attachments); err != nil {
		return nil, err
	}
	return attachments, nil
}

// MoveCard reassigns a card to another list.
func (c *Client) MoveCard(cardID, listID string) error {
	endpoint := fmt.Sprintf("%s/1/cards/%s?%s&idList=%s",
		c.BaseURL, url.PathEscape(cardID), c.auth(), url.QueryEscape(listID))
	req, err := http.NewRequest("PUT", endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := httpx.Client().Do(req)
	if err != nil {
		return fmt.Errorf("trello request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("trello API returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

var chatAttachmentRe = regexp.MustCompile(`(?i)^(?:slack|chat): (\S+)$`)

// ChatRoom extracts the chat-room reference from a card's attachments. Pitch
// cards carry an attachment named "slack: #room" or "chat: #room"; the first
// one wins.
func ChatRoom(attachments []Attachment) string {
	for _, a := range attachments {
		if m := chatAttachmentRe.FindStringSubmatch(a.Name); m != nil {
			return m[1]
		}
	}
	return ""
}

func (c *Client) get(path string, out any) error {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	endpoint := c.BaseURL + path + sep + c.auth()

	resp, err := httpx.Client().Get(endpoint)
	if err != nil {
		return fmt.Errorf("trello request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("trello API returned %d: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}

func (c *Client) auth() string {
	return fmt.Sprintf("key=%s&token=%s", url.QueryEscape(c.AppKey), url.QueryEscape(c.Token))
}
