// Package slackbot wraps the handful of Slack API calls the sync jobs need:
// reading a channel's membership as roster records, and posting announcement
// messages with a follow-up thread reply.
package slackbot

import (
	"fmt"
	"log"
	"strings"

	"github.com/slack-go/slack"

	"syncbot/internal/reconcile"
)

const (
	botUsername = "syncbot"
	botIcon     = ":robot_face:"

	// Posted as a threaded reply under every announcement so members
	// can find the automation behind it.
	aboutReply = "Curious how this message gets posted? See the syncbot README in our org repo."
)

func NewClient(token string) *slack.Client {
	return slack.New(token)
}

// ChannelMembers resolves a channel name or ID and returns one roster Record
// per human member. Bots are excluded; they have no place on the member
// spreadsheet.
func ChannelMembers(api *slack.Client, channel string) ([]reconcile.Record, error) {
	channelID, err := resolveChannelID(api, channel)
	if err != nil {
		return nil, err
	}

	var memberIDs []string
	cursor := ""
	for {
		ids, next, err := api.GetUsersInConversation(&slack.GetUsersInConversationParameters{
			ChannelID: channelID,
			Cursor:    cursor,
		})
		if err != nil {
			return nil, fmt.Errorf("fetching members of %s: %w", channel, err)
		}
		memberIDs = append(memberIDs, ids...)
		if next == "" {
			break
		}
		cursor = next
	}

	users, err := api.GetUsers()
	if err != nil {
		return nil, fmt.Errorf("fetching user profiles: %w", err)
	}
	byID := make(map[string]slack.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	var records []reconcile.Record
	for _, id := range memberIDs {
		user, ok := byID[id]
		if !ok {
			log.Printf("roster: member %s not in user list, skipping", id)
			continue
		}
		if user.IsBot || user.ID == "USLACKBOT" {
			continue
		}
		records = append(records, MemberRecord(user))
	}
	log.Printf("roster: channel=%s members=%d records=%d", channel, len(memberIDs), len(records))
	return records, nil
}

// MemberRecord maps a Slack user to the roster record shape the member
// spreadsheet tracks. The display name wins over the real name when set,
// matching what members actually see in the client.
func MemberRecord(user slack.User) reconcile.Record {
	username := user.Profile.DisplayNameNormalized
	if username == "" {
		username = user.Profile.RealNameNormalized
	}
	return reconcile.Record{
		ID: user.ID,
		Fields: map[string]string{
			"first_name":     user.Profile.FirstName,
			"last_name":      user.Profile.LastName,
			"slack_id":       user.ID,
			"slack_username": username,
			"avatar_url":     user.Profile.Image192,
		},
	}
}

// PostAnnouncement posts to a channel as the bot persona and adds the
// standard "about this bot" reply in the message's thread.
func PostAnnouncement(api *slack.Client, channel, text string) error {
	_, ts, err := api.PostMessage(channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionUsername(botUsername),
		slack.MsgOptionIconEmoji(botIcon),
	)
	if err != nil {
		return fmt.Errorf("posting to %s: %w", channel, err)
	}

	_, _, err = api.PostMessage(channel,
		slack.MsgOptionText(aboutReply, false),
		slack.MsgOptionUsername(botUsername),
		slack.MsgOptionIconEmoji(botIcon),
		slack.MsgOptionTS(ts),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		// The announcement itself landed; a missing footer reply is
		// not worth failing the job over.
		log.Printf("thread reply to %s failed: %v", channel, err)
	}
	return nil
}

func resolveChannelID(api *slack.Client, channel string) (string, error) {
	name := strings.TrimPrefix(strings.TrimSpace(channel), "#")
	if IsLikelyChannelID(name) {
		return name, nil
	}

	cursor := ""
	for {
		channels, next, err := api.GetConversations(&slack.GetConversationsParameters{
			Cursor:          cursor,
			ExcludeArchived: true,
			Limit:           200,
		})
		if err != nil {
			return "", fmt.Errorf("listing channels: %w", err)
		}
		for _, ch := range channels {
			if strings.EqualFold(ch.Name, name) {
				return ch.ID, nil
			}
		}
		if next == "" {
			return "", fmt.Errorf("channel %q not found", channel)
		}
		cursor = next
	}
}

// IsLikelyChannelID reports whether a value has the shape of a Slack
// conversation ID rather than a channel name.
func IsLikelyChannelID(val string) bool {
	if len(val) < 9 {
		return false
	}
	for i, r := range val {
		if i == 0 {
			if r != 'C' && r != 'G' && r != 'D' {
				return false
			}
			continue
		}
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// IsLikelyUserID reports whether a value has the shape of a Slack user ID.
func IsLikelyUserID(val string) bool {
	if len(val) < 9 {
		return false
	}
	for i, r := range val {
		if i == 0 {
			if r != 'U' && r != 'W' {
				return false
			}
			continue
		}
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
