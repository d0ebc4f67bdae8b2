package mtproto

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gotd/td/tg"
)

// resolvePeer turns the configured chat id into an input peer. Usernames go
// through contacts.resolveUsername; numeric ids are matched against the
// account's dialog list, which is where their access hashes live.
func resolvePeer(ctx context.Context, api *tg.Client, chatID string) (tg.InputPeerClass, error) {
	if name, ok := usernameOf(chatID); ok {
		return resolveUsername(ctx, api, name)
	}

	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("chat id %q is neither @username nor numeric", chatID)
	}
	return resolveNumeric(ctx, api, id)
}

// usernameOf reports whether the chat id is a username reference and strips
// the @ / t.me prefix.
func usernameOf(chatID string) (string, bool) {
	switch {
	case strings.HasPrefix(chatID, "@"):
		return chatID[1:], true
	case strings.HasPrefix(chatID, "https://t.me/"):
		return strings.TrimPrefix(chatID, "https://t.me/"), true
	}
	if _, err := strconv.ParseInt(chatID, 10, 64); err != nil {
		return chatID, true
	}
	return "", false
}

func resolveUsername(ctx context.Context, api *tg.Client, name string) (tg.InputPeerClass, error) {
	resolved, err := api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: name})
	if err != nil {
		return nil, fmt.Errorf("resolving @%s: %w", name, err)
	}

	switch peer := resolved.Peer.(type) {
	case *tg.PeerUser:
		for _, u := range resolved.Users {
			if user, ok := u.(*tg.User); ok && user.ID == peer.UserID {
				return &tg.InputPeerUser{UserID: user.ID, AccessHash: user.AccessHash}, nil
			}
		}
	case *tg.PeerChannel:
		for _, c := range resolved.Chats {
			if channel, ok := c.(*tg.Channel); ok && channel.ID == peer.ChannelID {
				return &tg.InputPeerChannel{ChannelID: channel.ID, AccessHash: channel.AccessHash}, nil
			}
		}
	case *tg.PeerChat:
		return &tg.InputPeerChat{ChatID: peer.ChatID}, nil
	}
	return nil, fmt.Errorf("resolving @%s: peer not in response", name)
}

// resolveNumeric scans the dialog list for the chat. Accepts Bot API style
// ids (-100 prefixed channels, negative basic groups) and bare ids.
func resolveNumeric(ctx context.Context, api *tg.Client, id int64) (tg.InputPeerClass, error) {
	bare := BareID(id)

	dialogs, err := api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		Limit:      100,
		OffsetPeer: &tg.InputPeerEmpty{},
	})
	if err != nil {
		return nil, fmt.Errorf("listing dialogs: %w", err)
	}

	var chats []tg.ChatClass
	var users []tg.UserClass
	switch d := dialogs.(type) {
	case *tg.MessagesDialogs:
		chats, users = d.Chats, d.Users
	case *tg.MessagesDialogsSlice:
		chats, users = d.Chats, d.Users
	default:
		return nil, fmt.Errorf("unexpected dialogs response %T", dialogs)
	}

	for _, c := range chats {
		switch chat := c.(type) {
		case *tg.Channel:
			if chat.ID == bare {
				return &tg.InputPeerChannel{ChannelID: chat.ID, AccessHash: chat.AccessHash}, nil
			}
		case *tg.Chat:
			if chat.ID == bare {
				return &tg.InputPeerChat{ChatID: chat.ID}, nil
			}
		}
	}
	for _, u := range users {
		if user, ok := u.(*tg.User); ok && user.ID == bare {
			return &tg.InputPeerUser{UserID: user.ID, AccessHash: user.AccessHash}, nil
		}
	}
	return nil, fmt.Errorf("chat %d not found in dialogs (send a message to the bot or add it to the chat first)", id)
}

// BareID strips Bot API id encoding: -100xxxxxxxxxx for channels, plain
// negation for basic groups.
func BareID(id int64) int64 {
	if id >= 0 {
		return id
	}
	s := strconv.FormatInt(-id, 10)
	if strings.HasPrefix(s, "100") && len(s) > 3 {
		bare, _ := strconv.ParseInt(s[3:], 10, 64)
		return bare
	}
	return -id
}
