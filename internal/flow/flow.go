// Package flow collects one piece of follow-up input from the user who invoked
// a command: a text reply, a yes/no reaction, a two-way emoji choice, a gear
// confirmation, or a role/channel name. Every prompt is bounded by a timeout,
// and timeouts come back as values, never as errors, because an abandoned
// prompt is an expected outcome that callers handle by returning early.
package flow

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	EmojiYes  = "✅"
	EmojiNo   = "❌"
	EmojiGear = "⚙️"
)

const noticeTimeout = "You took too long to reply. Aborted."
const noticeTimeoutReact = "You took too long to react. Aborted."
const noticeNoText = "You didn't reply with text. Aborted."

// Session is the slice of the Discord session a Flow needs: an event wait
// capability (AddHandler with its remove func) plus send, delete, react and
// guild lookups. *discordgo.Session satisfies it.
type Session interface {
	AddHandler(handler interface{}) func()
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
}

// Answer is the tri-state result of a yes/no prompt. Timeout is the zero value
// so an unanswered prompt can never be mistaken for either explicit answer.
type Answer int

const (
	AnswerTimeout Answer = iota
	AnswerNo
	AnswerYes
)

// Flow is bound to the user and channel that started a command. Predicates
// check that binding on every incoming event, so two users running the same
// command concurrently (or one user in two channels) never cross-deliver.
type Flow struct {
	session   Session
	guildID   string
	channelID string
	userID    string
	timeout   time.Duration
}

func New(session Session, guildID, channelID, userID string, timeout time.Duration) *Flow {
	return &Flow{
		session:   session,
		guildID:   guildID,
		channelID: channelID,
		userID:    userID,
		timeout:   timeout,
	}
}

// Text waits for the next message by the bound user in the bound channel.
// ok is false on timeout or an empty reply; either way exactly one notice has
// already been sent and the caller should abort its workflow.
func (f *Flow) Text(ctx context.Context) (string, bool) {
	m := f.waitForMessage(ctx)
	if m == nil {
		f.notify(noticeTimeout)
		return "", false
	}
	if strings.TrimSpace(m.Content) == "" {
		f.notify(noticeNoText)
		return "", false
	}
	return m.Content, true
}

// PrivateText is Text followed by a best-effort delete of the user's reply,
// for input that shouldn't linger in the channel. A failed delete (missing
// permission, already gone) is swallowed; the text is returned regardless.
func (f *Flow) PrivateText(ctx context.Context) (string, bool) {
	m := f.waitForMessage(ctx)
	if m == nil {
		f.notify(noticeTimeout)
		return "", false
	}
	if err := f.session.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
		log.Printf("flow: could not delete reply %s: %v", m.ID, err)
	}
	if strings.TrimSpace(m.Content) == "" {
		f.notify(noticeNoText)
		return "", false
	}
	return m.Content, true
}

// YesNo attaches ✅ and ❌ to anchor and waits for the bound user to click one.
func (f *Flow) YesNo(ctx context.Context, anchor *discordgo.Message) Answer {
	f.react(anchor, EmojiYes)
	f.react(anchor, EmojiNo)

	r := f.waitForReaction(ctx, anchor.ID, EmojiYes, EmojiNo)
	if r == nil {
		f.notify(noticeTimeoutReact)
		return AnswerTimeout
	}
	if r.Emoji.Name == EmojiYes {
		return AnswerYes
	}
	return AnswerNo
}

// EmojiChoice attaches the two caller-supplied emoji to anchor and returns the
// one the bound user clicked, or ("", false) on timeout.
func (f *Flow) EmojiChoice(ctx context.Context, anchor *discordgo.Message, first, second string) (string, bool) {
	f.react(anchor, first)
	f.react(anchor, second)

	r := f.waitForReaction(ctx, anchor.ID, first, second)
	if r == nil {
		f.notify(noticeTimeoutReact)
		return "", false
	}
	return r.Emoji.Name, true
}

// GearConfirm attaches ⚙️ to anchor and reports whether the bound user clicked
// it in time. Unlike YesNo, a timeout is just false and sends no notice: the
// gear is an optional "also configure this?" branch and silence means skip it.
func (f *Flow) GearConfirm(ctx context.Context, anchor *discordgo.Message) bool {
	f.react(anchor, EmojiGear)
	return f.waitForReaction(ctx, anchor.ID, EmojiGear) != nil
}

// Role waits for a text reply and resolves it against the guild's roles by
// name. On a match the role is returned; otherwise the raw text comes back so
// the caller can decide whether it means "create a role with this name".
// ok is false on timeout or empty reply.
func (f *Flow) Role(ctx context.Context) (*discordgo.Role, string, bool) {
	text, ok := f.Text(ctx)
	if !ok {
		return nil, "", false
	}

	roles, err := f.session.GuildRoles(f.guildID)
	if err != nil {
		log.Printf("flow: could not list roles for guild %s: %v", f.guildID, err)
		return nil, text, true
	}
	for _, role := range roles {
		if strings.EqualFold(role.Name, text) {
			return role, text, true
		}
	}
	return nil, text, true
}

// Channel is Role specialized to the guild's text channels.
func (f *Flow) Channel(ctx context.Context) (*discordgo.Channel, string, bool) {
	text, ok := f.Text(ctx)
	if !ok {
		return nil, "", false
	}

	// Accept both "#general" and "general"
	name := strings.TrimPrefix(text, "#")

	channels, err := f.session.GuildChannels(f.guildID)
	if err != nil {
		log.Printf("flow: could not list channels for guild %s: %v", f.guildID, err)
		return nil, text, true
	}
	for _, channel := range channels {
		if strings.EqualFold(channel.Name, name) {
			return channel, text, true
		}
	}
	return nil, text, true
}

func (f *Flow) waitForMessage(ctx context.Context) *discordgo.MessageCreate {
	matched := make(chan *discordgo.MessageCreate, 1)
	remove := f.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot {
			return
		}
		if m.Author.ID != f.userID || m.ChannelID != f.channelID {
			return
		}
		select {
		case matched <- m:
		default:
		}
	})
	defer remove()

	timer := time.NewTimer(f.timeout)
	defer timer.Stop()

	select {
	case m := <-matched:
		return m
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return nil
	}
}

func (f *Flow) waitForReaction(ctx context.Context, anchorID string, emoji ...string) *discordgo.MessageReactionAdd {
	matched := make(chan *discordgo.MessageReactionAdd, 1)
	remove := f.session.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if r.UserID != f.userID || r.MessageID != anchorID {
			return
		}
		wanted := false
		for _, e := range emoji {
			if r.Emoji.Name == e {
				wanted = true
				break
			}
		}
		if !wanted {
			return
		}
		select {
		case matched <- r:
		default:
		}
	})
	defer remove()

	timer := time.NewTimer(f.timeout)
	defer timer.Stop()

	select {
	case r := <-matched:
		return r
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return nil
	}
}

// react attaches an emoji to a message. Best-effort, like reaction cleanups:
// a missing add-reactions permission shouldn't kill the prompt.
func (f *Flow) react(anchor *discordgo.Message, emoji string) {
	if err := f.session.MessageReactionAdd(anchor.ChannelID, anchor.ID, emoji); err != nil {
		log.Printf("flow: could not add reaction %s: %v", emoji, err)
	}
}

func (f *Flow) notify(content string) {
	if _, err := f.session.ChannelMessageSend(f.channelID, content); err != nil {
		log.Printf("flow: could not send notice: %v", err)
	}
}
