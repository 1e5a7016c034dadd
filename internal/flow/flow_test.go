package flow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

// fakeSession implements Session and lets tests dispatch events by hand.
type fakeSession struct {
	mu        sync.Mutex
	nextID    int
	handlers  map[int]interface{}
	sent      []string
	deleted   []string
	deleteErr error
	reactions []string
	roles     []*discordgo.Role
	channels  []*discordgo.Channel
}

func newFakeSession() *fakeSession {
	return &fakeSession{handlers: map[int]interface{}{}}
}

func (f *fakeSession) AddHandler(handler interface{}) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.handlers[id] = handler
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.handlers, id)
	}
}

func (f *fakeSession) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, content)
	return &discordgo.Message{ID: "sent", ChannelID: channelID, Content: content}, nil
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return f.deleteErr
}

func (f *fakeSession) MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions = append(f.reactions, emojiID)
	return nil
}

func (f *fakeSession) GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	return f.roles, nil
}

func (f *fakeSession) GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	return f.channels, nil
}

func (f *fakeSession) dispatchMessage(m *discordgo.MessageCreate) {
	f.mu.Lock()
	handlers := make([]interface{}, 0, len(f.handlers))
	for _, h := range f.handlers {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()
	for _, h := range handlers {
		if fn, ok := h.(func(*discordgo.Session, *discordgo.MessageCreate)); ok {
			fn(nil, m)
		}
	}
}

func (f *fakeSession) dispatchReaction(r *discordgo.MessageReactionAdd) {
	f.mu.Lock()
	handlers := make([]interface{}, 0, len(f.handlers))
	for _, h := range f.handlers {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()
	for _, h := range handlers {
		if fn, ok := h.(func(*discordgo.Session, *discordgo.MessageReactionAdd)); ok {
			fn(nil, r)
		}
	}
}

// waitForHandlers blocks until n handlers are registered, so tests can
// dispatch events after the flow under test started listening.
func (f *fakeSession) waitForHandlers(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		count := len(f.handlers)
		f.mu.Unlock()
		if count >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d handlers", n)
}

func (f *fakeSession) sentMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func message(userID, channelID, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "reply",
		ChannelID: channelID,
		Content:   content,
		Author:    &discordgo.User{ID: userID},
	}}
}

func reaction(userID, messageID, emoji string) *discordgo.MessageReactionAdd {
	return &discordgo.MessageReactionAdd{MessageReaction: &discordgo.MessageReaction{
		UserID:    userID,
		MessageID: messageID,
		Emoji:     discordgo.Emoji{Name: emoji},
	}}
}

func TestTextReturnsReply(t *testing.T) {
	session := newFakeSession()
	f := New(session, "g", "c", "u", time.Second)

	result := make(chan string, 1)
	go func() {
		text, ok := f.Text(context.Background())
		if !ok {
			result <- "<aborted>"
			return
		}
		result <- text
	}()

	session.waitForHandlers(t, 1)
	// Wrong user, wrong channel and bot messages must all be ignored
	session.dispatchMessage(message("someone-else", "c", "not yours"))
	session.dispatchMessage(message("u", "other-channel", "wrong channel"))
	bot := message("u", "c", "from a bot")
	bot.Author.Bot = true
	session.dispatchMessage(bot)
	session.dispatchMessage(message("u", "c", "the answer"))

	if got := <-result; got != "the answer" {
		t.Errorf("Text() = %q, want 'the answer'", got)
	}
	if len(session.sentMessages()) != 0 {
		t.Errorf("expected no notices, got %v", session.sentMessages())
	}
}

func TestTextTimeout(t *testing.T) {
	session := newFakeSession()
	f := New(session, "g", "c", "u", 30*time.Millisecond)

	text, ok := f.Text(context.Background())
	if ok || text != "" {
		t.Errorf("Text() = (%q, %v), want (\"\", false)", text, ok)
	}

	sent := session.sentMessages()
	if len(sent) != 1 {
		t.Fatalf("expected exactly one notice, got %d: %v", len(sent), sent)
	}
	if !strings.Contains(sent[0], "too long") {
		t.Errorf("notice %q should mention the timeout", sent[0])
	}
}

func TestTextEmptyReply(t *testing.T) {
	session := newFakeSession()
	f := New(session, "g", "c", "u", time.Second)

	result := make(chan bool, 1)
	go func() {
		_, ok := f.Text(context.Background())
		result <- ok
	}()

	session.waitForHandlers(t, 1)
	session.dispatchMessage(message("u", "c", "   "))

	if ok := <-result; ok {
		t.Error("Text() should abort on an empty reply")
	}
	sent := session.sentMessages()
	if len(sent) != 1 || !strings.Contains(sent[0], "didn't reply with text") {
		t.Errorf("expected exactly one empty-reply notice, got %v", sent)
	}
}

func TestYesNoTriState(t *testing.T) {
	tests := []struct {
		name  string
		emoji string // empty means let it time out
		want  Answer
	}{
		{"positive reaction", EmojiYes, AnswerYes},
		{"negative reaction", EmojiNo, AnswerNo},
		{"timeout", "", AnswerTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := newFakeSession()
			f := New(session, "g", "c", "u", 50*time.Millisecond)
			anchor := &discordgo.Message{ID: "anchor", ChannelID: "c"}

			result := make(chan Answer, 1)
			go func() {
				result <- f.YesNo(context.Background(), anchor)
			}()

			session.waitForHandlers(t, 1)
			if tt.emoji != "" {
				session.dispatchReaction(reaction("u", "anchor", tt.emoji))
			}

			if got := <-result; got != tt.want {
				t.Errorf("YesNo() = %v, want %v", got, tt.want)
			}

			sent := session.sentMessages()
			if tt.want == AnswerTimeout {
				if len(sent) != 1 {
					t.Errorf("expected exactly one timeout notice, got %v", sent)
				}
			} else if len(sent) != 0 {
				t.Errorf("expected no notices, got %v", sent)
			}
		})
	}
}

func TestYesNoIdentityBinding(t *testing.T) {
	session := newFakeSession()
	flowA := New(session, "g", "channel-a", "alice", time.Second)
	flowB := New(session, "g", "channel-b", "bob", time.Second)
	anchorA := &discordgo.Message{ID: "anchor-a", ChannelID: "channel-a"}
	anchorB := &discordgo.Message{ID: "anchor-b", ChannelID: "channel-b"}

	resultA := make(chan Answer, 1)
	resultB := make(chan Answer, 1)
	go func() { resultA <- flowA.YesNo(context.Background(), anchorA) }()
	go func() { resultB <- flowB.YesNo(context.Background(), anchorB) }()

	session.waitForHandlers(t, 2)

	// Alice reacting on her own anchor must never resolve Bob's prompt,
	// and neither must Alice reacting on Bob's anchor.
	session.dispatchReaction(reaction("alice", "anchor-b", EmojiYes))
	session.dispatchReaction(reaction("alice", "anchor-a", EmojiYes))

	if got := <-resultA; got != AnswerYes {
		t.Errorf("alice's prompt = %v, want AnswerYes", got)
	}
	select {
	case got := <-resultB:
		t.Errorf("bob's prompt resolved to %v from alice's reaction", got)
	case <-time.After(50 * time.Millisecond):
	}

	session.dispatchReaction(reaction("bob", "anchor-b", EmojiNo))
	if got := <-resultB; got != AnswerNo {
		t.Errorf("bob's prompt = %v, want AnswerNo", got)
	}
}

func TestEmojiChoice(t *testing.T) {
	session := newFakeSession()
	f := New(session, "g", "c", "u", time.Second)
	anchor := &discordgo.Message{ID: "anchor", ChannelID: "c"}

	type choice struct {
		emoji string
		ok    bool
	}
	result := make(chan choice, 1)
	go func() {
		emoji, ok := f.EmojiChoice(context.Background(), anchor, "📜", "💭")
		result <- choice{emoji, ok}
	}()

	session.waitForHandlers(t, 1)
	// An emoji outside the menu is ignored
	session.dispatchReaction(reaction("u", "anchor", "🎉"))
	session.dispatchReaction(reaction("u", "anchor", "💭"))

	got := <-result
	if !got.ok || got.emoji != "💭" {
		t.Errorf("EmojiChoice() = (%q, %v), want (💭, true)", got.emoji, got.ok)
	}
}

func TestEmojiChoiceTimeout(t *testing.T) {
	session := newFakeSession()
	f := New(session, "g", "c", "u", 30*time.Millisecond)
	anchor := &discordgo.Message{ID: "anchor", ChannelID: "c"}

	emoji, ok := f.EmojiChoice(context.Background(), anchor, "📜", "💭")
	if ok || emoji != "" {
		t.Errorf("EmojiChoice() = (%q, %v), want (\"\", false)", emoji, ok)
	}
	if len(session.sentMessages()) != 1 {
		t.Errorf("expected exactly one timeout notice, got %v", session.sentMessages())
	}
}

func TestGearConfirm(t *testing.T) {
	t.Run("clicked", func(t *testing.T) {
		session := newFakeSession()
		f := New(session, "g", "c", "u", time.Second)
		anchor := &discordgo.Message{ID: "anchor", ChannelID: "c"}

		result := make(chan bool, 1)
		go func() { result <- f.GearConfirm(context.Background(), anchor) }()

		session.waitForHandlers(t, 1)
		session.dispatchReaction(reaction("u", "anchor", EmojiGear))

		if !<-result {
			t.Error("GearConfirm() = false after a click")
		}
	})

	t.Run("timeout is a plain false with no notice", func(t *testing.T) {
		session := newFakeSession()
		f := New(session, "g", "c", "u", 30*time.Millisecond)
		anchor := &discordgo.Message{ID: "anchor", ChannelID: "c"}

		if f.GearConfirm(context.Background(), anchor) {
			t.Error("GearConfirm() = true on timeout")
		}
		if len(session.sentMessages()) != 0 {
			t.Errorf("gear confirm must not send a timeout notice, got %v", session.sentMessages())
		}
	})
}

func TestRoleResolution(t *testing.T) {
	engineers := &discordgo.Role{ID: "1", Name: "Engineers"}

	tests := []struct {
		name     string
		reply    string
		wantRole *discordgo.Role
		wantRaw  string
	}{
		{"existing role", "Engineers", engineers, "Engineers"},
		{"case-insensitive match", "engineers", engineers, "engineers"},
		{"unknown role returns raw text", "Socialists", nil, "Socialists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := newFakeSession()
			session.roles = []*discordgo.Role{engineers}
			f := New(session, "g", "c", "u", time.Second)

			type resolved struct {
				role *discordgo.Role
				raw  string
				ok   bool
			}
			result := make(chan resolved, 1)
			go func() {
				role, raw, ok := f.Role(context.Background())
				result <- resolved{role, raw, ok}
			}()

			session.waitForHandlers(t, 1)
			session.dispatchMessage(message("u", "c", tt.reply))

			got := <-result
			if !got.ok {
				t.Fatal("Role() aborted unexpectedly")
			}
			if got.role != tt.wantRole {
				t.Errorf("Role() role = %v, want %v", got.role, tt.wantRole)
			}
			if got.raw != tt.wantRaw {
				t.Errorf("Role() raw = %q, want %q", got.raw, tt.wantRaw)
			}
		})
	}

	t.Run("timeout", func(t *testing.T) {
		session := newFakeSession()
		f := New(session, "g", "c", "u", 30*time.Millisecond)
		role, raw, ok := f.Role(context.Background())
		if ok || role != nil || raw != "" {
			t.Errorf("Role() = (%v, %q, %v), want (nil, \"\", false)", role, raw, ok)
		}
	})
}

func TestChannelResolution(t *testing.T) {
	general := &discordgo.Channel{ID: "10", Name: "general"}
	session := newFakeSession()
	session.channels = []*discordgo.Channel{general}
	f := New(session, "g", "c", "u", time.Second)

	type resolved struct {
		channel *discordgo.Channel
		raw     string
		ok      bool
	}
	result := make(chan resolved, 1)
	go func() {
		channel, raw, ok := f.Channel(context.Background())
		result <- resolved{channel, raw, ok}
	}()

	session.waitForHandlers(t, 1)
	session.dispatchMessage(message("u", "c", "#general"))

	got := <-result
	if !got.ok || got.channel != general {
		t.Errorf("Channel() = (%v, %q, %v), want the general channel", got.channel, got.raw, got.ok)
	}
}

func TestPrivateTextRetractionBestEffort(t *testing.T) {
	session := newFakeSession()
	session.deleteErr = fmt.Errorf("missing permissions")
	f := New(session, "g", "c", "u", time.Second)

	result := make(chan string, 1)
	go func() {
		text, ok := f.PrivateText(context.Background())
		if !ok {
			result <- "<aborted>"
			return
		}
		result <- text
	}()

	session.waitForHandlers(t, 1)
	session.dispatchMessage(message("u", "c", "secret report"))

	if got := <-result; got != "secret report" {
		t.Errorf("PrivateText() = %q despite failed delete, want the text back", got)
	}
	session.mu.Lock()
	deleted := len(session.deleted)
	session.mu.Unlock()
	if deleted != 1 {
		t.Errorf("expected one delete attempt, got %d", deleted)
	}
}
