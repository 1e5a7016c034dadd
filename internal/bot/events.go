package bot

import (
	"context"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/commands"
)

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("%s is connected!", event.User.Username)
}

func (b *Bot) onGuildCreate(s *discordgo.Session, event *discordgo.GuildCreate) {
	log.Printf("Guild available/joined: %s (id=%s)", event.Name, event.ID)
	guildID := commands.ParseGuildID(event.ID)
	if err := b.db.EnsureGuild(context.Background(), guildID, b.defaultPrefix); err != nil {
		log.Printf("Failed to ensure config row for guild %s: %v", event.ID, err)
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore bot messages and DMs
	if m.Author.Bot || m.GuildID == "" {
		return
	}

	guildID := commands.ParseGuildID(m.GuildID)
	prefix := b.db.GetGuildPrefix(context.Background(), guildID, b.defaultPrefix)

	content := strings.TrimSpace(m.Content)
	if !strings.HasPrefix(content, prefix) || len(content) <= len(prefix) {
		return
	}

	fields := strings.Fields(content[len(prefix):])
	if len(fields) == 0 {
		return
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "legislature", "leg":
		commands.HandleLegislature(s, m, args, b.db)
	case "ministry", "min":
		commands.HandleMinistry(s, m, args, b.db)
	case "laws":
		commands.HandleLaws(s, m, args, b.db)
	case "party":
		commands.HandleParty(s, m, args, b.db)
	case "addparty":
		commands.HandleAddParty(s, m, b.db)
	case "deleteparty":
		commands.HandleDeleteParty(s, m, args, b.db)
	case "mergeparty", "mergeparties":
		commands.HandleMergeParties(s, m, b.db)
	case "tag":
		commands.HandleTag(s, m, args, b.db)
	case "report":
		commands.HandleReport(s, m, b.db)
	case "config":
		commands.HandleConfig(s, m, args, b.db)
	case "dms":
		commands.HandleDMSettings(s, m, args, b.db)
	}
}

func (b *Bot) onMessageReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	b.handleStarReaction(s, r.MessageReaction)
}

func (b *Bot) onMessageReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	b.handleStarReaction(s, r.MessageReaction)
}
