package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/commands"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/db"
)

const starEmoji = "⭐"

// handleStarReaction re-counts the stars on a message whenever a star is added
// or removed. At or above the guild threshold the message gets posted to the
// starboard; an already-posted message has its star count edited in place.
func (b *Bot) handleStarReaction(s *discordgo.Session, r *discordgo.MessageReaction) {
	if r.Emoji.Name != starEmoji || r.GuildID == "" {
		return
	}

	ctx := context.Background()
	guildID := commands.ParseGuildID(r.GuildID)
	cfg, err := b.db.GetGuildConfig(ctx, guildID)
	if err != nil || !cfg.StarboardEnabled || cfg.StarboardChannel == 0 {
		return
	}
	// Don't star messages that are already on the starboard itself.
	if commands.ParseSnowflake(r.ChannelID) == cfg.StarboardChannel {
		return
	}

	message, err := s.ChannelMessage(r.ChannelID, r.MessageID)
	if err != nil {
		log.Printf("starboard: failed to fetch message %s: %v", r.MessageID, err)
		return
	}

	stars := 0
	for _, reaction := range message.Reactions {
		if reaction.Emoji.Name == starEmoji {
			stars = reaction.Count
			break
		}
	}

	messageID := commands.ParseSnowflake(r.MessageID)
	entry, err := b.db.GetStarboardEntry(ctx, messageID)
	if err != nil {
		log.Printf("starboard: failed to load entry: %v", err)
		return
	}

	starboardChannel := strconv.FormatInt(cfg.StarboardChannel, 10)

	if entry != nil {
		if err := b.db.UpdateStarboardStars(ctx, messageID, stars); err != nil {
			log.Printf("starboard: failed to update stars: %v", err)
			return
		}
		starboardMessageID := strconv.FormatInt(entry.StarboardMessageID, 10)
		content := starboardContent(stars, r.GuildID, r.ChannelID, message)
		if _, err := s.ChannelMessageEdit(starboardChannel, starboardMessageID, content); err != nil {
			log.Printf("starboard: failed to edit starboard message: %v", err)
		}
		return
	}

	if stars < cfg.StarboardThreshold {
		return
	}

	posted, err := s.ChannelMessageSend(starboardChannel, starboardContent(stars, r.GuildID, r.ChannelID, message))
	if err != nil {
		log.Printf("starboard: failed to post starboard message: %v", err)
		return
	}

	err = b.db.AddStarboardEntry(ctx, &db.StarboardEntry{
		GuildID:            guildID,
		ChannelID:          commands.ParseSnowflake(r.ChannelID),
		MessageID:          messageID,
		AuthorID:           commands.ParseSnowflake(message.Author.ID),
		StarboardMessageID: commands.ParseSnowflake(posted.ID),
		Stars:              stars,
	})
	if err != nil {
		log.Printf("starboard: failed to save entry: %v", err)
	}
}

func starboardContent(stars int, guildID, channelID string, message *discordgo.Message) string {
	// REST-fetched messages carry no guild id, so it comes from the reaction event
	jump := fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, message.ID)
	return fmt.Sprintf("%s **%d** | <#%s> | <@%s>\n>>> %s\n%s", starEmoji, stars, channelID, message.Author.ID, message.Content, jump)
}
