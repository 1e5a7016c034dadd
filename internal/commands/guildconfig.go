package commands

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/db"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/flow"
)

func HandleConfig(s *discordgo.Session, m *discordgo.MessageCreate, args []string, database *db.DB) {
	if !isAdmin(s, m) {
		respondText(s, m.ChannelID, "Only administrators can change the bot configuration.")
		return
	}

	if len(args) == 0 {
		handleConfigShow(s, m, database)
		return
	}

	switch args[0] {
	case "show":
		handleConfigShow(s, m, database)
	case "prefix":
		handleConfigPrefix(s, m, args[1:], database)
	case "speaker":
		handleConfigSpeaker(s, m, database)
	case "announcements":
		handleConfigChannel(s, m, database, "announcement_channel", "announcement")
	case "reports":
		handleConfigChannel(s, m, database, "report_channel", "report")
	case "starboard":
		handleConfigStarboard(s, m, args[1:], database)
	default:
		respondText(s, m.ChannelID, fmt.Sprintf("Unknown subcommand '%s'.", args[0]))
	}
}

func handleConfigShow(s *discordgo.Session, m *discordgo.MessageCreate, database *db.DB) {
	cfg, err := database.GetGuildConfig(context.Background(), ParseGuildID(m.GuildID))
	if err != nil {
		respondText(s, m.ChannelID, "This guild is not set up yet.")
		return
	}

	starboard := "disabled"
	if cfg.StarboardEnabled {
		starboard = fmt.Sprintf("enabled, %d stars, <#%d>", cfg.StarboardThreshold, cfg.StarboardChannel)
	}
	respondText(s, m.ChannelID, fmt.Sprintf(
		"**Configuration**\nPrefix: `%s`\nSpeaker role: <@&%d>\nAnnouncements: <#%d>\nReports: <#%d>\nStarboard: %s",
		cfg.Prefix, cfg.SpeakerRole, cfg.AnnouncementChannel, cfg.ReportChannel, starboard,
	))
}

func handleConfigPrefix(s *discordgo.Session, m *discordgo.MessageCreate, args []string, database *db.DB) {
	if len(args) == 0 || len(args[0]) > 3 {
		respondText(s, m.ChannelID, "Reply with a prefix of at most 3 characters. Example: `config prefix -`")
		return
	}
	if err := database.SetGuildPrefix(context.Background(), ParseGuildID(m.GuildID), args[0]); err != nil {
		respondText(s, m.ChannelID, fmt.Sprintf("Could not set the prefix: %v", err))
		return
	}
	respondText(s, m.ChannelID, fmt.Sprintf(":white_check_mark: The prefix is now `%s`.", args[0]))
}

// handleConfigSpeaker resolves the speaker role with the role flow. An
// unmatched name is rejected here instead of creating a role: the speaker role
// should already exist.
func handleConfigSpeaker(s *discordgo.Session, m *discordgo.MessageCreate, database *db.DB) {
	ctx := context.Background()
	fl := flow.New(s, m.GuildID, m.ChannelID, m.Author.ID, promptTimeout)

	respondText(s, m.ChannelID, "Reply with the name of the Speaker role.")
	role, rawName, ok := fl.Role(ctx)
	if !ok {
		return
	}
	if role == nil {
		respondText(s, m.ChannelID, fmt.Sprintf("There is no role named '%s' on this server.", rawName))
		return
	}

	if err := database.SetSpeakerRole(ctx, ParseGuildID(m.GuildID), ParseSnowflake(role.ID)); err != nil {
		respondText(s, m.ChannelID, fmt.Sprintf("Could not set the speaker role: %v", err))
		return
	}
	respondText(s, m.ChannelID, fmt.Sprintf(":white_check_mark: <@&%s> is now the Speaker role.", role.ID))
}

func handleConfigChannel(s *discordgo.Session, m *discordgo.MessageCreate, database *db.DB, column, label string) {
	ctx := context.Background()
	fl := flow.New(s, m.GuildID, m.ChannelID, m.Author.ID, promptTimeout)

	respondText(s, m.ChannelID, fmt.Sprintf("Reply with the name of the %s channel.", label))
	channel, rawName, ok := fl.Channel(ctx)
	if !ok {
		return
	}
	if channel == nil {
		respondText(s, m.ChannelID, fmt.Sprintf("There is no channel named '%s' on this server.", rawName))
		return
	}

	if err := database.SetGuildChannel(ctx, ParseGuildID(m.GuildID), column, ParseSnowflake(channel.ID)); err != nil {
		respondText(s, m.ChannelID, fmt.Sprintf("Could not set the %s channel: %v", label, err))
		return
	}
	respondText(s, m.ChannelID, fmt.Sprintf(":white_check_mark: <#%s> is now the %s channel.", channel.ID, label))
}

func handleConfigStarboard(s *discordgo.Session, m *discordgo.MessageCreate, args []string, database *db.DB) {
	ctx := context.Background()
	guildID := ParseGuildID(m.GuildID)
	fl := flow.New(s, m.GuildID, m.ChannelID, m.Author.ID, promptTimeout)

	respondText(s, m.ChannelID, "Reply with the name of the starboard channel.")
	channel, rawName, ok := fl.Channel(ctx)
	if !ok {
		return
	}
	if channel == nil {
		respondText(s, m.ChannelID, fmt.Sprintf("There is no channel named '%s' on this server.", rawName))
		return
	}
	if err := database.SetGuildChannel(ctx, guildID, "starboard_channel", ParseSnowflake(channel.ID)); err != nil {
		respondText(s, m.ChannelID, fmt.Sprintf("Could not set the starboard channel: %v", err))
		return
	}

	threshold := 4
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			threshold = n
		}
	}

	// The gear is optional: clicking it enables the starboard right away,
	// ignoring it leaves the starboard disabled for now.
	anchor, err := s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Click %s to enable the starboard with a threshold of %d stars.", flow.EmojiGear, threshold))
	if err != nil {
		log.Printf("config: failed to send starboard confirm: %v", err)
		return
	}
	enabled := fl.GearConfirm(ctx, anchor)

	if err := database.SetStarboard(ctx, guildID, enabled, threshold); err != nil {
		respondText(s, m.ChannelID, fmt.Sprintf("Could not update the starboard: %v", err))
		return
	}
	if enabled {
		respondText(s, m.ChannelID, fmt.Sprintf(":star: The starboard is live in <#%s>.", channel.ID))
	}
}
