package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/db"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/flow"
)

// HandleReport collects a report with the private-text flow: the user's reply
// is deleted right away so it doesn't linger in the channel, then forwarded to
// the configured report channel.
func HandleReport(s *discordgo.Session, m *discordgo.MessageCreate, database *db.DB) {
	ctx := context.Background()
	cfg, err := database.GetGuildConfig(ctx, ParseGuildID(m.GuildID))
	if err != nil || cfg.ReportChannel == 0 {
		respondText(s, m.ChannelID, "Reports are not set up on this server.")
		return
	}

	respondText(s, m.ChannelID, "Reply with your report. Your message will be deleted right after, so don't worry about it staying visible.")

	fl := flow.New(s, m.GuildID, m.ChannelID, m.Author.ID, promptTimeout)
	report, ok := fl.PrivateText(ctx)
	if !ok {
		return
	}

	reportChannel := strconv.FormatInt(cfg.ReportChannel, 10)
	respondText(s, reportChannel, fmt.Sprintf(":envelope: New report from <@%s>:\n>>> %s", m.Author.ID, report))
	respondText(s, m.ChannelID, ":white_check_mark: Your report was passed on. Thank you!")
}
