package commands

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/db"
)

var dmSettingLabels = map[string]string{
	"mute_kick_ban":      "DMs on mute/kick/ban",
	"leg_session_open":   "DMs when a session opens",
	"leg_session_voting": "DMs when voting starts",
	"party_join_leave":   "DMs on party join/leave",
}

func HandleDMSettings(s *discordgo.Session, m *discordgo.MessageCreate, args []string, database *db.DB) {
	ctx := context.Background()
	userID := ParseSnowflake(m.Author.ID)

	if len(args) == 0 {
		settings, err := database.GetDMSettings(ctx, userID)
		if err != nil {
			respondText(s, m.ChannelID, "Could not load your DM settings.")
			return
		}
		respondText(s, m.ChannelID, fmt.Sprintf(
			"**Your DM settings** (toggle with `dms <setting>`)\n`mute_kick_ban`: %s\n`leg_session_open`: %s\n`leg_session_voting`: %s\n`party_join_leave`: %s",
			onOff(settings.MuteKickBan), onOff(settings.LegSessionOpen),
			onOff(settings.LegSessionVoting), onOff(settings.PartyJoinLeave),
		))
		return
	}

	label, known := dmSettingLabels[args[0]]
	if !known {
		respondText(s, m.ChannelID, fmt.Sprintf("Unknown setting '%s'.", args[0]))
		return
	}

	value, err := database.ToggleDMSetting(ctx, userID, args[0])
	if err != nil {
		respondText(s, m.ChannelID, "Could not update your DM settings.")
		return
	}
	respondText(s, m.ChannelID, fmt.Sprintf("%s: now **%s**.", label, onOff(value)))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
