package commands

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/announce"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/db"
)

func HandleMinistry(s *discordgo.Session, m *discordgo.MessageCreate, args []string, database *db.DB) {
	if len(args) == 0 {
		respondText(s, m.ChannelID, "Subcommands: `pass`, `veto`, `override`")
		return
	}

	switch args[0] {
	case "pass":
		handleMinistryTransition(s, m, args[1:], database, db.BillPassedLeg, db.BillLaw, announce.PassedIntoLaw{})
	case "veto":
		handleMinistryTransition(s, m, args[1:], database, db.BillPassedLeg, db.BillVetoed, announce.Vetoed{})
	case "override":
		handleMinistryTransition(s, m, args[1:], database, db.BillVetoed, db.BillVetoOverridden, announce.VetoOverridden{})
	default:
		respondText(s, m.ChannelID, fmt.Sprintf("Unknown subcommand '%s'.", args[0]))
	}
}

// handleMinistryTransition applies one guarded status transition to every
// given bill and announces all of them in a single message.
func handleMinistryTransition(s *discordgo.Session, m *discordgo.MessageCreate, args []string, database *db.DB, from, to string, renderer announce.Renderer) {
	ids, err := ParseBillIDs(args)
	if err != nil {
		respondText(s, m.ChannelID, err.Error())
		return
	}

	ctx := context.Background()
	guildID := ParseGuildID(m.GuildID)
	queue := announce.NewQueue(renderer)

	for _, id := range ids {
		bill, err := database.UpdateBillStatus(ctx, guildID, id, from, to)
		if err != nil {
			respondText(s, m.ChannelID, fmt.Sprintf("Bill #%d: %v", id, err))
			continue
		}
		queue.Add(bill)
	}

	flushAnnouncements(s, m, database, queue)
}
