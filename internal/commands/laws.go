package commands

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/announce"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/db"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/flow"
)

func HandleLaws(s *discordgo.Session, m *discordgo.MessageCreate, args []string, database *db.DB) {
	if len(args) == 0 {
		handleLawsList(s, m, database)
		return
	}

	switch args[0] {
	case "search":
		handleLawsSearch(s, m, args[1:], database)
	case "repeal":
		handleLawsRepeal(s, m, args[1:], database)
	default:
		respondText(s, m.ChannelID, fmt.Sprintf("Unknown subcommand '%s'.", args[0]))
	}
}

func handleLawsList(s *discordgo.Session, m *discordgo.MessageCreate, database *db.DB) {
	laws, err := database.SearchLaws(context.Background(), ParseGuildID(m.GuildID), "")
	if err != nil {
		log.Printf("laws: failed to list laws: %v", err)
		return
	}
	if len(laws) == 0 {
		respondText(s, m.ChannelID, "There are no laws yet.")
		return
	}

	var entries []string
	for _, law := range laws {
		entries = append(entries, fmt.Sprintf("Law #%d - **%s** (<%s>)", law.ID, law.Name, law.Link))
	}
	for _, msg := range chunkLines(entries) {
		respondText(s, m.ChannelID, msg)
	}
}

func handleLawsSearch(s *discordgo.Session, m *discordgo.MessageCreate, args []string, database *db.DB) {
	if len(args) == 0 {
		respondText(s, m.ChannelID, "What should I search for? Example: `laws search taxes`")
		return
	}

	pattern := strings.Join(args, " ")
	laws, err := database.SearchLaws(context.Background(), ParseGuildID(m.GuildID), pattern)
	if err != nil {
		log.Printf("laws: search failed: %v", err)
		return
	}
	if len(laws) == 0 {
		respondText(s, m.ChannelID, fmt.Sprintf("No laws match '%s'.", pattern))
		return
	}

	var entries []string
	for _, law := range laws {
		entries = append(entries, fmt.Sprintf("Law #%d - **%s** (<%s>)", law.ID, law.Name, law.Link))
	}
	for _, msg := range chunkLines(entries) {
		respondText(s, m.ChannelID, msg)
	}
}

func handleLawsRepeal(s *discordgo.Session, m *discordgo.MessageCreate, args []string, database *db.DB) {
	if !isSpeaker(s, m, database) {
		return
	}

	ids, err := ParseBillIDs(args)
	if err != nil {
		respondText(s, m.ChannelID, err.Error())
		return
	}

	ctx := context.Background()
	fl := flow.New(s, m.GuildID, m.ChannelID, m.Author.ID, promptTimeout)
	anchor, err := s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Are you sure you want to repeal %d law(s)?", len(ids)))
	if err != nil {
		log.Printf("laws: failed to send confirm message: %v", err)
		return
	}
	switch fl.YesNo(ctx, anchor) {
	case flow.AnswerYes:
	case flow.AnswerNo:
		respondText(s, m.ChannelID, "Aborted.")
		return
	case flow.AnswerTimeout:
		return
	}

	guildID := ParseGuildID(m.GuildID)
	queue := announce.NewQueue(announce.Repealed{})
	for _, id := range ids {
		bill, err := database.UpdateBillStatus(ctx, guildID, id, db.BillLaw, db.BillRepealed)
		if err != nil {
			// veto-overridden bills are laws too
			bill, err = database.UpdateBillStatus(ctx, guildID, id, db.BillVetoOverridden, db.BillRepealed)
		}
		if err != nil {
			respondText(s, m.ChannelID, fmt.Sprintf("Law #%d: %v", id, err))
			continue
		}
		queue.Add(bill)
	}

	flushAnnouncements(s, m, database, queue)
}
