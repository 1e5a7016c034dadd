package commands

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/db"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/flow"
)

func HandleParty(s *discordgo.Session, m *discordgo.MessageCreate, args []string, database *db.DB) {
	if len(args) == 0 {
		handlePartyList(s, m, database)
		return
	}

	switch args[0] {
	case "list":
		handlePartyList(s, m, database)
	case "join":
		handlePartyJoin(s, m, args[1:], database)
	case "leave":
		handlePartyLeave(s, m, args[1:], database)
	default:
		respondText(s, m.ChannelID, fmt.Sprintf("Unknown subcommand '%s'.", args[0]))
	}
}

func handlePartyList(s *discordgo.Session, m *discordgo.MessageCreate, database *db.DB) {
	parties, err := database.ListParties(context.Background(), ParseGuildID(m.GuildID))
	if err != nil {
		log.Printf("party: failed to list parties: %v", err)
		return
	}
	if len(parties) == 0 {
		respondText(s, m.ChannelID, "There are no political parties yet.")
		return
	}

	var entries []string
	for _, p := range parties {
		entry := fmt.Sprintf("<@&%d>", p.RoleID)
		if p.IsPrivate {
			entry += " (private, invitation only)"
		}
		entries = append(entries, entry)
	}
	for _, msg := range chunkLines(entries) {
		respondText(s, m.ChannelID, msg)
	}
}

func handlePartyJoin(s *discordgo.Session, m *discordgo.MessageCreate, args []string, database *db.DB) {
	if len(args) == 0 {
		respondText(s, m.ChannelID, "Which party? Example: `party join Socialists`")
		return
	}

	name := strings.Join(args, " ")
	party, err := database.PartyByName(context.Background(), ParseGuildID(m.GuildID), name)
	if err != nil {
		respondText(s, m.ChannelID, fmt.Sprintf("There is no party named '%s'.", name))
		return
	}
	if party.IsPrivate {
		respondText(s, m.ChannelID, fmt.Sprintf("<@&%d> is invitation only. Ask <@%d> for an invitation.", party.RoleID, party.Leader))
		return
	}

	if err := s.GuildMemberRoleAdd(m.GuildID, m.Author.ID, strconv.FormatInt(party.RoleID, 10)); err != nil {
		respondText(s, m.ChannelID, "I couldn't give you the party role. Do I have the Manage Roles permission?")
		log.Printf("party: failed to add role: %v", err)
		return
	}
	respondText(s, m.ChannelID, fmt.Sprintf(":white_check_mark: You joined <@&%d>.", party.RoleID))
}

func handlePartyLeave(s *discordgo.Session, m *discordgo.MessageCreate, args []string, database *db.DB) {
	if len(args) == 0 {
		respondText(s, m.ChannelID, "Which party? Example: `party leave Socialists`")
		return
	}

	name := strings.Join(args, " ")
	party, err := database.PartyByName(context.Background(), ParseGuildID(m.GuildID), name)
	if err != nil {
		respondText(s, m.ChannelID, fmt.Sprintf("There is no party named '%s'.", name))
		return
	}

	if err := s.GuildMemberRoleRemove(m.GuildID, m.Author.ID, strconv.FormatInt(party.RoleID, 10)); err != nil {
		respondText(s, m.ChannelID, "I couldn't remove the party role. Do I have the Manage Roles permission?")
		log.Printf("party: failed to remove role: %v", err)
		return
	}
	respondText(s, m.ChannelID, fmt.Sprintf("You left <@&%d>.", party.RoleID))
}

// HandleAddParty walks an admin through creating a party. The role prompt
// resolves against existing guild roles; an unmatched name means a brand-new
// role should be created for the party.
func HandleAddParty(s *discordgo.Session, m *discordgo.MessageCreate, database *db.DB) {
	if !isAdmin(s, m) {
		respondText(s, m.ChannelID, "Only administrators can create parties.")
		return
	}

	ctx := context.Background()
	fl := flow.New(s, m.GuildID, m.ChannelID, m.Author.ID, promptTimeout)

	respondText(s, m.ChannelID, "Reply with the name of the party's role. If no role with that name exists yet, I'll create it.")
	role, rawName, ok := fl.Role(ctx)
	if !ok {
		return
	}

	if role == nil {
		mentionable := true
		created, err := s.GuildRoleCreate(m.GuildID, &discordgo.RoleParams{
			Name:        rawName,
			Mentionable: &mentionable,
		})
		if err != nil {
			respondText(s, m.ChannelID, "I couldn't create the role. Do I have the Manage Roles permission?")
			log.Printf("party: failed to create role: %v", err)
			return
		}
		role = created
	}

	anchor, err := s.ChannelMessageSend(m.ChannelID, "Should the party be private? Members of private parties have to be invited by the party leader.")
	if err != nil {
		log.Printf("party: failed to send privacy question: %v", err)
		return
	}
	var isPrivate bool
	switch fl.YesNo(ctx, anchor) {
	case flow.AnswerYes:
		isPrivate = true
	case flow.AnswerNo:
		isPrivate = false
	case flow.AnswerTimeout:
		return
	}

	respondText(s, m.ChannelID, "Reply with the party leader's mention or user id, or with `none`.")
	leaderText, ok := fl.Text(ctx)
	if !ok {
		return
	}
	leader := parseMentionID(leaderText)

	// All input is collected; only now touch the database.
	party := &db.Party{
		GuildID:   ParseGuildID(m.GuildID),
		RoleID:    ParseSnowflake(role.ID),
		Leader:    leader,
		IsPrivate: isPrivate,
	}
	if _, err := database.CreateParty(ctx, party, []string{role.Name}); err != nil {
		respondText(s, m.ChannelID, "Something went wrong while creating the party.")
		log.Printf("party: failed to create party: %v", err)
		return
	}
	respondText(s, m.ChannelID, fmt.Sprintf(":white_check_mark: <@&%s> is now a political party.", role.ID))
}

func HandleDeleteParty(s *discordgo.Session, m *discordgo.MessageCreate, args []string, database *db.DB) {
	if !isAdmin(s, m) {
		respondText(s, m.ChannelID, "Only administrators can delete parties.")
		return
	}
	if len(args) == 0 {
		respondText(s, m.ChannelID, "Which party? Example: `deleteparty Socialists`")
		return
	}

	ctx := context.Background()
	name := strings.Join(args, " ")
	party, err := database.PartyByName(ctx, ParseGuildID(m.GuildID), name)
	if err != nil {
		respondText(s, m.ChannelID, fmt.Sprintf("There is no party named '%s'.", name))
		return
	}

	fl := flow.New(s, m.GuildID, m.ChannelID, m.Author.ID, promptTimeout)
	anchor, err := s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Are you sure you want to delete <@&%d>? The role itself will not be deleted.", party.RoleID))
	if err != nil {
		log.Printf("party: failed to send confirm message: %v", err)
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

	if err := database.DeleteParty(ctx, ParseGuildID(m.GuildID), party.ID); err != nil {
		respondText(s, m.ChannelID, fmt.Sprintf("Could not delete the party: %v", err))
		return
	}
	respondText(s, m.ChannelID, ":wastebasket: The party was deleted.")
}

// HandleMergeParties collects both party names and a confirmation before the
// merge transaction runs, so no transaction is ever open while waiting on input.
func HandleMergeParties(s *discordgo.Session, m *discordgo.MessageCreate, database *db.DB) {
	if !isAdmin(s, m) {
		respondText(s, m.ChannelID, "Only administrators can merge parties.")
		return
	}

	ctx := context.Background()
	guildID := ParseGuildID(m.GuildID)
	fl := flow.New(s, m.GuildID, m.ChannelID, m.Author.ID, promptTimeout)

	respondText(s, m.ChannelID, "Reply with the name of the party that will **survive** the merge.")
	surviveName, ok := fl.Text(ctx)
	if !ok {
		return
	}
	survive, err := database.PartyByName(ctx, guildID, surviveName)
	if err != nil {
		respondText(s, m.ChannelID, fmt.Sprintf("There is no party named '%s'.", surviveName))
		return
	}

	respondText(s, m.ChannelID, "Reply with the name of the party that will be **absorbed**.")
	absorbName, ok := fl.Text(ctx)
	if !ok {
		return
	}
	absorb, err := database.PartyByName(ctx, guildID, absorbName)
	if err != nil {
		respondText(s, m.ChannelID, fmt.Sprintf("There is no party named '%s'.", absorbName))
		return
	}
	if absorb.ID == survive.ID {
		respondText(s, m.ChannelID, "That's the same party twice.")
		return
	}

	anchor, err := s.ChannelMessageSend(m.ChannelID,
		fmt.Sprintf("Merge <@&%d> into <@&%d>? All aliases move over and the absorbed party is deleted.", absorb.RoleID, survive.RoleID))
	if err != nil {
		log.Printf("party: failed to send confirm message: %v", err)
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

	if err := database.MergeParties(ctx, guildID, survive.ID, absorb.ID); err != nil {
		respondText(s, m.ChannelID, fmt.Sprintf("Could not merge the parties: %v", err))
		return
	}
	respondText(s, m.ChannelID, fmt.Sprintf(":white_check_mark: <@&%d> absorbed the other party.", survive.RoleID))
}

// parseMentionID extracts a user id from "<@123>", "<@!123>", a bare id, or
// returns 0 for anything else (including "none").
func parseMentionID(text string) int64 {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "<@")
	text = strings.TrimPrefix(text, "!")
	text = strings.TrimSuffix(text, ">")
	return ParseSnowflake(text)
}
