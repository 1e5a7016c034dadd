package commands

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/db"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/flow"
)

func HandleTag(s *discordgo.Session, m *discordgo.MessageCreate, args []string, database *db.DB) {
	if len(args) == 0 {
		respondText(s, m.ChannelID, "Subcommands: `add`, `delete`, `search`, or `tag <name>` to use one.")
		return
	}

	switch args[0] {
	case "add":
		handleTagAdd(s, m, database)
	case "delete":
		handleTagDelete(s, m, args[1:], database)
	case "search":
		handleTagSearch(s, m, args[1:], database)
	default:
		handleTagShow(s, m, args[0], database)
	}
}

func handleTagShow(s *discordgo.Session, m *discordgo.MessageCreate, name string, database *db.DB) {
	tag, err := database.GetTag(context.Background(), ParseGuildID(m.GuildID), strings.ToLower(name))
	if err != nil {
		respondText(s, m.ChannelID, fmt.Sprintf("There is no tag named '%s'.", name))
		return
	}
	respondText(s, m.ChannelID, fmt.Sprintf("**%s**\n%s", tag.Title, tag.Content))
}

func handleTagAdd(s *discordgo.Session, m *discordgo.MessageCreate, database *db.DB) {
	ctx := context.Background()
	fl := flow.New(s, m.GuildID, m.ChannelID, m.Author.ID, promptTimeout)

	respondText(s, m.ChannelID, "Reply with the name of the tag. It will be used to call the tag later.")
	name, ok := fl.Text(ctx)
	if !ok {
		return
	}
	name = strings.ToLower(strings.Fields(name)[0])

	respondText(s, m.ChannelID, "Reply with the title of the tag.")
	title, ok := fl.Text(ctx)
	if !ok {
		return
	}

	respondText(s, m.ChannelID, "Reply with the content of the tag.")
	content, ok := fl.Text(ctx)
	if !ok {
		return
	}

	err := database.AddTag(ctx, ParseGuildID(m.GuildID), name, title, content, ParseSnowflake(m.Author.ID))
	if err != nil {
		respondText(s, m.ChannelID, fmt.Sprintf("Could not add the tag: %v", err))
		return
	}
	respondText(s, m.ChannelID, fmt.Sprintf(":white_check_mark: The tag `%s` was added.", name))
}

func handleTagDelete(s *discordgo.Session, m *discordgo.MessageCreate, args []string, database *db.DB) {
	if len(args) == 0 {
		respondText(s, m.ChannelID, "Which tag? Example: `tag delete constitution`")
		return
	}

	ctx := context.Background()
	name := strings.ToLower(args[0])

	fl := flow.New(s, m.GuildID, m.ChannelID, m.Author.ID, promptTimeout)
	anchor, err := s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Are you sure you want to delete the tag `%s`?", name))
	if err != nil {
		log.Printf("tag: failed to send confirm message: %v", err)
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

	// Administrators may delete any tag, everyone else only their own.
	author := ParseSnowflake(m.Author.ID)
	if isAdmin(s, m) {
		author = 0
	}
	if err := database.DeleteTag(ctx, ParseGuildID(m.GuildID), name, author); err != nil {
		respondText(s, m.ChannelID, fmt.Sprintf("Could not delete the tag: %v", err))
		return
	}
	respondText(s, m.ChannelID, fmt.Sprintf(":wastebasket: The tag `%s` was deleted.", name))
}

func handleTagSearch(s *discordgo.Session, m *discordgo.MessageCreate, args []string, database *db.DB) {
	if len(args) == 0 {
		respondText(s, m.ChannelID, "What should I search for? Example: `tag search welcome`")
		return
	}

	pattern := strings.Join(args, " ")
	tags, err := database.ListTags(context.Background(), ParseGuildID(m.GuildID), pattern)
	if err != nil {
		log.Printf("tag: search failed: %v", err)
		return
	}
	if len(tags) == 0 {
		respondText(s, m.ChannelID, fmt.Sprintf("No tags match '%s'.", pattern))
		return
	}

	var entries []string
	for _, t := range tags {
		entries = append(entries, fmt.Sprintf("`%s` - %s", t.Name, t.Title))
	}
	for _, msg := range chunkLines(entries) {
		respondText(s, m.ChannelID, msg)
	}
}

func isAdmin(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		return false
	}
	return perms&discordgo.PermissionAdministrator != 0
}
