package commands

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/announce"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/db"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/flow"
)

const (
	emojiBill   = "\U0001F4DC" // 📜
	emojiMotion = "\U0001F4AD" // 💭
)

func HandleLegislature(s *discordgo.Session, m *discordgo.MessageCreate, args []string, database *db.DB) {
	if len(args) == 0 {
		respondText(s, m.ChannelID, "Subcommands: `open`, `voting`, `close`, `submit`, `withdraw`, `pass`")
		return
	}

	switch args[0] {
	case "open":
		handleSessionOpen(s, m, database)
	case "voting":
		handleSessionVoting(s, m, database)
	case "close":
		handleSessionClose(s, m, database)
	case "submit":
		handleSubmit(s, m, database)
	case "withdraw":
		handleWithdraw(s, m, args[1:], database)
	case "pass":
		handleLegislaturePass(s, m, args[1:], database)
	default:
		respondText(s, m.ChannelID, fmt.Sprintf("Unknown subcommand '%s'.", args[0]))
	}
}

// isSpeaker checks the invoking member against the guild's configured speaker role.
func isSpeaker(s *discordgo.Session, m *discordgo.MessageCreate, database *db.DB) bool {
	cfg, err := database.GetGuildConfig(context.Background(), ParseGuildID(m.GuildID))
	if err != nil {
		respondText(s, m.ChannelID, "This guild is not set up yet.")
		return false
	}
	if cfg.SpeakerRole == 0 {
		respondText(s, m.ChannelID, "No speaker role is configured. Use the config command first.")
		return false
	}
	if !hasRole(m, cfg.SpeakerRole) {
		respondText(s, m.ChannelID, "Only the Speaker of the Legislature can do this.")
		return false
	}
	return true
}

func handleSessionOpen(s *discordgo.Session, m *discordgo.MessageCreate, database *db.DB) {
	if !isSpeaker(s, m, database) {
		return
	}

	guildID := ParseGuildID(m.GuildID)
	id, err := database.OpenSession(context.Background(), guildID, ParseSnowflake(m.Author.ID))
	if err != nil {
		respondText(s, m.ChannelID, fmt.Sprintf("Could not open a session: %v", err))
		return
	}
	announceToGuild(s, m, database, fmt.Sprintf(":envelope_with_arrow: The **submission period** for session #%d has started! Submit your bills and motions with `legislature submit`.", id))
}

func handleSessionVoting(s *discordgo.Session, m *discordgo.MessageCreate, database *db.DB) {
	if !isSpeaker(s, m, database) {
		return
	}

	ctx := context.Background()
	guildID := ParseGuildID(m.GuildID)
	session, err := database.ActiveSession(ctx, guildID)
	if err != nil {
		log.Printf("legislature: failed to load active session: %v", err)
		return
	}
	if session == nil {
		respondText(s, m.ChannelID, "There is no open session.")
		return
	}

	fl := flow.New(s, m.GuildID, m.ChannelID, m.Author.ID, promptTimeout)
	respondText(s, m.ChannelID, "Reply with the link to the voting form.")
	voteForm, ok := fl.Text(ctx)
	if !ok {
		return
	}

	if err := database.StartVotingPeriod(ctx, session.ID, voteForm); err != nil {
		respondText(s, m.ChannelID, fmt.Sprintf("Could not start the voting period: %v", err))
		return
	}
	announceToGuild(s, m, database, fmt.Sprintf(":ballot_box: The **voting period** for session #%d has started! Vote here: <%s>", session.ID, voteForm))
}

func handleSessionClose(s *discordgo.Session, m *discordgo.MessageCreate, database *db.DB) {
	if !isSpeaker(s, m, database) {
		return
	}

	ctx := context.Background()
	guildID := ParseGuildID(m.GuildID)
	session, err := database.ActiveSession(ctx, guildID)
	if err != nil {
		log.Printf("legislature: failed to load active session: %v", err)
		return
	}
	if session == nil {
		respondText(s, m.ChannelID, "There is no open session.")
		return
	}

	fl := flow.New(s, m.GuildID, m.ChannelID, m.Author.ID, promptTimeout)
	anchor, err := s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Are you sure you want to close session #%d?", session.ID))
	if err != nil {
		log.Printf("legislature: failed to send confirm message: %v", err)
		return
	}
	switch fl.YesNo(ctx, anchor) {
	case flow.AnswerYes:
		// fall through to close
	case flow.AnswerNo:
		respondText(s, m.ChannelID, "Aborted.")
		return
	case flow.AnswerTimeout:
		return
	}

	if err := database.CloseSession(ctx, session.ID); err != nil {
		respondText(s, m.ChannelID, fmt.Sprintf("Could not close the session: %v", err))
		return
	}
	announceToGuild(s, m, database, fmt.Sprintf(":lock: Session #%d is now **closed**. Thank you for participating!", session.ID))
}

func handleSubmit(s *discordgo.Session, m *discordgo.MessageCreate, database *db.DB) {
	ctx := context.Background()
	guildID := ParseGuildID(m.GuildID)

	session, err := database.ActiveSession(ctx, guildID)
	if err != nil {
		log.Printf("legislature: failed to load active session: %v", err)
		return
	}
	if session == nil || session.Status != db.SessionSubmissionPeriod {
		respondText(s, m.ChannelID, "There is no session in its submission period right now.")
		return
	}

	fl := flow.New(s, m.GuildID, m.ChannelID, m.Author.ID, promptTimeout)
	anchor, err := s.ChannelMessageSend(m.ChannelID,
		fmt.Sprintf("React with %s to submit a **bill**, or with %s to submit a **motion**.", emojiBill, emojiMotion))
	if err != nil {
		log.Printf("legislature: failed to send choice message: %v", err)
		return
	}

	choice, ok := fl.EmojiChoice(ctx, anchor, emojiBill, emojiMotion)
	if !ok {
		return
	}

	if choice == emojiBill {
		submitBill(ctx, s, m, fl, database, session)
	} else {
		submitMotion(ctx, s, m, fl, database, session)
	}
}

func submitBill(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, fl *flow.Flow, database *db.DB, session *db.LegSession) {
	respondText(s, m.ChannelID, "What's the name of your bill?")
	name, ok := fl.Text(ctx)
	if !ok {
		return
	}

	respondText(s, m.ChannelID, "Reply with the Google Docs link to your bill.")
	link, ok := fl.Text(ctx)
	if !ok {
		return
	}

	// Description is optional: clicking the gear opens the extra prompt,
	// ignoring it just skips the branch.
	description := ""
	anchor, err := s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Click %s if you also want to add a short description.", flow.EmojiGear))
	if err == nil && fl.GearConfirm(ctx, anchor) {
		respondText(s, m.ChannelID, "Reply with the description.")
		if text, ok := fl.Text(ctx); ok {
			description = text
		} else {
			return
		}
	}

	vetoAnchor, err := s.ChannelMessageSend(m.ChannelID, "Is your bill vetoable by the Ministry?")
	if err != nil {
		log.Printf("legislature: failed to send veto question: %v", err)
		return
	}
	var vetoable bool
	switch fl.YesNo(ctx, vetoAnchor) {
	case flow.AnswerYes:
		vetoable = true
	case flow.AnswerNo:
		vetoable = false
	case flow.AnswerTimeout:
		return
	}

	id, err := database.SubmitBill(ctx, session.GuildID, session.ID, name, link, description, ParseSnowflake(m.Author.ID), vetoable)
	if err != nil {
		respondText(s, m.ChannelID, "Something went wrong while submitting your bill.")
		log.Printf("legislature: failed to submit bill: %v", err)
		return
	}
	respondText(s, m.ChannelID, fmt.Sprintf(":white_check_mark: **%s** was submitted to session #%d as Bill #%d.", name, session.ID, id))
}

func submitMotion(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, fl *flow.Flow, database *db.DB, session *db.LegSession) {
	respondText(s, m.ChannelID, "What's the title of your motion?")
	title, ok := fl.Text(ctx)
	if !ok {
		return
	}

	respondText(s, m.ChannelID, "Reply with the content of your motion.")
	description, ok := fl.Text(ctx)
	if !ok {
		return
	}

	id, err := database.SubmitMotion(ctx, session.GuildID, session.ID, title, description, ParseSnowflake(m.Author.ID))
	if err != nil {
		respondText(s, m.ChannelID, "Something went wrong while submitting your motion.")
		log.Printf("legislature: failed to submit motion: %v", err)
		return
	}
	respondText(s, m.ChannelID, fmt.Sprintf(":white_check_mark: **%s** was submitted to session #%d as Motion #%d.", title, session.ID, id))
}

func handleWithdraw(s *discordgo.Session, m *discordgo.MessageCreate, args []string, database *db.DB) {
	ids, err := ParseBillIDs(args)
	if err != nil {
		respondText(s, m.ChannelID, err.Error())
		return
	}

	ctx := context.Background()
	guildID := ParseGuildID(m.GuildID)

	// The speaker may withdraw any bill, everyone else only their own.
	submitter := ParseSnowflake(m.Author.ID)
	if cfg, err := database.GetGuildConfig(ctx, guildID); err == nil && hasRole(m, cfg.SpeakerRole) {
		submitter = 0
	}

	for _, id := range ids {
		if err := database.WithdrawBill(ctx, guildID, id, submitter); err != nil {
			respondText(s, m.ChannelID, fmt.Sprintf("Bill #%d: %v", id, err))
			continue
		}
		respondText(s, m.ChannelID, fmt.Sprintf("Bill #%d was withdrawn.", id))
	}
}

func handleLegislaturePass(s *discordgo.Session, m *discordgo.MessageCreate, args []string, database *db.DB) {
	if !isSpeaker(s, m, database) {
		return
	}

	ids, err := ParseBillIDs(args)
	if err != nil {
		respondText(s, m.ChannelID, err.Error())
		return
	}

	ctx := context.Background()
	guildID := ParseGuildID(m.GuildID)
	queue := announce.NewQueue(announce.PassedLegislature{})

	for _, id := range ids {
		bill, err := database.UpdateBillStatus(ctx, guildID, id, db.BillSubmitted, db.BillPassedLeg)
		if err != nil {
			respondText(s, m.ChannelID, fmt.Sprintf("Bill #%d: %v", id, err))
			continue
		}
		if !bill.IsVetoable {
			// Goes straight to law, skipping the Ministry.
			bill, err = database.UpdateBillStatus(ctx, guildID, id, db.BillPassedLeg, db.BillLaw)
			if err != nil {
				respondText(s, m.ChannelID, fmt.Sprintf("Bill #%d: %v", id, err))
				continue
			}
		}
		queue.Add(bill)
	}

	flushAnnouncements(s, m, database, queue)
}

// ParseBillIDs parses command arguments like ["12", "13", "14"] into bill ids.
func ParseBillIDs(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("You have to tell me which bill. Example: `pass 12 13 14`")
	}
	var ids []int
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("'%s' is not a bill id.", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// announceToGuild posts to the configured announcement channel, falling back
// to the channel the command was used in.
func announceToGuild(s *discordgo.Session, m *discordgo.MessageCreate, database *db.DB, content string) {
	channelID := m.ChannelID
	if cfg, err := database.GetGuildConfig(context.Background(), ParseGuildID(m.GuildID)); err == nil && cfg.AnnouncementChannel != 0 {
		channelID = strconv.FormatInt(cfg.AnnouncementChannel, 10)
	}
	respondText(s, channelID, content)
}

func flushAnnouncements(s *discordgo.Session, m *discordgo.MessageCreate, database *db.DB, queue *announce.Queue) {
	if queue.Len() == 0 {
		return
	}
	channelID := m.ChannelID
	if cfg, err := database.GetGuildConfig(context.Background(), ParseGuildID(m.GuildID)); err == nil && cfg.AnnouncementChannel != 0 {
		channelID = strconv.FormatInt(cfg.AnnouncementChannel, 10)
	}
	if err := queue.Flush(s, channelID); err != nil {
		log.Printf("legislature: failed to flush announcements: %v", err)
	}
}
