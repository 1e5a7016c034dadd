package bot

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/db"
)

type Bot struct {
	session       *discordgo.Session
	db            *db.DB
	defaultPrefix string
	reminders     *reminderWorker
}

func New(token string, database *db.DB, defaultPrefix string) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	bot := &Bot{
		session:       session,
		db:            database,
		defaultPrefix: defaultPrefix,
	}
	bot.reminders = newReminderWorker(session, database)

	// Register event handlers
	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onGuildCreate)
	session.AddHandler(bot.onMessageCreate)
	session.AddHandler(bot.onMessageReactionAdd)
	session.AddHandler(bot.onMessageReactionRemove)

	session.Identify.Intents = discordgo.IntentsAll

	return bot, nil
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	b.reminders.start()
	log.Println("Discord bot is running")
	return nil
}

func (b *Bot) Stop() error {
	b.reminders.stop()
	return b.session.Close()
}
