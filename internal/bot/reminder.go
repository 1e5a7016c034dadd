package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/db"
)

// reminderWorker periodically reminds guilds about legislative sessions that
// have been sitting in their voting period for a while.
type reminderWorker struct {
	db           *db.DB
	session      reminderSession
	stopChan     chan struct{}
	ticker       *time.Ticker
	interval     time.Duration
	votingMaxAge time.Duration
	lastReminded map[int]time.Time
}

// Minimal session interface for sending channel messages.
type reminderSession interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

func newReminderWorker(session reminderSession, database *db.DB) *reminderWorker {
	return &reminderWorker{
		db:           database,
		session:      session,
		stopChan:     make(chan struct{}),
		interval:     time.Hour,
		votingMaxAge: 48 * time.Hour,
		lastReminded: make(map[int]time.Time),
	}
}

func (w *reminderWorker) start() {
	if w == nil {
		return
	}
	w.ticker = time.NewTicker(w.interval)
	go w.loop()
}

func (w *reminderWorker) stop() {
	if w == nil {
		return
	}
	close(w.stopChan)
	if w.ticker != nil {
		w.ticker.Stop()
	}
}

func (w *reminderWorker) loop() {
	ctx := context.Background()
	for {
		select {
		case <-w.ticker.C:
			w.tick(ctx)
		case <-w.stopChan:
			return
		}
	}
}

func (w *reminderWorker) tick(ctx context.Context) {
	now := time.Now()
	sessions, err := w.db.VotingSessions(ctx)
	if err != nil {
		log.Printf("reminder: failed to load voting sessions: %v", err)
		return
	}

	for _, s := range sessions {
		if s.VotingStartedOn == nil || now.Sub(*s.VotingStartedOn) < w.votingMaxAge {
			continue
		}
		// One reminder per session per day is plenty.
		if last, ok := w.lastReminded[s.ID]; ok && now.Sub(last) < 24*time.Hour {
			continue
		}

		cfg, err := w.db.GetGuildConfig(ctx, s.GuildID)
		if err != nil || cfg.AnnouncementChannel == 0 {
			continue
		}

		msg := fmt.Sprintf(":alarm_clock: Session #%d has been in its voting period for over %d hours. Speaker <@%d>, don't forget to close it!",
			s.ID, int(now.Sub(*s.VotingStartedOn).Hours()), s.Speaker)
		channelID := strconv.FormatInt(cfg.AnnouncementChannel, 10)
		if _, err := w.session.ChannelMessageSend(channelID, msg); err != nil {
			log.Printf("reminder: failed to send reminder for session %d: %v", s.ID, err)
			continue
		}
		w.lastReminded[s.ID] = now
	}

	// Forget closed sessions so the map doesn't grow forever.
	active := make(map[int]bool, len(sessions))
	for _, s := range sessions {
		active[s.ID] = true
	}
	for id := range w.lastReminded {
		if !active[id] {
			delete(w.lastReminded, id)
		}
	}
}
