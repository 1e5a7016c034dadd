package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type StarboardEntry struct {
	ID                 int   `json:"id"`
	GuildID            int64 `json:"guild_id"`
	ChannelID          int64 `json:"channel_id"`
	MessageID          int64 `json:"message_id"`
	AuthorID           int64 `json:"author_id"`
	StarboardMessageID int64 `json:"starboard_message_id"`
	Stars              int   `json:"stars"`
}

func (db *DB) GetStarboardEntry(ctx context.Context, messageID int64) (*StarboardEntry, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, guild_id, channel_id, message_id, author_id, starboard_message_id, stars
		 FROM starboard_entries WHERE message_id = $1`,
		messageID,
	)
	var e StarboardEntry
	err := row.Scan(&e.ID, &e.GuildID, &e.ChannelID, &e.MessageID, &e.AuthorID, &e.StarboardMessageID, &e.Stars)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (db *DB) AddStarboardEntry(ctx context.Context, e *StarboardEntry) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO starboard_entries (guild_id, channel_id, message_id, author_id, starboard_message_id, stars)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (message_id) DO NOTHING`,
		e.GuildID, e.ChannelID, e.MessageID, e.AuthorID, e.StarboardMessageID, e.Stars,
	)
	return err
}

func (db *DB) UpdateStarboardStars(ctx context.Context, messageID int64, stars int) error {
	ct, err := db.pool.Exec(ctx,
		"UPDATE starboard_entries SET stars = $2 WHERE message_id = $1",
		messageID, stars,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("starboard entry not found")
	}
	return nil
}
