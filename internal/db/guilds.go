package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type GuildConfig struct {
	ID                  int64  `json:"id"`
	Prefix              string `json:"prefix"`
	AnnouncementChannel int64  `json:"announcement_channel"`
	ReportChannel       int64  `json:"report_channel"`
	SpeakerRole         int64  `json:"speaker_role"`
	StarboardChannel    int64  `json:"starboard_channel"`
	StarboardThreshold  int    `json:"starboard_threshold"`
	StarboardEnabled    bool   `json:"starboard_enabled"`
}

// EnsureGuild inserts a config row with defaults if the guild is not yet known.
func (db *DB) EnsureGuild(ctx context.Context, guildID int64, defaultPrefix string) error {
	_, err := db.pool.Exec(ctx,
		"INSERT INTO guilds (id, prefix) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING",
		guildID, defaultPrefix,
	)
	return err
}

func (db *DB) GetGuildConfig(ctx context.Context, guildID int64) (*GuildConfig, error) {
	var cfg GuildConfig
	var announcement, report, speaker, starboard *int64
	err := db.pool.QueryRow(ctx,
		`SELECT id, prefix, announcement_channel, report_channel, speaker_role,
		        starboard_channel, starboard_threshold, starboard_enabled
		 FROM guilds WHERE id = $1`,
		guildID,
	).Scan(&cfg.ID, &cfg.Prefix, &announcement, &report, &speaker,
		&starboard, &cfg.StarboardThreshold, &cfg.StarboardEnabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("guild not found")
	}
	if err != nil {
		return nil, err
	}
	if announcement != nil {
		cfg.AnnouncementChannel = *announcement
	}
	if report != nil {
		cfg.ReportChannel = *report
	}
	if speaker != nil {
		cfg.SpeakerRole = *speaker
	}
	if starboard != nil {
		cfg.StarboardChannel = *starboard
	}
	return &cfg, nil
}

// GetGuildPrefix returns the guild's command prefix, or fallback for unknown guilds.
func (db *DB) GetGuildPrefix(ctx context.Context, guildID int64, fallback string) string {
	var prefix string
	err := db.pool.QueryRow(ctx, "SELECT prefix FROM guilds WHERE id = $1", guildID).Scan(&prefix)
	if err != nil || prefix == "" {
		return fallback
	}
	return prefix
}

func (db *DB) SetGuildPrefix(ctx context.Context, guildID int64, prefix string) error {
	ct, err := db.pool.Exec(ctx, "UPDATE guilds SET prefix = $2 WHERE id = $1", guildID, prefix)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("guild not found")
	}
	return nil
}

func (db *DB) SetGuildChannel(ctx context.Context, guildID int64, column string, channelID int64) error {
	// column is always one of a fixed set chosen by the caller, never user input
	var query string
	switch column {
	case "announcement_channel":
		query = "UPDATE guilds SET announcement_channel = $2 WHERE id = $1"
	case "report_channel":
		query = "UPDATE guilds SET report_channel = $2 WHERE id = $1"
	case "starboard_channel":
		query = "UPDATE guilds SET starboard_channel = $2 WHERE id = $1"
	default:
		return fmt.Errorf("unknown guild channel column: %s", column)
	}
	ct, err := db.pool.Exec(ctx, query, guildID, channelID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("guild not found")
	}
	return nil
}

func (db *DB) SetSpeakerRole(ctx context.Context, guildID, roleID int64) error {
	ct, err := db.pool.Exec(ctx, "UPDATE guilds SET speaker_role = $2 WHERE id = $1", guildID, roleID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("guild not found")
	}
	return nil
}

func (db *DB) SetStarboard(ctx context.Context, guildID int64, enabled bool, threshold int) error {
	ct, err := db.pool.Exec(ctx,
		"UPDATE guilds SET starboard_enabled = $2, starboard_threshold = $3 WHERE id = $1",
		guildID, enabled, threshold,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("guild not found")
	}
	return nil
}

func (db *DB) GetRegisteredGuildIDs(ctx context.Context) ([]int64, error) {
	rows, err := db.pool.Query(ctx, "SELECT id FROM guilds")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guildIDs []int64
	for rows.Next() {
		var guildID int64
		if err := rows.Scan(&guildID); err != nil {
			return nil, err
		}
		guildIDs = append(guildIDs, guildID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return guildIDs, nil
}
