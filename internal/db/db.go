package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

// RunMigrations runs database migrations
func (db *DB) RunMigrations(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS guilds (
			id BIGINT PRIMARY KEY,
			prefix TEXT NOT NULL DEFAULT '-',
			announcement_channel BIGINT,
			report_channel BIGINT,
			speaker_role BIGINT,
			starboard_channel BIGINT,
			starboard_threshold INT NOT NULL DEFAULT 4,
			starboard_enabled BOOLEAN NOT NULL DEFAULT false
		);

		CREATE TABLE IF NOT EXISTS legislature_sessions (
			id SERIAL PRIMARY KEY,
			guild_id BIGINT NOT NULL,
			speaker BIGINT NOT NULL,
			status TEXT NOT NULL DEFAULT 'submission_period',
			vote_form TEXT,
			opened_on TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			voting_started_on TIMESTAMP,
			closed_on TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_leg_sessions_guild ON legislature_sessions(guild_id);

		CREATE TABLE IF NOT EXISTS bills (
			id SERIAL PRIMARY KEY,
			guild_id BIGINT NOT NULL,
			leg_session INT NOT NULL REFERENCES legislature_sessions(id),
			name TEXT NOT NULL,
			link TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			submitter BIGINT NOT NULL,
			is_vetoable BOOLEAN NOT NULL DEFAULT true,
			status TEXT NOT NULL DEFAULT 'submitted',
			submitted_on TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_bills_guild ON bills(guild_id);
		CREATE INDEX IF NOT EXISTS idx_bills_session ON bills(leg_session);

		CREATE TABLE IF NOT EXISTS motions (
			id SERIAL PRIMARY KEY,
			guild_id BIGINT NOT NULL,
			leg_session INT NOT NULL REFERENCES legislature_sessions(id),
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			submitter BIGINT NOT NULL,
			submitted_on TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_motions_session ON motions(leg_session);

		CREATE TABLE IF NOT EXISTS parties (
			id SERIAL PRIMARY KEY,
			guild_id BIGINT NOT NULL,
			role_id BIGINT NOT NULL,
			leader BIGINT,
			is_private BOOLEAN NOT NULL DEFAULT false,
			discord_invite TEXT NOT NULL DEFAULT '',
			UNIQUE (guild_id, role_id)
		);

		CREATE TABLE IF NOT EXISTS party_aliases (
			alias TEXT NOT NULL,
			party_id INT NOT NULL REFERENCES parties(id) ON DELETE CASCADE,
			guild_id BIGINT NOT NULL,
			PRIMARY KEY (guild_id, alias)
		);

		CREATE TABLE IF NOT EXISTS tags (
			id SERIAL PRIMARY KEY,
			guild_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			author BIGINT NOT NULL,
			uses INT NOT NULL DEFAULT 0,
			UNIQUE (guild_id, name)
		);

		CREATE TABLE IF NOT EXISTS starboard_entries (
			id SERIAL PRIMARY KEY,
			guild_id BIGINT NOT NULL,
			channel_id BIGINT NOT NULL,
			message_id BIGINT NOT NULL UNIQUE,
			author_id BIGINT NOT NULL,
			starboard_message_id BIGINT NOT NULL,
			stars INT NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS webhooks (
			id SERIAL PRIMARY KEY,
			guild_id BIGINT NOT NULL,
			channel_id BIGINT NOT NULL,
			webhook_id BIGINT NOT NULL,
			kind TEXT NOT NULL,
			target TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_webhooks_guild ON webhooks(guild_id);

		CREATE TABLE IF NOT EXISTS dm_settings (
			user_id BIGINT PRIMARY KEY,
			mute_kick_ban BOOLEAN NOT NULL DEFAULT true,
			leg_session_open BOOLEAN NOT NULL DEFAULT true,
			leg_session_voting BOOLEAN NOT NULL DEFAULT true,
			party_join_leave BOOLEAN NOT NULL DEFAULT true
		);
	`)
	return err
}
