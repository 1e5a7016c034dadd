package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

type Party struct {
	ID            int    `json:"id"`
	GuildID       int64  `json:"guild_id"`
	RoleID        int64  `json:"role_id"`
	Leader        int64  `json:"leader"`
	IsPrivate     bool   `json:"is_private"`
	DiscordInvite string `json:"discord_invite"`
}

// CreateParty inserts the party and its aliases in one transaction so a failed
// alias insert never leaves a half-created party behind.
func (db *DB) CreateParty(ctx context.Context, p *Party, aliases []string) (int, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int
	err = tx.QueryRow(ctx,
		`INSERT INTO parties (guild_id, role_id, leader, is_private, discord_invite)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		p.GuildID, p.RoleID, p.Leader, p.IsPrivate, p.DiscordInvite,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	for _, alias := range aliases {
		_, err = tx.Exec(ctx,
			"INSERT INTO party_aliases (alias, party_id, guild_id) VALUES ($1, $2, $3)",
			strings.ToLower(alias), id, p.GuildID,
		)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

// PartyByName resolves a party by alias (aliases include the role name itself).
func (db *DB) PartyByName(ctx context.Context, guildID int64, name string) (*Party, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT p.id, p.guild_id, p.role_id, COALESCE(p.leader, 0), p.is_private, p.discord_invite
		 FROM parties p
		 JOIN party_aliases a ON a.party_id = p.id
		 WHERE p.guild_id = $1 AND a.alias = $2`,
		guildID, strings.ToLower(name),
	)
	var p Party
	err := row.Scan(&p.ID, &p.GuildID, &p.RoleID, &p.Leader, &p.IsPrivate, &p.DiscordInvite)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("party not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *DB) ListParties(ctx context.Context, guildID int64) ([]Party, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, guild_id, role_id, COALESCE(leader, 0), is_private, discord_invite
		 FROM parties WHERE guild_id = $1 ORDER BY id`,
		guildID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parties []Party
	for rows.Next() {
		var p Party
		if err := rows.Scan(&p.ID, &p.GuildID, &p.RoleID, &p.Leader, &p.IsPrivate, &p.DiscordInvite); err != nil {
			return nil, err
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

func (db *DB) AddPartyAlias(ctx context.Context, guildID int64, partyID int, alias string) error {
	_, err := db.pool.Exec(ctx,
		"INSERT INTO party_aliases (alias, party_id, guild_id) VALUES ($1, $2, $3)",
		strings.ToLower(alias), partyID, guildID,
	)
	return err
}

func (db *DB) DeleteParty(ctx context.Context, guildID int64, partyID int) error {
	// party_aliases rows go with it via ON DELETE CASCADE
	ct, err := db.pool.Exec(ctx,
		"DELETE FROM parties WHERE guild_id = $1 AND id = $2",
		guildID, partyID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("party not found")
	}
	return nil
}

// MergeParties moves every alias of the absorbed party onto the surviving one
// and deletes the absorbed party, atomically.
func (db *DB) MergeParties(ctx context.Context, guildID int64, surviveID, absorbID int) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		"UPDATE party_aliases SET party_id = $1 WHERE guild_id = $2 AND party_id = $3",
		surviveID, guildID, absorbID,
	)
	if err != nil {
		return err
	}

	ct, err := tx.Exec(ctx,
		"DELETE FROM parties WHERE guild_id = $1 AND id = $2",
		guildID, absorbID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("party not found")
	}

	return tx.Commit(ctx)
}
