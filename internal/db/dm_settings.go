package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type DMSettings struct {
	UserID           int64 `json:"user_id"`
	MuteKickBan      bool  `json:"mute_kick_ban"`
	LegSessionOpen   bool  `json:"leg_session_open"`
	LegSessionVoting bool  `json:"leg_session_voting"`
	PartyJoinLeave   bool  `json:"party_join_leave"`
}

func (db *DB) GetDMSettings(ctx context.Context, userID int64) (*DMSettings, error) {
	// Missing row means everything defaults to on.
	s := &DMSettings{
		UserID:           userID,
		MuteKickBan:      true,
		LegSessionOpen:   true,
		LegSessionVoting: true,
		PartyJoinLeave:   true,
	}
	err := db.pool.QueryRow(ctx,
		`SELECT mute_kick_ban, leg_session_open, leg_session_voting, party_join_leave
		 FROM dm_settings WHERE user_id = $1`,
		userID,
	).Scan(&s.MuteKickBan, &s.LegSessionOpen, &s.LegSessionVoting, &s.PartyJoinLeave)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return s, nil
}

// ToggleDMSetting flips one dm_settings flag and returns its new value.
func (db *DB) ToggleDMSetting(ctx context.Context, userID int64, setting string) (bool, error) {
	var query string
	switch setting {
	case "mute_kick_ban":
		query = `INSERT INTO dm_settings (user_id, mute_kick_ban) VALUES ($1, false)
		         ON CONFLICT (user_id) DO UPDATE SET mute_kick_ban = NOT dm_settings.mute_kick_ban
		         RETURNING mute_kick_ban`
	case "leg_session_open":
		query = `INSERT INTO dm_settings (user_id, leg_session_open) VALUES ($1, false)
		         ON CONFLICT (user_id) DO UPDATE SET leg_session_open = NOT dm_settings.leg_session_open
		         RETURNING leg_session_open`
	case "leg_session_voting":
		query = `INSERT INTO dm_settings (user_id, leg_session_voting) VALUES ($1, false)
		         ON CONFLICT (user_id) DO UPDATE SET leg_session_voting = NOT dm_settings.leg_session_voting
		         RETURNING leg_session_voting`
	case "party_join_leave":
		query = `INSERT INTO dm_settings (user_id, party_join_leave) VALUES ($1, false)
		         ON CONFLICT (user_id) DO UPDATE SET party_join_leave = NOT dm_settings.party_join_leave
		         RETURNING party_join_leave`
	default:
		return false, fmt.Errorf("unknown dm setting: %s", setting)
	}

	var value bool
	if err := db.pool.QueryRow(ctx, query, userID).Scan(&value); err != nil {
		return false, err
	}
	return value, nil
}
