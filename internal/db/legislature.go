package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Legislative session statuses.
const (
	SessionSubmissionPeriod = "submission_period"
	SessionVotingPeriod     = "voting_period"
	SessionClosed           = "closed"
)

// Bill statuses.
const (
	BillSubmitted      = "submitted"
	BillPassedLeg      = "passed_leg"
	BillLaw            = "law"
	BillVetoed         = "vetoed"
	BillVetoOverridden = "veto_overridden"
	BillRepealed       = "repealed"
)

type LegSession struct {
	ID              int        `json:"id"`
	GuildID         int64      `json:"guild_id"`
	Speaker         int64      `json:"speaker"`
	Status          string     `json:"status"`
	VoteForm        string     `json:"vote_form"`
	OpenedOn        time.Time  `json:"opened_on"`
	VotingStartedOn *time.Time `json:"voting_started_on,omitempty"`
	ClosedOn        *time.Time `json:"closed_on,omitempty"`
}

type Bill struct {
	ID          int       `json:"id"`
	GuildID     int64     `json:"guild_id"`
	LegSession  int       `json:"leg_session"`
	Name        string    `json:"name"`
	Link        string    `json:"link"`
	Description string    `json:"description"`
	Submitter   int64     `json:"submitter"`
	IsVetoable  bool      `json:"is_vetoable"`
	Status      string    `json:"status"`
	SubmittedOn time.Time `json:"submitted_on"`
}

type Motion struct {
	ID          int       `json:"id"`
	GuildID     int64     `json:"guild_id"`
	LegSession  int       `json:"leg_session"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Submitter   int64     `json:"submitter"`
	SubmittedOn time.Time `json:"submitted_on"`
}

// OpenSession opens a new submission-period session. There can only be one
// session per guild that is not yet closed.
func (db *DB) OpenSession(ctx context.Context, guildID, speaker int64) (int, error) {
	active, err := db.ActiveSession(ctx, guildID)
	if err != nil {
		return 0, err
	}
	if active != nil {
		return 0, fmt.Errorf("session #%d is still open", active.ID)
	}

	var id int
	err = db.pool.QueryRow(ctx,
		`INSERT INTO legislature_sessions (guild_id, speaker, status)
		 VALUES ($1, $2, $3) RETURNING id`,
		guildID, speaker, SessionSubmissionPeriod,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ActiveSession returns the guild's open session, or nil if every session is closed.
func (db *DB) ActiveSession(ctx context.Context, guildID int64) (*LegSession, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, guild_id, speaker, status, COALESCE(vote_form, ''), opened_on, voting_started_on, closed_on
		 FROM legislature_sessions
		 WHERE guild_id = $1 AND status != $2
		 ORDER BY id DESC LIMIT 1`,
		guildID, SessionClosed,
	)
	var s LegSession
	err := row.Scan(&s.ID, &s.GuildID, &s.Speaker, &s.Status, &s.VoteForm,
		&s.OpenedOn, &s.VotingStartedOn, &s.ClosedOn)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// StartVotingPeriod moves the session from submission to voting and records the form link.
func (db *DB) StartVotingPeriod(ctx context.Context, sessionID int, voteForm string) error {
	ct, err := db.pool.Exec(ctx,
		`UPDATE legislature_sessions
		 SET status = $2, vote_form = $3, voting_started_on = CURRENT_TIMESTAMP
		 WHERE id = $1 AND status = $4`,
		sessionID, SessionVotingPeriod, voteForm, SessionSubmissionPeriod,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("session is not in its submission period")
	}
	return nil
}

func (db *DB) CloseSession(ctx context.Context, sessionID int) error {
	ct, err := db.pool.Exec(ctx,
		`UPDATE legislature_sessions
		 SET status = $2, closed_on = CURRENT_TIMESTAMP
		 WHERE id = $1 AND status != $2`,
		sessionID, SessionClosed,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("session not found or already closed")
	}
	return nil
}

// VotingSessions returns every session currently in its voting period, across guilds.
func (db *DB) VotingSessions(ctx context.Context) ([]LegSession, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, guild_id, speaker, status, COALESCE(vote_form, ''), opened_on, voting_started_on, closed_on
		 FROM legislature_sessions WHERE status = $1`,
		SessionVotingPeriod,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []LegSession
	for rows.Next() {
		var s LegSession
		if err := rows.Scan(&s.ID, &s.GuildID, &s.Speaker, &s.Status, &s.VoteForm,
			&s.OpenedOn, &s.VotingStartedOn, &s.ClosedOn); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (db *DB) SubmitBill(ctx context.Context, guildID int64, sessionID int, name, link, description string, submitter int64, vetoable bool) (int, error) {
	var id int
	err := db.pool.QueryRow(ctx,
		`INSERT INTO bills (guild_id, leg_session, name, link, description, submitter, is_vetoable)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		guildID, sessionID, name, link, description, submitter, vetoable,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (db *DB) SubmitMotion(ctx context.Context, guildID int64, sessionID int, title, description string, submitter int64) (int, error) {
	var id int
	err := db.pool.QueryRow(ctx,
		`INSERT INTO motions (guild_id, leg_session, title, description, submitter)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		guildID, sessionID, title, description, submitter,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (db *DB) GetBill(ctx context.Context, guildID int64, billID int) (*Bill, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, guild_id, leg_session, name, link, description, submitter, is_vetoable, status, submitted_on
		 FROM bills WHERE guild_id = $1 AND id = $2`,
		guildID, billID,
	)
	var b Bill
	err := row.Scan(&b.ID, &b.GuildID, &b.LegSession, &b.Name, &b.Link, &b.Description,
		&b.Submitter, &b.IsVetoable, &b.Status, &b.SubmittedOn)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("bill not found")
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// WithdrawBill deletes a still-submitted bill. Only the submitter may withdraw
// their own bill; the speaker (checked by the caller) passes submitter = 0.
func (db *DB) WithdrawBill(ctx context.Context, guildID int64, billID int, submitter int64) error {
	var ct pgconn.CommandTag
	var err error
	if submitter == 0 {
		ct, err = db.pool.Exec(ctx,
			"DELETE FROM bills WHERE guild_id = $1 AND id = $2 AND status = $3",
			guildID, billID, BillSubmitted,
		)
	} else {
		ct, err = db.pool.Exec(ctx,
			"DELETE FROM bills WHERE guild_id = $1 AND id = $2 AND status = $3 AND submitter = $4",
			guildID, billID, BillSubmitted, submitter,
		)
	}
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("bill not found, already decided on, or not yours to withdraw")
	}
	return nil
}

// UpdateBillStatus applies a guarded status transition and returns the updated bill.
func (db *DB) UpdateBillStatus(ctx context.Context, guildID int64, billID int, from, to string) (*Bill, error) {
	ct, err := db.pool.Exec(ctx,
		"UPDATE bills SET status = $4 WHERE guild_id = $1 AND id = $2 AND status = $3",
		guildID, billID, from, to,
	)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, fmt.Errorf("bill not found or not in the right stage")
	}
	return db.GetBill(ctx, guildID, billID)
}

func (db *DB) SessionBills(ctx context.Context, sessionID int) ([]Bill, error) {
	return db.queryBills(ctx,
		`SELECT id, guild_id, leg_session, name, link, description, submitter, is_vetoable, status, submitted_on
		 FROM bills WHERE leg_session = $1 ORDER BY id`,
		sessionID,
	)
}

func (db *DB) SessionMotions(ctx context.Context, sessionID int) ([]Motion, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, guild_id, leg_session, title, description, submitter, submitted_on
		 FROM motions WHERE leg_session = $1 ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var motions []Motion
	for rows.Next() {
		var m Motion
		if err := rows.Scan(&m.ID, &m.GuildID, &m.LegSession, &m.Title, &m.Description,
			&m.Submitter, &m.SubmittedOn); err != nil {
			return nil, err
		}
		motions = append(motions, m)
	}
	return motions, rows.Err()
}

// ListBills lists all bills for a guild, optionally filtered to one status.
func (db *DB) ListBills(ctx context.Context, guildID int64, status string) ([]Bill, error) {
	if status != "" {
		return db.queryBills(ctx,
			`SELECT id, guild_id, leg_session, name, link, description, submitter, is_vetoable, status, submitted_on
			 FROM bills WHERE guild_id = $1 AND status = $2 ORDER BY id`,
			guildID, status,
		)
	}
	return db.queryBills(ctx,
		`SELECT id, guild_id, leg_session, name, link, description, submitter, is_vetoable, status, submitted_on
		 FROM bills WHERE guild_id = $1 ORDER BY id`,
		guildID,
	)
}

// SearchLaws matches active laws by name or description with a plain ILIKE
// pattern, same as the tag search.
func (db *DB) SearchLaws(ctx context.Context, guildID int64, pattern string) ([]Bill, error) {
	likePattern := "%" + pattern + "%"
	return db.queryBills(ctx,
		`SELECT id, guild_id, leg_session, name, link, description, submitter, is_vetoable, status, submitted_on
		 FROM bills
		 WHERE guild_id = $1 AND status IN ($2, $3) AND (name ILIKE $4 OR description ILIKE $4)
		 ORDER BY id`,
		guildID, BillLaw, BillVetoOverridden, likePattern,
	)
}

func (db *DB) queryBills(ctx context.Context, query string, args ...any) ([]Bill, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []Bill
	for rows.Next() {
		var b Bill
		if err := rows.Scan(&b.ID, &b.GuildID, &b.LegSession, &b.Name, &b.Link, &b.Description,
			&b.Submitter, &b.IsVetoable, &b.Status, &b.SubmittedOn); err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}
