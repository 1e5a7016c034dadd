package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Tag struct {
	ID      int    `json:"id"`
	GuildID int64  `json:"guild_id"`
	Name    string `json:"name"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  int64  `json:"author"`
	Uses    int    `json:"uses"`
}

func (db *DB) AddTag(ctx context.Context, guildID int64, name, title, content string, author int64) error {
	ct, err := db.pool.Exec(ctx,
		`INSERT INTO tags (guild_id, name, title, content, author)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (guild_id, name) DO NOTHING`,
		guildID, name, title, content, author,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("a tag with that name already exists")
	}
	return nil
}

// GetTag looks a tag up and bumps its use counter.
func (db *DB) GetTag(ctx context.Context, guildID int64, name string) (*Tag, error) {
	row := db.pool.QueryRow(ctx,
		`UPDATE tags SET uses = uses + 1
		 WHERE guild_id = $1 AND name = $2
		 RETURNING id, guild_id, name, title, content, author, uses`,
		guildID, name,
	)
	var t Tag
	err := row.Scan(&t.ID, &t.GuildID, &t.Name, &t.Title, &t.Content, &t.Author, &t.Uses)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("tag not found")
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (db *DB) DeleteTag(ctx context.Context, guildID int64, name string, author int64) error {
	var ct pgconn.CommandTag
	var err error
	if author == 0 {
		ct, err = db.pool.Exec(ctx,
			"DELETE FROM tags WHERE guild_id = $1 AND name = $2",
			guildID, name,
		)
	} else {
		ct, err = db.pool.Exec(ctx,
			"DELETE FROM tags WHERE guild_id = $1 AND name = $2 AND author = $3",
			guildID, name, author,
		)
	}
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("tag not found or not yours to delete")
	}
	return nil
}

func (db *DB) ListTags(ctx context.Context, guildID int64, pattern string) ([]Tag, error) {
	var rows pgx.Rows
	var err error
	if pattern != "" {
		likePattern := "%" + pattern + "%"
		rows, err = db.pool.Query(ctx,
			`SELECT id, guild_id, name, title, content, author, uses
			 FROM tags
			 WHERE guild_id = $1 AND (name ILIKE $2 OR title ILIKE $2 OR content ILIKE $2)
			 ORDER BY uses DESC, name`,
			guildID, likePattern,
		)
	} else {
		rows, err = db.pool.Query(ctx,
			`SELECT id, guild_id, name, title, content, author, uses
			 FROM tags WHERE guild_id = $1 ORDER BY uses DESC, name`,
			guildID,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.GuildID, &t.Name, &t.Title, &t.Content, &t.Author, &t.Uses); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
