package db

import (
	"context"
	"fmt"
)

type Webhook struct {
	ID        int    `json:"id"`
	GuildID   int64  `json:"guild_id"`
	ChannelID int64  `json:"channel_id"`
	WebhookID int64  `json:"webhook_id"`
	Kind      string `json:"kind"`
	Target    string `json:"target"`
}

func (db *DB) AddWebhook(ctx context.Context, w *Webhook) (int, error) {
	var id int
	err := db.pool.QueryRow(ctx,
		`INSERT INTO webhooks (guild_id, channel_id, webhook_id, kind, target)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		w.GuildID, w.ChannelID, w.WebhookID, w.Kind, w.Target,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (db *DB) ListWebhooks(ctx context.Context, guildID int64) ([]Webhook, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, guild_id, channel_id, webhook_id, kind, target
		 FROM webhooks WHERE guild_id = $1 ORDER BY id`,
		guildID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var webhooks []Webhook
	for rows.Next() {
		var w Webhook
		if err := rows.Scan(&w.ID, &w.GuildID, &w.ChannelID, &w.WebhookID, &w.Kind, &w.Target); err != nil {
			return nil, err
		}
		webhooks = append(webhooks, w)
	}
	return webhooks, rows.Err()
}

func (db *DB) DeleteWebhook(ctx context.Context, guildID int64, id int) error {
	ct, err := db.pool.Exec(ctx,
		"DELETE FROM webhooks WHERE guild_id = $1 AND id = $2",
		guildID, id,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("webhook not found")
	}
	return nil
}
