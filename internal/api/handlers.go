package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/db"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/dice"
)

// Public handlers

func (a *API) handlePublicLaws(w http.ResponseWriter, r *http.Request) {
	guildID, ok := guildIDFromRequest(w, r)
	if !ok {
		return
	}

	pattern := r.URL.Query().Get("q")
	laws, err := a.db.SearchLaws(context.Background(), guildID, pattern)
	if err != nil {
		http.Error(w, "failed to list laws", http.StatusInternalServerError)
		return
	}
	writeJSON(w, laws)
}

func (a *API) handlePublicBills(w http.ResponseWriter, r *http.Request) {
	guildID, ok := guildIDFromRequest(w, r)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	bills, err := a.db.ListBills(context.Background(), guildID, status)
	if err != nil {
		http.Error(w, "failed to list bills", http.StatusInternalServerError)
		return
	}
	writeJSON(w, bills)
}

func (a *API) handlePublicParties(w http.ResponseWriter, r *http.Request) {
	guildID, ok := guildIDFromRequest(w, r)
	if !ok {
		return
	}

	parties, err := a.db.ListParties(context.Background(), guildID)
	if err != nil {
		http.Error(w, "failed to list parties", http.StatusInternalServerError)
		return
	}
	writeJSON(w, parties)
}

func (a *API) handlePublicTags(w http.ResponseWriter, r *http.Request) {
	guildID, ok := guildIDFromRequest(w, r)
	if !ok {
		return
	}

	pattern := r.URL.Query().Get("q")
	tags, err := a.db.ListTags(context.Background(), guildID, pattern)
	if err != nil {
		http.Error(w, "failed to list tags", http.StatusInternalServerError)
		return
	}
	writeJSON(w, tags)
}

func (a *API) handleRoll(w http.ResponseWriter, r *http.Request) {
	notation := r.URL.Query().Get("dice")
	if notation == "" {
		http.Error(w, "missing dice parameter, e.g. ?dice=2d6+3", http.StatusBadRequest)
		return
	}

	roll, err := dice.New(notation)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, roll)
}

// Protected handlers

func (a *API) handleUserGuilds(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	guilds, err := a.getDiscordGuilds(claims.AccessToken)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get guilds: %v", err), http.StatusBadGateway)
		return
	}

	registeredIDs, err := a.db.GetRegisteredGuildIDs(context.Background())
	if err != nil {
		http.Error(w, "failed to get registered guilds", http.StatusInternalServerError)
		return
	}

	registeredMap := make(map[int64]bool)
	for _, id := range registeredIDs {
		registeredMap[id] = true
	}

	// Only guilds the bot itself knows about
	var filtered []DiscordGuild
	for _, guild := range guilds {
		if registeredMap[parseInt64(guild.ID)] {
			filtered = append(filtered, guild)
		}
	}
	writeJSON(w, filtered)
}

func (a *API) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	guildID, ok := guildIDFromRequest(w, r)
	if !ok {
		return
	}
	if !a.userHasGuildAccess(claims.AccessToken, guildID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	cfg, err := a.db.GetGuildConfig(context.Background(), guildID)
	if err != nil {
		http.Error(w, "guild not found", http.StatusNotFound)
		return
	}
	writeJSON(w, cfg)
}

func (a *API) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	guildID, ok := guildIDFromRequest(w, r)
	if !ok {
		return
	}
	if !a.userHasGuildAccess(claims.AccessToken, guildID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req struct {
		Prefix             *string `json:"prefix"`
		StarboardEnabled   *bool   `json:"starboard_enabled"`
		StarboardThreshold *int    `json:"starboard_threshold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	if req.Prefix != nil {
		if *req.Prefix == "" || len(*req.Prefix) > 3 {
			http.Error(w, "prefix must be 1-3 characters", http.StatusBadRequest)
			return
		}
		if err := a.db.SetGuildPrefix(ctx, guildID, *req.Prefix); err != nil {
			http.Error(w, "failed to update prefix", http.StatusInternalServerError)
			return
		}
	}
	if req.StarboardEnabled != nil || req.StarboardThreshold != nil {
		current, err := a.db.GetGuildConfig(ctx, guildID)
		if err != nil {
			http.Error(w, "guild not found", http.StatusNotFound)
			return
		}
		enabled := current.StarboardEnabled
		threshold := current.StarboardThreshold
		if req.StarboardEnabled != nil {
			enabled = *req.StarboardEnabled
		}
		if req.StarboardThreshold != nil {
			threshold = *req.StarboardThreshold
		}
		if threshold < 1 {
			http.Error(w, "starboard threshold must be positive", http.StatusBadRequest)
			return
		}
		if err := a.db.SetStarboard(ctx, guildID, enabled, threshold); err != nil {
			http.Error(w, "failed to update starboard", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, map[string]string{"message": "config updated"})
}

func (a *API) handleListWebhooks(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	guildID, ok := guildIDFromRequest(w, r)
	if !ok {
		return
	}
	if !a.userHasGuildAccess(claims.AccessToken, guildID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	webhooks, err := a.db.ListWebhooks(context.Background(), guildID)
	if err != nil {
		http.Error(w, "failed to list webhooks", http.StatusInternalServerError)
		return
	}
	writeJSON(w, webhooks)
}

func (a *API) handleAddWebhook(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	guildID, ok := guildIDFromRequest(w, r)
	if !ok {
		return
	}
	if !a.userHasGuildAccess(claims.AccessToken, guildID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req struct {
		ChannelID int64  `json:"channel_id"`
		WebhookID int64  `json:"webhook_id"`
		Kind      string `json:"kind"`
		Target    string `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ChannelID == 0 || req.Kind == "" || req.Target == "" {
		http.Error(w, "channel_id, kind and target are required", http.StatusBadRequest)
		return
	}

	id, err := a.db.AddWebhook(context.Background(), &db.Webhook{
		GuildID:   guildID,
		ChannelID: req.ChannelID,
		WebhookID: req.WebhookID,
		Kind:      req.Kind,
		Target:    req.Target,
	})
	if err != nil {
		http.Error(w, "failed to add webhook", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"message": "webhook added", "id": id})
}

func (a *API) handleDeleteWebhook(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	guildID, ok := guildIDFromRequest(w, r)
	if !ok {
		return
	}
	if !a.userHasGuildAccess(claims.AccessToken, guildID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid webhook id", http.StatusBadRequest)
		return
	}

	if err := a.db.DeleteWebhook(context.Background(), guildID, id); err != nil {
		http.Error(w, "failed to delete webhook", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"message": "webhook deleted"})
}
