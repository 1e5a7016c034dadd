package api

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/config"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/db"
	"github.com/rs/cors"
	"golang.org/x/oauth2"
)

type API struct {
	router      *mux.Router
	db          *db.DB
	config      *config.Config
	oauthConfig *oauth2.Config
	jwtSecret   []byte
}

func New(cfg *config.Config, database *db.DB) *API {
	api := &API{
		router:    mux.NewRouter(),
		db:        database,
		config:    cfg,
		jwtSecret: []byte(cfg.JWTSecret),
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURI,
			Scopes:       []string{"identify", "guilds"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://discord.com/api/oauth2/authorize",
				TokenURL: "https://discord.com/api/oauth2/token",
			},
		},
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	// Auth endpoints
	a.router.HandleFunc("/api/auth/login", a.handleLogin).Methods("GET")
	a.router.HandleFunc("/api/auth/callback", a.handleCallback).Methods("GET")
	a.router.HandleFunc("/api/auth/logout", a.handleLogout).Methods("POST")

	// Public endpoints
	a.router.HandleFunc("/api/public/guilds/{guild_id}/laws", a.handlePublicLaws).Methods("GET")
	a.router.HandleFunc("/api/public/guilds/{guild_id}/bills", a.handlePublicBills).Methods("GET")
	a.router.HandleFunc("/api/public/guilds/{guild_id}/parties", a.handlePublicParties).Methods("GET")
	a.router.HandleFunc("/api/public/guilds/{guild_id}/tags", a.handlePublicTags).Methods("GET")
	a.router.HandleFunc("/api/roll", a.handleRoll).Methods("GET")

	// Protected endpoints
	protected := a.router.PathPrefix("/api").Subrouter()
	protected.Use(a.authMiddleware)

	protected.HandleFunc("/user/guilds", a.handleUserGuilds).Methods("GET")
	protected.HandleFunc("/guilds/{guild_id}/config", a.handleGetConfig).Methods("GET")
	protected.HandleFunc("/guilds/{guild_id}/config", a.handleUpdateConfig).Methods("PUT")
	protected.HandleFunc("/guilds/{guild_id}/webhooks", a.handleListWebhooks).Methods("GET")
	protected.HandleFunc("/guilds/{guild_id}/webhooks", a.handleAddWebhook).Methods("POST")
	protected.HandleFunc("/guilds/{guild_id}/webhooks/{id}", a.handleDeleteWebhook).Methods("DELETE")
}

func (a *API) Start() error {
	// Setup CORS - allow all origins for development, restrict in production
	// Note: When AllowedOrigins is "*", AllowCredentials must be false for security
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}

	handler := cors.New(corsOptions).Handler(a.router)

	log.Printf("API server listening on http://%s", a.config.WebBind)
	return http.ListenAndServe(a.config.WebBind, handler)
}
