package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"curie-dashboard/internal/config"
	"curie-dashboard/internal/core"
	"curie-dashboard/internal/db"
	httpserver "curie-dashboard/internal/http"
	"curie-dashboard/internal/llm"
	"curie-dashboard/internal/logger"
	"curie-dashboard/internal/upstream"

	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer log.Sync()

	// Patient records come either from an external record service or
	// from the local Postgres store.
	var records httpserver.RecordSource
	if cfg.Upstream.BaseURL != "" {
		records = upstream.NewClient(cfg.Upstream.BaseURL)
		log.Info("using upstream record service", zap.String("base_url", cfg.Upstream.BaseURL))
	} else {
		if cfg.Database.URL == "" {
			log.Fatal("DATABASE_URL or UPSTREAM_BASE_URL must be set")
		}
		dbConn, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatal("failed to open database", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := dbConn.PingContext(ctx); err != nil {
			log.Fatal("failed to ping database", zap.Error(err))
		}
		if err := db.Migrate(context.Background(), dbConn); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
		records = db.NewRepository(dbConn)
	}

	if cfg.OpenAI.APIKey == "" {
		log.Warn("OPENAI_API_KEY not set; completion calls will fail and fall back")
	}
	llmClient := llm.NewOpenAIClient(llm.Config{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		Temperature: float32(cfg.OpenAI.Temperature),
		MaxTokens:   cfg.OpenAI.MaxTokens,
	})
	persona := core.Persona{
		AssistantName:  cfg.Persona.AssistantName,
		PatientName:    cfg.Persona.PatientName,
		TargetWeightKg: cfg.Persona.TargetWeightKg,
	}
	chatService := core.NewChatService(llmClient, persona, log)
	sessions := core.NewSessionStore(cfg.App.SessionTTL)

	srv := httpserver.NewServer(records, chatService, sessions, log)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{cfg.App.CorsAllowedOrigins},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"*"},
	})

	addr := ":" + cfg.App.Port
	log.Info("listening", zap.String("addr", addr), zap.String("assistant", persona.AssistantName))
	if err := http.ListenAndServe(addr, c.Handler(srv)); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
