package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/costcalc/internal/config"
	"github.com/Simplici0/costcalc/internal/db"
	"github.com/Simplici0/costcalc/internal/migrations"
	"github.com/Simplici0/costcalc/internal/seed"
	"github.com/Simplici0/costcalc/internal/store"
)

type server struct {
	store *store.Store
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		log.Fatalf("failed to run database migrations: %v", err)
	}

	if cfg.SeedDemo {
		stats, err := seed.Run(context.Background(), database)
		if err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
		if stats.Inserts > 0 {
			log.Printf("seeded %d demo configuration(s)", stats.Inserts)
		}
	}

	srv := &server{store: store.New(database)}

	addr := ":" + cfg.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("listening on %s (env=%s, db=%s)", addr, cfg.Env, cfg.DBPath)
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/calculate", s.handleCalculate)
		r.Get("/configurations", s.handleConfigurationsList)
		r.Post("/configuration", s.handleConfigurationCreate)
		r.Get("/configuration/{id}", s.handleConfigurationGet)
		r.Delete("/configuration/{id}", s.handleConfigurationDelete)
		r.Get("/configuration/{id}/export.xlsx", s.handleConfigurationExport)
	})
	return r
}
