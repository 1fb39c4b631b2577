package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/billkhata/api/internal/config"
	"github.com/billkhata/api/internal/router"
	"github.com/billkhata/api/internal/store"
	"github.com/billkhata/api/internal/store/memory"
	"github.com/billkhata/api/internal/store/postgres"
	"github.com/billkhata/api/internal/ws"
)

func main() {
	cfg := config.Load()

	var records store.RecordStore
	if cfg.DatabaseURL == "" {
		log.Println("DATABASE_URL not set, using in-memory record store")
		records = memory.NewStore()
	} else {
		pg, err := postgres.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Unable to connect to database: %v", err)
		}
		defer pg.Close()
		records = pg
	}

	hub := ws.NewHub()
	go hub.Run()

	r := router.New(cfg, records, hub)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}
