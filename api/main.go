package main

import (
	"eventhub/data/repository"
	"eventhub/service"
	"eventhub/stats"
	"fmt"
	"log"
	"net/http"
	"time"
)

type application struct {
	config config
	Repo   repository.DBRepo
	Core   *service.Coordinator
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var app = &application{config: cfg}

	db, err := app.ConnectToDB()
	if err != nil {
		log.Fatalf("Failed to connect to db: %v", err)
	}
	defer db.Close()

	app.Repo = &repository.SqlRepo{DB: db}

	if err = app.Repo.RunMigrations(cfg.DBName); err != nil {
		log.Fatal(err.Error())
	}

	app.Core = service.NewCoordinator(app.Repo, stats.NewClient(cfg.StatsURL, cfg.AppName), time.Now)

	log.Printf("Starting server on port %d", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), app.routes()); err != nil {
		log.Fatal(err)
	}
}
