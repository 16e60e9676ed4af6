package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gorqa/adapters/excel"
	"gorqa/adapters/postgres"
	"gorqa/api"
	"gorqa/app"
	"gorqa/internal"
	"gorqa/internal/config"
	"gorqa/ports"
)

func main() {
	// .env is optional; real deployments use actual environment variables
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if cfg.Data.File == "" {
		log.Fatal("DATA_FILE is required")
	}

	reader := excel.NewDataReader(excel.SourceConfig{
		FilePath:    cfg.Data.File,
		TimeColumn:  cfg.Data.TimeColumn,
		ValueColumn: cfg.Data.ValueColumn,
	})
	ts, err := reader.ReadSeries()
	if err != nil {
		log.Fatalf("failed to read data file: %v", err)
	}

	var repo ports.ResultRepository
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		if err := postgres.EnsureSchema(db); err != nil {
			log.Fatalf("failed to ensure schema: %v", err)
		}
		repo = postgres.NewResultRepository(db)
	}

	defaults := app.SeasonalParams{
		EmbeddingDim:      cfg.Analysis.EmbeddingDim,
		Delay:             cfg.Analysis.Delay,
		ThresholdQuantile: cfg.Analysis.ThresholdQuantile,
		StartMonth:        cfg.Analysis.StartMonth,
		EndMonth:          cfg.Analysis.EndMonth,
	}

	gin.SetMode(cfg.Server.GinMode)
	server := api.NewServer(ts, defaults, repo, internal.DefaultLogger)
	if err := server.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
