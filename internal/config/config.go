package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	UploadsDir  string

	// External services
	ExtractorURL    string
	ExtractorAPIKey string
	SimilarityURL   string

	// Workflow tuning
	EnrichConcurrency int

	// Logging
	LogJSON  bool
	LogDebug bool
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
		log.Println("Attempting to load from parent directory...")
		err = godotenv.Load("../../.env")
		if err != nil {
			log.Println("Warning: Could not load .env file, using environment variables")
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	uploadsDir := os.Getenv("UPLOADS_DIR")
	if uploadsDir == "" {
		uploadsDir = "./uploads"
	}

	concurrency := 3
	if v := os.Getenv("ENRICH_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			concurrency = n
		}
	}

	return &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		Port:              port,
		UploadsDir:        uploadsDir,
		ExtractorURL:      os.Getenv("EXTRACTOR_URL"),
		ExtractorAPIKey:   os.Getenv("EXTRACTOR_API_KEY"),
		SimilarityURL:     os.Getenv("SIMILARITY_URL"),
		EnrichConcurrency: concurrency,
		LogJSON:           os.Getenv("LOG_JSON") == "true",
		LogDebug:          os.Getenv("LOG_DEBUG") == "true",
	}
}
