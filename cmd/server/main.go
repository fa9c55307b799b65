package main

import (
	"os"

	"github.com/eduequip/eduequip/internal/config"
	"github.com/eduequip/eduequip/internal/models"
	"github.com/eduequip/eduequip/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Mode == "debug" {
		logger.Init("debug")
	} else {
		logger.Init("info")
	}

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	registerRoutes(r)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Infof("Record service listening on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
