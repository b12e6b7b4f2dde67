package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"newshub/internal/app"
	"newshub/internal/config"
	"newshub/internal/handler"
	"newshub/internal/logger"
)

func main() {

	godotenv.Load()

	cfg, err := config.Load(os.Getenv("NEWSHUB_CONFIG"))
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	a, err := app.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer a.Close()

	articleHandler := handler.NewArticleHandler(a.Query, a.Store)

	r := gin.Default()

	slog.Info("AllowOrigins URL:", "urls", cfg.API.AllowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: cfg.API.AllowedOrigins,
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	if rl := cfg.API.RateLimit; rl.RequestsPerSecond > 0 {
		r.Use(handler.NewRateLimiter(rl.RequestsPerSecond, rl.Burst).Middleware())
	}

	handler.RegisterRoutes(r, articleHandler)

	err = r.Run(cfg.API.Addr)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
