package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"newshub/internal/app"
	"newshub/internal/config"
	"newshub/internal/logger"
	"newshub/internal/scheduler"
	"newshub/pkg/news"
)

func main() {

	godotenv.Load()

	cfg, err := config.Load(os.Getenv("NEWSHUB_CONFIG"))
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer a.Close()

	pipeline, err := a.Pipeline(news.DefaultRegistry())
	if err != nil {
		log.Fatalf("error building pipeline: %v", err)
	}

	times, err := cfg.ScheduleTimes()
	if err != nil {
		log.Fatalf("error parsing schedule: %v", err)
	}
	loc, err := cfg.ScheduleLocation()
	if err != nil {
		log.Fatalf("error parsing schedule: %v", err)
	}

	slog.Info("ingester started", "times", cfg.Schedule.Times, "run_on_start", cfg.Schedule.RunOnStart, "timezone", loc.String())

	s := scheduler.New(times, cfg.Schedule.RunOnStart, scheduler.WithLocation(loc))
	s.Start(ctx, func(ctx context.Context) {
		pipeline.Run(ctx)
	})

	slog.Info("ingester stopped")
}
