package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"goodnight/infrastructure/config"
	"goodnight/infrastructure/di"
)

// One-shot batch job that rolls completed sessions up into per-user daily
// summaries. Run it once per day, after midnight, for the previous day.
func main() {
	date := flag.String("date", "", "summary date as YYYY-MM-DD (default: yesterday, UTC)")
	flag.Parse()

	if *date == "" {
		*date = time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Shutdown()

	users, err := container.SummaryService.Run(ctx, *date)
	if err != nil {
		container.Logger.Fatal("Daily summary run failed",
			zap.String("date", *date),
			zap.Error(err),
		)
	}

	container.Logger.Info("Daily summary run completed",
		zap.String("date", *date),
		zap.Int("users", users),
	)
}
