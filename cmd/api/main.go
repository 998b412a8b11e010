package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/gokatarajesh/quiz-questions/internal/app"
	"github.com/gokatarajesh/quiz-questions/internal/config"
)

func main() {
	flag.Usage = func() {
		log.Printf("usage: %s [bootstrap-source.csv]", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load("configs/.env"); err != nil {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	// a positional argument names the pipe-delimited seed file
	if src := flag.Arg(0); src != "" {
		cfg.Storage.BootstrapSource = src
	}

	appCtx := context.Background()
	instance, err := app.New(appCtx, cfg)
	if err != nil {
		log.Fatalf("failed to build app: %v", err)
	}

	if err := instance.Run(appCtx); err != nil {
		log.Fatalf("runtime error: %v", err)
	}
}
