package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"webring/internal/adapter/fetcher"
	"webring/internal/app"
	"webring/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", "config.json", "path to the JSON configuration file")
	once := pflag.Bool("once", false, "build the webring once, publish it and exit")
	version := pflag.Bool("version", false, "print version and exit")
	pflag.Parse()

	if *version {
		fmt.Println(fetcher.UserAgent)
		return
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("FATAL: could not load .env: %v", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("FATAL: could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL: invalid config: %v", err)
	}
	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: could not start application: %v", err)
	}
	if *once {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := application.RunOnce(ctx); err != nil {
			log.Printf("ERROR: %v", err)
			os.Exit(1)
		}
		return
	}
	if err := application.Run(); err != nil {
		log.Printf("ERROR: %v", err)
		os.Exit(1)
	}
}
