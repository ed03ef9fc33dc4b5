package main

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/spendwise/spendwise/internal/commands"
)

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		lvl, err := log.ParseLevel(level)
		if err != nil {
			log.Fatal(err)
		}
		log.SetLevel(lvl)
	}

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
