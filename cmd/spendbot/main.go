package main

import (
	"github.com/joho/godotenv"

	"spendbot/bot/app"
	"spendbot/core/cmd"
)

func main() {
	// Missing .env is fine; real deployments use environment variables.
	_ = godotenv.Load()

	cmd.Run(app.New(), cmd.Options{
		DefaultConfigPath: "config.yaml",
	})
}
