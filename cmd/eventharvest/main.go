package main

import (
	"github.com/joho/godotenv"

	"github.com/eventharvest/eventharvest/internal/cli"
)

func main() {
	// A missing .env is fine; configuration then comes from the real
	// environment and the config file.
	_ = godotenv.Load()

	cli.Execute()
}
