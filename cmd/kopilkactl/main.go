package main

import (
	"os"

	"kopilka/internal/commands"
	"kopilka/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
