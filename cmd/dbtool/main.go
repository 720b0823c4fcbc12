package main

import (
	"member-locator-service/internal/config"
	"os"
)

func main() {
	config.LoadDotEnv()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
