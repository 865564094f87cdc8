package main

import (
	"github.com/joho/godotenv"

	"github.com/openpantry/pantryd/cmd/pantryd/cmd"
)

func main() {
	// Missing .env files are fine; environment variables win anyway.
	_ = godotenv.Load()

	cmd.Execute()
}
