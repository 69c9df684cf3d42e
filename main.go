package main

import (
	"log"

	"phone-shop/cmd"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; PHONESHOP_* variables override config.yaml
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cmd.Execute()
}
