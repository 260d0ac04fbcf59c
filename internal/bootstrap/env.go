package bootstrap

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv reads a .env file into the process environment when one exists.
// Deployed environments supply variables directly, so a missing file is not
// an error.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found, relying on process environment")
	}
}
