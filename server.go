package api

import (
	"fmt"
	"os"
	"strings"

	"Postline/controllers"

	"github.com/joho/godotenv"
)

var server = controllers.Server{}

func init() {
	// Load .env only outside production; hosted config comes from env vars.
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}
}

func Run() {
	_ = godotenv.Load()

	// In prod, base.go uses DATABASE_URL; in dev, these pieces build the DSN.
	server.Initialize(
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_NAME"),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = os.Getenv("API_PORT")
		if port == "" {
			port = "8888"
		}
	}

	addr := ":" + strings.TrimSpace(port)
	fmt.Printf("Listening on %s\n", addr)
	server.Run(addr)
}
