package main

import (
	"flag"
	"log/slog"
	"os"

	"eventhub/internal/logger"
	"eventhub/internal/validation"
)

func main() {
	var baseURL, secret string
	flag.StringVar(&baseURL, "url", "http://localhost:8081", "Base URL for API validation")
	flag.StringVar(&secret, "jwt-secret", os.Getenv("JWT_SECRET"), "Secret for signing test tokens; empty skips authenticated flows")
	flag.Parse()

	logger.Init("info", "text")

	validator := validation.NewContractValidator(baseURL, secret)
	if err := validator.ValidateAll(); err != nil {
		slog.Error("Validation failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Validation passed", "base_url", baseURL)
}
