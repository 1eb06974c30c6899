package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Environment holds the fallbacks read from the process environment.
type Environment struct {
	OpenAIAPIKey       string `env:"OPENAI_API_KEY"`
	OpenAIOrganization string `env:"OPENAI_ORGANIZATION"`
	OpenAIBaseURL      string `env:"OPENAI_BASE_URL"`
}

// LoadEnvironment loads a .env file from the working directory, if present,
// and then parses the environment. Variables already set win over .env.
func LoadEnvironment() (Environment, error) {
	_ = godotenv.Load()

	var e Environment
	if err := env.Parse(&e); err != nil {
		return Environment{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return e, nil
}
