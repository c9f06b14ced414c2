package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var (
	envOnce sync.Once
	envFile string
	envErr  error
)

// LoadEnv loads a .env file from the working directory or its parent, once.
// It returns the file loaded, "" when none was found.
func LoadEnv() (string, error) {
	envOnce.Do(func() {
		for _, candidate := range []string{".env", filepath.Join("..", ".env")} {
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if err := godotenv.Load(candidate); err != nil {
				envErr = err
				return
			}
			envFile = candidate
			return
		}
	})
	return envFile, envErr
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
