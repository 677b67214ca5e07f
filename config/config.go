package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// InitConfig loads a .env file into the environment when one is present.
// A missing file is fine; the process environment still applies.
func InitConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
		return
	}
	log.Println("Successfully loaded environment variables")
}

func GetEnvVariable(v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("input param empty")
	}
	b := os.Getenv(v)
	if b == "" {
		return "", fmt.Errorf("failed to get variable for %s", v)
	}
	return b, nil
}

// GetEnvFloat reads a float-valued variable, falling back to def when the
// variable is unset or malformed.
func GetEnvFloat(v string, def float64) float64 {
	s, err := GetEnvVariable(v)
	if err != nil {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Printf("bad float for %s: %q, using default %v", v, s, def)
		return def
	}
	return f
}

// GetEnvInt reads an int-valued variable with a default.
func GetEnvInt(v string, def int) int {
	s, err := GetEnvVariable(v)
	if err != nil {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("bad int for %s: %q, using default %v", v, s, def)
		return def
	}
	return n
}
