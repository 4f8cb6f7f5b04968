// Package envfile reads and writes the KEY=VALUE files consumed by
// docker-compose and docker swarm's env_file.
package envfile

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultFilename is used when no filename is given.
const DefaultFilename = ".env"

// Read parses filename into a map.
func Read(filename string) (map[string]string, error) {
	if filename == "" {
		filename = DefaultFilename
	}

	env, err := godotenv.Read(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading env file %s: %w", filename, err)
	}
	return env, nil
}

// Write replaces filename with env, one sorted KEY=VALUE line per entry.
func Write(env map[string]string, filename string) error {
	if filename == "" {
		filename = DefaultFilename
	}

	if err := godotenv.Write(env, filename); err != nil {
		return fmt.Errorf("error writing env file %s: %w", filename, err)
	}
	return nil
}

// ParsePairs turns KEY=VALUE arguments into a map. Only the first "=" splits,
// so values may contain "=".
func ParsePairs(pairs []string) (map[string]string, error) {
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid pair %q: expected KEY=VALUE", pair)
		}
		env[key] = value
	}
	return env, nil
}
