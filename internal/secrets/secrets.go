// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets finds API keys for the search and generation services.
// Keys come from, in order of precedence: the loaded configuration, the
// process environment (optionally seeded from a .env file), and a directory
// of plain-text files where each filename is a key name and the trimmed
// contents are the value.
//
// Supported key files: openai-api-key, anthropic-api-key, femcite-api-key.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pdiddy/femcite/pkg/types"
)

// Key file names.
const (
	OpenAIKeyFile    = "openai-api-key"
	AnthropicKeyFile = "anthropic-api-key"
	SearchKeyFile    = "femcite-api-key"
)

// Environment variables consulted for each key.
const (
	OpenAIKeyEnv    = "OPENAI_API_KEY"
	AnthropicKeyEnv = "ANTHROPIC_API_KEY"
	SearchKeyEnv    = "FEMCITE_API_KEY"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// LoadDotEnv sets environment variables from the .env file at path. Variables
// already present in the environment win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Fill sets every empty API key in cfg from the environment or from the key
// files in dir. The generation key depends on the configured provider.
func Fill(cfg *types.Config, dir string) error {
	files, err := Load(dir)
	if err != nil {
		return err
	}

	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = lookup(files, SearchKeyEnv, SearchKeyFile)
	}
	if cfg.Generation.APIKey == "" {
		switch cfg.Generation.Provider {
		case types.ProviderAnthropic:
			cfg.Generation.APIKey = lookup(files, AnthropicKeyEnv, AnthropicKeyFile)
		default:
			cfg.Generation.APIKey = lookup(files, OpenAIKeyEnv, OpenAIKeyFile)
		}
	}
	return nil
}

func lookup(files map[string]string, env, file string) string {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v
	}
	return files[file]
}
