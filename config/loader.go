package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Load loads configuration from multiple sources with strict priority:
// 1. Environment variables (highest priority)
// 2. Config file (theiafs.yaml or theiafs.json in the working directory)
// 3. Defaults (lowest priority)
func Load() (FilesConfig, error) {
	return LoadFromFile("")
}

// LoadFromFile loads configuration with the same priority as Load but from a
// specific config file when configFilePath is non-empty.
func LoadFromFile(configFilePath string) (FilesConfig, error) {
	k := koanf.New(".")

	// Load default configuration first
	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return FilesConfig{}, fmt.Errorf("failed to load default config: %w", err)
	}

	if configFilePath != "" {
		if _, err := os.Stat(configFilePath); err != nil {
			return FilesConfig{}, fmt.Errorf("specified config file %s not found: %w", configFilePath, err)
		}
		if err := k.Load(file.Provider(configFilePath), parserFor(configFilePath)); err != nil {
			return FilesConfig{}, fmt.Errorf("failed to load config file %s: %w", configFilePath, err)
		}
	} else {
		for _, candidate := range []string{"theiafs.yaml", "theiafs.yml", "theiafs.json"} {
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if err := k.Load(file.Provider(candidate), parserFor(candidate)); err != nil {
				return FilesConfig{}, fmt.Errorf("failed to load config file %s: %w", candidate, err)
			}
			break
		}
	}

	// Load environment variables with THEIAFS_ prefix
	if err := k.Load(env.Provider("THEIAFS_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "THEIAFS_")), "_", ".", -1)
	}), nil); err != nil {
		return FilesConfig{}, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg FilesConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return FilesConfig{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return FilesConfig{}, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func parserFor(path string) koanf.Parser {
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return yaml.Parser()
	}
	return json.Parser()
}
