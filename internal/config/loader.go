package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// findConfigFile picks the config file to use.
// Priority: explicit path > buildledger.yaml > buildledger.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"buildledger.yaml", "buildledger.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load builds the configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"server.addr":    DefaultHTTPAddr,
		"storage.driver": DefaultDriver,
		"storage.path":   DefaultSQLitePath,
		"log.level":      DefaultLogLevel,
		"log.format":     DefaultLogFormat,
		"verbose":        false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Environment variables (BUILDLEDGER_ prefix)
	// Double underscore separates nesting levels so single underscores
	// survive in key names: BUILDLEDGER_STORAGE__DRIVER -> storage.driver,
	// BUILDLEDGER_SERVER__SESSION_KEY -> server.session_key.
	if err := k.Load(env.Provider("BUILDLEDGER_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "BUILDLEDGER_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			// Short flag names map onto their dotted config keys.
			key := f.Name
			switch f.Name {
			case "addr":
				key = "server.addr"
			case "price-book":
				key = "server.price_book"
			case "driver":
				key = "storage.driver"
			case "db":
				key = "storage.path"
			case "log-level":
				key = "log.level"
			case "log-format":
				key = "log.format"
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Secrets in config files may reference environment variables.
	cfg.Storage.Postgres.Password = expandEnvVars(cfg.Storage.Postgres.Password)
	cfg.Storage.Postgres.Username = expandEnvVars(cfg.Storage.Postgres.Username)
	cfg.Server.SessionKey = expandEnvVars(cfg.Server.SessionKey)

	if cfg.Verbose && cfg.Log.Level == DefaultLogLevel {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
