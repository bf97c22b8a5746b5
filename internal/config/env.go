package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv reads a .env file (if present) merged with the process
// environment. Process environment wins over file values.
func LoadEnv(path string) map[string]string {
	env := map[string]string{}

	if fileEnv, err := godotenv.Read(path); err == nil {
		for k, v := range fileEnv {
			env[k] = v
		}
	}

	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		env[parts[0]] = parts[1]
	}

	return env
}

// ApplyEnvOverrides updates the configuration based on environment variables.
func ApplyEnvOverrides(cfg *Config, env map[string]string) {
	// Server
	if val, ok := env["SERVER_PORT"]; ok {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = port
		}
	}

	// Defaults
	if val, ok := env["DEFAULT_PROVIDER"]; ok {
		cfg.Defaults.Provider = val
	}
	if val, ok := env["DEFAULT_MODEL"]; ok {
		cfg.Defaults.Model = val
	}
	if val, ok := env["DEBATE_ROUNDS"]; ok {
		if rounds, err := strconv.Atoi(val); err == nil && rounds > 0 {
			cfg.Defaults.Rounds = rounds
		}
	}

	// Provider API keys: GEMINI_API_KEY, OPENAI_API_KEY, ...
	for name, prov := range cfg.Providers {
		keyVar := fmt.Sprintf("%s_API_KEY", strings.ToUpper(name))
		if val, ok := env[keyVar]; ok && val != "" {
			prov.APIKey = val
			cfg.Providers[name] = prov
		}

		enabledVar := fmt.Sprintf("PROVIDER_%s_ENABLED", strings.ToUpper(name))
		if val, ok := env[enabledVar]; ok {
			if boolVal, err := strconv.ParseBool(val); err == nil {
				prov.Enabled = boolVal
				cfg.Providers[name] = prov
			}
		}
	}
}
