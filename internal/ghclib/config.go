package ghclib

import (
	"bufio"
	"os"
	"strings"
)

// Config struct
type Config struct {
	Values map[string]string
}

// loadConfig reads an optional key=value config file and applies
// GHCLIB_* environment overrides on top. A missing file is not an
// error; every key has a built-in default.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{Values: make(map[string]string)}

	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}
			key := strings.TrimSpace(parts[0])
			val := strings.TrimSpace(parts[1])
			val = strings.Trim(val, `"'`)
			cfg.Values[key] = val
		}
		if err := scanner.Err(); err != nil {
			return cfg, err
		}
	}

	mergeEnvOverrides(cfg)

	return cfg, nil
}

// Merge GHCLIB_* env overrides
func mergeEnvOverrides(cfg *Config) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "GHCLIB_") {
			parts := strings.SplitN(env, "=", 2)
			if len(parts) == 2 {
				cfg.Values[parts[0]] = parts[1]
			}
		}
	}
}

func initConfig(cfg *Config) {
	if repo := cfg.Values["GHCLIB_GHC_REPO"]; repo != "" {
		ghcRepoURL = strings.TrimRight(repo, "/")
		debugf("=> Using ghc repository from config: %s\n", ghcRepoURL)
	}

	Debug = cfg.Values["GHCLIB_DEBUG"] == "1"

	if name := cfg.Values["GHCLIB_BOT_NAME"]; name != "" {
		botName = name
	}
	if email := cfg.Values["GHCLIB_BOT_EMAIL"]; email != "" {
		botEmail = email
	}

	forceGhciChecks = cfg.Values["GHCLIB_FORCE_GHCI_CHECKS"] == "1"
}
