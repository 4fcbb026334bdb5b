package ghclib

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigParsesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ghc-lib-build.conf", `
# comment
GHCLIB_GHC_REPO = "https://mirror.example.com/ghc.git"
GHCLIB_BOT_NAME = Build Bot
malformed line without equals
`)
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example.com/ghc.git", cfg.Values["GHCLIB_GHC_REPO"])
	assert.Equal(t, "Build Bot", cfg.Values["GHCLIB_BOT_NAME"])
}

func TestLoadConfigMissingFileIsFine(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "does-not-exist.conf"))
	require.NoError(t, err)
	assert.NotNil(t, cfg.Values)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ghc-lib-build.conf", "GHCLIB_BOT_EMAIL = file@example.com\n")
	t.Setenv("GHCLIB_BOT_EMAIL", "env@example.com")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env@example.com", cfg.Values["GHCLIB_BOT_EMAIL"])
}

func TestInitConfigAppliesOverrides(t *testing.T) {
	origRepo, origName, origEmail := ghcRepoURL, botName, botEmail
	origDebug, origForce := Debug, forceGhciChecks
	t.Cleanup(func() {
		ghcRepoURL, botName, botEmail = origRepo, origName, origEmail
		Debug, forceGhciChecks = origDebug, origForce
	})

	initConfig(&Config{Values: map[string]string{
		"GHCLIB_GHC_REPO":          "https://mirror.example.com/ghc.git/",
		"GHCLIB_BOT_NAME":          "Build Bot",
		"GHCLIB_BOT_EMAIL":         "bot@example.com",
		"GHCLIB_DEBUG":             "1",
		"GHCLIB_FORCE_GHCI_CHECKS": "1",
	}})

	assert.Equal(t, "https://mirror.example.com/ghc.git", ghcRepoURL)
	assert.Equal(t, "Build Bot", botName)
	assert.Equal(t, "bot@example.com", botEmail)
	assert.True(t, Debug)
	assert.True(t, forceGhciChecks)
}
