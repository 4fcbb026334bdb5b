package ghclib

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jun30 = time.Date(2020, 6, 30, 15, 4, 5, 0, time.UTC)

func TestVersionStringByFlavor(t *testing.T) {
	cases := []struct {
		name   string
		flavor GhcFlavor
		want   string
	}{
		{"master", MasterFlavor{Commit: "deadbeef"}, "0.20200630"},
		{"ghc-8.10.1", ReleaseFlavor{Ghc8101}, "8.10.1.20200630"},
		{"ghc-8.8.3", ReleaseFlavor{Ghc883}, "8.8.3.20200630"},
		{"ghc-8.8.2", ReleaseFlavor{Ghc882}, "8.8.2.20200630"},
		// 8.8.1, 8.8.4 and the DA fork share the fallback prefix.
		{"ghc-8.8.1", ReleaseFlavor{Ghc881}, "8.8.1.20200630"},
		{"ghc-8.8.4", ReleaseFlavor{Ghc884}, "8.8.1.20200630"},
		{"da", DaFlavor{}, "8.8.1.20200630"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, versionString(tc.flavor, jun30))
		})
	}
}

func TestVersionStringIsPure(t *testing.T) {
	f := ReleaseFlavor{Ghc8101}
	assert.Equal(t, versionString(f, jun30), versionString(f, jun30))

	// Time of day is irrelevant, only the calendar date counts.
	later := jun30.Add(8 * time.Hour)
	assert.Equal(t, versionString(f, jun30), versionString(f, later))
}

func TestParseFlavor(t *testing.T) {
	f := ParseFlavor("ghc-8.8.2")
	require.IsType(t, ReleaseFlavor{}, f)
	assert.Equal(t, Ghc882, f.(ReleaseFlavor).Release)

	// Anything that is not a known release name tracks latest with the
	// given string as the commit ref, unvalidated.
	f = ParseFlavor("ghc-9.0.1")
	require.IsType(t, MasterFlavor{}, f)
	assert.Equal(t, "ghc-9.0.1", f.(MasterFlavor).Commit)

	f = ParseFlavor("8f8b44d")
	require.IsType(t, MasterFlavor{}, f)
	assert.Equal(t, "8f8b44d", f.(MasterFlavor).Commit)

	// Empty selects the known-good master commit.
	f = ParseFlavor("")
	require.IsType(t, MasterFlavor{}, f)
	assert.Equal(t, ghcMasterCommit, f.(MasterFlavor).Commit)
}

func TestReleaseTags(t *testing.T) {
	assert.Equal(t, "ghc-8.8.1-release", Ghc881.Tag())
	assert.Equal(t, "ghc-8.10.1-release", Ghc8101.Tag())
}

func TestGenFlavorArg(t *testing.T) {
	assert.Equal(t, "ghc-8.8.3", genFlavorArg(ReleaseFlavor{Ghc883}))
	assert.Equal(t, "ghc-master", genFlavorArg(MasterFlavor{Commit: "abc"}))
	assert.Equal(t, "da-ghc-8.8.1", genFlavorArg(DaFlavor{GenFlavor: "da-ghc-8.8.1"}))
}

func TestDefaultDaPatches(t *testing.T) {
	assert.Equal(t,
		[]string{"upstream/da-master-8.8.1", "upstream/da-unit-ids-8.8.1"},
		defaultDaPatches())
}
