package ghclib

import "time"

// Release is one of the fixed ghc releases the pipeline knows how to
// check out by tag.
type Release int

const (
	Ghc881 Release = iota
	Ghc882
	Ghc883
	Ghc884
	Ghc8101
)

var releaseNames = [...]string{
	Ghc881:  "ghc-8.8.1",
	Ghc882:  "ghc-8.8.2",
	Ghc883:  "ghc-8.8.3",
	Ghc884:  "ghc-8.8.4",
	Ghc8101: "ghc-8.10.1",
}

func (r Release) String() string { return releaseNames[r] }

// Tag is the release tag in the ghc repository, e.g. ghc-8.8.1-release.
func (r Release) Tag() string { return releaseNames[r] + "-release" }

// GhcFlavor selects which ghc tree the pipeline builds against.
// Exactly one variant is active per run.
type GhcFlavor interface {
	ghcFlavor()
}

// ReleaseFlavor builds against a tagged ghc release.
type ReleaseFlavor struct {
	Release Release
}

// DaFlavor layers fork patches onto an upstream base commit via
// remote-add, fetch and merge.
type DaFlavor struct {
	MergeBaseSha string
	Patches      []string
	GenFlavor    string
	UpstreamURL  string
}

// MasterFlavor tracks an arbitrary commit ref on the ghc repository.
type MasterFlavor struct {
	Commit string
}

func (ReleaseFlavor) ghcFlavor() {}
func (DaFlavor) ghcFlavor()      {}
func (MasterFlavor) ghcFlavor()  {}

// Defaults for the custom-fork variant.
const (
	defaultMergeBase   = "ghc-8.8.1-release"
	defaultDaGenFlavor = "da-ghc-8.8.1"
	defaultDaUpstream  = "https://github.com/digital-asset/ghc.git"
)

func defaultDaPatches() []string {
	return []string{"upstream/da-master-8.8.1", "upstream/da-unit-ids-8.8.1"}
}

// ParseFlavor maps a flavor string to its variant. Known release names
// select the release; the empty string selects the known-good master
// commit; anything else is taken verbatim as a commit ref to track.
func ParseFlavor(s string) GhcFlavor {
	if s == "" {
		return MasterFlavor{Commit: ghcMasterCommit}
	}
	for r, name := range releaseNames {
		if name == s {
			return ReleaseFlavor{Release: Release(r)}
		}
	}
	return MasterFlavor{Commit: s}
}

// versionPrefix selects the numeric prefix of the package version.
// Note ghc-8.8.1, ghc-8.8.4 and the custom fork all share the 8.8.1
// prefix; upstream versions them identically and we keep that mapping.
func versionPrefix(f GhcFlavor) string {
	switch f := f.(type) {
	case MasterFlavor:
		return "0"
	case ReleaseFlavor:
		switch f.Release {
		case Ghc8101:
			return "8.10.1"
		case Ghc883:
			return "8.8.3"
		case Ghc882:
			return "8.8.2"
		}
	}
	return "8.8.1"
}

// versionString derives the package version from the flavor and a
// calendar date, e.g. 8.8.1.20200630. Pure: same inputs, same string.
// Two runs on the same day against the same flavor collide, which is
// accepted.
func versionString(f GhcFlavor, day time.Time) string {
	return versionPrefix(f) + "." + day.Format("20060102")
}

// genFlavorArg is the value handed to ghc-lib-gen's --ghc-flavor flag.
func genFlavorArg(f GhcFlavor) string {
	switch f := f.(type) {
	case ReleaseFlavor:
		return f.Release.String()
	case DaFlavor:
		return f.GenFlavor
	default:
		return "ghc-master"
	}
}
