package ghclib

import (
	"fmt"
	"os"
	"strings"
)

// cabalVersionPlaceholder is what ghc-lib-gen writes into the
// generated cabal files before we stamp the real version.
const cabalVersionPlaceholder = "version: 0.1.0"

// patchFile replaces every occurrence of old with new in the file at
// path, in place. It is an error if old does not occur at all.
func patchFile(path, old, new string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	if !strings.Contains(string(data), old) {
		return fmt.Errorf("%s: expected substring %q not found", path, old)
	}
	patched := strings.ReplaceAll(string(data), old, new)
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(patched), info.Mode()); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

// patchCabalVersion stamps the package version into a generated cabal
// file, replacing the generator's placeholder.
func patchCabalVersion(path, version string) error {
	return patchFile(path, cabalVersionPlaceholder, "version: "+version)
}

// pinParserDependency pins ghc-lib's dependency on ghc-lib-parser to
// exactly the version produced by this run, so the pair always
// installs in lockstep.
func pinParserDependency(path, version string) error {
	return patchFile(path, "ghc-lib-parser", "ghc-lib-parser == "+version)
}

// appendLines appends lines to a text file, separated from the
// existing content by a blank line.
func appendLines(path string, lines []string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("cannot open %s for append: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString("\n" + strings.Join(lines, "\n") + "\n"); err != nil {
		return fmt.Errorf("cannot append to %s: %w", path, err)
	}
	return nil
}
