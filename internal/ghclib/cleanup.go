package ghclib

import (
	"fmt"
	"os"
	"path/filepath"
)

// Leftovers a prior run may have deposited in the working directory.
var (
	leftoverFiles = []string{"stack.yaml.lock"}
	leftoverGlobs = []string{"ghc-lib-*.tar.gz"}
	leftoverDirs  = []string{"ghc", "ghc-lib", "ghc-lib-parser"}
)

// cleanupWorkspace removes artifacts left behind by earlier runs.
// Idempotent: missing targets are skipped silently, any other removal
// failure propagates.
func cleanupWorkspace(dir string) error {
	for _, name := range leftoverFiles {
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	for _, pattern := range leftoverGlobs {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return fmt.Errorf("bad cleanup pattern %s: %w", pattern, err)
		}
		for _, path := range matches {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove %s: %w", path, err)
			}
		}
	}
	for _, name := range leftoverDirs {
		path := filepath.Join(dir, name)
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return nil
}

// handleCleanupCommand runs the cleanup stage standalone, with a
// confirmation prompt since it deletes work in the current directory.
func handleCleanupCommand(dir string) error {
	colArrow.Print("-> ")
	cPrintf(colWarn, "Deleting build leftovers under %s.\n", dir)
	if !askForConfirmation(colArrow, "Are you sure you want to proceed?") {
		colArrow.Print("-> ")
		colSuccess.Println("Cleanup canceled.")
		return nil
	}
	if err := cleanupWorkspace(dir); err != nil {
		return err
	}
	colArrow.Print("-> ")
	colSuccess.Println("Workspace cleaned.")
	return nil
}
