package ghclib

import (
	"github.com/gookit/color"
)

// Global variables
var (
	Debug      bool
	ConfigFile = "ghc-lib-build.conf"

	// ghcRepoURL is where the compiler source tree is cloned from.
	// Overridable through the config file for local mirrors.
	ghcRepoURL = "https://gitlab.haskell.org/ghc/ghc.git"

	// Identity used for the merge commits created when layering fork
	// patches onto an upstream base.
	botName  = "Cookie Monster"
	botEmail = "cookie.monster@daml.com"

	// forceGhciChecks bypasses the ghci exclusion table.
	forceGhciChecks bool

	version   = "dev"     // overridden at build time
	buildDate = "unknown" // overridden at build time

	// Global executor (assigned in Main)
	UserExec *Executor
)

// ghcMasterCommit is the known-good ghc master commit checked out when
// tracking latest and no explicit ref is given. Process-wide immutable
// configuration, consulted only as a default.
const ghcMasterCommit = "ba2f1914e2120fa8b32a7b092da31b29c6cb9ba2" // Jun 26 2020

// color helpers
var (
	colInfo    = color.Info // style provided by gookit/color
	colWarn    = color.Warn
	colError   = color.Error
	colSuccess = color.HEX("#1976D2")
	colArrow   = color.HEX("#FFEB3B")
)
