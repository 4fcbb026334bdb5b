package ghclib

import (
	"fmt"

	"github.com/google/shlex"
)

// Verbosity is stack's --verbosity enumeration.
type Verbosity string

const (
	VerbositySilent Verbosity = "silent"
	VerbosityError  Verbosity = "error"
	VerbosityWarn   Verbosity = "warn"
	VerbosityInfo   Verbosity = "info"
	VerbosityDebug  Verbosity = "debug"
)

// ParseVerbosity validates a --verbosity value. The empty string means
// "unset" and is accepted.
func ParseVerbosity(s string) (Verbosity, error) {
	switch Verbosity(s) {
	case "", VerbositySilent, VerbosityError, VerbosityWarn, VerbosityInfo, VerbosityDebug:
		return Verbosity(s), nil
	}
	return "", fmt.Errorf("invalid verbosity %q (expected silent|error|warn|info|debug)", s)
}

// StackOptions are the optional overrides forwarded to every stack
// invocation. Zero values mean the option is omitted entirely.
type StackOptions struct {
	StackYaml    string
	Resolver     string
	Verbosity    Verbosity
	CabalVerbose bool
	GhcOptions   string
}

// globalArgs renders the always-on and configured global stack flags.
func (o StackOptions) globalArgs() []string {
	args := []string{"--no-terminal"}
	if o.StackYaml != "" {
		args = append(args, "--stack-yaml", o.StackYaml)
	}
	if o.Resolver != "" {
		args = append(args, "--resolver", o.Resolver)
	}
	if o.Verbosity != "" {
		args = append(args, "--verbosity", string(o.Verbosity))
	}
	if o.CabalVerbose {
		args = append(args, "--cabal-verbose")
	}
	return args
}

// Command assembles a full stack argv for the given subcommand tokens.
func (o StackOptions) Command(sub ...string) (string, []string) {
	return "stack", append(o.globalArgs(), sub...)
}

// BuildArgs is the "build" subcommand argv for the given targets,
// forwarding the raw ghc-options override when one is configured.
func (o StackOptions) BuildArgs(targets ...string) []string {
	args := []string{"build"}
	if o.GhcOptions != "" {
		args = append(args, "--ghc-options="+o.GhcOptions)
	}
	return append(args, targets...)
}

// GhcOptionTokens splits the raw ghc-options string into argv tokens,
// honoring quoting, for invocations that take the flags directly
// rather than through stack's --ghc-options.
func (o StackOptions) GhcOptionTokens() ([]string, error) {
	if o.GhcOptions == "" {
		return nil, nil
	}
	tokens, err := shlex.Split(o.GhcOptions)
	if err != nil {
		return nil, fmt.Errorf("malformed ghc-options %q: %w", o.GhcOptions, err)
	}
	return tokens, nil
}
