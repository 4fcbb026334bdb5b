package ghclib

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// BuildOptions is everything the resolver hands to the pipeline.
type BuildOptions struct {
	Flavor GhcFlavor
	Stack  StackOptions
}

// pipeline carries the accumulated context threaded through the
// stages. Single-threaded; stages run strictly in order and the first
// failure aborts the run.
type pipeline struct {
	opts BuildOptions
	exec runner

	dir  string           // working directory (the ghc-lib checkout)
	goos string           // runtime.GOOS, injectable for tests
	now  func() time.Time // clock, injectable for tests

	version string // computed at stage "compute version"
}

func newPipeline(opts BuildOptions, exec runner, dir string) *pipeline {
	return &pipeline{
		opts: opts,
		exec: exec,
		dir:  dir,
		goos: runtime.GOOS,
		now:  time.Now,
	}
}

// stage is one step of the fixed build sequence.
type stage struct {
	name string
	run  func(*pipeline) error
}

// buildStages is the pipeline in its entirety, in execution order.
func buildStages() []stage {
	return []stage{
		{"cleanup", stageCleanup},
		{"restore stack.yaml", stageRestoreStackYaml},
		{"bootstrap toolchain", stageBootstrapToolchain},
		{"build alex and happy", stageBuildAlexHappy},
		{"clone ghc", stageCloneGhc},
		{"checkout flavor", stageCheckoutFlavor},
		{"generator ghc version", stageGhcVersion},
		{"build ghc-lib-gen", stageBuildGenerator},
		{"compute version", stageComputeVersion},
		{"configure hadrian", stageConfigureHadrian},
		{"package ghc-lib-parser", stagePackageParser},
		{"reset ghc tree", stageResetGhcTree},
		{"package ghc-lib", stagePackageGhcLib},
		{"assemble stack.yaml", stageAssembleStackYaml},
		{"build ghc version", stageGhcVersion},
		{"build packages", stageBuildPackages},
		{"smoke tests", stageSmokeTests},
	}
}

// Run executes every stage in order, halting at the first failure.
// Returns the version string the run produced. Artifacts from the
// packaging stages are deliberately left on disk when a later stage
// fails, for post-mortem inspection.
func (p *pipeline) Run() (string, error) {
	start := time.Now()
	for _, st := range buildStages() {
		colArrow.Print("-> ")
		colSuccess.Printf("Stage: %s\n", st.name)
		if err := st.run(p); err != nil {
			return "", fmt.Errorf("stage %q failed: %w", st.name, err)
		}
	}
	elapsed := time.Since(start).Truncate(time.Second)
	debugf("Pipeline finished in %s\n", elapsed)
	return versionString(p.opts.Flavor, p.now()), nil
}

// run spawns one external command with inherited stdio, printing
// start/end diagnostics with the elapsed wall-clock time. dir is the
// working directory; empty means the pipeline root.
func (p *pipeline) run(dir, name string, args ...string) error {
	if dir == "" {
		dir = p.dir
	}
	line := strings.Join(append([]string{name}, args...), " ")
	colArrow.Print("-> ")
	colInfo.Printf("Running: %s\n", line)

	start := time.Now()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	err := p.exec.Run(cmd)
	elapsed := time.Since(start).Truncate(time.Millisecond)

	if err != nil {
		colArrow.Print("-> ")
		colError.Printf("Failed after %s: %s\n", elapsed, line)
		return fmt.Errorf("command %q: %w", line, err)
	}
	colArrow.Print("-> ")
	colSuccess.Printf("Finished in %s: %s\n", elapsed, line)
	return nil
}

// stack runs a stack subcommand with the configured global overrides.
func (p *pipeline) stack(dir string, sub ...string) error {
	name, args := p.opts.Stack.Command(sub...)
	return p.run(dir, name, args...)
}

func (p *pipeline) ghcDir() string {
	return filepath.Join(p.dir, "ghc")
}

func stageCleanup(p *pipeline) error {
	return cleanupWorkspace(p.dir)
}

func stageRestoreStackYaml(p *pipeline) error {
	return p.run("", "git", "checkout", "--", "stack.yaml")
}

// stageBootstrapToolchain installs the native build tools the ghc
// configure step needs. Only applies to the msys2 environment stack
// ships on windows; everywhere else the stage is a no-op.
func stageBootstrapToolchain(p *pipeline) error {
	if p.goos != "windows" {
		debugf("Skipping toolchain bootstrap on %s\n", p.goos)
		return nil
	}
	return p.stack("", "exec", "--",
		"pacman", "-S", "autoconf", "automake-wrapper", "make", "patch", "python", "tar", "--noconfirm")
}

// alex and happy generate ghc's lexer and parser sources; ghc-lib-gen
// expects both on the path.
func stageBuildAlexHappy(p *pipeline) error {
	return p.stack("", "build", "alex", "happy")
}

func stageCloneGhc(p *pipeline) error {
	return p.run("", "git", "clone", ghcRepoURL)
}

func stageCheckoutFlavor(p *pipeline) error {
	ghc := p.ghcDir()
	switch f := p.opts.Flavor.(type) {
	case ReleaseFlavor:
		if err := p.run(ghc, "git", "fetch", "--tags"); err != nil {
			return err
		}
		if err := p.run(ghc, "git", "checkout", f.Release.Tag()); err != nil {
			return err
		}
	case DaFlavor:
		if err := p.run(ghc, "git", "checkout", f.MergeBaseSha); err != nil {
			return err
		}
		if err := p.run(ghc, "git", "remote", "add", "upstream", f.UpstreamURL); err != nil {
			return err
		}
		if err := p.run(ghc, "git", "fetch", "upstream"); err != nil {
			return err
		}
		for _, patch := range f.Patches {
			err := p.run(ghc, "git",
				"-c", "user.name="+botName,
				"-c", "user.email="+botEmail,
				"merge", "--no-edit", patch)
			if err != nil {
				return err
			}
		}
	case MasterFlavor:
		if err := p.run(ghc, "git", "checkout", f.Commit); err != nil {
			return err
		}
	}
	return p.run(ghc, "git", "submodule", "update", "--init", "--recursive")
}

// Diagnostic only; which ghc we are about to build with.
func stageGhcVersion(p *pipeline) error {
	return p.stack("", "exec", "--", "ghc", "--version")
}

func stageBuildGenerator(p *pipeline) error {
	return p.stack("", "build", "ghc-lib-gen")
}

func stageComputeVersion(p *pipeline) error {
	p.version = versionString(p.opts.Flavor, p.now())
	colArrow.Print("-> ")
	colSuccess.Printf("Package version: %s\n", p.version)
	return nil
}

// stageConfigureHadrian appends overrides to ghc's internal build
// configuration: optimizations off and parallel compilation on, plus
// an alex pin when tracking master (newer trees assume an alex the
// bootstrap snapshot may not carry).
func stageConfigureHadrian(p *pipeline) error {
	hadrianYaml := filepath.Join(p.ghcDir(), "hadrian", "stack.yaml")
	lines := []string{"ghc-options:", `  "$everything": -O0 -j`}
	if err := appendLines(hadrianYaml, lines); err != nil {
		return err
	}
	if _, ok := p.opts.Flavor.(MasterFlavor); ok {
		if err := appendLines(hadrianYaml, []string{"extra-deps: [alex-3.2.5]"}); err != nil {
			return err
		}
	}
	return nil
}

func stagePackageParser(p *pipeline) error {
	return p.packageDist("ghc-lib-parser", true)
}

// Discard the edits ghc-lib-gen made for the parser-only package so
// the full package is generated from a clean tree.
func stageResetGhcTree(p *pipeline) error {
	return p.run(p.ghcDir(), "git", "checkout", ".")
}

func stagePackageGhcLib(p *pipeline) error {
	return p.packageDist("ghc-lib", false)
}

// packageDist generates, patches, and packages one of the two source
// distributions, leaving the extracted package directory under its
// unversioned name in the working directory.
func (p *pipeline) packageDist(pkg string, parserOnly bool) error {
	mode := "--ghc-lib"
	if parserOnly {
		mode = "--ghc-lib-parser"
	}
	err := p.stack("", "exec", "--",
		"ghc-lib-gen", "ghc", mode, "--ghc-flavor="+genFlavorArg(p.opts.Flavor))
	if err != nil {
		return err
	}

	cabal := filepath.Join(p.ghcDir(), pkg+".cabal")
	if err := patchCabalVersion(cabal, p.version); err != nil {
		return err
	}
	if !parserOnly {
		if err := pinParserDependency(cabal, p.version); err != nil {
			return err
		}
	}

	if err := p.stack("", "sdist", "ghc", "--tar-dir=."); err != nil {
		return err
	}

	versioned := pkg + "-" + p.version
	if err := extractTarGz(filepath.Join(p.dir, versioned+".tar.gz"), p.dir); err != nil {
		return err
	}
	if err := os.Rename(filepath.Join(p.dir, versioned), filepath.Join(p.dir, pkg)); err != nil {
		return fmt.Errorf("failed to rename %s: %w", versioned, err)
	}

	// The copy inside the ghc tree is stale the moment the sdist
	// exists; later stages operate on the extracted package only.
	if err := os.Remove(cabal); err != nil {
		return fmt.Errorf("failed to remove %s: %w", cabal, err)
	}
	return p.run("", "git", "checkout", "--", "stack.yaml")
}

// stageAssembleStackYaml registers the produced packages and the
// example programs in the project's stack.yaml, plus the
// flavor-conditioned extras.
func stageAssembleStackYaml(p *pipeline) error {
	stackYaml := filepath.Join(p.dir, "stack.yaml")
	lines := []string{
		"- ghc-lib-parser",
		"- ghc-lib",
		"- examples/mini-hlint",
		"- examples/mini-compile",
		"- examples/strip-locs",
	}
	if err := appendLines(stackYaml, lines); err != nil {
		return err
	}
	switch f := p.opts.Flavor.(type) {
	case ReleaseFlavor:
		// The 8.8.1 resolver snapshot predates the happy that tree needs.
		if f.Release == Ghc881 {
			return appendLines(stackYaml, []string{"extra-deps: [happy-1.19.12]"})
		}
	case DaFlavor:
		return appendLines(stackYaml, []string{
			"flags:",
			"  mini-compile:",
			"    daml-unit-ids: true",
		})
	}
	return nil
}

func stageBuildPackages(p *pipeline) error {
	// The two packages build separately for independent timing; the
	// examples build together afterwards.
	targets := [][]string{
		{"ghc-lib-parser"},
		{"ghc-lib"},
		{"mini-hlint", "mini-compile", "strip-locs"},
	}
	for _, t := range targets {
		if err := p.stack("", p.opts.Stack.BuildArgs(t...)...); err != nil {
			return err
		}
	}
	return nil
}

var miniHlintFixtures = []string{
	"examples/mini-hlint/test/MiniHlintTest.hs",
	"examples/mini-hlint/test/MiniHlintTest_fatal_error.hs",
	"examples/mini-hlint/test/MiniHlintTest_non_fatal_error.hs",
	"examples/mini-hlint/test/MiniHlintTest_respect_dynamic_pragma.hs",
	"examples/mini-hlint/test/MiniHlintTest_fail_unknown_pragma.hs",
}

const miniCompileFixture = "examples/mini-compile/test/MiniCompileTest.hs"

func stageSmokeTests(p *pipeline) error {
	for _, fixture := range miniHlintFixtures {
		if err := p.stack("", "exec", "--", "mini-hlint", fixture); err != nil {
			return err
		}
	}
	if err := p.stack("", "exec", "--", "strip-locs", miniCompileFixture); err != nil {
		return err
	}
	if err := p.stack("", "exec", "--", "mini-compile", miniCompileFixture); err != nil {
		return err
	}

	if !ghciChecksEnabled(p.goos, p.opts.Flavor, forceGhciChecks) {
		colArrow.Print("-> ")
		cPrintln(colWarn, "Skipping ghci smoke checks on this platform/flavor.")
		return nil
	}

	ghcOpts, err := p.opts.Stack.GhcOptionTokens()
	if err != nil {
		return err
	}
	for _, pkg := range []string{"ghc-lib-parser", "ghc-lib"} {
		args := []string{"exec", "--", "ghci", "-ignore-dot-ghci", "-package", pkg}
		args = append(args, ghcOpts...)
		args = append(args, "-e", "print 1")
		if err := p.stack("", args...); err != nil {
			return err
		}
	}
	return nil
}
