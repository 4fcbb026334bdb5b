package ghclib

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gookit/color"
	"golang.org/x/term"
)

// printHelp prints the commands table
func printHelp() {
	colSuccess.Println("Usage: ghc-lib-build <command> [arguments]")
	colSuccess.Println("Run 'ghc-lib-build build -h' for build options")
	fmt.Println()
	color.Info.Println("Available Commands:")

	type cmdInfo struct {
		Cmd  string
		Args string
		Desc string
	}
	cmds := []cmdInfo{
		{"build, b", "[options]", "Run the full build pipeline (default command)"},
		{"cleanup", "", "Remove leftovers from a previous run"},
		{"version, --version", "", "Version information"},
		{"help, -h", "", "Show this help"},
	}

	maxLen := 0
	for _, c := range cmds {
		length := len(c.Cmd) + len(c.Args)
		if c.Args != "" {
			length++
		}
		if length > maxLen {
			maxLen = length
		}
	}
	columnWidth := maxLen + 4

	for _, c := range cmds {
		var usageString string
		if c.Args != "" {
			usageString = fmt.Sprintf("  %s %s", c.Cmd, c.Args)
		} else {
			usageString = fmt.Sprintf("  %s", c.Cmd)
		}

		fmt.Print("  ")
		color.Bold.Print(c.Cmd)
		if c.Args != "" {
			fmt.Print(" ")
			color.Cyan.Print(c.Args)
		}

		pad := columnWidth - len(usageString)
		if pad < 1 {
			pad = 1
		}
		fmt.Print(strings.Repeat(" ", pad))
		color.Info.Println(c.Desc)
	}
	fmt.Println()
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// parseBuildOptions resolves the flavor selection and stack overrides
// from the build subcommand's arguments. Parsing only; no filesystem
// or network access happens here.
func parseBuildOptions(args []string) (BuildOptions, error) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)

	ghcFlavor := fs.String("ghc-flavor", "", "ghc release name, or a commit ref to track (empty: known-good master commit)")
	da := fs.Bool("da", false, "build against the DA fork of ghc")
	mergeBase := fs.String("merge-base-sha", defaultMergeBase, "DA fork: base commit to merge patches into")
	var patches stringList
	fs.Var(&patches, "patch", "DA fork: patch ref to merge, in order (repeatable; replaces the default list)")
	genFlavor := fs.String("gen-flavor", defaultDaGenFlavor, "DA fork: flavor label passed to ghc-lib-gen")
	upstream := fs.String("upstream", defaultDaUpstream, "DA fork: upstream remote URL")

	stackYaml := fs.String("stack-yaml", "", "alternate stack.yaml path")
	resolver := fs.String("resolver", "", "alternate stack resolver")
	verbosity := fs.String("verbosity", "", "stack verbosity: silent|error|warn|info|debug")
	cabalVerbose := fs.Bool("cabal-verbose", false, "verbose cabal output while packaging")
	ghcOptions := fs.String("ghc-options", "", "extra ghc flags forwarded to the package builds")

	if err := fs.Parse(args); err != nil {
		return BuildOptions{}, err
	}
	if fs.NArg() > 0 {
		return BuildOptions{}, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	if *da && *ghcFlavor != "" {
		return BuildOptions{}, fmt.Errorf("--da and --ghc-flavor are mutually exclusive")
	}

	v, err := ParseVerbosity(*verbosity)
	if err != nil {
		return BuildOptions{}, err
	}

	var flavor GhcFlavor
	if *da {
		if len(patches) == 0 {
			patches = defaultDaPatches()
		}
		flavor = DaFlavor{
			MergeBaseSha: *mergeBase,
			Patches:      patches,
			GenFlavor:    *genFlavor,
			UpstreamURL:  *upstream,
		}
	} else {
		flavor = ParseFlavor(*ghcFlavor)
	}

	return BuildOptions{
		Flavor: flavor,
		Stack: StackOptions{
			StackYaml:    *stackYaml,
			Resolver:     *resolver,
			Verbosity:    v,
			CabalVerbose: *cabalVerbose,
			GhcOptions:   *ghcOptions,
		},
	}, nil
}

// Main is the CLI entrypoint for ghc-lib-build.
func Main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		colArrow.Print("\n-> ")
		colError.Println("Interrupted; stopping after the running command is killed.")
		cancel()
		<-sigs
		os.Exit(130)
	}()

	// No decoration when output is piped into a build log.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.Disable()
	}

	if path := os.Getenv("GHCLIB_CONF"); path != "" {
		ConfigFile = path
	}
	cfg, err := loadConfig(ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", ConfigFile, err)
		os.Exit(1)
	}
	initConfig(cfg)

	UserExec = NewExecutor(ctx)

	command := "build"
	args := os.Args[1:]
	if len(args) > 0 {
		switch {
		case args[0] == "-h", args[0] == "--help", args[0] == "--version":
			command = args[0]
			args = args[1:]
		case !strings.HasPrefix(args[0], "-"):
			command = args[0]
			args = args[1:]
		}
	}

	switch command {
	case "version", "--version":
		fmt.Printf("ghc-lib-build %s (built %s)\n", version, buildDate)

	case "help", "-h", "--help":
		printHelp()

	case "cleanup":
		dir, err := os.Getwd()
		if err == nil {
			err = handleCleanupCommand(dir)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "build", "b":
		opts, err := parseBuildOptions(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		dir, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		ver, err := newPipeline(opts, UserExec, dir).Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		// The computed version is the pipeline's result; keep it the
		// final line so callers can capture it.
		fmt.Println(ver)

	default:
		fmt.Println("Unknown command:", command)
		printHelp()
		os.Exit(2)
	}
}
