package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jward/taproot"
)

var (
	flagVerbose      bool
	flagFirstParty   []string
	flagStubs        []string
	flagSitePackages []string
	flagExtra        []string
	flagNamespace    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "taproot",
	Short:         "Incremental program database for Python analysis",
	Long:          "Taproot resolves dotted Python import names against ordered search paths and maintains an incremental, snapshot-capable analysis database.",
	SilenceErrors: true,
	SilenceUsage:  true,
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	resolveCmd.Flags().StringArrayVar(&flagExtra, "extra", nil, "extra search root, consulted first (repeatable)")
	resolveCmd.Flags().StringArrayVar(&flagFirstParty, "first-party", nil, "first-party source root (repeatable)")
	resolveCmd.Flags().StringArrayVar(&flagStubs, "stubs", nil, "stub-only search root (repeatable)")
	resolveCmd.Flags().StringArrayVar(&flagSitePackages, "site-packages", nil, "installed-packages root (repeatable)")
	resolveCmd.Flags().BoolVar(&flagNamespace, "namespace-packages", false, "allow namespace packages (bare directories)")

	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <module>...",
	Short: "Resolve dotted module names to files on disk",
	Long:  "Resolves each dotted module name against the configured search paths in priority order and prints the backing file, or 'not found'.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	paths, err := searchPaths()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		paths = []taproot.SearchPath{taproot.NewSearchPath(taproot.SearchPathFirstParty, filepath.ToSlash(wd))}
	}

	ws := taproot.NewWorkspace(paths, taproot.WithNamespacePackages(flagNamespace))
	p := taproot.New(ws, taproot.OSFileSystem(), taproot.WithLogger(newLogger()))

	var missing int
	for _, arg := range args {
		name, err := taproot.NewModuleName(arg)
		if err != nil {
			return err
		}
		mod, err := p.ResolveModule(name)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", name, err)
		}
		if mod == nil {
			fmt.Printf("%s: not found\n", name)
			missing++
			continue
		}
		fmt.Printf("%s: %s (%s)\n", mod.Name(), mod.File().Path, mod.Kind())
	}
	if missing > 0 {
		return fmt.Errorf("%d module(s) not found", missing)
	}
	return nil
}

// searchPaths assembles the ordered roots from the flags: extra paths first,
// then first-party, stubs, and site-packages, mirroring interpreter
// precedence.
func searchPaths() ([]taproot.SearchPath, error) {
	var paths []taproot.SearchPath
	add := func(kind taproot.SearchPathKind, roots []string) error {
		for _, root := range roots {
			abs, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("resolve root %s: %w", root, err)
			}
			paths = append(paths, taproot.NewSearchPath(kind, normalizeRoot(abs)))
		}
		return nil
	}
	if err := add(taproot.SearchPathExtra, flagExtra); err != nil {
		return nil, err
	}
	if err := add(taproot.SearchPathFirstParty, flagFirstParty); err != nil {
		return nil, err
	}
	if err := add(taproot.SearchPathStubs, flagStubs); err != nil {
		return nil, err
	}
	if err := add(taproot.SearchPathSitePackages, flagSitePackages); err != nil {
		return nil, err
	}
	return paths, nil
}

func normalizeRoot(p string) string {
	return strings.TrimSuffix(filepath.ToSlash(p), "/")
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
