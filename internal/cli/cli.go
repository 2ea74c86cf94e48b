// Package cli implements the pkgconf command-line interface.
//
// The surface is flag-driven rather than subcommand-driven: positional
// arguments are dependency atoms ("zlib >= 1.2") pushed onto the
// resolution queue in order, and flags select what is printed from the
// solved dependency set (--cflags, --libs, --modversion, ...).
//
// # Logging
//
// --verbose (-v) enables debug-level logging, which includes the
// resolver's trace output: lookup hits, dedup decisions and slot
// assignment during flattening.
//
// # Environment
//
// PKG_CONFIG_PATH, PKG_CONFIG_LIBDIR, PKG_CONFIG_SYSROOT_DIR,
// PKG_CONFIG_LOG_FILE and the PKG_CONFIG_SYSTEM_* variables are honored
// as in the original tool; --env-only restricts the search path to
// PKG_CONFIG_PATH alone.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/annacrombie/pkgconf/pkg/buildinfo"
	"github.com/annacrombie/pkgconf/pkg/fragment"
	"github.com/annacrombie/pkgconf/pkg/personality"
	"github.com/annacrombie/pkgconf/pkg/resolver"
)

const appName = "pkgconf"

// personalityDirs is where named cross-compile personalities are
// searched when PKG_CONFIG_PERSONALITY_PATH is unset.
var personalityDirs = []string{"/usr/share/pkgconfig/personality.d", "/etc/pkgconfig/personality.d"}

// ErrFailure signals an unsuccessful query whose diagnostics were
// already written; main exits 1 without printing anything further.
var ErrFailure = errors.New("pkgconf failure")

// CLI holds shared state for the command tree.
type CLI struct {
	Logger *log.Logger
}

// New creates a CLI instance logging to w at the given level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

type options struct {
	modversion           bool
	cflags               bool
	cflagsOnlyI          bool
	cflagsOnlyOther      bool
	libs                 bool
	libsOnlyl            bool
	libsOnlyL            bool
	libsOnlyOther        bool
	exists               bool
	validate             bool
	printRequires        bool
	printRequiresPrivate bool
	printProvides        bool
	printVariables       bool
	variable             string
	defines              []string
	maxDepth             int
	static               bool
	digraph              bool
	digraphOutput        string
	listAll              bool
	uninstalled          bool
	noUninstalled        bool
	atleastVersion       string
	exactVersion         string
	maxVersion           string
	atleastSelfVersion   string
	errorsToStdout       bool
	silenceErrors        bool
	logFile              string
	personality          string
	withPath             []string
	envOnly              bool
}

// RootCommand creates the root cobra command with every query flag
// registered.
func (c *CLI) RootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           appName + " [options] [package atoms...]",
		Short:         "pkgconf resolves package metadata into compiler and linker flags",
		Long:          `pkgconf compiles a list of dependency atoms into a deduplicated, correctly ordered dependency set backed by .pc metadata files, and prints compiler/linker flags, versions and variables from the solved set.`,
		Version:       buildinfo.Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, args, opts)
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	flags := root.Flags()
	flags.BoolVar(&opts.modversion, "modversion", false, "print the version of the queried packages")
	flags.BoolVar(&opts.cflags, "cflags", false, "print required compiler flags")
	flags.BoolVar(&opts.cflagsOnlyI, "cflags-only-I", false, "print only -I compiler flags")
	flags.BoolVar(&opts.cflagsOnlyOther, "cflags-only-other", false, "print compiler flags other than -I")
	flags.BoolVar(&opts.libs, "libs", false, "print required linker flags")
	flags.BoolVar(&opts.libsOnlyl, "libs-only-l", false, "print only -l linker flags")
	flags.BoolVar(&opts.libsOnlyL, "libs-only-L", false, "print only -L linker flags")
	flags.BoolVar(&opts.libsOnlyOther, "libs-only-other", false, "print linker flags other than -l and -L")
	flags.BoolVar(&opts.exists, "exists", false, "check whether the queried packages exist")
	flags.BoolVar(&opts.validate, "validate", false, "validate the dependency graph without solving callbacks")
	flags.BoolVar(&opts.printRequires, "print-requires", false, "print the Requires entries of the queried packages")
	flags.BoolVar(&opts.printRequiresPrivate, "print-requires-private", false, "print the Requires.private entries of the queried packages")
	flags.BoolVar(&opts.printProvides, "print-provides", false, "print what the queried packages provide")
	flags.BoolVar(&opts.printVariables, "print-variables", false, "print the variable names defined by the queried packages")
	flags.StringVar(&opts.variable, "variable", "", "print the value of the named variable")
	flags.StringArrayVar(&opts.defines, "define-variable", nil, "override a variable as NAME=VALUE")
	flags.IntVar(&opts.maxDepth, "maximum-traverse-depth", 0, "maximum dependency graph depth (0 = unlimited)")
	flags.BoolVar(&opts.static, "static", false, "resolve for static linking (follow private dependencies)")
	flags.BoolVar(&opts.digraph, "digraph", false, "print the solved dependency graph as Graphviz DOT")
	flags.StringVar(&opts.digraphOutput, "digraph-output", "", "render the dependency graph to a .svg/.png/.dot file")
	flags.BoolVar(&opts.listAll, "list-all", false, "list every package visible on the search path")
	flags.BoolVar(&opts.uninstalled, "uninstalled", false, "succeed only if an uninstalled package is in the solution")
	flags.BoolVar(&opts.noUninstalled, "no-uninstalled", false, "ignore -uninstalled.pc files")
	flags.StringVar(&opts.atleastVersion, "atleast-version", "", "check that the queried package is at least this version")
	flags.StringVar(&opts.exactVersion, "exact-version", "", "check that the queried package is exactly this version")
	flags.StringVar(&opts.maxVersion, "max-version", "", "check that the queried package is at most this version")
	flags.StringVar(&opts.atleastSelfVersion, "atleast-pkgconfig-version", "", "check the pkgconf version itself")
	flags.BoolVar(&opts.errorsToStdout, "errors-to-stdout", false, "write diagnostics to stdout instead of stderr")
	flags.BoolVar(&opts.silenceErrors, "silence-errors", false, "suppress diagnostics")
	flags.StringVar(&opts.logFile, "log-file", "", "append one audit line per dependency query to this file")
	flags.StringVar(&opts.personality, "personality", "", "resolve with the named cross-compile personality")
	flags.StringArrayVar(&opts.withPath, "with-path", nil, "prepend a directory to the search path")
	flags.BoolVar(&opts.envOnly, "env-only", false, "search only the directories from PKG_CONFIG_PATH")

	return root
}

func (c *CLI) run(cmd *cobra.Command, args []string, opts *options) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	errw := cmd.ErrOrStderr()

	if opts.atleastSelfVersion != "" {
		if selfVersionAtLeast(opts.atleastSelfVersion) {
			return nil
		}
		return ErrFailure
	}

	pers, err := c.personalityFor(opts)
	if err != nil {
		fmt.Fprintln(errw, errorPrefix(), err)
		return ErrFailure
	}
	pers.SearchPaths = append(append([]string(nil), opts.withPath...), pers.SearchPaths...)

	diag := io.Writer(errw)
	if opts.errorsToStdout {
		diag = out
	}
	if opts.silenceErrors {
		diag = io.Discard
	}

	globals, err := parseDefines(opts.defines)
	if err != nil {
		fmt.Fprintln(errw, errorPrefix(), err)
		return ErrFailure
	}

	var auditw io.Writer
	logFile := opts.logFile
	if logFile == "" {
		logFile = os.Getenv(personality.EnvLogFile)
	}
	if logFile != "" {
		f, err := resolver.OpenAuditLog(logFile)
		if err != nil {
			fmt.Fprintln(errw, errorPrefix(), err)
			return ErrFailure
		}
		defer f.Close()
		auditw = f
	}

	var rflags resolver.ClientFlags
	if opts.static {
		rflags |= resolver.ClientStatic
	}
	if opts.noUninstalled {
		rflags |= resolver.ClientNoUninstalled
	}

	client := resolver.New(resolver.Options{
		SearchPaths: pers.SearchPaths,
		SysrootDir:  pers.SysrootDir,
		Flags:       rflags,
		Logger:      c.Logger,
		ErrorWriter: diag,
		Globals:     globals,
		Audit:       auditw,
	})

	if opts.listAll {
		pkgs, err := client.Scan(ctx)
		if err != nil {
			fmt.Fprintln(errw, errorPrefix(), err)
			return ErrFailure
		}
		printListing(out, pkgs)
		return nil
	}

	atoms, err := requestAtoms(args, opts)
	if err != nil {
		fmt.Fprintln(errw, errorPrefix(), err)
		return ErrFailure
	}
	if len(atoms) == 0 {
		fmt.Fprintln(errw, errorPrefix(), "no package names were given")
		return ErrFailure
	}

	queue := resolver.NewQueue()
	for _, atom := range atoms {
		queue.Push(atom)
	}
	defer queue.Free()

	if !outputRequested(opts) {
		// --exists, --validate and the version-check flags only care
		// about the exit status.
		if err := queue.Validate(client, opts.maxDepth); err != nil {
			return ErrFailure
		}
		return nil
	}

	if err := queue.Apply(client, opts.maxDepth, c.solve(out, atoms, pers, opts)); err != nil {
		if !errors.Is(err, ErrFailure) && !resolverError(err) {
			fmt.Fprintln(errw, errorPrefix(), err)
		}
		return ErrFailure
	}
	return nil
}

func (c *CLI) personalityFor(opts *options) (*personality.Personality, error) {
	if opts.personality == "" {
		return personality.FromEnv(opts.envOnly), nil
	}

	dirs := personalityDirs
	if env := os.Getenv("PKG_CONFIG_PERSONALITY_PATH"); env != "" {
		dirs = personality.SplitPath(env)
	}
	return personality.Load(opts.personality, dirs)
}

// solve is the Apply callback: it prints everything the query flags
// asked for from the solved, flattened world.
func (c *CLI) solve(out io.Writer, atoms []string, pers *personality.Personality, opts *options) resolver.ApplyFunc {
	return func(client *resolver.Client, world *resolver.Package, maxDepth int) error {
		requested, err := requestedPackages(client, atoms)
		if err != nil {
			return err
		}

		if opts.uninstalled && !anyUninstalled(requested) {
			return ErrFailure
		}

		if opts.digraph || opts.digraphOutput != "" {
			if err := writeDigraph(out, world, opts.digraphOutput); err != nil {
				return err
			}
		}

		for _, pkg := range requested {
			if opts.modversion {
				fmt.Fprintln(out, pkg.Version)
			}
			if opts.variable != "" {
				v, _ := client.Variable(pkg, opts.variable)
				fmt.Fprintln(out, v)
			}
			if opts.printVariables {
				for _, name := range pkg.Vars.Names() {
					fmt.Fprintln(out, name)
				}
			}
			if opts.printRequires {
				for _, dep := range pkg.Requires {
					fmt.Fprintln(out, dep)
				}
			}
			if opts.printRequiresPrivate {
				for _, dep := range pkg.RequiresPrivate {
					fmt.Fprintln(out, dep)
				}
			}
			if opts.printProvides {
				fmt.Fprintf(out, "%s = %s\n", pkg.ID, pkg.Version)
				for _, dep := range pkg.Provides {
					fmt.Fprintln(out, dep)
				}
			}
		}

		if line := flagLine(world, pers, opts); line != "" {
			fmt.Fprintln(out, line)
		}
		return nil
	}
}

// flagLine assembles the --cflags/--libs output: fragments merged over
// the flattened world lists, sysroot-prefixed, with toolchain-default
// paths elided unless the PKG_CONFIG_ALLOW_SYSTEM_* variables are set.
func flagLine(world *resolver.Package, pers *personality.Personality, opts *options) string {
	wantCflags := opts.cflags || opts.cflagsOnlyI || opts.cflagsOnlyOther
	wantLibs := opts.libs || opts.libsOnlyl || opts.libsOnlyL || opts.libsOnlyOther

	var parts []string
	if wantCflags {
		list := collectFragments(world, true, func(pkg *resolver.Package) []fragment.List {
			if opts.static {
				return []fragment.List{pkg.CFlags, pkg.CFlagsPrivate}
			}
			return []fragment.List{pkg.CFlags}
		})
		list = fragment.SysrootPrefix(list, pers.SysrootDir)
		if os.Getenv("PKG_CONFIG_ALLOW_SYSTEM_CFLAGS") == "" {
			list = elideSystemPaths(list, 'I', pers.SystemIncludePaths)
		}
		switch {
		case opts.cflagsOnlyI:
			list = fragment.OfType(list, 'I')
		case opts.cflagsOnlyOther:
			list = fragment.ExceptType(list, 'I')
		}
		parts = append(parts, list.Render())
	}

	if wantLibs {
		list := collectFragments(world, opts.static, func(pkg *resolver.Package) []fragment.List {
			if opts.static {
				return []fragment.List{pkg.Libs, pkg.LibsPrivate}
			}
			return []fragment.List{pkg.Libs}
		})
		list = fragment.SysrootPrefix(list, pers.SysrootDir)
		if os.Getenv("PKG_CONFIG_ALLOW_SYSTEM_LIBS") == "" {
			list = elideSystemPaths(list, 'L', pers.SystemLibraryPaths)
		}
		switch {
		case opts.libsOnlyl:
			list = fragment.OfType(list, 'l')
		case opts.libsOnlyL:
			list = fragment.OfType(list, 'L')
		case opts.libsOnlyOther:
			list = fragment.ExceptType(list, 'l', 'L')
		}
		parts = append(parts, list.Render())
	}

	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// collectFragments walks the flattened dependency lists in solution
// order. Compiler flags from private requirements are always needed
// (headers reach them), so cflags collection sets includePrivate; the
// link line only includes private requirements when static.
func collectFragments(world *resolver.Package, includePrivate bool, pick func(*resolver.Package) []fragment.List) fragment.List {
	var out fragment.List
	deps := append([]*resolver.Dependency(nil), world.Requires...)
	if includePrivate {
		deps = append(deps, world.RequiresPrivate...)
	}
	for _, dep := range deps {
		match := dep.Match()
		if match == nil {
			continue
		}
		for _, list := range pick(match) {
			out = fragment.Merge(out, list)
		}
	}
	return out
}

func elideSystemPaths(list fragment.List, typ byte, systemDirs []string) fragment.List {
	return fragment.Filter(list, func(f fragment.Fragment) bool {
		if f.Type != typ {
			return true
		}
		for _, dir := range systemDirs {
			if f.Data == dir {
				return false
			}
		}
		return true
	})
}

// requestedPackages resolves the original atoms, in request order, to
// their concrete packages. Everything is already cached from the
// resolution, so this only replays lookups.
func requestedPackages(client *resolver.Client, atoms []string) ([]*resolver.Package, error) {
	var pkgs []*resolver.Package
	for _, atom := range atoms {
		for _, dep := range client.ParseDependencies(nil, nil, atom, 0) {
			pkg, err := client.VerifyDependency(dep)
			if err != nil {
				return nil, err
			}
			pkgs = append(pkgs, pkg)
		}
	}
	return pkgs, nil
}

func anyUninstalled(pkgs []*resolver.Package) bool {
	for _, pkg := range pkgs {
		if pkg.Flags&resolver.PackageUninstalled != 0 {
			return true
		}
	}
	return false
}

// requestAtoms returns the dependency atoms for a run. The version
// check flags rewrite a single package name into a constrained atom,
// mirroring the original tool's behavior.
func requestAtoms(args []string, opts *options) ([]string, error) {
	checks := []struct {
		value string
		op    string
	}{
		{opts.atleastVersion, ">="},
		{opts.exactVersion, "="},
		{opts.maxVersion, "<="},
	}

	var active []string
	for _, chk := range checks {
		if chk.value != "" {
			active = append(active, fmt.Sprintf("%s %s", chk.op, chk.value))
		}
	}
	if len(active) == 0 {
		return args, nil
	}
	if len(active) > 1 {
		return nil, errors.New("only one of --atleast-version, --exact-version and --max-version may be given")
	}
	if len(args) != 1 {
		return nil, errors.New("a version check requires exactly one package name")
	}
	return []string{args[0] + " " + active[0]}, nil
}

// outputRequested reports whether any flag asks for output beyond an
// exit status.
func outputRequested(opts *options) bool {
	return opts.modversion ||
		opts.cflags || opts.cflagsOnlyI || opts.cflagsOnlyOther ||
		opts.libs || opts.libsOnlyl || opts.libsOnlyL || opts.libsOnlyOther ||
		opts.printRequires || opts.printRequiresPrivate ||
		opts.printProvides || opts.printVariables ||
		opts.variable != "" ||
		opts.digraph || opts.digraphOutput != "" ||
		opts.uninstalled
}

func resolverError(err error) bool {
	return errors.Is(err, resolver.ErrGraphBroken) ||
		errors.Is(err, resolver.ErrPackageNotFound) ||
		errors.Is(err, resolver.ErrVersionMismatch) ||
		errors.Is(err, resolver.ErrPackageConflict) ||
		errors.Is(err, resolver.ErrInvalidPackage)
}

func parseDefines(defines []string) (map[string]string, error) {
	if len(defines) == 0 {
		return nil, nil
	}
	globals := make(map[string]string, len(defines))
	for _, def := range defines {
		name, value, ok := strings.Cut(def, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed --define-variable %q, want NAME=VALUE", def)
		}
		globals[name] = value
	}
	return globals, nil
}

// selfVersionAtLeast compares the build's own version against want.
// Dev builds with unparseable versions count as newest.
func selfVersionAtLeast(want string) bool {
	have, err := semver.NewVersion(strings.TrimPrefix(buildinfo.Version, "v"))
	if err != nil {
		return true
	}
	min, err := semver.NewVersion(want)
	if err != nil {
		return false
	}
	return !have.LessThan(min)
}
