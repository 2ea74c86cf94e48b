// Package resolver turns dependency requests like "zlib >= 1.2" into a
// flattened, deduplicated, priority-ordered dependency set backed by .pc
// metadata files.
//
// The entry point is a [Client], which carries the search path, the
// package cache and the resolution serial, plus a [Queue] of raw
// dependency atoms. [Queue.Apply] compiles the queue into a synthetic
// world root package, traverses the dependency graph collecting every
// transitive requirement into the root, flattens the result, and hands
// the solved world to a callback:
//
//	client := resolver.New(resolver.Options{SearchPaths: dirs})
//	queue := resolver.NewQueue()
//	queue.Push("zlib >= 1.2")
//
//	err := queue.Apply(client, 0, func(c *resolver.Client, world *resolver.Package, maxDepth int) error {
//	    for _, dep := range world.Requires {
//	        fmt.Println(dep.Match().ID)
//	    }
//	    return nil
//	})
//
// A Client is not safe for concurrent resolutions: the serial-based
// duplicate tracking assumes one compile/traverse/flatten sequence at a
// time. Run concurrent resolutions on separate Clients.
package resolver

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ClientFlags alter how a Client resolves and reports.
type ClientFlags uint

const (
	// ClientStatic walks Requires.private edges during traversal and is
	// set for static linking, where private dependencies end up on the
	// link line.
	ClientStatic ClientFlags = 1 << iota

	// ClientSkipConflicts disables Conflicts checking during traversal.
	ClientSkipConflicts

	// ClientNoUninstalled ignores <name>-uninstalled.pc files.
	ClientNoUninstalled

	// ClientSkipProvides disables provider (virtual package) search when
	// exact lookup misses.
	ClientSkipProvides
)

// Options configures a Client.
type Options struct {
	// SearchPaths are the directories scanned for .pc files, in
	// priority order.
	SearchPaths []string

	// SysrootDir is recorded on the client for fragment rewriting; the
	// resolver itself only stores it.
	SysrootDir string

	// Flags tune resolution behavior.
	Flags ClientFlags

	// Logger receives trace output (dedup decisions, lookups, slot
	// assignment) at debug level. Nil discards.
	Logger *log.Logger

	// ErrorWriter receives user-facing diagnostics such as "package not
	// found". Nil discards.
	ErrorWriter io.Writer

	// Globals are variable overrides applied before package tuples
	// during ${var} expansion (--define-variable).
	Globals map[string]string

	// Audit, when non-nil, receives one line per dependency query.
	Audit io.Writer
}

// Client holds the state for one resolution session: search path,
// package cache, global variable overrides and the monotonically
// increasing serial used to mark packages as admitted during
// flattening.
//
// A Client must not run more than one resolution at a time. The serial
// scheme marks visited packages in place, so a concurrent resolution on
// the same Client would corrupt the other's duplicate detection. Use
// one Client per concurrent resolution instead.
type Client struct {
	id      uuid.UUID
	flags   ClientFlags
	dirs    []string
	sysroot string
	globals map[string]string
	logger  *log.Logger
	errw    io.Writer
	audit   *audit
	cache   *packageCache
	serial  uint64
}

// New creates a Client. The zero Options value yields a client with an
// empty search path that resolves nothing.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	errw := opts.ErrorWriter
	if errw == nil {
		errw = io.Discard
	}
	globals := opts.Globals
	if globals == nil {
		globals = make(map[string]string)
	}

	c := &Client{
		id:      uuid.New(),
		flags:   opts.Flags,
		dirs:    opts.SearchPaths,
		sysroot: opts.SysrootDir,
		globals: globals,
		logger:  logger,
		errw:    errw,
		cache:   newPackageCache(),
	}
	if opts.Audit != nil {
		c.audit = newAudit(opts.Audit, c.id)
	}
	return c
}

// ID returns the client's unique identity, used to correlate audit log
// lines.
func (c *Client) ID() uuid.UUID { return c.id }

// Flags returns the client's resolution flags.
func (c *Client) Flags() ClientFlags { return c.flags }

// SysrootDir returns the sysroot every path-type fragment should be
// rewritten under, or "" when none is set.
func (c *Client) SysrootDir() string { return c.sysroot }

// DefineVariable sets a global variable override that takes precedence
// over package tuples during ${var} expansion.
func (c *Client) DefineVariable(name, value string) {
	c.globals[name] = value
}

// Variable looks up a variable for pkg, global overrides first, then
// the package's own tuples.
func (c *Client) Variable(pkg *Package, name string) (string, bool) {
	if v, ok := c.globals[name]; ok {
		return v, true
	}
	return pkg.Vars.Get(name)
}

// CacheReset drops every cached package. Subsequent lookups re-read .pc
// files from disk.
func (c *Client) CacheReset() { c.cache.reset() }

func (c *Client) trace(format string, args ...any) {
	c.logger.Debugf(format, args...)
}

func (c *Client) errorf(format string, args ...any) {
	fmt.Fprintf(c.errw, format+"\n", args...)
}
