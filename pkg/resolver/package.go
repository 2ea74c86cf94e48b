package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/annacrombie/pkgconf/pkg/fragment"
	"github.com/annacrombie/pkgconf/pkg/vercmp"
)

// PackageFlags mark properties of a package.
type PackageFlags uint

const (
	// PackageStatic marks a package resolved for static linking.
	PackageStatic PackageFlags = 1 << iota
	// PackageVirtual marks a synthetic package that exists only as an
	// aggregation point and is never discoverable on the search path.
	PackageVirtual
	// PackageUninstalled marks a package loaded from a
	// <name>-uninstalled.pc file.
	PackageUninstalled
)

// WorldID is the identity of the synthetic root package aggregating a
// whole request set. A package with this id is never resolvable.
const (
	WorldID       = "virtual:world"
	worldRealName = "virtual world package"
)

// Package is a resolved .pc package, or the synthetic world root.
type Package struct {
	// ID is the lookup name (the .pc filename without extension).
	ID string
	// RealName is the Name field from the metadata.
	RealName    string
	Version     string
	Description string
	URL         string
	Flags       PackageFlags

	// Vars holds the package's variable tuples, already expanded.
	Vars *Tuples

	// Dependency lists. Requires are public dependencies,
	// RequiresPrivate link-private ones.
	Requires        []*Dependency
	RequiresPrivate []*Dependency
	Conflicts       []*Dependency
	Provides        []*Dependency

	// Flag fragment lists from the Cflags/Libs fields.
	CFlags        fragment.List
	CFlagsPrivate fragment.List
	Libs          fragment.List
	LibsPrivate   fragment.List

	// serial marks the flatten pass that last admitted this package;
	// hits counts how many dependency entries resolved to it.
	serial uint64
	hits   uint64
}

func newPackage(id string) *Package {
	return &Package{ID: id, Vars: NewTuples()}
}

// NewWorld creates a fresh world root: static, virtual, empty lists.
func NewWorld() *Package {
	p := newPackage(WorldID)
	p.RealName = worldRealName
	p.Flags = PackageStatic | PackageVirtual
	return p
}

// Hits returns how many dependency entries have resolved to this
// package so far. Flattening sorts by this, descending.
func (p *Package) Hits() uint64 { return p.hits }

// Free releases the package's dependency and fragment lists. After
// Free, entries previously owned by the package cannot leak back into a
// later resolution through a stale handle. Safe on an already-freed
// package; must be called exactly once per world root per resolution.
func (p *Package) Free() {
	p.Requires = nil
	p.RequiresPrivate = nil
	p.Conflicts = nil
	p.Provides = nil
	p.CFlags = nil
	p.CFlagsPrivate = nil
	p.Libs = nil
	p.LibsPrivate = nil
}

// Find resolves a package name to a concrete package: cache first, then
// a search-path scan for <name>.pc, preferring <name>-uninstalled.pc
// unless disabled. The world id is never discoverable. Provider search
// is the caller's concern (see VerifyDependency).
func (c *Client) Find(name string) (*Package, error) {
	if name == WorldID {
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
	}

	// An atom naming a .pc file directly bypasses the search path.
	if strings.HasSuffix(name, ".pc") {
		return c.load(name)
	}

	if pkg := c.cache.lookup(name); pkg != nil {
		c.trace("cache hit: %s", name)
		return pkg, nil
	}

	for _, dir := range c.dirs {
		if c.flags&ClientNoUninstalled == 0 {
			path := filepath.Join(dir, name+"-uninstalled.pc")
			if pkg, err := c.load(path); err == nil {
				return pkg, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				c.errorf("while loading %s: %v", path, err)
			}
		}

		path := filepath.Join(dir, name+".pc")
		if pkg, err := c.load(path); err == nil {
			return pkg, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			c.errorf("while loading %s: %v", path, err)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
}

func (c *Client) load(path string) (*Package, error) {
	pkg, err := c.loadFile(path)
	if err != nil {
		return nil, err
	}
	c.cache.add(pkg)
	c.trace("loaded %s from %s", pkg.ID, path)
	return pkg, nil
}

// VerifyDependency resolves dep to a concrete package and checks its
// version constraint. On success the entry's match is set, the
// package's hit counter is incremented, and the audit log records the
// query. An already-verified entry returns its match unchanged.
//
// When exact lookup misses and provider search is enabled, packages
// whose Provides list satisfies the constraint are considered.
func (c *Client) VerifyDependency(dep *Dependency) (*Package, error) {
	if dep.match != nil {
		return dep.match, nil
	}

	pkg, err := c.Find(dep.Package)
	if err != nil {
		if errors.Is(err, ErrPackageNotFound) && c.flags&ClientSkipProvides == 0 {
			if provider := c.scanProviders(dep); provider != nil {
				c.trace("%s provided by %s", dep.Package, provider.ID)
				dep.match = provider
				provider.hits++
				c.audit.record(dep.String(), "provided by "+provider.ID)
				return provider, nil
			}
		}
		c.errorf("package '%s', required by '%s', not found", dep.Package, dependencyOwner(dep))
		c.audit.record(dep.String(), "not found")
		return nil, err
	}

	if !vercmp.Satisfies(dep.Op, pkg.Version, dep.Version) {
		c.errorf("package '%s' version %s does not satisfy '%s'", pkg.ID, pkg.Version, dep)
		c.audit.record(dep.String(), "version mismatch "+pkg.Version)
		return nil, fmt.Errorf("%w: %s (have %s)", ErrVersionMismatch, dep, pkg.Version)
	}

	dep.match = pkg
	pkg.hits++
	c.audit.record(dep.String(), "match "+pkg.ID)
	return pkg, nil
}

func dependencyOwner(dep *Dependency) string {
	if dep.Parent == nil {
		return "command line"
	}
	if dep.Parent.Flags&PackageVirtual != 0 {
		return "command line"
	}
	return dep.Parent.ID
}

// scanProviders looks for a package whose Provides list satisfies dep.
// A provide with no version only satisfies unconstrained dependencies.
func (c *Client) scanProviders(dep *Dependency) *Package {
	pkgs, err := c.scanPath()
	if err != nil {
		return nil
	}

	for _, pkg := range pkgs {
		for _, prov := range pkg.Provides {
			if prov.Package != dep.Package {
				continue
			}
			if prov.Version == "" {
				if dep.Op == vercmp.OpAny {
					return pkg
				}
				continue
			}
			if vercmp.Satisfies(dep.Op, prov.Version, dep.Version) {
				return pkg
			}
		}
	}
	return nil
}

// checkConflicts verifies pkg's Conflicts entries against the packages
// already admitted to the client's cache during this resolution.
func (c *Client) checkConflicts(pkg *Package) error {
	for _, conflict := range pkg.Conflicts {
		other := c.cache.lookup(conflict.Package)
		if other == nil || other == pkg {
			continue
		}
		if vercmp.Satisfies(conflict.Op, other.Version, conflict.Version) {
			c.errorf("package '%s' conflicts with '%s' (have %s)", pkg.ID, conflict, other.Version)
			return fmt.Errorf("%w: %s conflicts with %s", ErrPackageConflict, pkg.ID, conflict)
		}
	}
	return nil
}
