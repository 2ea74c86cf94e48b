package resolver

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/annacrombie/pkgconf/pkg/fragment"
)

// loadFile parses one .pc file into a Package. The package id is the
// filename without its .pc extension and without the -uninstalled
// suffix; the latter sets PackageUninstalled instead.
//
// Lines are either "key: value" keywords or "var=value" tuples,
// distinguished by whichever of ':' and '=' appears first. Variable
// references are expanded as lines are read, with client-global
// overrides taking precedence, and pc_filedir predefined to the
// directory containing the file. Unknown keywords are ignored so newer
// metadata stays loadable. Malformed fragment lists are reported and
// the offending line skipped; a missing Name or Version fails the whole
// file.
func (c *Client) loadFile(path string) (*Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open package file: %w", err)
	}
	defer f.Close()

	base := filepath.Base(path)
	id := strings.TrimSuffix(base, ".pc")
	pkg := newPackage(strings.TrimSuffix(id, "-uninstalled"))
	if strings.HasSuffix(id, "-uninstalled") {
		pkg.Flags |= PackageUninstalled
	}

	absDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		absDir = filepath.Dir(path)
	}
	pkg.Vars.Set("pc_filedir", absDir)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := stripComment(scanner.Text())
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		sep := strings.IndexAny(line, ":=")
		if sep < 0 {
			continue
		}

		key := strings.TrimSpace(line[:sep])
		value := strings.TrimSpace(line[sep+1:])

		if line[sep] == '=' {
			pkg.Vars.Set(key, pkg.Vars.Expand(value, c.globals))
			continue
		}

		c.applyKeyword(pkg, key, pkg.Vars.Expand(value, c.globals))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read package file: %w", err)
	}

	if pkg.RealName == "" || pkg.Version == "" {
		return nil, fmt.Errorf("%w: %s: missing Name or Version", ErrInvalidPackage, path)
	}
	return pkg, nil
}

func (c *Client) applyKeyword(pkg *Package, key, value string) {
	switch key {
	case "Name":
		pkg.RealName = value
	case "Description":
		pkg.Description = value
	case "Version":
		pkg.Version = value
	case "URL":
		pkg.URL = value
	case "Requires":
		pkg.Requires = c.ParseDependencies(pkg, pkg.Requires, value, 0)
	case "Requires.private":
		pkg.RequiresPrivate = c.ParseDependencies(pkg, pkg.RequiresPrivate, value, 0)
	case "Conflicts":
		pkg.Conflicts = c.ParseDependencies(pkg, pkg.Conflicts, value, 0)
	case "Provides":
		pkg.Provides = c.ParseDependencies(pkg, pkg.Provides, value, 0)
	case "Cflags", "CFlags":
		pkg.CFlags = c.mergeFragments(pkg, pkg.CFlags, key, value)
	case "Cflags.private", "CFlags.private":
		pkg.CFlagsPrivate = c.mergeFragments(pkg, pkg.CFlagsPrivate, key, value)
	case "Libs":
		pkg.Libs = c.mergeFragments(pkg, pkg.Libs, key, value)
	case "Libs.private":
		pkg.LibsPrivate = c.mergeFragments(pkg, pkg.LibsPrivate, key, value)
	}
}

func (c *Client) mergeFragments(pkg *Package, list fragment.List, key, value string) fragment.List {
	parsed, err := fragment.Parse(value)
	if err != nil {
		c.errorf("package '%s': bad %s value: %v", pkg.ID, key, err)
		return list
	}
	return fragment.Merge(list, parsed)
}

// stripComment removes everything from the first '#' that is not inside
// quotes.
func stripComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		switch ch := line[i]; {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == '#':
			return line[:i]
		}
	}
	return line
}
