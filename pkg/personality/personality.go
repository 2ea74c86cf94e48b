// Package personality describes the target environment a resolution runs
// against: where .pc files are searched, which include and library
// directories belong to the toolchain, and an optional sysroot every
// path-type flag is rewritten under.
//
// The default personality is assembled from the process environment
// (PKG_CONFIG_PATH and friends). Cross-compile personalities are loaded
// from "<triplet>.personality.toml" files found on a search path, so a
// single binary can serve several toolchains.
package personality

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultSearchPath is where .pc files live when the environment does
// not override the search path.
const DefaultSearchPath = "/usr/lib/pkgconfig:/usr/share/pkgconfig"

// Environment variables consulted by FromEnv.
const (
	EnvPath              = "PKG_CONFIG_PATH"
	EnvLibdir            = "PKG_CONFIG_LIBDIR"
	EnvSysrootDir        = "PKG_CONFIG_SYSROOT_DIR"
	EnvSystemIncludePath = "PKG_CONFIG_SYSTEM_INCLUDE_PATH"
	EnvSystemLibraryPath = "PKG_CONFIG_SYSTEM_LIBRARY_PATH"
	EnvLogFile           = "PKG_CONFIG_LOG_FILE"
)

// Personality is one target environment profile.
type Personality struct {
	// Triplet names the target (e.g. "x86_64-linux-gnu"); empty for the
	// default host personality.
	Triplet string `toml:"triplet"`

	// SearchPaths are the directories scanned for .pc files, in
	// priority order.
	SearchPaths []string `toml:"default_search_paths"`

	// SystemIncludePaths are include directories the compiler already
	// knows about; -I flags pointing at them are elided from output.
	SystemIncludePaths []string `toml:"system_include_paths"`

	// SystemLibraryPaths are the linker's built-in directories; -L
	// flags pointing at them are elided from output.
	SystemLibraryPaths []string `toml:"system_library_paths"`

	// SysrootDir, when set, is prefixed onto every path-type fragment.
	SysrootDir string `toml:"sysroot_dir"`
}

// Default returns the host personality with compiled-in search paths
// and no environment influence.
func Default() *Personality {
	return &Personality{
		SearchPaths:        SplitPath(DefaultSearchPath),
		SystemIncludePaths: []string{"/usr/include"},
		SystemLibraryPaths: []string{"/usr/lib", "/lib"},
	}
}

// FromEnv builds the effective host personality from the process
// environment. PKG_CONFIG_LIBDIR replaces the compiled-in search path;
// PKG_CONFIG_PATH is prepended to it. When envOnly is true the
// compiled-in paths are dropped entirely and only PKG_CONFIG_PATH is
// searched.
func FromEnv(envOnly bool) *Personality {
	p := Default()

	if libdir, ok := os.LookupEnv(EnvLibdir); ok {
		p.SearchPaths = SplitPath(libdir)
	}
	if envOnly {
		p.SearchPaths = nil
	}
	if path := os.Getenv(EnvPath); path != "" {
		p.SearchPaths = append(SplitPath(path), p.SearchPaths...)
	}

	p.SysrootDir = os.Getenv(EnvSysrootDir)
	if v := os.Getenv(EnvSystemIncludePath); v != "" {
		p.SystemIncludePaths = SplitPath(v)
	}
	if v := os.Getenv(EnvSystemLibraryPath); v != "" {
		p.SystemLibraryPaths = SplitPath(v)
	}

	return p
}

// Load reads the named personality. A name containing a path separator
// or ending in ".toml" is treated as a file path; otherwise
// "<name>.personality.toml" is searched for in dirs, first match wins.
func Load(name string, dirs []string) (*Personality, error) {
	path, err := locate(name, dirs)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read personality: %w", err)
	}

	p := Default()
	p.Triplet = name
	if err := toml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse personality %s: %w", path, err)
	}
	return p, nil
}

func locate(name string, dirs []string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) || strings.HasSuffix(name, ".toml") {
		return name, nil
	}

	filename := name + ".personality.toml"
	for _, dir := range dirs {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("personality %q not found in %v", name, dirs)
}

// SplitPath splits a colon-separated path list, dropping empty
// elements.
func SplitPath(s string) []string {
	var out []string
	for _, el := range strings.Split(s, string(os.PathListSeparator)) {
		if el != "" {
			out = append(out, el)
		}
	}
	return out
}
