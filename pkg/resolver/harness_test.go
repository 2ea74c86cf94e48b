package resolver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writePC writes dir/<name>.pc with a minimal valid header followed by
// any extra lines, so fixtures read like terse package specs:
//
//	writePC(t, dir, "a", "1.0", "Requires: b")
func writePC(t *testing.T, dir, name, version string, extra ...string) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", name)
	fmt.Fprintf(&b, "Description: %s test package\n", name)
	fmt.Fprintf(&b, "Version: %s\n", version)
	for _, line := range extra {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	path := filepath.Join(dir, name+".pc")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

// writeFile writes an arbitrary file under dir.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestClient(dirs []string, flags ClientFlags) *Client {
	return New(Options{SearchPaths: dirs, Flags: flags, ErrorWriter: io.Discard})
}

// queueOf builds a queue from atoms in order.
func queueOf(atoms ...string) *Queue {
	q := NewQueue()
	for _, a := range atoms {
		q.Push(a)
	}
	return q
}

// resolveNames runs Apply and returns the flattened Requires and
// RequiresPrivate package names in order.
func resolveNames(t *testing.T, c *Client, q *Queue, maxDepth int) (required, private []string) {
	t.Helper()
	err := q.Apply(c, maxDepth, func(_ *Client, world *Package, _ int) error {
		required = depNames(world.Requires)
		private = depNames(world.RequiresPrivate)
		return nil
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return required, private
}

func depNames(deps []*Dependency) []string {
	var names []string
	for _, dep := range deps {
		names = append(names, dep.Package)
	}
	return names
}

func index(names []string, want string) int {
	for i, n := range names {
		if n == want {
			return i
		}
	}
	return -1
}
