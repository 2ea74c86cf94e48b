package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/annacrombie/pkgconf/pkg/personality"
)

func writePC(t *testing.T, dir, name, version string, extra ...string) {
	t.Helper()
	lines := []string{
		"Name: " + name,
		"Description: test package " + name,
		"Version: " + version,
	}
	lines = append(lines, extra...)
	path := filepath.Join(dir, name+".pc")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

// execute runs the root command with args against a fixture directory,
// returning stdout, stderr and the command error.
func execute(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(personality.EnvLibdir, dir)
	t.Setenv(personality.EnvPath, "")
	t.Setenv(personality.EnvSysrootDir, "")
	t.Setenv(personality.EnvLogFile, "")

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	var out, errb bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errb)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errb.String(), err
}

func TestModversion(t *testing.T) {
	dir := t.TempDir()
	writePC(t, dir, "foo", "1.2.3")

	out, _, err := execute(t, dir, "--modversion", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "1.2.3\n" {
		t.Errorf("modversion = %q, want %q", out, "1.2.3\n")
	}
}

func TestCflagsAndLibs(t *testing.T) {
	dir := t.TempDir()
	writePC(t, dir, "foo", "1.0",
		"Cflags: -I/opt/include/foo -DFOO",
		"Libs: -L/opt/lib -lfoo",
	)

	out, _, err := execute(t, dir, "--cflags", "--libs", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "-I/opt/include/foo -DFOO -L/opt/lib -lfoo\n"
	if out != want {
		t.Errorf("flags = %q, want %q", out, want)
	}
}

func TestCflagsSubsets(t *testing.T) {
	dir := t.TempDir()
	writePC(t, dir, "foo", "1.0", "Cflags: -I/opt/include -DFOO -pthread")

	out, _, err := execute(t, dir, "--cflags-only-I", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "-I/opt/include\n" {
		t.Errorf("cflags-only-I = %q", out)
	}

	out, _, err = execute(t, dir, "--cflags-only-other", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "-DFOO -pthread\n" {
		t.Errorf("cflags-only-other = %q", out)
	}
}

func TestLibsSubsets(t *testing.T) {
	dir := t.TempDir()
	writePC(t, dir, "foo", "1.0", "Libs: -L/opt/lib -lfoo -Wl,--as-needed")

	out, _, err := execute(t, dir, "--libs-only-l", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "-lfoo\n" {
		t.Errorf("libs-only-l = %q", out)
	}

	out, _, err = execute(t, dir, "--libs-only-L", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "-L/opt/lib\n" {
		t.Errorf("libs-only-L = %q", out)
	}

	out, _, err = execute(t, dir, "--libs-only-other", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "-Wl,--as-needed\n" {
		t.Errorf("libs-only-other = %q", out)
	}
}

func TestSystemIncludeElision(t *testing.T) {
	dir := t.TempDir()
	writePC(t, dir, "foo", "1.0", "Cflags: -I/usr/include")
	t.Setenv("PKG_CONFIG_ALLOW_SYSTEM_CFLAGS", "")

	out, _, err := execute(t, dir, "--cflags", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("system include not elided: %q", out)
	}

	t.Setenv("PKG_CONFIG_ALLOW_SYSTEM_CFLAGS", "1")
	out, _, err = execute(t, dir, "--cflags", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "-I/usr/include\n" {
		t.Errorf("allow-system-cflags ignored: %q", out)
	}
}

func TestStaticFollowsPrivateLibs(t *testing.T) {
	dir := t.TempDir()
	writePC(t, dir, "foo", "1.0",
		"Libs: -lfoo",
		"Libs.private: -lm",
	)

	out, _, err := execute(t, dir, "--libs", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "-lfoo\n" {
		t.Errorf("dynamic libs = %q", out)
	}

	out, _, err = execute(t, dir, "--libs", "--static", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "-lfoo -lm\n" {
		t.Errorf("static libs = %q", out)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	writePC(t, dir, "foo", "1.0")

	if _, _, err := execute(t, dir, "--exists", "foo"); err != nil {
		t.Errorf("exists failed for present package: %v", err)
	}
	if _, _, err := execute(t, dir, "--exists", "missing"); !errors.Is(err, ErrFailure) {
		t.Errorf("exists for missing package: err = %v, want ErrFailure", err)
	}
}

func TestVersionCheckFlags(t *testing.T) {
	dir := t.TempDir()
	writePC(t, dir, "foo", "1.5")

	if _, _, err := execute(t, dir, "--atleast-version", "1.0", "foo"); err != nil {
		t.Errorf("atleast-version 1.0: %v", err)
	}
	if _, _, err := execute(t, dir, "--atleast-version", "2.0", "foo"); !errors.Is(err, ErrFailure) {
		t.Errorf("atleast-version 2.0: err = %v, want ErrFailure", err)
	}
	if _, _, err := execute(t, dir, "--exact-version", "1.5", "foo"); err != nil {
		t.Errorf("exact-version 1.5: %v", err)
	}
	if _, _, err := execute(t, dir, "--max-version", "1.0", "foo"); !errors.Is(err, ErrFailure) {
		t.Errorf("max-version 1.0: err = %v, want ErrFailure", err)
	}
	if _, _, err := execute(t, dir, "--atleast-version", "1.0", "--max-version", "2.0", "foo"); !errors.Is(err, ErrFailure) {
		t.Errorf("combined version checks accepted, want ErrFailure")
	}
}

func TestVariableQueries(t *testing.T) {
	dir := t.TempDir()
	writePC(t, dir, "foo", "1.0",
		"prefix=/usr",
		"includedir=${prefix}/include",
	)

	out, _, err := execute(t, dir, "--variable", "includedir", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "/usr/include\n" {
		t.Errorf("variable = %q", out)
	}

	out, _, err = execute(t, dir, "--print-variables", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "prefix\n") || !strings.Contains(out, "includedir\n") {
		t.Errorf("print-variables = %q", out)
	}
}

func TestDefineVariableOverride(t *testing.T) {
	dir := t.TempDir()
	writePC(t, dir, "foo", "1.0",
		"prefix=/usr",
		"Cflags: -I${prefix}/include/foo",
	)

	out, _, err := execute(t, dir, "--define-variable", "prefix=/opt", "--cflags", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "-I/opt/include/foo\n" {
		t.Errorf("cflags = %q", out)
	}
}

func TestPrintRequires(t *testing.T) {
	dir := t.TempDir()
	writePC(t, dir, "bar", "2.0")
	writePC(t, dir, "foo", "1.0", "Requires: bar >= 1.0")

	out, _, err := execute(t, dir, "--print-requires", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "bar >= 1.0\n" {
		t.Errorf("print-requires = %q", out)
	}
}

func TestPrintProvides(t *testing.T) {
	dir := t.TempDir()
	writePC(t, dir, "foo", "1.0", "Provides: foo-compat = 0.9")

	out, _, err := execute(t, dir, "--print-provides", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "foo = 1.0\nfoo-compat = 0.9\n"
	if out != want {
		t.Errorf("print-provides = %q, want %q", out, want)
	}
}

func TestListAll(t *testing.T) {
	dir := t.TempDir()
	writePC(t, dir, "alpha", "1.0")
	writePC(t, dir, "beta", "2.0")

	out, _, err := execute(t, dir, "--list-all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("list-all printed %d lines: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "alpha") || !strings.HasPrefix(lines[1], "beta") {
		t.Errorf("list-all order = %q", out)
	}
}

func TestDigraph(t *testing.T) {
	dir := t.TempDir()
	writePC(t, dir, "bar", "2.0")
	writePC(t, dir, "foo", "1.0", "Requires: bar >= 1.0")

	out, _, err := execute(t, dir, "--digraph", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"digraph deps", `"virtual:world"`, `"foo"`, `"bar"`, "->", ">= 1.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("digraph output missing %q:\n%s", want, out)
		}
	}
}

func TestDigraphOutputFile(t *testing.T) {
	dir := t.TempDir()
	writePC(t, dir, "foo", "1.0")
	target := filepath.Join(dir, "deps.dot")

	_, _, err := execute(t, dir, "--digraph-output", target, "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "digraph deps") {
		t.Errorf("rendered file missing DOT header: %q", data)
	}
}

func TestSilenceErrors(t *testing.T) {
	dir := t.TempDir()

	_, stderr, err := execute(t, dir, "--silence-errors", "--cflags", "missing")
	if !errors.Is(err, ErrFailure) {
		t.Fatalf("err = %v, want ErrFailure", err)
	}
	if stderr != "" {
		t.Errorf("diagnostics not silenced: %q", stderr)
	}
}

func TestErrorsToStdout(t *testing.T) {
	dir := t.TempDir()

	out, stderr, err := execute(t, dir, "--errors-to-stdout", "--cflags", "missing")
	if !errors.Is(err, ErrFailure) {
		t.Fatalf("err = %v, want ErrFailure", err)
	}
	if !strings.Contains(out, "not found") {
		t.Errorf("stdout missing diagnostic: %q", out)
	}
	if strings.Contains(stderr, "not found") {
		t.Errorf("diagnostic leaked to stderr: %q", stderr)
	}
}

func TestMissingPackageDiagnostic(t *testing.T) {
	dir := t.TempDir()

	_, stderr, err := execute(t, dir, "--cflags", "missing")
	if !errors.Is(err, ErrFailure) {
		t.Fatalf("err = %v, want ErrFailure", err)
	}
	if !strings.Contains(stderr, "package 'missing'") {
		t.Errorf("stderr = %q, want not-found diagnostic", stderr)
	}
}

func TestNoPackageNames(t *testing.T) {
	dir := t.TempDir()

	_, stderr, err := execute(t, dir, "--cflags")
	if !errors.Is(err, ErrFailure) {
		t.Fatalf("err = %v, want ErrFailure", err)
	}
	if !strings.Contains(stderr, "no package names") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestUninstalledFlag(t *testing.T) {
	dir := t.TempDir()
	writePC(t, dir, "foo", "1.0")
	writePC(t, dir, "foo-uninstalled", "1.0")

	if _, _, err := execute(t, dir, "--uninstalled", "foo"); err != nil {
		t.Errorf("uninstalled preferred but reported installed: %v", err)
	}
	if _, _, err := execute(t, dir, "--no-uninstalled", "--uninstalled", "foo"); !errors.Is(err, ErrFailure) {
		t.Errorf("no-uninstalled: err = %v, want ErrFailure", err)
	}
}

func TestAtleastPkgconfigVersion(t *testing.T) {
	dir := t.TempDir()

	// Version is "dev" in tests, which counts as newest.
	if _, _, err := execute(t, dir, "--atleast-pkgconfig-version", "1.0.0"); err != nil {
		t.Errorf("self version check failed: %v", err)
	}
}

func TestWithPathFlag(t *testing.T) {
	base := t.TempDir()
	extra := t.TempDir()
	writePC(t, extra, "foo", "3.0")

	out, _, err := execute(t, base, "--with-path", extra, "--modversion", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "3.0\n" {
		t.Errorf("modversion = %q", out)
	}
}

func TestLogFileAudit(t *testing.T) {
	dir := t.TempDir()
	writePC(t, dir, "foo", "1.0")
	logPath := filepath.Join(dir, "audit.log")

	if _, _, err := execute(t, dir, "--log-file", logPath, "--exists", "foo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "foo") {
		t.Errorf("audit log missing query: %q", data)
	}
}
