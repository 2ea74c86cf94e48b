// Package fragment models compiler and linker flag fragments parsed from
// .pc Cflags and Libs fields.
//
// A fragment is a single command-line argument classified by its type
// letter: "-I/usr/include" has type 'I' and data "/usr/include", while a
// bare word such as "/path/to/lib.a" has type 0. Lists of fragments can
// be merged with duplicate collapsing for the path-like types, rewritten
// against a sysroot, filtered by type, and rendered back to a
// shell-quoted string.
package fragment

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnterminatedQuote is returned by Parse when a quoted section is not
// closed before the end of the input.
var ErrUnterminatedQuote = errors.New("unterminated quote in fragment list")

// Fragment is one parsed command-line argument.
type Fragment struct {
	// Type is the option letter ('I' for -I, 'L' for -L, 'l' for -l, ...)
	// or 0 for a bare word that does not start with a dash.
	Type byte
	// Data is the argument text without the dash and type letter.
	Data string
}

// String returns the fragment in its unquoted command-line form.
func (f Fragment) String() string {
	if f.Type == 0 {
		return f.Data
	}
	return "-" + string(f.Type) + f.Data
}

// IsPath reports whether the fragment's data names a filesystem path
// that should be rewritten when a sysroot is in effect.
func (f Fragment) IsPath() bool {
	switch f.Type {
	case 'I', 'L':
		return true
	case 0:
		return filepath.IsAbs(f.Data)
	}
	return false
}

// mergeable types collapse exact duplicates during Add; everything else
// (notably -l) is order-sensitive and kept verbatim.
func (f Fragment) mergeable() bool {
	switch f.Type {
	case 'I', 'L', 'D':
		return true
	}
	return false
}

// List is an ordered sequence of fragments.
type List []Fragment

// Parse splits a Cflags/Libs value into fragments. Splitting is
// argv-style: whitespace separates arguments except inside single or
// double quotes, and a backslash escapes the next character. A type
// letter argument with no attached data ("-I /usr/include") absorbs the
// following argument as its data, matching how .pc files in the wild
// space their include flags.
func Parse(s string) (List, error) {
	args, err := split(s)
	if err != nil {
		return nil, err
	}

	var list List
	for i := 0; i < len(args); i++ {
		f := classify(args[i])
		if f.Type != 0 && f.Data == "" && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			f.Data = args[i]
		}
		list = append(list, f)
	}
	return list, nil
}

func classify(arg string) Fragment {
	if len(arg) > 1 && arg[0] == '-' {
		return Fragment{Type: arg[1], Data: arg[2:]}
	}
	return Fragment{Data: arg}
}

func split(s string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quote   byte
		escaped bool
		started bool
	)

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			cur.WriteByte(ch)
			escaped = false
		case ch == '\\':
			escaped = true
			started = true
		case quote != 0:
			if ch == quote {
				quote = 0
			} else {
				cur.WriteByte(ch)
			}
		case ch == '\'' || ch == '"':
			quote = ch
			started = true
		case ch == ' ' || ch == '\t' || ch == '\n':
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteByte(ch)
			started = true
		}
	}
	if quote != 0 {
		return nil, ErrUnterminatedQuote
	}
	if started {
		args = append(args, cur.String())
	}
	return args, nil
}

// Add appends f to the list, collapsing the duplicate when an identical
// path-like fragment (-I, -L, -D) is already present. Order-sensitive
// fragments such as -l are always appended.
func Add(list List, f Fragment) List {
	if f.mergeable() {
		for _, other := range list {
			if other == f {
				return list
			}
		}
	}
	return append(list, f)
}

// Merge appends every fragment of src to dst via Add and returns the
// result.
func Merge(dst, src List) List {
	for _, f := range src {
		dst = Add(dst, f)
	}
	return dst
}

// Filter returns the fragments for which keep returns true, preserving
// order.
func Filter(list List, keep func(Fragment) bool) List {
	var out List
	for _, f := range list {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// OfType returns the fragments whose type letter is in types. A zero
// byte in types selects bare words.
func OfType(list List, types ...byte) List {
	return Filter(list, func(f Fragment) bool {
		for _, t := range types {
			if f.Type == t {
				return true
			}
		}
		return false
	})
}

// ExceptType returns the fragments whose type letter is not in types.
func ExceptType(list List, types ...byte) List {
	return Filter(list, func(f Fragment) bool {
		for _, t := range types {
			if f.Type == t {
				return false
			}
		}
		return true
	})
}

// SysrootPrefix rewrites path-type fragments so their data is rooted
// under sysroot. Fragments already under the sysroot and non-path
// fragments pass through untouched. An empty sysroot is a no-op.
func SysrootPrefix(list List, sysroot string) List {
	if sysroot == "" || sysroot == "/" {
		return list
	}

	out := make(List, 0, len(list))
	for _, f := range list {
		if f.IsPath() && filepath.IsAbs(f.Data) && !strings.HasPrefix(f.Data, sysroot) {
			f.Data = filepath.Join(sysroot, f.Data)
		}
		out = append(out, f)
	}
	return out
}

// Render joins the list into a single shell-quoted string suitable for
// eval by POSIX shells. Characters significant to the shell are escaped
// with backslashes.
func (l List) Render() string {
	var b strings.Builder
	for i, f := range l {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(quote(f.String()))
	}
	return b.String()
}

const shellSpecial = " \t\n'\"\\$`()<>;|&#*?[]"

func quote(s string) string {
	if !strings.ContainsAny(s, shellSpecial) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(shellSpecial, s[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
