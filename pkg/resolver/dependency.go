package resolver

import (
	"fmt"

	"github.com/annacrombie/pkgconf/pkg/vercmp"
)

// DependencyFlags mark properties of a dependency edge.
type DependencyFlags uint

const (
	// DependencyInternal marks an edge synthesized by the resolver
	// rather than parsed from a .pc file.
	DependencyInternal DependencyFlags = 1 << iota
)

// Dependency is one edge in a dependency list: a package name, an
// optional version constraint, and, once resolved, a match reference
// to the concrete package. The match and its hit counter are shared
// between an entry and its copies; the entries themselves are owned by
// exactly one list each.
type Dependency struct {
	// Package is the depended-on package name as written in the atom.
	Package string
	// Op and Version form the constraint; Op is vercmp.OpAny when the
	// atom carried no version.
	Op      vercmp.Op
	Version string
	// Parent is the package whose list declares this edge.
	Parent *Package
	// Flags mark edge properties.
	Flags DependencyFlags

	match *Package
}

// Match returns the concrete package this entry resolved to, or nil if
// the entry has not been verified yet.
func (d *Dependency) Match() *Package { return d.match }

// String renders the dependency as an atom, e.g. "zlib >= 1.2.11".
func (d *Dependency) String() string {
	if d.Op == vercmp.OpAny {
		return d.Package
	}
	return fmt.Sprintf("%s %s %s", d.Package, d.Op, d.Version)
}

// copy returns an independently owned entry with the same content. The
// match pointer is shared, so the hit counter is genuinely common to
// the original and the copy.
func (d *Dependency) copy() *Dependency {
	dup := *d
	return &dup
}

// sameAtom reports whether two entries spell the same constraint.
func (d *Dependency) sameAtom(other *Dependency) bool {
	return d.Package == other.Package && d.Op == other.Op && d.Version == other.Version
}

// ParseDependencies parses a dependency-list expression (the grammar
// of .pc Requires lines and of command-line atoms), appending the
// resulting entries to target and returning the extended list.
//
// Names are separated by commas and/or whitespace; a name may be
// followed by a comparison operator and a version, with or without
// surrounding spaces ("foo >= 1.2", "foo>=1.2", "foo, bar = 2.0").
// Malformed pieces (a dangling operator, an operator with no version)
// are reported through the client's diagnostic writer and skipped; the
// rest of the expression still parses. An entry textually identical to
// one already in target is not appended again.
func (c *Client) ParseDependencies(parent *Package, target []*Dependency, text string, flags DependencyFlags) []*Dependency {
	toks := tokenizeAtoms(text)

	for i := 0; i < len(toks); i++ {
		switch toks[i].kind {
		case tokComma:
			continue
		case tokOp:
			c.errorf("dependency parse: unexpected operator %q in %q", toks[i].text, text)
			continue
		}

		dep := &Dependency{Package: toks[i].text, Parent: parent, Flags: flags}

		if i+1 < len(toks) && toks[i+1].kind == tokOp {
			op, ok := vercmp.ParseOp(toks[i+1].text)
			if !ok {
				c.errorf("dependency parse: unknown operator %q in %q", toks[i+1].text, text)
				i++
				continue
			}
			if i+2 >= len(toks) || toks[i+2].kind != tokWord {
				c.errorf("dependency parse: missing version after %q in %q", toks[i+1].text, text)
				i++
				continue
			}
			dep.Op = op
			dep.Version = toks[i+2].text
			i += 2
		}

		if dependencyPresent(target, dep) {
			continue
		}
		target = append(target, dep)
	}
	return target
}

func dependencyPresent(list []*Dependency, dep *Dependency) bool {
	for _, other := range list {
		if other.sameAtom(dep) {
			return true
		}
	}
	return false
}

type tokKind int

const (
	tokWord tokKind = iota
	tokOp
	tokComma
)

type atomToken struct {
	kind tokKind
	text string
}

func isOpChar(ch byte) bool {
	return ch == '<' || ch == '>' || ch == '=' || ch == '!'
}

func isAtomSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n'
}

// tokenizeAtoms splits a dependency expression into word, operator and
// comma tokens. Operator characters bind together ("<=") and terminate
// a word even without whitespace, so "foo>=1.2" yields three tokens.
// Commas are kept as tokens because they end a constraint: in
// "foo >=, bar" the operator has no version.
func tokenizeAtoms(text string) []atomToken {
	var toks []atomToken
	for i := 0; i < len(text); {
		switch {
		case isAtomSpace(text[i]):
			i++
		case text[i] == ',':
			toks = append(toks, atomToken{kind: tokComma})
			i++
		case isOpChar(text[i]):
			j := i
			for j < len(text) && isOpChar(text[j]) {
				j++
			}
			toks = append(toks, atomToken{kind: tokOp, text: text[i:j]})
			i = j
		default:
			j := i
			for j < len(text) && !isAtomSpace(text[j]) && text[j] != ',' && !isOpChar(text[j]) {
				j++
			}
			toks = append(toks, atomToken{text: text[i:j]})
			i = j
		}
	}
	return toks
}
