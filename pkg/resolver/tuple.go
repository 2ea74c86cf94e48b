package resolver

import "strings"

// Tuples is an insertion-ordered variable dictionary for one package.
// Order matters for --print-variables output, which mirrors the order
// variables appear in the .pc file.
type Tuples struct {
	order  []string
	values map[string]string
}

// NewTuples returns an empty dictionary.
func NewTuples() *Tuples {
	return &Tuples{values: make(map[string]string)}
}

// Set defines or redefines a variable. Redefinition keeps the original
// position in the order.
func (t *Tuples) Set(name, value string) {
	if _, ok := t.values[name]; !ok {
		t.order = append(t.order, name)
	}
	t.values[name] = value
}

// Get returns the variable's value and whether it is defined.
func (t *Tuples) Get(name string) (string, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Names returns the variable names in definition order.
func (t *Tuples) Names() []string {
	return append([]string(nil), t.order...)
}

// Len returns the number of defined variables.
func (t *Tuples) Len() int { return len(t.order) }

// Expand replaces every ${var} reference in value. Globals take
// precedence over the dictionary; undefined variables expand to the
// empty string. A variable that references itself, directly or through
// a chain, expands to the empty string at the point of recursion rather
// than looping.
func (t *Tuples) Expand(value string, globals map[string]string) string {
	return t.expand(value, globals, make(map[string]bool))
}

func (t *Tuples) expand(value string, globals map[string]string, busy map[string]bool) string {
	if !strings.Contains(value, "${") {
		return value
	}

	var b strings.Builder
	for i := 0; i < len(value); {
		start := strings.Index(value[i:], "${")
		if start < 0 {
			b.WriteString(value[i:])
			break
		}
		start += i
		end := strings.IndexByte(value[start:], '}')
		if end < 0 {
			b.WriteString(value[i:])
			break
		}
		end += start

		b.WriteString(value[i:start])
		name := value[start+2 : end]
		if !busy[name] {
			busy[name] = true
			if v, ok := globals[name]; ok {
				b.WriteString(v)
			} else if v, ok := t.values[name]; ok {
				b.WriteString(t.expand(v, globals, busy))
			}
			delete(busy, name)
		}
		i = end + 1
	}
	return b.String()
}
