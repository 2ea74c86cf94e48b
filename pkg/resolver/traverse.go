package resolver

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// TraverseFlags alter a single traversal.
type TraverseFlags uint

const (
	// TraverseSearchPrivate follows Requires.private edges even when the
	// client is not in static mode.
	TraverseSearchPrivate TraverseFlags = 1 << iota
)

// VisitFunc is invoked once per package reached by Traverse.
type VisitFunc func(c *Client, pkg *Package)

// Traverse walks the dependency graph reachable from root, invoking
// visit once per package. maxDepth limits how many dependency edges may
// be descended from root; the root itself is always visited. A negative
// maxDepth means unlimited. Each dependency edge is verified as it is
// crossed, and any verification or conflict error aborts the walk and
// propagates unchanged.
//
// A per-walk visited set guards against cycles, so mutually dependent
// packages terminate.
func (c *Client) Traverse(root *Package, maxDepth int, flags TraverseFlags, visit VisitFunc) error {
	visited := mapset.NewThreadUnsafeSet[string]()
	return c.traverseStep(root, maxDepth, flags, visit, visited)
}

func (c *Client) traverseStep(pkg *Package, depth int, flags TraverseFlags, visit VisitFunc, visited mapset.Set[string]) error {
	if !visited.Add(pkg.ID) {
		return nil
	}

	c.trace("traverse: %s (depth budget %d)", pkg.ID, depth)
	visit(c, pkg)

	if c.flags&ClientSkipConflicts == 0 {
		if err := c.checkConflicts(pkg); err != nil {
			return err
		}
	}

	if depth == 0 {
		return nil
	}

	for _, dep := range pkg.Requires {
		match, err := c.VerifyDependency(dep)
		if err != nil {
			return err
		}
		if err := c.traverseStep(match, depth-1, flags, visit, visited); err != nil {
			return err
		}
	}

	if flags&TraverseSearchPrivate != 0 || c.flags&ClientStatic != 0 {
		for _, dep := range pkg.RequiresPrivate {
			match, err := c.VerifyDependency(dep)
			if err != nil {
				return err
			}
			if err := c.traverseStep(match, depth-1, flags, visit, visited); err != nil {
				return err
			}
		}
	}

	return nil
}
