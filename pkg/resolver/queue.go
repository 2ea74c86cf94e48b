package resolver

import (
	"fmt"
	"sort"
)

// Queue is an ordered list of raw dependency requests, usually taken
// straight from command-line arguments. Insertion order is preserved
// through compilation and is the only order-sensitive input to a
// resolution. A Queue may be reused across resolutions.
type Queue struct {
	requests []string
}

// NewQueue returns an empty request queue.
func NewQueue() *Queue { return &Queue{} }

// Push appends a dependency request to the end of the queue. The text
// is not validated here; bad syntax surfaces during compilation.
func (q *Queue) Push(text string) {
	q.requests = append(q.requests, text)
}

// Len returns the number of queued requests.
func (q *Queue) Len() int { return len(q.requests) }

// Free empties the queue. Safe on an empty queue.
func (q *Queue) Free() { q.requests = nil }

// Compile parses every queued request in order into world's Requires
// list. It reports false when the whole queue produced no dependencies
// at all; individual malformed atoms are the parser's concern and do
// not fail compilation on their own.
func (q *Queue) Compile(c *Client, world *Package) bool {
	for _, req := range q.requests {
		world.Requires = c.ParseDependencies(world, world.Requires, req, 0)
	}
	return len(world.Requires) > 0
}

// collectDependents returns the traversal visitor that folds every
// visited package's dependency lists into the world root. The root
// itself is skipped: folding its own lists into itself would duplicate
// them. Entries are copied, not shared, so each list exclusively owns
// its entries while copies still share the resolved match and its hit
// counter.
func collectDependents(world *Package) VisitFunc {
	return func(c *Client, pkg *Package) {
		if pkg == world {
			return
		}
		for _, dep := range pkg.Requires {
			world.Requires = append(world.Requires, dep.copy())
		}
		for _, dep := range pkg.RequiresPrivate {
			world.RequiresPrivate = append(world.RequiresPrivate, dep.copy())
		}
	}
}

// flattenDependencySet deduplicates and reorders one accumulated
// dependency list in place.
//
// Entries resolve in list order; unresolvable ones are dropped. A
// package whose serial already equals the client's current serial was
// admitted by an earlier entry in this pass and is skipped. Virtual
// packages can be reached under more than one name yet resolve to the
// same target, so survivors are also compared by name against the
// working set. Survivors are then stably sorted by descending hit count
// of their match: a package referenced by more graph edges sorts
// earlier, approximating link order.
func flattenDependencySet(c *Client, list *[]*Dependency) {
	var deps []*Dependency

scan:
	for _, dep := range *list {
		pkg, err := c.VerifyDependency(dep)
		if err != nil || pkg == nil {
			continue
		}

		if pkg.serial == c.serial {
			continue
		}

		if dep.match == nil {
			// A verified entry always carries a match; anything else
			// means the graph state is corrupt and continuing would
			// produce a silently wrong dependency set.
			panic(fmt.Sprintf("resolver: unmatched dependency %q after verification", dep.Package))
		}

		for _, other := range deps {
			c.trace("dedup %s = %s?", dep.Package, other.Package)
			if dep.Package == other.Package {
				c.trace("skipping, %d deps", len(deps))
				continue scan
			}
		}

		pkg.serial = c.serial
		deps = append(deps, dep)
		c.trace("added %s to dep table", dep.Package)
	}

	sort.SliceStable(deps, func(i, j int) bool {
		return deps[i].match.hits > deps[j].match.hits
	})

	for i, dep := range deps {
		c.trace("slot %d: dep %s matched to %s hits %d", i, dep.Package, dep.match.ID, dep.match.hits)
	}

	*list = deps
}

// Verify runs one full resolution into world: compile the queue,
// traverse the graph collecting every transitive dependency into the
// root, then flatten both accumulated lists. Each list is flattened
// under a fresh serial: a package admitted to Requires must still be
// admissible to RequiresPrivate.
//
// Compilation failure returns ErrGraphBroken; traversal errors
// propagate unchanged.
func (q *Queue) Verify(c *Client, world *Package, maxDepth int) error {
	if !q.Compile(c, world) {
		return ErrGraphBroken
	}

	if err := c.Traverse(world, maxDepth, 0, collectDependents(world)); err != nil {
		return err
	}

	c.serial++
	c.trace("flattening requires deps")
	flattenDependencySet(c, &world.Requires)

	c.serial++
	c.trace("flattening requires.private deps")
	flattenDependencySet(c, &world.RequiresPrivate)

	return nil
}

// ApplyFunc receives the solved, flattened world root.
type ApplyFunc func(c *Client, world *Package, maxDepth int) error

// Apply builds a fresh world root, verifies the queue into it, and on
// success hands the flattened world to fn. A maxDepth of 0 means
// unlimited. The world is released on every exit path, including
// callback failure, so entries cannot outlive the resolution through a
// stale handle.
func (q *Queue) Apply(c *Client, maxDepth int, fn ApplyFunc) error {
	world := NewWorld()
	defer world.Free()

	if maxDepth == 0 {
		maxDepth = -1
	}

	if err := q.Verify(c, world, maxDepth); err != nil {
		return err
	}
	return fn(c, world, maxDepth)
}

// Validate is Apply without a callback: it reports whether the queue
// resolves to a consistent dependency graph.
func (q *Queue) Validate(c *Client, maxDepth int) error {
	return q.Apply(c, maxDepth, func(*Client, *Package, int) error { return nil })
}
