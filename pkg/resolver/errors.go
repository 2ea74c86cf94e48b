package resolver

import "errors"

// Sentinel errors for dependency resolution.
var (
	// ErrGraphBroken is returned when compiling a request queue produced
	// no dependencies at all, i.e. nothing in the queue was a parseable
	// dependency atom.
	ErrGraphBroken = errors.New("dependency graph broken")

	// ErrPackageNotFound is returned when a dependency cannot be resolved
	// to any package on the search path, including via providers.
	ErrPackageNotFound = errors.New("package not found")

	// ErrVersionMismatch is returned when a dependency resolves to a
	// package whose version does not satisfy the constraint.
	ErrVersionMismatch = errors.New("dependency version mismatch")

	// ErrPackageConflict is returned during traversal when a package's
	// Conflicts entry matches a package already admitted to the graph.
	ErrPackageConflict = errors.New("package conflict")

	// ErrInvalidPackage is returned when a .pc file cannot be parsed or
	// is missing required fields.
	ErrInvalidPackage = errors.New("invalid package file")
)
