// Package pkg provides the core libraries for pkgconf dependency
// resolution.
//
// # Overview
//
// pkgconf compiles dependency atoms ("zlib >= 1.2") into a flattened,
// deduplicated, priority-ordered dependency set backed by .pc metadata
// files, and derives compiler and linker flags from the solved set. The
// pkg directory is organized into four areas:
//
//  1. [resolver] - Domain logic (queue compilation, traversal, flattening)
//  2. [fragment] - Compiler/linker flag fragments (parse, merge, render)
//  3. [vercmp] - RPM-style version comparison and constraint operators
//  4. [personality] - Search paths and cross-compile environments
//
// # Architecture
//
// The typical data flow through pkgconf:
//
//	dependency atoms (command line)
//	         ↓
//	    [resolver] Queue (compile into a virtual world root)
//	         ↓
//	    [resolver] Traverse + flatten (solve the dependency set)
//	         ↓
//	    [fragment] merge + sysroot rewrite
//	         ↓
//	    -I/-L/-l flag output
//
// # Quick Start
//
// Solve a dependency set and print the packages in priority order:
//
//	import (
//	    "fmt"
//	    "github.com/annacrombie/pkgconf/pkg/resolver"
//	)
//
//	client := resolver.New(resolver.Options{
//	    SearchPaths: []string{"/usr/lib/pkgconfig"},
//	})
//	queue := resolver.NewQueue()
//	queue.Push("zlib >= 1.2")
//
//	err := queue.Apply(client, 0, func(c *resolver.Client, world *resolver.Package, maxDepth int) error {
//	    for _, dep := range world.Requires {
//	        fmt.Println(dep.Match().ID, dep.Match().Version)
//	    }
//	    return nil
//	})
//
// Supporting packages: [buildinfo] carries build-time version metadata
// for the CLI.
package pkg
