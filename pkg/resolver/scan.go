package resolver

import (
	"context"
	"os"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"
)

// Scan enumerates every package visible on the client's search path,
// loading each through the package cache. Directories are listed in
// parallel; when the same package id appears in more than one
// directory, the earlier directory wins, matching lookup priority.
// Missing or unreadable directories are skipped. The result is sorted
// by package id.
//
// Scan backs --list-all and the provider search used for virtual
// packages.
func (c *Client) Scan(ctx context.Context) ([]*Package, error) {
	listings := make([][]string, len(c.dirs))

	g, ctx := errgroup.WithContext(ctx)
	for i, dir := range c.dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entries, err := os.ReadDir(dir)
			if err != nil {
				return nil
			}
			for _, e := range entries {
				if e.IsDir() || !strings.HasSuffix(e.Name(), ".pc") {
					continue
				}
				listings[i] = append(listings[i], e.Name())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	var pkgs []*Package
	for _, files := range listings {
		sort.Strings(files)
		for _, name := range files {
			id := strings.TrimSuffix(name, ".pc")
			// Uninstalled variants surface through lookup preference,
			// not as separate index entries.
			if strings.HasSuffix(id, "-uninstalled") {
				continue
			}
			if !seen.Add(id) {
				continue
			}
			pkg, err := c.Find(id)
			if err != nil {
				continue
			}
			pkgs = append(pkgs, pkg)
		}
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].ID < pkgs[j].ID })
	return pkgs, nil
}

func (c *Client) scanPath() ([]*Package, error) {
	return c.Scan(context.Background())
}
