package resolver

// packageCache is the client's in-memory id→package cache. It prevents
// re-parsing shared .pc files within a client lifetime and makes
// repeated resolutions cheap. It doubles as the resolved universe that
// Conflicts entries are checked against.
type packageCache struct {
	pkgs map[string]*Package
}

func newPackageCache() *packageCache {
	return &packageCache{pkgs: make(map[string]*Package)}
}

func (pc *packageCache) lookup(id string) *Package {
	return pc.pkgs[id]
}

func (pc *packageCache) add(pkg *Package) {
	pc.pkgs[pkg.ID] = pkg
}

func (pc *packageCache) reset() {
	pc.pkgs = make(map[string]*Package)
}
