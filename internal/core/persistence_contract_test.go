package core

import (
	"go/types"
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestPersistentStoreImplementations pins the packages allowed to provide
// domain.PersistentStore backends. Adding a backend means updating this list.
func TestPersistentStoreImplementations(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedTypes}
	pkgs, err := packages.Load(cfg, "immunizetrack/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	var iface *types.Interface
	for _, p := range pkgs {
		if p.PkgPath != "immunizetrack/pkg/domain" {
			continue
		}
		obj := p.Types.Scope().Lookup("PersistentStore")
		if obj == nil {
			t.Fatalf("domain.PersistentStore not found")
		}
		var ok bool
		if iface, ok = obj.Type().Underlying().(*types.Interface); !ok {
			t.Fatalf("domain.PersistentStore is not an interface")
		}
	}
	if iface == nil {
		t.Fatalf("failed to resolve PersistentStore interface")
	}
	allowed := map[string]struct{}{
		"immunizetrack/internal/infra/persistence/memory":   {},
		"immunizetrack/internal/infra/persistence/sqlite":   {},
		"immunizetrack/internal/infra/persistence/postgres": {},
		"immunizetrack/internal/infra/persistence/leveldb":  {},
	}
	var unexpected []string
	for _, p := range pkgs {
		if p.Types == nil {
			continue
		}
		scope := p.Types.Scope()
		for _, name := range scope.Names() {
			named, ok := scope.Lookup(name).Type().(*types.Named)
			if !ok {
				continue
			}
			if _, ok := named.Underlying().(*types.Struct); !ok {
				continue
			}
			if types.Implements(types.NewPointer(named), iface) {
				if _, ok := allowed[p.PkgPath]; !ok {
					unexpected = append(unexpected, p.PkgPath+"."+name)
				}
			}
		}
	}
	sort.Strings(unexpected)
	if len(unexpected) > 0 {
		t.Fatalf("unexpected PersistentStore implementations:\n%s", strings.Join(unexpected, "\n"))
	}
}
