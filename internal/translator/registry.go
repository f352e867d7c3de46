package translator

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	regMu sync.RWMutex
	reg   = map[string]Pass{}
)

// Register adds a pass to the default set (idempotent by name).
// Intended to be called from init() of pass files.
func Register(p Pass) {
	if p == nil {
		return
	}
	regMu.Lock()
	defer regMu.Unlock()
	if _, ok := reg[p.Name()]; !ok {
		reg[p.Name()] = p
	}
}

// registered returns the registered passes sorted by name.
func registered() []Pass {
	regMu.RLock()
	defer regMu.RUnlock()
	items := make([]Pass, 0, len(reg))
	for _, p := range reg {
		items = append(items, p)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name() < items[j].Name() })
	return items
}

// List returns all registered passes in execution order.
func List() ([]Pass, error) {
	return BuildPipeline(registered())
}

// Names returns the names of all registered passes in execution order.
func Names() []string {
	passes, err := List()
	if err != nil {
		return nil
	}
	names := make([]string, len(passes))
	for i, p := range passes {
		names[i] = p.Name()
	}
	return names
}

// lookup validates a set of pass names against the registry.
func lookup(names []string) error {
	regMu.RLock()
	defer regMu.RUnlock()
	var unknown []string
	for _, n := range names {
		if _, ok := reg[n]; !ok {
			unknown = append(unknown, n)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown pass name(s): %s", strings.Join(unknown, ", "))
	}
	return nil
}

// snapshotRegistry returns a shallow copy for test isolation.
func snapshotRegistry() map[string]Pass {
	regMu.RLock()
	defer regMu.RUnlock()
	cp := make(map[string]Pass, len(reg))
	for k, v := range reg {
		cp[k] = v
	}
	return cp
}

// restoreRegistry replaces the registry map (test only).
func restoreRegistry(cp map[string]Pass) {
	regMu.Lock()
	defer regMu.Unlock()
	reg = cp
}
