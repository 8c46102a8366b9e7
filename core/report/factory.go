package report

import "github.com/kilianp07/pvsim/core/factory"

var storeRegistry = factory.NewRegistry[Store]()

func init() {
	_ = storeRegistry.Register("memory", func(map[string]any) (Store, error) { return NewMemoryStore(), nil })
	_ = storeRegistry.Register("nop", func(map[string]any) (Store, error) { return NopStore{}, nil })
}

// RegisterStore adds a store factory identified by name.
func RegisterStore(name string, f factory.Factory[Store]) error {
	return storeRegistry.Register(name, f)
}

// StoreTypes lists the registered store types.
func StoreTypes() []string { return storeRegistry.Types() }

// NewStore creates a Store from configuration. An empty type yields a
// MemoryStore.
func NewStore(cfg factory.ModuleConfig) (Store, error) {
	if cfg.Type == "" {
		return NewMemoryStore(), nil
	}
	return storeRegistry.Create(cfg)
}
