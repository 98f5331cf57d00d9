package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/voxnote/logger"
)

// Factory builds a backend from validated config.
type Factory func(cfg Config, log *logger.Logger) (Storage, error)

var registry = struct {
	sync.RWMutex
	m map[string]Factory
}{m: map[string]Factory{}}

// RegisterFactory makes a backend available to New. Backend packages call
// it from init, so callers blank-import the ones they need:
//
//	import _ "github.com/kbukum/voxnote/storage/s3"
func RegisterFactory(provider string, f Factory) {
	registry.Lock()
	registry.m[provider] = f
	registry.Unlock()
}

// New validates cfg and builds the registered backend for cfg.Provider.
func New(cfg Config, log *logger.Logger) (Storage, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	registry.RLock()
	f, ok := registry.m[cfg.Provider]
	registry.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: provider %q is not registered (have %v)", cfg.Provider, providers())
	}

	log = log.WithComponent("storage")
	log.Debug("opening storage", logger.Fields(logger.FieldProvider, cfg.Provider))
	return f(cfg, log)
}

func providers() []string {
	registry.RLock()
	defer registry.RUnlock()
	names := make([]string, 0, len(registry.m))
	for n := range registry.m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
