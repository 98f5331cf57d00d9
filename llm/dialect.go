package llm

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Dialect translates a CompletionRequest into one provider's wire format and
// reads the reply back.
//
// ParseResponse only sees non-empty 2xx bodies. It reports a body that is not
// the expected JSON shape with errors.InvalidResponse, and a reply without
// generated text with errors.ParsingFailed.
type Dialect interface {
	Name() string
	// ChatPath is joined onto the adapter base URL, e.g. "/chat/completions".
	ChatPath() string
	BuildRequest(req CompletionRequest) (any, error)
	ParseResponse(body []byte) (*CompletionResponse, error)
}

var dialects = struct {
	sync.RWMutex
	byName map[string]Dialect
}{byName: map[string]Dialect{}}

// RegisterDialect makes d available to Config.Dialect under name. Dialect
// packages call it from init; a later registration replaces an earlier one.
func RegisterDialect(name string, d Dialect) {
	dialects.Lock()
	defer dialects.Unlock()
	dialects.byName[name] = d
}

// GetDialect looks name up in the registry.
func GetDialect(name string) (Dialect, error) {
	dialects.RLock()
	d := dialects.byName[name]
	dialects.RUnlock()
	if d == nil {
		return nil, fmt.Errorf("llm: unknown dialect %q (registered: %v)", name, Dialects())
	}
	return d, nil
}

// Dialects lists the registered names, sorted.
func Dialects() []string {
	dialects.RLock()
	defer dialects.RUnlock()
	return slices.Sorted(maps.Keys(dialects.byName))
}
