package chttp

import (
	"reflect"
	"sync"
)

// The compiled-handler cache memoizes compileType per handler type for the process lifetime:
// entries are created lazily under the mutex, compiled at most once through the entry's Once, and
// never evicted. Concurrent first use observes exactly one materialized result and never a
// partially-built one.
type compiledEntry struct {
	once     sync.Once
	bindings []binding
	err      error
}

var compiledCache = struct {
	sync.Mutex
	entries map[reflect.Type]*compiledEntry
}{entries: make(map[reflect.Type]*compiledEntry)}

func cachedBindings[H Routable[H]]() ([]binding, error) {
	typ := reflect.TypeFor[H]()

	compiledCache.Lock()
	entry, ok := compiledCache.entries[typ]
	if !ok {
		entry = &compiledEntry{}
		compiledCache.entries[typ] = entry
	}
	compiledCache.Unlock()

	entry.once.Do(func() {
		entry.bindings, entry.err = compileType[H]()
	})

	return entry.bindings, entry.err
}
