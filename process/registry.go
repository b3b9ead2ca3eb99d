package process

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/exascience/parmap"
	"github.com/exascience/parmap/internal"
)

type handler func(in json.RawMessage) (json.RawMessage, error)

var (
	registryMutex sync.RWMutex
	registry      = make(map[string]handler)
)

// Register makes the transform f available to worker processes under the
// given name. The coordinator and the workers run the same binary, so
// Register is typically called from an init function, which guarantees that
// both sides know the same names.
//
// Inputs of type T and outputs of type U cross the process boundary through
// encoding/json and must round-trip through it unchanged.
//
// Register panics if f is nil, or if Register is called twice with the same
// name.
func Register[T, U any](name string, f parmap.Func[T, U]) {
	if f == nil {
		panic("process: Register transform is nil")
	}
	registryMutex.Lock()
	defer registryMutex.Unlock()
	if _, dup := registry[name]; dup {
		panic("process: Register called twice for transform " + name)
	}
	registry[name] = func(in json.RawMessage) (json.RawMessage, error) {
		var x T
		if err := json.Unmarshal(in, &x); err != nil {
			return nil, fmt.Errorf("decode input: %w", err)
		}
		y, err := internal.Call(f, x)
		if err != nil {
			return nil, err
		}
		return json.Marshal(y)
	}
}

// Registered reports whether a transform with the given name has been
// registered.
func Registered(name string) bool {
	_, ok := lookup(name)
	return ok
}

// Names returns the sorted names of all registered transforms.
func Names() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (handler, bool) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	h, ok := registry[name]
	return h, ok
}
