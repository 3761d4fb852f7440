package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// LoaderFactory is a function that creates a new Loader instance.
//
// Factory functions are registered with RegisterLoader and are called when
// a core of that type needs to be loaded.
type LoaderFactory func() (Loader, error)

var (
	// loaderRegistry stores loader factories by core type identifier
	loaderRegistry = make(map[string]LoaderFactory)
	// loaderRegistryMu protects concurrent access to the registry
	loaderRegistryMu sync.RWMutex
)

// RegisterLoader registers a loader factory for a given core type identifier.
//
// This should be called from init() functions in loader implementations.
// Registering the same identifier again replaces the earlier factory,
// which is how tests substitute mock loaders.
//
// Example:
//
//	func init() {
//	    RegisterLoader(NativeType, func() (Loader, error) {
//	        return NewNativeLoader(), nil
//	    })
//	}
func RegisterLoader(typeIdentifier string, factory LoaderFactory) {
	loaderRegistryMu.Lock()
	defer loaderRegistryMu.Unlock()
	loaderRegistry[typeIdentifier] = factory
}

// GetLoaderFactory retrieves a loader factory for the given core type identifier.
//
// Returns an error if no factory is registered for the type.
func GetLoaderFactory(typeIdentifier string) (LoaderFactory, error) {
	loaderRegistryMu.RLock()
	defer loaderRegistryMu.RUnlock()
	factory, ok := loaderRegistry[typeIdentifier]
	if !ok {
		return nil, fmt.Errorf("%w: no loader registered for core type %s", ErrUnsupportedPlatform, typeIdentifier)
	}
	return factory, nil
}

// ListRegisteredLoaderTypes returns all registered core type identifiers, sorted.
func ListRegisteredLoaderTypes() []string {
	loaderRegistryMu.RLock()
	defer loaderRegistryMu.RUnlock()
	types := make([]string, 0, len(loaderRegistry))
	for typeIdentifier := range loaderRegistry {
		types = append(types, typeIdentifier)
	}
	sort.Strings(types)
	return types
}
