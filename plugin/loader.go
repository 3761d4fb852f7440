package plugin

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joncooperworks/coreextract/libretro"
)

// Loader type identifiers.
const (
	NativeType = "native"
	WASMType   = "wasm"
)

// Loader binds cores of one format.
type Loader interface {
	Load(props Properties) (Core, error)
}

// LoaderType picks the loader type for a core file.
func LoaderType(path string) string {
	if strings.EqualFold(filepath.Ext(path), libretro.WASMExtension) {
		return WASMType
	}
	return NativeType
}

// Load binds the core at props.LibraryPath with the loader registered for
// its format.
func Load(props Properties) (Core, error) {
	factory, err := GetLoaderFactory(LoaderType(props.LibraryPath))
	if err != nil {
		return nil, err
	}

	loader, err := factory()
	if err != nil {
		return nil, fmt.Errorf("failed to create loader: %w", err)
	}

	return loader.Load(props)
}

// bindSymbols resolves every required entry point in order. It stops at
// the first missing one and returns nothing else in that case.
func bindSymbols[T any](path string, resolve func(name string) (T, bool)) (map[string]T, error) {
	symbols := make(map[string]T, len(libretro.RequiredSymbols))
	for _, name := range libretro.RequiredSymbols {
		sym, ok := resolve(name)
		if !ok {
			return nil, &SymbolError{Path: path, Symbol: name}
		}
		symbols[name] = sym
	}
	return symbols, nil
}
