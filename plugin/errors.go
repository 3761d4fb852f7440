package plugin

import (
	"errors"
	"fmt"
)

// Binding errors.
var (
	// ErrLoad is matched by every *LoadError.
	ErrLoad = errors.New("unable to load core")

	// ErrSymbol is matched by every *SymbolError.
	ErrSymbol = errors.New("unable to resolve core entry point")

	// ErrUnsupportedPlatform is returned when no loader for the core's
	// format exists in this build.
	ErrUnsupportedPlatform = errors.New("core format not supported on this platform")
)

// LoadError reports that the core image could not be opened.
type LoadError struct {
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("unable to load %s: %s", e.Path, e.Message)
}

func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

// SymbolError reports the first required entry point a core lacks.
type SymbolError struct {
	Path   string
	Symbol string
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("unable to assign function %s in %s", e.Symbol, e.Path)
}

func (e *SymbolError) Is(target error) bool {
	return target == ErrSymbol
}
