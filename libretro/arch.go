package libretro

import (
	"path/filepath"
	"runtime"
	"strings"
)

// WASMExtension marks cores compiled to WebAssembly.
const WASMExtension = ".wasm"

// Platform names a build target the way add-on descriptors do.
type Platform string

// Platforms an add-on descriptor can carry a library for.
const (
	PlatformLinux   Platform = "linux"
	PlatformOSX     Platform = "osx"
	PlatformWindows Platform = "windows"
	PlatformAndroid Platform = "android"
)

var platforms = map[string]Platform{
	"linux":   PlatformLinux,
	"freebsd": PlatformLinux,
	"android": PlatformAndroid,
	"darwin":  PlatformOSX,
	"windows": PlatformWindows,
}

// LibraryExtensions returns every extension a core file may carry,
// dot-prefixed.
func LibraryExtensions() []string {
	return []string{".so", ".dylib", ".dll", WASMExtension}
}

// CurrentPlatform is the add-on platform of the running OS.
func CurrentPlatform() Platform {
	if p, ok := platforms[runtime.GOOS]; ok {
		return p
	}
	return PlatformLinux
}

// HasExtension reports whether name ends in one of exts, ignoring case.
func HasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
