// Package plugin binds core libraries and exposes them behind one Core
// interface, whatever format the core was built in.
//
// Loaders are registered by type identifier (see RegisterLoader). The
// native loader opens shared libraries with dlopen and needs cgo on a
// unix host; the wasm loader runs cores compiled to WebAssembly through
// Extism. Either way a load either returns a fully bound Core or an
// error; a partially bound core is never returned.
package plugin

import (
	"log/slog"

	"github.com/joncooperworks/coreextract/environment"
	"github.com/joncooperworks/coreextract/libretro"
	"github.com/joncooperworks/coreextract/logging"
)

// Core is a bound core library.
//
// Calls are synchronous and must come from a single goroutine. The
// environment callback installed with SetEnvironment is invoked on the
// same call stack as the entry point that triggered it.
type Core interface {
	// Identity returns what was derived from the core's path at load time.
	Identity() libretro.Identity

	// SetEnvironment installs env and calls retro_set_environment. Cores
	// often declare their variables from inside this call.
	SetEnvironment(env environment.Func)

	// Init calls retro_init.
	Init()

	// Deinit calls retro_deinit.
	Deinit()

	// APIVersion calls retro_api_version.
	APIVersion() uint32

	// SystemInfo calls retro_get_system_info.
	SystemInfo() libretro.SystemInfo

	// Close unloads the core and forgets everything derived from it.
	// Closing an already closed core is a no-op.
	Close() error
}

// Properties describe the core to load and the directories it is told
// about.
type Properties struct {
	LibraryPath      string
	SystemDirectory  string
	ContentDirectory string
	SaveDirectory    string

	// Namespace and Suffixes control the derived add-on id. Empty values
	// fall back to libretro.DefaultNamespace and libretro.DefaultSuffixes.
	Namespace string
	Suffixes  []string

	// Logger receives diagnostics from loaders that produce them. Nil
	// means the process logger.
	Logger *slog.Logger
}

func (p Properties) logger() *slog.Logger {
	if p.Logger == nil {
		return logging.Logger()
	}
	return p.Logger
}

// Identity derives the identity a core loaded with p will report.
func (p Properties) Identity() libretro.Identity {
	namespace := p.Namespace
	if namespace == "" {
		namespace = libretro.DefaultNamespace
	}
	suffixes := p.Suffixes
	if suffixes == nil {
		suffixes = libretro.DefaultSuffixes
	}
	return libretro.NewIdentity(p.LibraryPath, p.SystemDirectory, p.ContentDirectory, p.SaveDirectory, namespace, suffixes)
}
