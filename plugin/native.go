//go:build cgo && unix

package plugin

/*
#cgo linux LDFLAGS: -ldl
#include "native.h"
*/
import "C"

import (
	"unsafe"

	"github.com/joncooperworks/coreextract/environment"
	"github.com/joncooperworks/coreextract/libretro"
)

func init() {
	RegisterLoader(NativeType, func() (Loader, error) {
		return NewNativeLoader(), nil
	})
}

// activeCore receives environment calls. The C callback carries no user
// data, so only one native core can have an environment installed at a
// time; SetEnvironment replaces it and Close clears it.
var activeCore *nativeCore

// NativeLoader binds shared library cores with dlopen.
type NativeLoader struct{}

// NewNativeLoader creates a new native loader.
func NewNativeLoader() *NativeLoader {
	return &NativeLoader{}
}

// Load opens the library and resolves every required entry point. If any
// entry point is missing the library is closed again before returning.
func (nl *NativeLoader) Load(props Properties) (Core, error) {
	cpath := C.CString(props.LibraryPath)
	defer C.free(unsafe.Pointer(cpath))

	handle := C.ce_dlopen(cpath)
	if handle == nil {
		return nil, &LoadError{Path: props.LibraryPath, Message: C.GoString(C.ce_dlerror())}
	}

	symbols, err := bindSymbols(props.LibraryPath, func(name string) (unsafe.Pointer, bool) {
		cname := C.CString(name)
		defer C.free(unsafe.Pointer(cname))
		sym := C.ce_dlsym(handle, cname)
		return sym, sym != nil
	})
	if err != nil {
		C.ce_dlclose(handle)
		return nil, err
	}

	return &nativeCore{
		handle:   handle,
		symbols:  symbols,
		identity: props.Identity(),
		cstrings: make(map[string]*C.char),
	}, nil
}

// nativeCore is a dlopen'ed core with its resolved entry points.
type nativeCore struct {
	handle   unsafe.Pointer
	symbols  map[string]unsafe.Pointer
	identity libretro.Identity
	env      environment.Func

	// C copies of strings handed to the core. They stay valid until Close
	// because cores keep the pointers they are given.
	cstrings map[string]*C.char
}

func (c *nativeCore) Identity() libretro.Identity {
	return c.identity
}

func (c *nativeCore) SetEnvironment(env environment.Func) {
	fn := c.symbol(libretro.SymSetEnvironment)
	if fn == nil {
		return
	}
	c.env = env
	activeCore = c
	C.ce_call_set_environment(fn)
}

func (c *nativeCore) Init() {
	if fn := c.symbol(libretro.SymInit); fn != nil {
		C.ce_call_void(fn)
	}
}

func (c *nativeCore) Deinit() {
	if fn := c.symbol(libretro.SymDeinit); fn != nil {
		C.ce_call_void(fn)
	}
}

func (c *nativeCore) APIVersion() uint32 {
	fn := c.symbol(libretro.SymAPIVersion)
	if fn == nil {
		return 0
	}
	return uint32(C.ce_call_unsigned(fn))
}

func (c *nativeCore) SystemInfo() libretro.SystemInfo {
	fn := c.symbol(libretro.SymGetSystemInfo)
	if fn == nil {
		return libretro.SystemInfo{}
	}

	var info C.struct_ce_system_info
	C.ce_call_get_system_info(fn, &info)

	return libretro.SystemInfo{
		LibraryName:     C.GoString(info.library_name),
		LibraryVersion:  C.GoString(info.library_version),
		ValidExtensions: C.GoString(info.valid_extensions),
		NeedFullpath:    bool(info.need_fullpath),
		BlockExtract:    bool(info.block_extract),
	}
}

func (c *nativeCore) Close() error {
	if activeCore == c {
		activeCore = nil
	}

	var err error
	if c.handle != nil {
		if rc := C.ce_dlclose(c.handle); rc != 0 {
			err = &LoadError{Path: c.identity.LibraryPath, Message: "dlclose: " + C.GoString(C.ce_dlerror())}
		}
	}

	for _, s := range c.cstrings {
		C.free(unsafe.Pointer(s))
	}
	c.cstrings = nil
	c.handle = nil
	c.symbols = nil
	c.env = nil
	c.identity = libretro.Identity{}
	return err
}

func (c *nativeCore) symbol(name string) unsafe.Pointer {
	if c.handle == nil {
		return nil
	}
	return c.symbols[name]
}

// cstring returns a C copy of s owned by the core, or nil for "".
func (c *nativeCore) cstring(s string) *C.char {
	if s == "" {
		return nil
	}
	if cs, ok := c.cstrings[s]; ok {
		return cs
	}
	cs := C.CString(s)
	c.cstrings[s] = cs
	return cs
}

//export coreextractEnvironment
func coreextractEnvironment(cmd C.uint, data unsafe.Pointer) (ok C.bool) {
	c := activeCore
	if c == nil || c.env == nil {
		return false
	}

	// A panic must not unwind through the core's C frames.
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	return C.bool(c.environment(libretro.EnvCmd(cmd), data))
}
