//go:build cgo && unix

package plugin

/*
#include "native.h"

static void ce_store_handler(void** slot, uintptr_t value) {
	*slot = (void*)value;
}
*/
import "C"

import (
	"unsafe"

	"github.com/joncooperworks/coreextract/environment"
)

// payloadBuffer owns C memory laid out like the payloads cores hand to the
// environment callback. It lets the ABI boundary be driven from Go without
// a core; Free releases everything it allocated.
type payloadBuffer struct {
	allocs []unsafe.Pointer
}

// payloadVariable is one retro_variable entry. A nil field is a null
// pointer.
type payloadVariable struct {
	Key   *string
	Value *string
}

func (b *payloadBuffer) alloc(size uintptr) unsafe.Pointer {
	p := C.calloc(1, C.size_t(size))
	b.allocs = append(b.allocs, p)
	return p
}

func (b *payloadBuffer) cstring(s *string) *C.char {
	if s == nil {
		return nil
	}
	cs := C.CString(*s)
	b.allocs = append(b.allocs, unsafe.Pointer(cs))
	return cs
}

// Free releases every allocation made through b.
func (b *payloadBuffer) Free() {
	for _, p := range b.allocs {
		C.free(p)
	}
	b.allocs = nil
}

// variables builds a variable array followed by a zeroed terminator.
func (b *payloadBuffer) variables(entries []payloadVariable) unsafe.Pointer {
	size := unsafe.Sizeof(C.struct_ce_variable{})
	p := b.alloc(size * uintptr(len(entries)+1))
	for i, e := range entries {
		v := (*C.struct_ce_variable)(unsafe.Add(p, uintptr(i)*size))
		v.key = b.cstring(e.Key)
		v.value = b.cstring(e.Value)
	}
	return p
}

// variable builds a GET_VARIABLE query whose value already holds stale.
func (b *payloadBuffer) variable(key, stale string) unsafe.Pointer {
	return b.variables([]payloadVariable{{Key: &key, Value: &stale}})
}

func (b *payloadBuffer) message(text string, frames uint32) unsafe.Pointer {
	m := (*C.struct_ce_message)(b.alloc(unsafe.Sizeof(C.struct_ce_message{})))
	m.msg = b.cstring(&text)
	m.frames = C.uint(frames)
	return unsafe.Pointer(m)
}

func (b *payloadBuffer) integer(v int) unsafe.Pointer {
	p := b.alloc(unsafe.Sizeof(C.int(0)))
	*(*C.int)(p) = C.int(v)
	return p
}

func (b *payloadBuffer) boolean(v bool) unsafe.Pointer {
	p := b.alloc(unsafe.Sizeof(C.bool(false)))
	*(*C.bool)(p) = C.bool(v)
	return p
}

// stringSlot builds a char* out-parameter that already holds stale.
func (b *payloadBuffer) stringSlot(stale string) unsafe.Pointer {
	p := b.alloc(unsafe.Sizeof(uintptr(0)))
	*(**C.char)(p) = b.cstring(&stale)
	return p
}

func (b *payloadBuffer) keyboard(callback environment.Handler) unsafe.Pointer {
	cb := (*C.struct_ce_keyboard_callback)(b.alloc(unsafe.Sizeof(C.struct_ce_keyboard_callback{})))
	storeHandler(&cb.callback, callback)
	return unsafe.Pointer(cb)
}

func (b *payloadBuffer) diskControl(dc environment.DiskControl) unsafe.Pointer {
	cb := (*C.struct_ce_disk_control_callback)(b.alloc(unsafe.Sizeof(C.struct_ce_disk_control_callback{})))
	storeHandler(&cb.set_eject_state, dc.SetEjectState)
	storeHandler(&cb.get_eject_state, dc.GetEjectState)
	storeHandler(&cb.get_image_index, dc.GetImageIndex)
	storeHandler(&cb.set_image_index, dc.SetImageIndex)
	storeHandler(&cb.get_num_images, dc.GetNumImages)
	storeHandler(&cb.replace_image_index, dc.ReplaceImageIndex)
	storeHandler(&cb.add_image_index, dc.AddImageIndex)
	return unsafe.Pointer(cb)
}

// hwRender fills every field so a layout mismatch shows up as a wrong
// handler value.
func (b *payloadBuffer) hwRender(reset, destroy environment.Handler) unsafe.Pointer {
	cb := (*C.struct_ce_hw_render_callback)(b.alloc(unsafe.Sizeof(C.struct_ce_hw_render_callback{})))
	cb.context_type = 3
	storeHandler(&cb.context_reset, reset)
	storeHandler(&cb.get_current_framebuffer, 0xdead)
	storeHandler(&cb.get_proc_address, 0xbeef)
	cb.depth = true
	cb.stencil = true
	cb.bottom_left_origin = true
	cb.version_major = 3
	cb.version_minor = 3
	cb.cache_context = true
	storeHandler(&cb.context_destroy, destroy)
	cb.debug_context = true
	return unsafe.Pointer(cb)
}

func (b *payloadBuffer) audio(callback, setState environment.Handler) unsafe.Pointer {
	cb := (*C.struct_ce_audio_callback)(b.alloc(unsafe.Sizeof(C.struct_ce_audio_callback{})))
	storeHandler(&cb.callback, callback)
	storeHandler(&cb.set_state, setState)
	return unsafe.Pointer(cb)
}

func (b *payloadBuffer) frameTime(callback environment.Handler, reference int64) unsafe.Pointer {
	cb := (*C.struct_ce_frame_time_callback)(b.alloc(unsafe.Sizeof(C.struct_ce_frame_time_callback{})))
	storeHandler(&cb.callback, callback)
	cb.reference = C.int64_t(reference)
	return unsafe.Pointer(cb)
}

func storeHandler(slot *unsafe.Pointer, h environment.Handler) {
	C.ce_store_handler(slot, C.uintptr_t(h))
}

// readBool reads a bool out-parameter.
func readBool(p unsafe.Pointer) bool {
	return bool(*(*C.bool)(p))
}

// readString reads a char* out-parameter; ok is false for a null pointer.
func readString(p unsafe.Pointer) (s string, ok bool) {
	cs := *(**C.char)(p)
	if cs == nil {
		return "", false
	}
	return C.GoString(cs), true
}

// readVariableValue reads the value field of a GET_VARIABLE payload.
func readVariableValue(p unsafe.Pointer) (string, bool) {
	v := (*C.struct_ce_variable)(p)
	if v.value == nil {
		return "", false
	}
	return C.GoString(v.value), true
}

// newDetachedCore returns a native core with no library behind it, for
// encoding answers and receiving environment calls.
func newDetachedCore(env environment.Func) *nativeCore {
	return &nativeCore{env: env, cstrings: make(map[string]*C.char)}
}

// callEnvironment invokes the exported callback the way a core does.
func callEnvironment(cmd uint32, data unsafe.Pointer) bool {
	return bool(coreextractEnvironment(C.uint(cmd), data))
}

// callUnsigned calls a core export of type unsigned (*)(void) that is not
// among the required entry points.
func callUnsigned(core Core, name string) (uint32, bool) {
	c, ok := core.(*nativeCore)
	if !ok || c.handle == nil {
		return 0, false
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	fn := C.ce_dlsym(c.handle, cname)
	if fn == nil {
		return 0, false
	}
	return uint32(C.ce_call_unsigned(fn)), true
}
