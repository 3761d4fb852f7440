//go:build cgo && unix

package plugin

/*
#include "native.h"
*/
import "C"

import (
	"unsafe"

	"github.com/joncooperworks/coreextract/environment"
	"github.com/joncooperworks/coreextract/libretro"
	"github.com/joncooperworks/coreextract/settings"
)

// environment decodes one raw call, dispatches it and writes the answer
// back into the core's payload.
func (c *nativeCore) environment(cmd libretro.EnvCmd, data unsafe.Pointer) bool {
	command := decodeNative(cmd, data)
	if !c.env(command) {
		return false
	}
	c.encode(command, data)
	return true
}

func decodeNative(cmd libretro.EnvCmd, data unsafe.Pointer) environment.Command {
	if environment.IsNotice(cmd) {
		return &environment.Notice{Cmd: cmd}
	}
	if !cmd.Known() {
		return &environment.Unknown{Cmd: cmd}
	}
	if data == nil {
		return &environment.MissingPayload{Cmd: cmd}
	}
	if kind, ok := environment.DirectoryCommand(cmd); ok {
		return &environment.GetDirectory{Cmd: cmd, Kind: kind}
	}

	switch cmd {
	case libretro.EnvGetOverscan:
		return &environment.GetOverscan{}

	case libretro.EnvGetCanDupe:
		return &environment.GetCanDupe{}

	case libretro.EnvSetMessage:
		m := (*C.struct_ce_message)(data)
		return &environment.SetMessage{Text: C.GoString(m.msg), Frames: uint32(m.frames)}

	case libretro.EnvSetPixelFormat:
		return &environment.SetPixelFormat{Format: libretro.PixelFormat(*(*C.int)(data))}

	case libretro.EnvSetKeyboardCallback:
		cb := (*C.struct_ce_keyboard_callback)(data)
		return &environment.SetKeyboardCallback{Callback: handler(cb.callback)}

	case libretro.EnvSetDiskControlInterface:
		cb := (*C.struct_ce_disk_control_callback)(data)
		return &environment.SetDiskControl{Interface: environment.DiskControl{
			SetEjectState:     handler(cb.set_eject_state),
			GetEjectState:     handler(cb.get_eject_state),
			GetImageIndex:     handler(cb.get_image_index),
			SetImageIndex:     handler(cb.set_image_index),
			GetNumImages:      handler(cb.get_num_images),
			ReplaceImageIndex: handler(cb.replace_image_index),
			AddImageIndex:     handler(cb.add_image_index),
		}}

	case libretro.EnvSetHWRender:
		cb := (*C.struct_ce_hw_render_callback)(data)
		return &environment.SetHWRender{
			ContextReset:   handler(cb.context_reset),
			ContextDestroy: handler(cb.context_destroy),
		}

	case libretro.EnvSetAudioCallback:
		cb := (*C.struct_ce_audio_callback)(data)
		return &environment.SetAudioCallback{Callback: handler(cb.callback), SetState: handler(cb.set_state)}

	case libretro.EnvSetFrameTimeCallback:
		cb := (*C.struct_ce_frame_time_callback)(data)
		return &environment.SetFrameTimeCallback{Callback: handler(cb.callback), Reference: int64(cb.reference)}

	case libretro.EnvGetVariable:
		v := (*C.struct_ce_variable)(data)
		return &environment.GetVariable{Key: C.GoString(v.key)}

	case libretro.EnvSetVariables:
		return &environment.SetVariables{Variables: declarations((*C.struct_ce_variable)(data))}

	case libretro.EnvGetVariableUpdate:
		return &environment.GetVariableUpdate{}

	case libretro.EnvSetSupportNoGame:
		return &environment.SetSupportNoGame{Supported: bool(*(*C.bool)(data))}
	}

	return &environment.Notice{Cmd: cmd}
}

// encode writes the dispatcher's answer into the payload of query
// commands. Commands without an answer leave the payload untouched.
func (c *nativeCore) encode(command environment.Command, data unsafe.Pointer) {
	switch cmd := command.(type) {
	case *environment.GetDirectory:
		*(**C.char)(data) = c.cstring(cmd.Path)

	case *environment.GetOverscan:
		*(*C.bool)(data) = C.bool(cmd.Value)

	case *environment.GetCanDupe:
		*(*C.bool)(data) = C.bool(cmd.Value)

	case *environment.GetVariable:
		v := (*C.struct_ce_variable)(data)
		if cmd.Found {
			v.value = c.cstring(cmd.Value)
		} else {
			v.value = nil
		}

	case *environment.GetVariableUpdate:
		*(*C.bool)(data) = C.bool(cmd.Updated)
	}
}

// declarations copies a variable array terminated by a null key or value.
func declarations(v *C.struct_ce_variable) []settings.Declaration {
	var decls []settings.Declaration
	size := unsafe.Sizeof(*v)
	for v.key != nil && v.value != nil {
		decls = append(decls, settings.Declaration{Key: C.GoString(v.key), Value: C.GoString(v.value)})
		v = (*C.struct_ce_variable)(unsafe.Add(unsafe.Pointer(v), size))
	}
	return decls
}

func handler(p unsafe.Pointer) environment.Handler {
	return environment.Handler(uintptr(p))
}
