package plugin

import (
	"encoding/json"

	"github.com/joncooperworks/coreextract/environment"
	"github.com/joncooperworks/coreextract/libretro"
	"github.com/joncooperworks/coreextract/settings"
)

// wireRequest is the JSON payload a wasm core passes to retro_environment.
// Which fields are meaningful depends on the command.
type wireRequest struct {
	Key       string         `json:"key,omitempty"`
	Variables []wireVariable `json:"variables,omitempty"`
	Bool      bool           `json:"bool,omitempty"`
	Format    int32          `json:"format,omitempty"`
	Message   string         `json:"msg,omitempty"`
	Frames    uint32         `json:"frames,omitempty"`
	Reference int64          `json:"reference,omitempty"`

	// Callbacks holds function table indices keyed by the libretro struct
	// field name, e.g. "context_reset".
	Callbacks map[string]uint64 `json:"callbacks,omitempty"`
}

// wireVariable is one retro_variable entry. A missing or null field plays
// the part of a null pointer.
type wireVariable struct {
	Key   *string `json:"key"`
	Value *string `json:"value"`
}

// wireReply is the JSON answer written back to a wasm core. Commands that
// only deliver data get an empty object.
type wireReply struct {
	Path  *string `json:"path,omitempty"`
	Bool  *bool   `json:"bool,omitempty"`
	Value *string `json:"value,omitempty"`
}

// decodeWire turns a wasm environment call into a command. present is
// false when the core passed no payload at all.
func decodeWire(cmd libretro.EnvCmd, payload []byte, present bool) environment.Command {
	if environment.IsNotice(cmd) {
		return &environment.Notice{Cmd: cmd}
	}
	if !cmd.Known() {
		return &environment.Unknown{Cmd: cmd}
	}
	if !present {
		return &environment.MissingPayload{Cmd: cmd}
	}
	if kind, ok := environment.DirectoryCommand(cmd); ok {
		return &environment.GetDirectory{Cmd: cmd, Kind: kind}
	}

	var req wireRequest
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return &environment.MissingPayload{Cmd: cmd}
		}
	}
	cb := func(name string) environment.Handler {
		return environment.Handler(req.Callbacks[name])
	}

	switch cmd {
	case libretro.EnvGetOverscan:
		return &environment.GetOverscan{}
	case libretro.EnvGetCanDupe:
		return &environment.GetCanDupe{}
	case libretro.EnvSetMessage:
		return &environment.SetMessage{Text: req.Message, Frames: req.Frames}
	case libretro.EnvSetPixelFormat:
		return &environment.SetPixelFormat{Format: libretro.PixelFormat(req.Format)}
	case libretro.EnvSetKeyboardCallback:
		return &environment.SetKeyboardCallback{Callback: cb("callback")}
	case libretro.EnvSetDiskControlInterface:
		return &environment.SetDiskControl{Interface: environment.DiskControl{
			SetEjectState:     cb("set_eject_state"),
			GetEjectState:     cb("get_eject_state"),
			GetImageIndex:     cb("get_image_index"),
			SetImageIndex:     cb("set_image_index"),
			GetNumImages:      cb("get_num_images"),
			ReplaceImageIndex: cb("replace_image_index"),
			AddImageIndex:     cb("add_image_index"),
		}}
	case libretro.EnvSetHWRender:
		return &environment.SetHWRender{ContextReset: cb("context_reset"), ContextDestroy: cb("context_destroy")}
	case libretro.EnvSetAudioCallback:
		return &environment.SetAudioCallback{Callback: cb("callback"), SetState: cb("set_state")}
	case libretro.EnvSetFrameTimeCallback:
		return &environment.SetFrameTimeCallback{Callback: cb("callback"), Reference: req.Reference}
	case libretro.EnvGetVariable:
		return &environment.GetVariable{Key: req.Key}
	case libretro.EnvSetVariables:
		return &environment.SetVariables{Variables: terminated(req.Variables)}
	case libretro.EnvGetVariableUpdate:
		return &environment.GetVariableUpdate{}
	case libretro.EnvSetSupportNoGame:
		return &environment.SetSupportNoGame{Supported: req.Bool}
	}

	return &environment.Notice{Cmd: cmd}
}

// terminated copies a variable list up to the first entry with a null key
// or value, the same place a native core's array ends. Empty strings are
// kept.
func terminated(vars []wireVariable) []settings.Declaration {
	var decls []settings.Declaration
	for _, v := range vars {
		if v.Key == nil || v.Value == nil {
			break
		}
		decls = append(decls, settings.Declaration{Key: *v.Key, Value: *v.Value})
	}
	return decls
}

// encodeWire serializes the answer to an accepted command.
func encodeWire(command environment.Command) ([]byte, error) {
	var reply wireReply
	switch cmd := command.(type) {
	case *environment.GetDirectory:
		if cmd.Path != "" {
			reply.Path = &cmd.Path
		}
	case *environment.GetOverscan:
		reply.Bool = &cmd.Value
	case *environment.GetCanDupe:
		reply.Bool = &cmd.Value
	case *environment.GetVariable:
		if cmd.Found {
			reply.Value = &cmd.Value
		}
	case *environment.GetVariableUpdate:
		reply.Bool = &cmd.Updated
	}
	return json.Marshal(reply)
}
