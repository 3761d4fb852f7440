package environment

import (
	"github.com/joncooperworks/coreextract/libretro"
	"github.com/joncooperworks/coreextract/settings"
)

// Command is one decoded environment call. The set of implementations is
// closed; loaders decode the raw command code and payload into one of
// them at the ABI boundary and encode any answer back after Dispatch.
type Command interface {
	// Code is the raw command code the core sent.
	Code() libretro.EnvCmd
	command()
}

// DirectoryKind selects which stored directory a GetDirectory answers.
type DirectoryKind int

// Directories a core may query.
const (
	SystemDirectory DirectoryKind = iota
	ContentDirectory
	LibraryDirectory
	SaveDirectory
)

// GetDirectory asks for one of the identity directories. Path is set by
// the dispatcher; an empty Path is answered with a null pointer.
type GetDirectory struct {
	Cmd  libretro.EnvCmd
	Kind DirectoryKind
	Path string
}

// GetOverscan asks whether the frontend crops overscan.
type GetOverscan struct{ Value bool }

// GetCanDupe asks whether the frontend accepts duplicated frames.
type GetCanDupe struct{ Value bool }

// GetVariable asks for the current value of one declared variable.
type GetVariable struct {
	Key   string
	Value string
	Found bool
}

// GetVariableUpdate asks whether any variable changed since the last call.
type GetVariableUpdate struct{ Updated bool }

// SetVariables declares every configuration variable the core has.
type SetVariables struct {
	Variables []settings.Declaration
}

// SetSupportNoGame tells the frontend the core can run without content.
type SetSupportNoGame struct{ Supported bool }

// SetPixelFormat requests a framebuffer format.
type SetPixelFormat struct{ Format libretro.PixelFormat }

// SetMessage asks the frontend to show a message for a number of frames.
type SetMessage struct {
	Text   string
	Frames uint32
}

// SetKeyboardCallback registers the core's keyboard event handler.
type SetKeyboardCallback struct{ Callback Handler }

// SetDiskControl registers the core's disk control interface.
type SetDiskControl struct{ Interface DiskControl }

// SetHWRender registers the core's hardware render context callbacks.
type SetHWRender struct {
	ContextReset   Handler
	ContextDestroy Handler
}

// SetAudioCallback registers the core's asynchronous audio callbacks.
type SetAudioCallback struct {
	Callback Handler
	SetState Handler
}

// SetFrameTimeCallback registers the core's frame time callback along with
// the reference frame duration in microseconds.
type SetFrameTimeCallback struct {
	Callback  Handler
	Reference int64
}

// MissingPayload is a recognized command that arrived with a null
// payload.
type MissingPayload struct{ Cmd libretro.EnvCmd }

// Notice is a recognized command that has no meaning for extraction.
type Notice struct{ Cmd libretro.EnvCmd }

// Unknown is a command code the extractor does not recognize.
type Unknown struct{ Cmd libretro.EnvCmd }

func (c *GetDirectory) Code() libretro.EnvCmd       { return c.Cmd }
func (*GetOverscan) Code() libretro.EnvCmd          { return libretro.EnvGetOverscan }
func (*GetCanDupe) Code() libretro.EnvCmd           { return libretro.EnvGetCanDupe }
func (*GetVariable) Code() libretro.EnvCmd          { return libretro.EnvGetVariable }
func (*GetVariableUpdate) Code() libretro.EnvCmd    { return libretro.EnvGetVariableUpdate }
func (*SetVariables) Code() libretro.EnvCmd         { return libretro.EnvSetVariables }
func (*SetSupportNoGame) Code() libretro.EnvCmd     { return libretro.EnvSetSupportNoGame }
func (*SetPixelFormat) Code() libretro.EnvCmd       { return libretro.EnvSetPixelFormat }
func (*SetMessage) Code() libretro.EnvCmd           { return libretro.EnvSetMessage }
func (*SetKeyboardCallback) Code() libretro.EnvCmd  { return libretro.EnvSetKeyboardCallback }
func (*SetDiskControl) Code() libretro.EnvCmd       { return libretro.EnvSetDiskControlInterface }
func (*SetHWRender) Code() libretro.EnvCmd          { return libretro.EnvSetHWRender }
func (*SetAudioCallback) Code() libretro.EnvCmd     { return libretro.EnvSetAudioCallback }
func (*SetFrameTimeCallback) Code() libretro.EnvCmd { return libretro.EnvSetFrameTimeCallback }
func (c *MissingPayload) Code() libretro.EnvCmd     { return c.Cmd }
func (c *Notice) Code() libretro.EnvCmd             { return c.Cmd }
func (c *Unknown) Code() libretro.EnvCmd            { return c.Cmd }

func (*GetDirectory) command()         {}
func (*GetOverscan) command()          {}
func (*GetCanDupe) command()           {}
func (*GetVariable) command()          {}
func (*GetVariableUpdate) command()    {}
func (*SetVariables) command()         {}
func (*SetSupportNoGame) command()     {}
func (*SetPixelFormat) command()       {}
func (*SetMessage) command()           {}
func (*SetKeyboardCallback) command()  {}
func (*SetDiskControl) command()       {}
func (*SetHWRender) command()          {}
func (*SetAudioCallback) command()     {}
func (*SetFrameTimeCallback) command() {}
func (*MissingPayload) command()       {}
func (*Notice) command()               {}
func (*Unknown) command()              {}

// DirectoryCommand maps a directory query code to its kind.
func DirectoryCommand(cmd libretro.EnvCmd) (DirectoryKind, bool) {
	switch cmd {
	case libretro.EnvGetSystemDirectory:
		return SystemDirectory, true
	case libretro.EnvGetContentDirectory:
		return ContentDirectory, true
	case libretro.EnvGetLibretroPath:
		return LibraryDirectory, true
	case libretro.EnvGetSaveDirectory:
		return SaveDirectory, true
	}
	return 0, false
}

// IsNotice reports whether cmd is accepted without any effect.
func IsNotice(cmd libretro.EnvCmd) bool {
	switch cmd {
	case libretro.EnvSetRotation,
		libretro.EnvShutdown,
		libretro.EnvSetPerformanceLevel,
		libretro.EnvSetInputDescriptors,
		libretro.EnvGetRumbleInterface,
		libretro.EnvGetInputDeviceCapabilities,
		libretro.EnvGetSensorInterface,
		libretro.EnvGetCameraInterface,
		libretro.EnvGetLogInterface,
		libretro.EnvGetPerfInterface,
		libretro.EnvGetLocationInterface,
		libretro.EnvSetSystemAVInfo:
		return true
	}
	return false
}

// PayloadRequired reports whether a null payload makes cmd fail rather
// than become a no-op.
func PayloadRequired(cmd libretro.EnvCmd) bool {
	return cmd == libretro.EnvSetPixelFormat
}
