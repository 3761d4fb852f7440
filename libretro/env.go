package libretro

import "fmt"

// EnvCmd is the command code a core passes to the environment callback.
type EnvCmd uint32

// EnvExperimental is OR'ed into command codes whose contract may still
// change between API revisions.
const EnvExperimental EnvCmd = 0x10000

// Environment command codes understood by the extractor.
const (
	EnvSetRotation                EnvCmd = 1
	EnvGetOverscan                EnvCmd = 2
	EnvGetCanDupe                 EnvCmd = 3
	EnvSetMessage                 EnvCmd = 6
	EnvShutdown                   EnvCmd = 7
	EnvSetPerformanceLevel        EnvCmd = 8
	EnvGetSystemDirectory         EnvCmd = 9
	EnvSetPixelFormat             EnvCmd = 10
	EnvSetInputDescriptors        EnvCmd = 11
	EnvSetKeyboardCallback        EnvCmd = 12
	EnvSetDiskControlInterface    EnvCmd = 13
	EnvSetHWRender                EnvCmd = 14
	EnvGetVariable                EnvCmd = 15
	EnvSetVariables               EnvCmd = 16
	EnvGetVariableUpdate          EnvCmd = 17
	EnvSetSupportNoGame           EnvCmd = 18
	EnvGetLibretroPath            EnvCmd = 19
	EnvSetFrameTimeCallback       EnvCmd = 21
	EnvSetAudioCallback           EnvCmd = 22
	EnvGetRumbleInterface         EnvCmd = 23
	EnvGetInputDeviceCapabilities EnvCmd = 24
	EnvGetSensorInterface         EnvCmd = 25 | EnvExperimental
	EnvGetCameraInterface         EnvCmd = 26 | EnvExperimental
	EnvGetLogInterface            EnvCmd = 27
	EnvGetPerfInterface           EnvCmd = 28
	EnvGetLocationInterface       EnvCmd = 29
	EnvGetContentDirectory        EnvCmd = 30
	EnvGetSaveDirectory           EnvCmd = 31
	EnvSetSystemAVInfo            EnvCmd = 32
)

var envCmdNames = map[EnvCmd]string{
	EnvSetRotation:                "SET_ROTATION",
	EnvGetOverscan:                "GET_OVERSCAN",
	EnvGetCanDupe:                 "GET_CAN_DUPE",
	EnvSetMessage:                 "SET_MESSAGE",
	EnvShutdown:                   "SHUTDOWN",
	EnvSetPerformanceLevel:        "SET_PERFORMANCE_LEVEL",
	EnvGetSystemDirectory:         "GET_SYSTEM_DIRECTORY",
	EnvSetPixelFormat:             "SET_PIXEL_FORMAT",
	EnvSetInputDescriptors:        "SET_INPUT_DESCRIPTORS",
	EnvSetKeyboardCallback:        "SET_KEYBOARD_CALLBACK",
	EnvSetDiskControlInterface:    "SET_DISK_CONTROL_INTERFACE",
	EnvSetHWRender:                "SET_HW_RENDER",
	EnvGetVariable:                "GET_VARIABLE",
	EnvSetVariables:               "SET_VARIABLES",
	EnvGetVariableUpdate:          "GET_VARIABLE_UPDATE",
	EnvSetSupportNoGame:           "SET_SUPPORT_NO_GAME",
	EnvGetLibretroPath:            "GET_LIBRETRO_PATH",
	EnvSetFrameTimeCallback:       "SET_FRAME_TIME_CALLBACK",
	EnvSetAudioCallback:           "SET_AUDIO_CALLBACK",
	EnvGetRumbleInterface:         "GET_RUMBLE_INTERFACE",
	EnvGetInputDeviceCapabilities: "GET_INPUT_DEVICE_CAPABILITIES",
	EnvGetSensorInterface:         "GET_SENSOR_INTERFACE",
	EnvGetCameraInterface:         "GET_CAMERA_INTERFACE",
	EnvGetLogInterface:            "GET_LOG_INTERFACE",
	EnvGetPerfInterface:           "GET_PERF_INTERFACE",
	EnvGetLocationInterface:       "GET_LOCATION_INTERFACE",
	EnvGetContentDirectory:        "GET_CONTENT_DIRECTORY",
	EnvGetSaveDirectory:           "GET_SAVE_DIRECTORY",
	EnvSetSystemAVInfo:            "SET_SYSTEM_AV_INFO",
}

// String returns the libretro name of the command without its
// RETRO_ENVIRONMENT_ prefix.
func (c EnvCmd) String() string {
	if name, ok := envCmdNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint32(c))
}

// Known reports whether the command code is one the extractor recognizes.
func (c EnvCmd) Known() bool {
	_, ok := envCmdNames[c]
	return ok
}

// PixelFormat is the framebuffer format a core requests.
type PixelFormat int32

// Pixel formats defined by API version 1.
const (
	PixelFormat0RGB1555 PixelFormat = 0
	PixelFormatXRGB8888 PixelFormat = 1
	PixelFormatRGB565   PixelFormat = 2
)

func (f PixelFormat) String() string {
	switch f {
	case PixelFormat0RGB1555:
		return "0RGB1555"
	case PixelFormatXRGB8888:
		return "XRGB8888"
	case PixelFormatRGB565:
		return "RGB565"
	default:
		return fmt.Sprintf("unknown(%d)", int32(f))
	}
}
