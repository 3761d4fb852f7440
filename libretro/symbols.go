package libretro

// APIVersion is the only core API major version the extractor accepts.
const APIVersion = 1

// Entry point names a core must export. Binding resolves them in this
// order and stops at the first one that is missing.
const (
	SymSetEnvironment          = "retro_set_environment"
	SymSetVideoRefresh         = "retro_set_video_refresh"
	SymSetAudioSample          = "retro_set_audio_sample"
	SymSetAudioSampleBatch     = "retro_set_audio_sample_batch"
	SymSetInputPoll            = "retro_set_input_poll"
	SymSetInputState           = "retro_set_input_state"
	SymInit                    = "retro_init"
	SymDeinit                  = "retro_deinit"
	SymAPIVersion              = "retro_api_version"
	SymGetSystemInfo           = "retro_get_system_info"
	SymGetSystemAVInfo         = "retro_get_system_av_info"
	SymSetControllerPortDevice = "retro_set_controller_port_device"
	SymReset                   = "retro_reset"
	SymRun                     = "retro_run"
	SymSerializeSize           = "retro_serialize_size"
	SymSerialize               = "retro_serialize"
	SymUnserialize             = "retro_unserialize"
	SymCheatReset              = "retro_cheat_reset"
	SymCheatSet                = "retro_cheat_set"
	SymLoadGame                = "retro_load_game"
	SymLoadGameSpecial         = "retro_load_game_special"
	SymUnloadGame              = "retro_unload_game"
	SymGetRegion               = "retro_get_region"
	SymGetMemoryData           = "retro_get_memory_data"
	SymGetMemorySize           = "retro_get_memory_size"
)

// RequiredSymbols lists every entry point a core must export.
var RequiredSymbols = []string{
	SymSetEnvironment,
	SymSetVideoRefresh,
	SymSetAudioSample,
	SymSetAudioSampleBatch,
	SymSetInputPoll,
	SymSetInputState,
	SymInit,
	SymDeinit,
	SymAPIVersion,
	SymGetSystemInfo,
	SymGetSystemAVInfo,
	SymSetControllerPortDevice,
	SymReset,
	SymRun,
	SymSerializeSize,
	SymSerialize,
	SymUnserialize,
	SymCheatReset,
	SymCheatSet,
	SymLoadGame,
	SymLoadGameSpecial,
	SymUnloadGame,
	SymGetRegion,
	SymGetMemoryData,
	SymGetMemorySize,
}

// SystemInfo is what a core reports from retro_get_system_info.
type SystemInfo struct {
	LibraryName     string `json:"library_name"`
	LibraryVersion  string `json:"library_version"`
	ValidExtensions string `json:"valid_extensions"`
	NeedFullpath    bool   `json:"need_fullpath"`
	BlockExtract    bool   `json:"block_extract"`
}
