package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	extism "github.com/extism/go-sdk"

	"github.com/joncooperworks/coreextract/environment"
	"github.com/joncooperworks/coreextract/libretro"
)

// EnvironmentImport is the host function wasm cores import from the "env"
// module to reach the environment callback.
//
// WASM signature: (param i32 i64) (result i64) - cmd, payload offset ->
// reply offset. A zero payload offset means no payload; a zero reply
// offset means the command was refused.
//
// Payloads and replies are JSON. A variable list ends at the first entry
// whose key or value is null or missing; empty strings do not end it. A
// directory reply without "path" stands for a null pointer.
const EnvironmentImport = "retro_environment"

func init() {
	RegisterLoader(WASMType, func() (Loader, error) {
		return NewWASMLoader()
	})
}

// WASMLoader loads cores compiled to WebAssembly using Extism SDK.
type WASMLoader struct {
	ctx context.Context
}

// NewWASMLoader creates a new WASM loader.
func NewWASMLoader() (*WASMLoader, error) {
	return &WASMLoader{ctx: context.Background()}, nil
}

// Load compiles and instantiates the module at props.LibraryPath and checks
// that it exports every required entry point.
func (wl *WASMLoader) Load(props Properties) (Core, error) {
	core := &wasmCore{
		identity: props.Identity(),
		ctx:      wl.ctx,
		logger:   props.logger(),
	}

	manifest := extism.Manifest{
		Wasm: []extism.Wasm{
			extism.WasmFile{Path: props.LibraryPath},
		},
	}
	config := extism.PluginConfig{
		EnableWasi: true,
	}

	p, err := extism.NewPlugin(wl.ctx, manifest, config, []extism.HostFunction{core.environmentFunction()})
	if err != nil {
		return nil, &LoadError{Path: props.LibraryPath, Message: err.Error()}
	}

	if _, err := bindSymbols(props.LibraryPath, func(name string) (string, bool) {
		return name, p.FunctionExists(name)
	}); err != nil {
		_ = p.Close(wl.ctx)
		return nil, err
	}

	p.SetLogger(core.log)
	core.plugin = p
	return core, nil
}

// wasmCore is an instantiated wasm core.
type wasmCore struct {
	identity libretro.Identity
	plugin   *extism.Plugin
	ctx      context.Context
	env      environment.Func
	logger   *slog.Logger
}

func (c *wasmCore) Identity() libretro.Identity {
	return c.identity
}

func (c *wasmCore) SetEnvironment(env environment.Func) {
	c.env = env
	c.call(libretro.SymSetEnvironment)
}

func (c *wasmCore) Init() {
	c.call(libretro.SymInit)
}

func (c *wasmCore) Deinit() {
	c.call(libretro.SymDeinit)
}

// APIVersion expects retro_api_version to output the version as a JSON
// number.
func (c *wasmCore) APIVersion() uint32 {
	out, ok := c.call(libretro.SymAPIVersion)
	if !ok {
		return 0
	}
	var version uint32
	if err := json.Unmarshal(out, &version); err != nil {
		c.logger.Warn("Invalid api version output", "path", c.identity.LibraryPath, "error", err)
		return 0
	}
	return version
}

// SystemInfo expects retro_get_system_info to output a JSON object.
func (c *wasmCore) SystemInfo() libretro.SystemInfo {
	var info libretro.SystemInfo
	out, ok := c.call(libretro.SymGetSystemInfo)
	if !ok {
		return info
	}
	if err := json.Unmarshal(out, &info); err != nil {
		c.logger.Warn("Invalid system info output", "path", c.identity.LibraryPath, "error", err)
		return libretro.SystemInfo{}
	}
	return info
}

func (c *wasmCore) Close() error {
	if c.plugin == nil {
		return nil
	}
	err := c.plugin.Close(c.ctx)
	c.plugin = nil
	c.env = nil
	c.identity = libretro.Identity{}
	return err
}

// call invokes an exported entry point with no input.
func (c *wasmCore) call(name string) ([]byte, bool) {
	if c.plugin == nil {
		return nil, false
	}
	exitCode, out, err := c.plugin.Call(name, nil)
	if err != nil {
		c.logger.Warn("Core call failed", "path", c.identity.LibraryPath, "function", name, "error", err)
		return nil, false
	}
	if exitCode != 0 {
		c.logger.Warn("Core call returned non-zero exit code", "path", c.identity.LibraryPath, "function", name, "exit_code", exitCode)
		return nil, false
	}
	return out, true
}

func (c *wasmCore) log(level extism.LogLevel, message string) {
	switch level {
	case extism.LogLevelError:
		c.logger.Error(message, "path", c.identity.LibraryPath)
	case extism.LogLevelWarn:
		c.logger.Warn(message, "path", c.identity.LibraryPath)
	case extism.LogLevelInfo:
		c.logger.Info(message, "path", c.identity.LibraryPath)
	default:
		c.logger.Debug(message, "path", c.identity.LibraryPath)
	}
}

// environmentFunction creates the host function behind EnvironmentImport.
func (c *wasmCore) environmentFunction() extism.HostFunction {
	fn := extism.NewHostFunctionWithStack(
		EnvironmentImport,
		func(ctx context.Context, p *extism.CurrentPlugin, stack []uint64) {
			cmd := libretro.EnvCmd(uint32(stack[0])) // i32
			payloadOffset := stack[1]                // i64
			stack[0] = 0

			if c.env == nil {
				return
			}

			var payload []byte
			if payloadOffset != 0 {
				var err error
				payload, err = p.ReadBytes(payloadOffset)
				if err != nil {
					p.Log(extism.LogLevelError, fmt.Sprintf("retro_environment: failed to read payload: %v", err))
					return
				}
			}

			command := decodeWire(cmd, payload, payloadOffset != 0)
			if !c.env(command) {
				return
			}

			reply, err := encodeWire(command)
			if err != nil {
				p.Log(extism.LogLevelError, fmt.Sprintf("retro_environment: failed to encode reply: %v", err))
				return
			}
			offset, err := p.WriteBytes(reply)
			if err != nil {
				p.Log(extism.LogLevelError, fmt.Sprintf("retro_environment: failed to write reply: %v", err))
				return
			}
			stack[0] = offset
		},
		[]extism.ValueType{extism.ValueTypeI32, extism.ValueTypeI64}, // cmd, payload_offset
		[]extism.ValueType{extism.ValueTypeI64},                      // reply_offset
	)
	fn.SetNamespace("env")
	return fn
}
