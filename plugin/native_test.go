//go:build cgo && unix

package plugin

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"unsafe"

	"github.com/joncooperworks/coreextract/catalog"
	"github.com/joncooperworks/coreextract/environment"
	"github.com/joncooperworks/coreextract/libretro"
	"github.com/joncooperworks/coreextract/settings"
)

// Shared libraries built from testdata/core.c.
var testCores struct {
	complete      string
	missingSymbol string
	err           error
}

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "coreextract-native")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	testCores.complete, testCores.err = buildTestCore(dir, "complete_libretro.so")
	if testCores.err == nil {
		testCores.missingSymbol, testCores.err = buildTestCore(dir, "missing_libretro.so", "-DOMIT_CHEAT_SET")
	}

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func buildTestCore(dir, name string, defines ...string) (string, error) {
	cc := strings.Fields(os.Getenv("CC"))
	if len(cc) == 0 {
		cc = []string{"cc"}
	}
	if _, err := exec.LookPath(cc[0]); err != nil {
		return "", err
	}

	out := filepath.Join(dir, name)
	args := append(cc[1:], "-shared", "-fPIC", "-o", out)
	args = append(args, defines...)
	args = append(args, filepath.Join("testdata", "core.c"))
	if output, err := exec.Command(cc[0], args...).CombinedOutput(); err != nil {
		return "", fmt.Errorf("%s: %w\n%s", cc[0], err, output)
	}
	return out, nil
}

func requireTestCores(t *testing.T) {
	t.Helper()
	if testCores.err != nil {
		t.Skipf("test core not built: %v", testCores.err)
	}
}

func TestNativeLoader_MissingSymbol(t *testing.T) {
	requireTestCores(t)

	core, err := NewNativeLoader().Load(Properties{LibraryPath: testCores.missingSymbol})
	if core != nil {
		t.Fatal("Load() returned a core for a library missing an entry point")
	}

	var symErr *SymbolError
	if !errors.As(err, &symErr) {
		t.Fatalf("Load() error = %v, want *SymbolError", err)
	}
	if symErr.Symbol != libretro.SymCheatSet {
		t.Errorf("Symbol = %q, want %q", symErr.Symbol, libretro.SymCheatSet)
	}
	if !errors.Is(err, ErrSymbol) {
		t.Error("errors.Is(err, ErrSymbol) = false")
	}
}

func TestNativeLoader_MissingLibrary(t *testing.T) {
	core, err := NewNativeLoader().Load(Properties{LibraryPath: filepath.Join(t.TempDir(), "absent_libretro.so")})
	if core != nil {
		t.Fatal("Load() returned a core for a missing library")
	}

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Load() error = %v, want *LoadError", err)
	}
	if loadErr.Message == "" {
		t.Error("LoadError carries no loader message")
	}
}

func TestNativeCore_Lifecycle(t *testing.T) {
	requireTestCores(t)

	out := t.TempDir()
	system := t.TempDir()
	core, err := NewNativeLoader().Load(Properties{
		LibraryPath:      testCores.complete,
		SystemDirectory:  system,
		ContentDirectory: system,
		SaveDirectory:    system,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer core.Close()

	if got := core.Identity().ID; got != "gameclient.complete" {
		t.Errorf("Identity().ID = %q, want %q", got, "gameclient.complete")
	}
	if got := core.APIVersion(); got != libretro.APIVersion {
		t.Errorf("APIVersion() = %d, want %d", got, libretro.APIVersion)
	}
	wantInfo := libretro.SystemInfo{
		LibraryName:     "Test Core",
		LibraryVersion:  "0.1",
		ValidExtensions: "tst|bin",
		NeedFullpath:    true,
	}
	if got := core.SystemInfo(); got != wantInfo {
		t.Errorf("SystemInfo() = %+v, want %+v", got, wantInfo)
	}

	d := environment.New(environment.WithOutputRoot(out), environment.WithCatalog(catalog.New()))
	d.Initialize(core, &environment.CallbackRegistry{})
	core.Init()

	// Bits set by the core when each environment answer matched.
	const allResults = 0x3f
	if got, ok := callUnsigned(core, "test_results"); !ok || got != allResults {
		t.Errorf("core results = %#x (ok=%v), want %#x", got, ok, allResults)
	}
	if !d.SupportsNoGame() {
		t.Error("SupportsNoGame() = false after SET_SUPPORT_NO_GAME")
	}

	data, err := os.ReadFile(settings.Path(d.AddonDir()))
	if err != nil {
		t.Fatalf("settings.xml not written: %v", err)
	}
	for _, want := range []string{`id="test_speed" values="Normal|Fast"`, `id="test_region" values="Auto|NTSC|PAL"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("settings.xml missing %q:\n%s", want, data)
		}
	}

	core.Deinit()
	if got, _ := callUnsigned(core, "test_deinit_calls"); got != 1 {
		t.Errorf("retro_deinit calls = %d, want 1", got)
	}
	d.Deinitialize()

	if err := core.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := core.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if activeCore != nil {
		t.Error("environment still routed to a closed core")
	}
}

func TestDecodeNative(t *testing.T) {
	str := func(s string) *string { return &s }
	disk := environment.DiskControl{
		SetEjectState:     0x201,
		GetEjectState:     0x202,
		GetImageIndex:     0x203,
		SetImageIndex:     0x204,
		GetNumImages:      0x205,
		ReplaceImageIndex: 0x206,
		AddImageIndex:     0x207,
	}

	tests := []struct {
		name    string
		cmd     libretro.EnvCmd
		payload func(b *payloadBuffer) unsafe.Pointer
		want    environment.Command
	}{
		{
			name: "notice without payload",
			cmd:  libretro.EnvSetRotation,
			want: &environment.Notice{Cmd: libretro.EnvSetRotation},
		},
		{
			name: "experimental notice",
			cmd:  libretro.EnvGetSensorInterface,
			want: &environment.Notice{Cmd: libretro.EnvGetSensorInterface},
		},
		{
			name: "unknown code",
			cmd:  libretro.EnvCmd(999),
			want: &environment.Unknown{Cmd: libretro.EnvCmd(999)},
		},
		{
			name: "null pixel format",
			cmd:  libretro.EnvSetPixelFormat,
			want: &environment.MissingPayload{Cmd: libretro.EnvSetPixelFormat},
		},
		{
			name: "null variables",
			cmd:  libretro.EnvSetVariables,
			want: &environment.MissingPayload{Cmd: libretro.EnvSetVariables},
		},
		{
			name:    "system directory",
			cmd:     libretro.EnvGetSystemDirectory,
			payload: func(b *payloadBuffer) unsafe.Pointer { return b.stringSlot("stale") },
			want:    &environment.GetDirectory{Cmd: libretro.EnvGetSystemDirectory, Kind: environment.SystemDirectory},
		},
		{
			name:    "libretro path",
			cmd:     libretro.EnvGetLibretroPath,
			payload: func(b *payloadBuffer) unsafe.Pointer { return b.stringSlot("stale") },
			want:    &environment.GetDirectory{Cmd: libretro.EnvGetLibretroPath, Kind: environment.LibraryDirectory},
		},
		{
			name:    "save directory",
			cmd:     libretro.EnvGetSaveDirectory,
			payload: func(b *payloadBuffer) unsafe.Pointer { return b.stringSlot("stale") },
			want:    &environment.GetDirectory{Cmd: libretro.EnvGetSaveDirectory, Kind: environment.SaveDirectory},
		},
		{
			name:    "overscan",
			cmd:     libretro.EnvGetOverscan,
			payload: func(b *payloadBuffer) unsafe.Pointer { return b.boolean(true) },
			want:    &environment.GetOverscan{},
		},
		{
			name:    "message",
			cmd:     libretro.EnvSetMessage,
			payload: func(b *payloadBuffer) unsafe.Pointer { return b.message("Loading", 60) },
			want:    &environment.SetMessage{Text: "Loading", Frames: 60},
		},
		{
			name:    "pixel format",
			cmd:     libretro.EnvSetPixelFormat,
			payload: func(b *payloadBuffer) unsafe.Pointer { return b.integer(2) },
			want:    &environment.SetPixelFormat{Format: libretro.PixelFormat(2)},
		},
		{
			name:    "keyboard callback",
			cmd:     libretro.EnvSetKeyboardCallback,
			payload: func(b *payloadBuffer) unsafe.Pointer { return b.keyboard(0x100) },
			want:    &environment.SetKeyboardCallback{Callback: 0x100},
		},
		{
			name:    "disk control",
			cmd:     libretro.EnvSetDiskControlInterface,
			payload: func(b *payloadBuffer) unsafe.Pointer { return b.diskControl(disk) },
			want:    &environment.SetDiskControl{Interface: disk},
		},
		{
			name:    "hw render",
			cmd:     libretro.EnvSetHWRender,
			payload: func(b *payloadBuffer) unsafe.Pointer { return b.hwRender(0x300, 0x301) },
			want:    &environment.SetHWRender{ContextReset: 0x300, ContextDestroy: 0x301},
		},
		{
			name:    "audio callback",
			cmd:     libretro.EnvSetAudioCallback,
			payload: func(b *payloadBuffer) unsafe.Pointer { return b.audio(0x400, 0x401) },
			want:    &environment.SetAudioCallback{Callback: 0x400, SetState: 0x401},
		},
		{
			name:    "frame time callback",
			cmd:     libretro.EnvSetFrameTimeCallback,
			payload: func(b *payloadBuffer) unsafe.Pointer { return b.frameTime(0x500, 16667) },
			want:    &environment.SetFrameTimeCallback{Callback: 0x500, Reference: 16667},
		},
		{
			name:    "get variable",
			cmd:     libretro.EnvGetVariable,
			payload: func(b *payloadBuffer) unsafe.Pointer { return b.variable("core_speed", "stale") },
			want:    &environment.GetVariable{Key: "core_speed"},
		},
		{
			name: "variables",
			cmd:  libretro.EnvSetVariables,
			payload: func(b *payloadBuffer) unsafe.Pointer {
				return b.variables([]payloadVariable{
					{Key: str("core_speed"), Value: str("Speed; Normal|Fast")},
					{Key: str("core_region"), Value: str("Region; Auto|PAL")},
				})
			},
			want: &environment.SetVariables{Variables: []settings.Declaration{
				{Key: "core_speed", Value: "Speed; Normal|Fast"},
				{Key: "core_region", Value: "Region; Auto|PAL"},
			}},
		},
		{
			name: "variables end at null value",
			cmd:  libretro.EnvSetVariables,
			payload: func(b *payloadBuffer) unsafe.Pointer {
				return b.variables([]payloadVariable{
					{Key: str("a"), Value: str("A; x|y")},
					{Key: str("b")},
					{Key: str("c"), Value: str("C; x|y")},
				})
			},
			want: &environment.SetVariables{Variables: []settings.Declaration{{Key: "a", Value: "A; x|y"}}},
		},
		{
			name: "variables end at null key",
			cmd:  libretro.EnvSetVariables,
			payload: func(b *payloadBuffer) unsafe.Pointer {
				return b.variables([]payloadVariable{{Value: str("A; x|y")}, {Key: str("b"), Value: str("B; x|y")}})
			},
			want: &environment.SetVariables{},
		},
		{
			name: "empty value is not a terminator",
			cmd:  libretro.EnvSetVariables,
			payload: func(b *payloadBuffer) unsafe.Pointer {
				return b.variables([]payloadVariable{{Key: str("a"), Value: str("")}, {Key: str("b"), Value: str("B; x|y")}})
			},
			want: &environment.SetVariables{Variables: []settings.Declaration{
				{Key: "a", Value: ""},
				{Key: "b", Value: "B; x|y"},
			}},
		},
		{
			name:    "variable update",
			cmd:     libretro.EnvGetVariableUpdate,
			payload: func(b *payloadBuffer) unsafe.Pointer { return b.boolean(true) },
			want:    &environment.GetVariableUpdate{},
		},
		{
			name:    "support no game",
			cmd:     libretro.EnvSetSupportNoGame,
			payload: func(b *payloadBuffer) unsafe.Pointer { return b.boolean(true) },
			want:    &environment.SetSupportNoGame{Supported: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &payloadBuffer{}
			defer b.Free()

			var data unsafe.Pointer
			if tt.payload != nil {
				data = tt.payload(b)
			}
			if got := decodeNative(tt.cmd, data); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("decodeNative(%s) = %#v, want %#v", tt.cmd, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	core := newDetachedCore(nil)
	defer core.Close()
	b := &payloadBuffer{}
	defer b.Free()

	t.Run("directory", func(t *testing.T) {
		p := b.stringSlot("stale")
		core.encode(&environment.GetDirectory{Path: "/opt/system"}, p)
		if got, ok := readString(p); !ok || got != "/opt/system" {
			t.Errorf("directory = %q (ok=%v), want %q", got, ok, "/opt/system")
		}
	})

	t.Run("empty directory is null", func(t *testing.T) {
		p := b.stringSlot("stale")
		core.encode(&environment.GetDirectory{}, p)
		if got, ok := readString(p); ok {
			t.Errorf("directory = %q, want null pointer", got)
		}
	})

	t.Run("bool answers", func(t *testing.T) {
		tests := []struct {
			name    string
			command environment.Command
			initial bool
			want    bool
		}{
			{"overscan", &environment.GetOverscan{Value: false}, true, false},
			{"can dupe", &environment.GetCanDupe{Value: true}, false, true},
			{"variable update", &environment.GetVariableUpdate{Updated: false}, true, false},
		}
		for _, tt := range tests {
			p := b.boolean(tt.initial)
			core.encode(tt.command, p)
			if got := readBool(p); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
			}
		}
	})

	t.Run("variable not found is null", func(t *testing.T) {
		p := b.variable("core_speed", "stale")
		core.encode(&environment.GetVariable{Key: "core_speed"}, p)
		if got, ok := readVariableValue(p); ok {
			t.Errorf("value = %q, want null pointer", got)
		}
	})

	t.Run("variable found", func(t *testing.T) {
		p := b.variable("core_speed", "stale")
		core.encode(&environment.GetVariable{Key: "core_speed", Value: "Fast", Found: true}, p)
		if got, ok := readVariableValue(p); !ok || got != "Fast" {
			t.Errorf("value = %q (ok=%v), want %q", got, ok, "Fast")
		}
	})

	t.Run("declarations leave payload untouched", func(t *testing.T) {
		p := b.boolean(true)
		core.encode(&environment.SetSupportNoGame{Supported: false}, p)
		if !readBool(p) {
			t.Error("payload of a non-query command was overwritten")
		}
	})
}

func TestEnvironmentCallback(t *testing.T) {
	saved := activeCore
	t.Cleanup(func() { activeCore = saved })

	b := &payloadBuffer{}
	defer b.Free()

	t.Run("no active core", func(t *testing.T) {
		activeCore = nil
		if callEnvironment(uint32(libretro.EnvGetCanDupe), b.boolean(false)) {
			t.Error("callback answered with no core bound")
		}
	})

	t.Run("answer is written back", func(t *testing.T) {
		core := newDetachedCore(func(cmd environment.Command) bool {
			if c, ok := cmd.(*environment.GetCanDupe); ok {
				c.Value = true
			}
			return true
		})
		defer core.Close()
		activeCore = core

		p := b.boolean(false)
		if !callEnvironment(uint32(libretro.EnvGetCanDupe), p) {
			t.Fatal("callback returned false")
		}
		if !readBool(p) {
			t.Error("answer not written to payload")
		}
	})

	t.Run("refused command leaves payload", func(t *testing.T) {
		core := newDetachedCore(func(cmd environment.Command) bool {
			if c, ok := cmd.(*environment.GetDirectory); ok {
				c.Path = "/elsewhere"
			}
			return false
		})
		defer core.Close()
		activeCore = core

		p := b.stringSlot("stale")
		if callEnvironment(uint32(libretro.EnvGetSystemDirectory), p) {
			t.Error("callback returned true for a refused command")
		}
		if got, _ := readString(p); got != "stale" {
			t.Errorf("payload = %q, want it untouched", got)
		}
	})

	t.Run("panic answers false", func(t *testing.T) {
		core := newDetachedCore(func(environment.Command) bool {
			panic("handler failed")
		})
		defer core.Close()
		activeCore = core

		if callEnvironment(uint32(libretro.EnvGetCanDupe), b.boolean(false)) {
			t.Error("callback returned true after a panic")
		}
	})
}
