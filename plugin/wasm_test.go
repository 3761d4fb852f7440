package plugin

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/joncooperworks/coreextract/environment"
	"github.com/joncooperworks/coreextract/libretro"
	"github.com/joncooperworks/coreextract/settings"
)

func TestNewWASMLoader(t *testing.T) {
	loader, err := NewWASMLoader()
	if err != nil {
		t.Fatalf("NewWASMLoader() error = %v", err)
	}

	var _ Loader = loader
}

func TestWASMLoader_Load_MissingFile(t *testing.T) {
	loader, err := NewWASMLoader()
	if err != nil {
		t.Fatalf("NewWASMLoader() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "missing_libretro.wasm")
	core, err := loader.Load(Properties{LibraryPath: path})
	if err == nil {
		t.Fatal("WASMLoader.Load() with missing file error = nil, want error")
	}
	if core != nil {
		t.Error("WASMLoader.Load() returned a core on failure")
	}
	if !errors.Is(err, ErrLoad) {
		t.Errorf("WASMLoader.Load() error = %v, want ErrLoad", err)
	}
}

func TestDecodeWire_Classification(t *testing.T) {
	tests := []struct {
		name    string
		cmd     libretro.EnvCmd
		payload string
		present bool
		want    environment.Command
	}{
		{"notice", libretro.EnvSetRotation, "", false, &environment.Notice{Cmd: libretro.EnvSetRotation}},
		{"unknown", libretro.EnvCmd(9999), "{}", true, &environment.Unknown{Cmd: 9999}},
		{"missing payload", libretro.EnvGetSystemDirectory, "", false, &environment.MissingPayload{Cmd: libretro.EnvGetSystemDirectory}},
		{"bad json", libretro.EnvSetPixelFormat, "{", true, &environment.MissingPayload{Cmd: libretro.EnvSetPixelFormat}},
		{"directory", libretro.EnvGetLibretroPath, "", true, &environment.GetDirectory{Cmd: libretro.EnvGetLibretroPath, Kind: environment.LibraryDirectory}},
		{"overscan", libretro.EnvGetOverscan, "", true, &environment.GetOverscan{}},
		{"pixel format", libretro.EnvSetPixelFormat, `{"format":2}`, true, &environment.SetPixelFormat{Format: libretro.PixelFormatRGB565}},
		{"no game", libretro.EnvSetSupportNoGame, `{"bool":true}`, true, &environment.SetSupportNoGame{Supported: true}},
		{"message", libretro.EnvSetMessage, `{"msg":"hi","frames":60}`, true, &environment.SetMessage{Text: "hi", Frames: 60}},
		{"get variable", libretro.EnvGetVariable, `{"key":"core_opt"}`, true, &environment.GetVariable{Key: "core_opt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeWire(tt.cmd, []byte(tt.payload), tt.present)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("decodeWire() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodeWire_VariablesStopAtTerminator(t *testing.T) {
	payload := `{"variables":[
		{"key":"a","value":"A; x|y"},
		{"key":"b","value":"B; 1|2"},
		{"key":"","value":""},
		{"key":"c","value":null},
		{"key":"d","value":"D; p|q"}
	]}`

	got := decodeWire(libretro.EnvSetVariables, []byte(payload), true)
	sv, ok := got.(*environment.SetVariables)
	if !ok {
		t.Fatalf("decodeWire() = %T, want *environment.SetVariables", got)
	}

	want := []settings.Declaration{{Key: "a", Value: "A; x|y"}, {Key: "b", Value: "B; 1|2"}, {Key: "", Value: ""}}
	if len(sv.Variables) != len(want) {
		t.Fatalf("len(Variables) = %d, want %d", len(sv.Variables), len(want))
	}
	for i := range want {
		if sv.Variables[i] != want[i] {
			t.Errorf("Variables[%d] = %+v, want %+v", i, sv.Variables[i], want[i])
		}
	}
}

func TestDecodeWire_Callbacks(t *testing.T) {
	payload := `{"callbacks":{"context_reset":7,"context_destroy":9}}`

	got := decodeWire(libretro.EnvSetHWRender, []byte(payload), true)
	hw, ok := got.(*environment.SetHWRender)
	if !ok {
		t.Fatalf("decodeWire() = %T, want *environment.SetHWRender", got)
	}
	if hw.ContextReset != 7 || hw.ContextDestroy != 9 {
		t.Errorf("SetHWRender = %+v, want reset 7 destroy 9", hw)
	}
}

func TestEncodeWire(t *testing.T) {
	tests := []struct {
		name    string
		command environment.Command
		want    string
	}{
		{"directory", &environment.GetDirectory{Path: "/sys"}, `{"path":"/sys"}`},
		{"empty directory is null", &environment.GetDirectory{}, `{}`},
		{"can dupe", &environment.GetCanDupe{Value: true}, `{"bool":true}`},
		{"overscan", &environment.GetOverscan{Value: false}, `{"bool":false}`},
		{"variable not found", &environment.GetVariable{Key: "k"}, `{}`},
		{"variable found", &environment.GetVariable{Key: "k", Value: "v", Found: true}, `{"value":"v"}`},
		{"update", &environment.GetVariableUpdate{}, `{"bool":false}`},
		{"set command", &environment.SetSupportNoGame{Supported: true}, `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeWire(tt.command)
			if err != nil {
				t.Fatalf("encodeWire() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("encodeWire() = %s, want %s", got, tt.want)
			}
		})
	}
}
