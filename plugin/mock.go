package plugin

import (
	"github.com/joncooperworks/coreextract/environment"
	"github.com/joncooperworks/coreextract/libretro"
	"github.com/joncooperworks/coreextract/settings"
)

// MockCore is an in-memory Core for testing.
// This is exported so it can be used by tests in other packages.
type MockCore struct {
	ID      libretro.Identity
	Version uint32
	Info    libretro.SystemInfo

	// Variables are declared through SET_VARIABLES from inside
	// SetEnvironment when non-empty.
	Variables []settings.Declaration
	// NoGame is announced through SET_SUPPORT_NO_GAME from inside
	// SetEnvironment when true.
	NoGame bool

	// OnSetEnvironment and OnInit run after the built-in behaviour and
	// may issue further environment calls.
	OnSetEnvironment func(env environment.Func)
	OnInit           func(env environment.Func)

	InitCalls   int
	DeinitCalls int
	CloseCalls  int

	env    environment.Func
	closed bool
}

// NewMockCore creates a core that reports the current API version.
func NewMockCore(info libretro.SystemInfo) *MockCore {
	return &MockCore{
		Version: libretro.APIVersion,
		Info:    info,
	}
}

func (m *MockCore) Identity() libretro.Identity {
	return m.ID
}

func (m *MockCore) SetEnvironment(env environment.Func) {
	m.env = env
	if len(m.Variables) > 0 {
		env(&environment.SetVariables{Variables: m.Variables})
	}
	if m.NoGame {
		env(&environment.SetSupportNoGame{Supported: true})
	}
	if m.OnSetEnvironment != nil {
		m.OnSetEnvironment(env)
	}
}

func (m *MockCore) Init() {
	m.InitCalls++
	if m.OnInit != nil && m.env != nil {
		m.OnInit(m.env)
	}
}

func (m *MockCore) Deinit() {
	m.DeinitCalls++
}

func (m *MockCore) APIVersion() uint32 {
	return m.Version
}

func (m *MockCore) SystemInfo() libretro.SystemInfo {
	return m.Info
}

// Close counts every call but only releases state once.
func (m *MockCore) Close() error {
	m.CloseCalls++
	if m.closed {
		return nil
	}
	m.closed = true
	m.env = nil
	return nil
}

// Closed reports whether Close has been called.
func (m *MockCore) Closed() bool {
	return m.closed
}

// MockLoader hands out preconfigured cores by library path.
// This is exported so it can be used by tests in other packages.
type MockLoader struct {
	cores  map[string]*MockCore
	errors map[string]error
	loaded []string
}

// NewMockLoader creates an empty mock loader.
func NewMockLoader() *MockLoader {
	return &MockLoader{
		cores:  make(map[string]*MockCore),
		errors: make(map[string]error),
	}
}

// SetCore makes Load return core for path.
func (ml *MockLoader) SetCore(path string, core *MockCore) {
	ml.cores[path] = core
}

// SetError makes Load fail with err for path.
func (ml *MockLoader) SetError(path string, err error) {
	ml.errors[path] = err
}

// Loaded returns the paths Load was called with, in order.
func (ml *MockLoader) Loaded() []string {
	return ml.loaded
}

// Load returns the core set for props.LibraryPath. Cores without an
// identity get the one derived from props.
func (ml *MockLoader) Load(props Properties) (Core, error) {
	ml.loaded = append(ml.loaded, props.LibraryPath)
	if err, ok := ml.errors[props.LibraryPath]; ok {
		return nil, err
	}
	core, ok := ml.cores[props.LibraryPath]
	if !ok {
		return nil, &LoadError{Path: props.LibraryPath, Message: "no such core"}
	}
	if core.ID.ID == "" {
		core.ID = props.Identity()
	}
	return core, nil
}
