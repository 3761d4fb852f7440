// Package environment answers the environment callback a bound core
// invokes while the extractor drives it.
//
// Loaders decode each raw (command, payload) pair into a typed Command,
// hand it to Dispatcher.Dispatch on the core's own call stack, and encode
// whatever the dispatcher filled in back into the payload. Dispatch never
// fails: unknown commands are accepted so a core is never aborted by a
// frontend that predates it.
package environment

import (
	"log/slog"
	"path/filepath"

	"github.com/joncooperworks/coreextract/catalog"
	"github.com/joncooperworks/coreextract/libretro"
	"github.com/joncooperworks/coreextract/logging"
	"github.com/joncooperworks/coreextract/settings"
)

// DefaultOutputRoot is the extraction root, relative to three levels above
// the library directory unless configured as an absolute path.
const DefaultOutputRoot = "libretro-extract"

// Func is the environment callback as loaders see it.
type Func func(Command) bool

// Host is the part of a bound core the dispatcher needs.
type Host interface {
	Identity() libretro.Identity
	SetEnvironment(Func)
}

// State is the dispatcher's binding state.
type State int

const (
	// StateUnbound - no core is attached; every Dispatch returns false.
	StateUnbound State = iota

	// StateBound - a core and a callback registry are attached.
	StateBound
)

func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateBound:
		return "bound"
	default:
		return "unknown"
	}
}

// Dispatcher is the environment for one core at a time. It is driven
// synchronously from the core's call stack and is not safe for concurrent
// use.
type Dispatcher struct {
	logger     *slog.Logger
	catalog    *catalog.Catalog
	outputRoot string

	state          State
	identity       libretro.Identity
	registry       *CallbackRegistry
	supportsNoGame bool
	artifacts      []string
	writeErr       error
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for per-command tracing. Without it the
// process logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithCatalog sets the string catalog labels are interned into.
func WithCatalog(c *catalog.Catalog) Option {
	return func(d *Dispatcher) {
		d.catalog = c
	}
}

// WithOutputRoot sets the extraction root artifacts are written below.
func WithOutputRoot(root string) Option {
	return func(d *Dispatcher) {
		d.outputRoot = root
	}
}

// New creates an unbound dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		logger:     logging.Logger(),
		outputRoot: DefaultOutputRoot,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.catalog == nil {
		d.catalog = catalog.New()
	}
	return d
}

// Initialize binds the dispatcher to host and installs it as the host's
// environment callback. It must run before the core's init entry point,
// which may already query the environment. Any previous binding is
// replaced, not merged.
func (d *Dispatcher) Initialize(host Host, registry *CallbackRegistry) {
	if registry == nil {
		registry = &CallbackRegistry{}
	}
	d.identity = host.Identity()
	d.registry = registry
	d.supportsNoGame = false
	d.artifacts = nil
	d.writeErr = nil
	d.state = StateBound
	host.SetEnvironment(d.Dispatch)
}

// Deinitialize returns the dispatcher to the unbound state.
func (d *Dispatcher) Deinitialize() {
	d.identity = libretro.Identity{}
	d.registry = nil
	d.state = StateUnbound
}

// State returns the current binding state.
func (d *Dispatcher) State() State {
	return d.state
}

// SupportsNoGame reports what the bound core declared with
// SET_SUPPORT_NO_GAME.
func (d *Dispatcher) SupportsNoGame() bool {
	return d.supportsNoGame
}

// Artifacts returns the files written for the bound core so far.
func (d *Dispatcher) Artifacts() []string {
	return d.artifacts
}

// WriteErr returns the first error hit while writing artifacts, if any.
func (d *Dispatcher) WriteErr() error {
	return d.writeErr
}

// AddonDir is the directory artifacts for the bound core are written to.
func (d *Dispatcher) AddonDir() string {
	return AddonDir(d.identity, d.outputRoot)
}

// AddonDir returns <libraryDir>/../../../<root>/addons/<id>, or
// <root>/addons/<id> when root is absolute.
func AddonDir(id libretro.Identity, root string) string {
	if filepath.IsAbs(root) {
		return filepath.Join(root, "addons", id.ID)
	}
	return id.LibraryDirectory + "/../../../" + root + "/addons/" + id.ID
}

// Dispatch answers one command. It returns false when unbound or when a
// command that needs a payload arrived without one, and true otherwise.
func (d *Dispatcher) Dispatch(cmd Command) bool {
	if d.state != StateBound {
		return false
	}

	d.logger.Debug("environment call", "cmd", cmd.Code().String(), "core", d.identity.ID)

	switch c := cmd.(type) {
	case *GetDirectory:
		c.Path = d.directory(c.Kind)

	case *GetOverscan:
		c.Value = false

	case *GetCanDupe:
		c.Value = true

	case *GetVariable:
		c.Value, c.Found = "", false

	case *GetVariableUpdate:
		c.Updated = false

	case *SetVariables:
		d.extractSettings(c.Variables)

	case *SetSupportNoGame:
		d.supportsNoGame = c.Supported

	case *SetPixelFormat:
		d.logger.Debug("pixel format requested", "format", c.Format.String())

	case *SetMessage:
		d.logger.Debug("core message", "text", c.Text, "frames", c.Frames)

	case *SetKeyboardCallback:
		d.registry.KeyboardEvent = c.Callback

	case *SetDiskControl:
		d.registry.Disk = c.Interface

	case *SetHWRender:
		d.registry.HWContextReset = c.ContextReset
		d.registry.HWContextDestroy = c.ContextDestroy

	case *SetAudioCallback:
		d.registry.AudioCallback = c.Callback
		d.registry.AudioSetState = c.SetState

	case *SetFrameTimeCallback:
		d.registry.FrameTime = c.Callback
		d.registry.FrameTimeReference = c.Reference

	case *MissingPayload:
		if PayloadRequired(c.Cmd) {
			d.logger.Warn("environment call without required payload", "cmd", c.Cmd.String(), "core", d.identity.ID)
			return false
		}

	case *Notice, *Unknown:
	}

	return true
}

func (d *Dispatcher) directory(kind DirectoryKind) string {
	switch kind {
	case SystemDirectory:
		return d.identity.SystemDirectory
	case ContentDirectory:
		return d.identity.ContentDirectory
	case LibraryDirectory:
		return d.identity.LibraryDirectory
	case SaveDirectory:
		return d.identity.SaveDirectory
	}
	return ""
}

func (d *Dispatcher) extractSettings(vars []settings.Declaration) {
	addonDir := d.AddonDir()

	// A repeated declaration rewrites both files, so labels start over.
	d.catalog.Reset()
	extractor := settings.NewExtractor(addonDir, vars, d.catalog)

	d.logger.Info("extracting settings", "core", d.identity.ID, "declared", len(vars), "retained", len(extractor.Descriptors()), "dir", addonDir)

	if path, err := extractor.PrintSettings(); err != nil {
		d.recordErr(err)
	} else {
		d.addArtifact(path)
	}

	if path, err := extractor.PrintLanguage(); err != nil {
		d.recordErr(err)
	} else {
		d.addArtifact(path)
	}
}

func (d *Dispatcher) addArtifact(path string) {
	for _, p := range d.artifacts {
		if p == path {
			return
		}
	}
	d.artifacts = append(d.artifacts, path)
}

func (d *Dispatcher) recordErr(err error) {
	d.logger.Error("failed to write settings artifact", "core", d.identity.ID, "error", err)
	if d.writeErr == nil {
		d.writeErr = err
	}
}
