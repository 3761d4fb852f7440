// Package scan drives every core in a directory through load, version
// check, init, system info and teardown, collecting what the environment
// dispatcher extracts along the way.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joncooperworks/coreextract/addon"
	"github.com/joncooperworks/coreextract/catalog"
	"github.com/joncooperworks/coreextract/checksum"
	"github.com/joncooperworks/coreextract/config"
	"github.com/joncooperworks/coreextract/environment"
	"github.com/joncooperworks/coreextract/libretro"
	"github.com/joncooperworks/coreextract/logging"
	"github.com/joncooperworks/coreextract/plugin"
)

// LoadFunc binds the core described by props.
type LoadFunc func(props plugin.Properties) (plugin.Core, error)

// Result is the outcome for one file.
type Result struct {
	Name string
	Path string
	ID   string

	Info           libretro.SystemInfo
	SupportsNoGame bool

	// Registered lists the callback slots the core filled in.
	Registered []string
	// Artifacts are the files written for this core, stamps and manifest
	// included.
	Artifacts []string

	Skipped bool
	// Err is set when the core could not be bound or one of its artifacts
	// could not be written.
	Err error
}

// Summary collects the results of one scan, in directory order.
type Summary struct {
	Dir     string
	Results []Result
}

// Count returns how many files were processed, skipped and failed.
func (s *Summary) Count() (processed, skipped, failed int) {
	for _, r := range s.Results {
		switch {
		case r.Skipped:
			skipped++
		case r.Err != nil:
			failed++
		default:
			processed++
		}
	}
	return processed, skipped, failed
}

// Scanner processes cores one at a time. It owns the session catalog and
// the dispatcher and is not safe for concurrent use.
type Scanner struct {
	cfg        *config.Config
	load       LoadFunc
	logger     *slog.Logger
	report     io.Writer
	signer     checksum.Signer
	platform   libretro.Platform
	catalog    *catalog.Catalog
	dispatcher *environment.Dispatcher
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLoader replaces plugin.Load, e.g. with a mock loader in tests.
func WithLoader(load LoadFunc) Option {
	return func(s *Scanner) {
		s.load = load
	}
}

// WithLogger sets the logger for progress and failures. Without it the
// process logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithReport sets where the per-core system info report is printed.
func WithReport(w io.Writer) Option {
	return func(s *Scanner) {
		s.report = w
	}
}

// WithSigner signs each core's checksum manifest.
func WithSigner(signer checksum.Signer) Option {
	return func(s *Scanner) {
		s.signer = signer
	}
}

// WithPlatform sets the platform named in addon.xml library attributes.
func WithPlatform(p libretro.Platform) Option {
	return func(s *Scanner) {
		s.platform = p
	}
}

// New creates a scanner for cfg. A nil cfg means config.Default().
func New(cfg *config.Config, opts ...Option) *Scanner {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Scanner{
		cfg:     cfg,
		load:    plugin.Load,
		logger:  logging.Logger(),
		report:  os.Stdout,
		catalog: catalog.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dispatcher = environment.New(
		environment.WithLogger(s.logger),
		environment.WithCatalog(s.catalog),
		environment.WithOutputRoot(cfg.OutputRoot),
	)
	return s
}

// Run scans the directory containing libraryPath. Only the directory part
// of libraryPath is used; a bare file name scans the working directory.
func (s *Scanner) Run(ctx context.Context, libraryPath string) (*Summary, error) {
	dir := libretro.Directory(libraryPath)
	if dir == "" {
		dir = "."
	}
	return s.ScanDir(ctx, dir)
}

// ScanDir processes every candidate file in dir in name order. It stops at
// the first version mismatch, and at the first load failure when the
// configuration asks for it; otherwise failing cores are recorded and the
// scan moves on.
func (s *Scanner) ScanDir(ctx context.Context, dir string) (*Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrDirectoryOpen, dir, err)
	}

	summary := &Summary{Dir: dir}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		name := entry.Name()
		if entry.IsDir() || !libretro.HasExtension(name, s.cfg.Extensions) {
			continue
		}

		if s.ShouldSkip(name) {
			s.logger.Info("Skipping core on crash list", "name", name)
			summary.Results = append(summary.Results, Result{Name: name, Path: filepath.Join(dir, name), Skipped: true})
			continue
		}

		result, err := s.ProcessFile(dir, name)
		summary.Results = append(summary.Results, *result)
		if err == nil {
			continue
		}

		var versionErr *VersionError
		if errors.As(err, &versionErr) {
			fmt.Fprintf(s.report, "Expected libretro api v%d, found version %d\n", libretro.APIVersion, versionErr.Got)
			return summary, err
		}

		fmt.Fprintf(s.report, "Failed to load %s\n", result.Path)
		if s.cfg.AbortOnLoadFailure {
			return summary, err
		}
		s.logger.Warn("Skipping core that failed to load", "path", result.Path, "error", err)
	}

	processed, skipped, failed := summary.Count()
	s.logger.Info("Scan complete", "dir", dir, "processed", processed, "skipped", skipped, "failed", failed)
	return summary, nil
}

// ShouldSkip reports whether name is on the crash list. The list holds
// file names without extension so one entry covers every platform.
func (s *Scanner) ShouldSkip(name string) bool {
	base := libretro.RemoveExtension(name)
	for _, skip := range s.cfg.Skip {
		if base == skip {
			return true
		}
	}
	return false
}

// ShouldSkipDeinit reports whether name contains a pattern of cores that
// crash in retro_deinit.
func (s *Scanner) ShouldSkipDeinit(name string) bool {
	for _, pattern := range s.cfg.SkipDeinit {
		if pattern != "" && strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

// ProcessFile drives one core. Whatever happens after the core is bound,
// it is deinitialized (unless on the deinit skip list) and unloaded, the
// dispatcher is unbound and the catalog is reset before returning.
//
// The returned error is the bind failure or a *VersionError; artifact
// write failures are only recorded in the result.
func (s *Scanner) ProcessFile(dir, name string) (result *Result, err error) {
	path := filepath.Join(dir, name)
	result = &Result{Name: name, Path: path}

	fmt.Fprintf(s.report, "libretroCore: %s\n", name)

	core, err := s.load(plugin.Properties{
		LibraryPath:      path,
		SystemDirectory:  dir,
		ContentDirectory: dir,
		SaveDirectory:    dir,
		Namespace:        s.cfg.Namespace,
		Suffixes:         s.cfg.Suffixes,
		Logger:           s.logger,
	})
	if err != nil {
		result.Err = err
		return result, err
	}
	identity := core.Identity()
	result.ID = identity.ID

	initialized := false
	defer func() {
		if initialized {
			if s.ShouldSkipDeinit(name) {
				s.logger.Debug("Skipping retro_deinit", "name", name)
			} else {
				core.Deinit()
			}
		}
		if cerr := core.Close(); cerr != nil {
			s.logger.Warn("Failed to unload core", "path", path, "error", cerr)
		}
		s.dispatcher.Deinitialize()
		s.catalog.Reset()
	}()

	if version := core.APIVersion(); version != libretro.APIVersion {
		result.Err = &VersionError{Path: path, Got: version}
		return result, result.Err
	}

	// A fresh registry per core; nothing from the previous core survives.
	registry := &environment.CallbackRegistry{}
	s.catalog.Reset()
	s.dispatcher.Initialize(core, registry)

	core.Init()
	initialized = true

	result.Info = core.SystemInfo()
	result.SupportsNoGame = s.dispatcher.SupportsNoGame()
	result.Registered = registry.Registered()
	s.printInfo(result)

	result.Artifacts = append(result.Artifacts, s.dispatcher.Artifacts()...)
	if werr := s.dispatcher.WriteErr(); werr != nil {
		result.Err = werr
	}

	s.writeAddon(identity, result)
	return result, nil
}

func (s *Scanner) printInfo(r *Result) {
	fmt.Fprintf(s.report, "Library name:    %s\n", r.Info.LibraryName)
	fmt.Fprintf(s.report, "supported_extensions = %q\n", r.Info.ValidExtensions)
	fmt.Fprintf(s.report, "version = %q\n", r.Info.LibraryVersion)
	fmt.Fprintf(s.report, "need_fullpath = \"%t\"\n", r.Info.NeedFullpath)
	fmt.Fprintf(s.report, "block_extract = \"%t\"\n", r.Info.BlockExtract)
	if r.SupportsNoGame {
		fmt.Fprintf(s.report, "supports_no_game = \"true\"\n")
	}
	fmt.Fprintln(s.report)
}

// writeAddon writes addon.xml and the checksum files for the bound core.
func (s *Scanner) writeAddon(identity libretro.Identity, r *Result) {
	addonDir := s.dispatcher.AddonDir()

	if s.cfg.WriteAddonXML {
		path, err := addon.Save(addonDir, &addon.Addon{
			Identity:       identity,
			Info:           r.Info,
			SupportsNoGame: r.SupportsNoGame,
			Platform:       s.platform,
		})
		if err != nil {
			s.recordErr(r, err)
		} else {
			r.Artifacts = append(r.Artifacts, path)
		}
	}

	if !s.cfg.WriteChecksums || len(r.Artifacts) == 0 {
		return
	}

	sources := append([]string(nil), r.Artifacts...)
	for _, path := range sources {
		stamp, _, err := checksum.Stamp(path)
		if err != nil {
			s.recordErr(r, err)
			continue
		}
		r.Artifacts = append(r.Artifacts, stamp)
	}

	written, err := checksum.WriteManifest(addonDir, sources, s.signer)
	r.Artifacts = append(r.Artifacts, written...)
	if err != nil {
		s.recordErr(r, err)
	}
}

func (s *Scanner) recordErr(r *Result, err error) {
	s.logger.Error("Failed to write add-on file", "core", r.ID, "error", err)
	if r.Err == nil {
		r.Err = err
	}
}
