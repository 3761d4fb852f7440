// Package config loads coreextract settings from defaults, an optional
// file and COREEXTRACT_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/joncooperworks/coreextract/libretro"
)

// EnvPrefix prefixes every environment override, e.g.
// COREEXTRACT_OUTPUT_ROOT or COREEXTRACT_LOG_LEVEL.
const EnvPrefix = "COREEXTRACT"

// DefaultSkip lists cores that crash when loaded, by file name without
// extension.
var DefaultSkip = []string{
	"genesis_plus_gx_libretro",
	"mame078_libretro",
	"nxengine_libretro",
	"pcsx_rearmed_libretro",
	"prboom_libretro",
	"snes9x_next_libretro",
	"vba_next_libretro",
	"vbam_libretro",
	"mame_libretro",
}

// DefaultSkipDeinit lists file name prefixes of cores whose deinit entry
// point must not be called.
var DefaultSkipDeinit = []string{"mednafen_"}

// Config holds every setting the scan and the CLI read.
type Config struct {
	OutputRoot string   `mapstructure:"output_root"`
	Namespace  string   `mapstructure:"namespace"`
	Suffixes   []string `mapstructure:"suffixes"`
	Extensions []string `mapstructure:"extensions"`

	Skip       []string `mapstructure:"skip"`
	SkipDeinit []string `mapstructure:"skip_deinit"`

	// AbortOnLoadFailure stops the scan at the first core that cannot be
	// bound instead of skipping it.
	AbortOnLoadFailure bool `mapstructure:"abort_on_load_failure"`

	WriteAddonXML  bool `mapstructure:"write_addon_xml"`
	WriteChecksums bool `mapstructure:"write_checksums"`

	// SigningKey names a key in the OS keyring. Empty leaves the checksum
	// manifest unsigned.
	SigningKey string `mapstructure:"signing_key"`

	Log Log `mapstructure:"log"`
}

// Log configures the process logger.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OutputRoot:     "libretro-extract",
		Namespace:      libretro.DefaultNamespace,
		Suffixes:       append([]string(nil), libretro.DefaultSuffixes...),
		Extensions:     libretro.LibraryExtensions(),
		Skip:           append([]string(nil), DefaultSkip...),
		SkipDeinit:     append([]string(nil), DefaultSkipDeinit...),
		WriteAddonXML:  true,
		WriteChecksums: true,
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load layers the file at path (skipped when path is empty) and the
// environment over Default. The file format follows its extension.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	d := Default()
	v.SetDefault("output_root", d.OutputRoot)
	v.SetDefault("namespace", d.Namespace)
	v.SetDefault("suffixes", d.Suffixes)
	v.SetDefault("extensions", d.Extensions)
	v.SetDefault("skip", d.Skip)
	v.SetDefault("skip_deinit", d.SkipDeinit)
	v.SetDefault("abort_on_load_failure", d.AbortOnLoadFailure)
	v.SetDefault("write_addon_xml", d.WriteAddonXML)
	v.SetDefault("write_checksums", d.WriteChecksums)
	v.SetDefault("signing_key", d.SigningKey)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}
