// Package addon renders the addon.xml descriptor of an extracted core.
package addon

import (
	_ "embed"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joncooperworks/coreextract/libretro"
)

// FileName is the descriptor written into each add-on directory.
const FileName = "addon.xml"

// Provider is reported when a core names no author.
const Provider = "Libretro Team"

// maxReplacements bounds token expansion per line, since property values
// may themselves contain tokens.
const maxReplacements = 64

//go:embed addon.template.xml
var defaultTemplate string

var validToken = regexp.MustCompile(`^[A-Za-z:_][A-Za-z0-9:_.-]*$`)

// Addon describes one extracted core.
type Addon struct {
	Identity       libretro.Identity
	Info           libretro.SystemInfo
	SupportsNoGame bool

	// Platform decides which library_* property names the core's file.
	// Empty means the running OS.
	Platform libretro.Platform
}

// Property returns the value of a template token, or "" for tokens it does
// not know.
func (a *Addon) Property(token string) string {
	switch token {
	case "id":
		return a.Identity.ID
	case "name":
		return a.Info.LibraryName
	case "version":
		return Version(a.Info.LibraryVersion)
	case "display_version":
		return a.Info.LibraryVersion
	case "provider":
		return Provider
	case "extensions":
		return a.Info.ValidExtensions
	case "description":
		if a.Info.ValidExtensions == "" {
			return ""
		}
		return "Supported files: @extensions@"
	case "supports_no_game":
		return strconv.FormatBool(a.SupportsNoGame)
	case "library_linux":
		return a.library(libretro.PlatformLinux)
	case "library_osx":
		return a.library(libretro.PlatformOSX)
	case "library_win":
		return a.library(libretro.PlatformWindows)
	case "library_android":
		return a.library(libretro.PlatformAndroid)
	}
	return ""
}

func (a *Addon) library(p libretro.Platform) string {
	platform := a.Platform
	if platform == "" {
		platform = libretro.CurrentPlatform()
	}
	if platform != p {
		return ""
	}
	return libretro.Filename(a.Identity.LibraryPath)
}

// ReplaceTokens replaces each @token@ in line with property(token). Only
// tokens that are valid XML names are replaced, and scanning resumes at
// the start of the inserted value so values may contain tokens too.
func ReplaceTokens(line string, property func(string) string) string {
	skip := 0
	for n := 0; n < maxReplacements; {
		open := strings.IndexByte(line[skip:], '@')
		if open < 0 {
			break
		}
		open += skip
		end := strings.IndexByte(line[open+1:], '@')
		if end < 0 {
			break
		}
		end += open + 1

		token := line[open+1 : end]
		if !validToken.MatchString(token) {
			skip = end
			continue
		}
		line = line[:open] + property(token) + line[end+1:]
		skip = open
		n++
	}
	return line
}

// Render fills template with a's properties, escaped for XML.
func Render(template string, a *Addon) string {
	property := func(token string) string {
		var b strings.Builder
		_ = xml.EscapeText(&b, []byte(a.Property(token)))
		return b.String()
	}

	lines := strings.Split(template, "\n")
	for i, line := range lines {
		lines[i] = ReplaceTokens(line, property)
	}
	return strings.Join(lines, "\n")
}

// Save renders the built-in template into addonDir/addon.xml and returns
// the path written.
func Save(addonDir string, a *Addon) (string, error) {
	if err := os.MkdirAll(addonDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create add-on directory: %w", err)
	}
	path := filepath.Join(addonDir, FileName)
	if err := os.WriteFile(path, []byte(Render(defaultTemplate, a)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Version turns a display version such as "v1.4-git" into the numeric
// major.minor.build form add-on versions need. Missing parts default to
// 1.0.0.
func Version(display string) string {
	parts := [3]int{1, 0, 0}
	for i, s := range strings.SplitN(display, ".", 3) {
		parts[i] = leadingNumber(s, parts[i])
	}
	return fmt.Sprintf("%d.%d.%d", parts[0], parts[1], parts[2])
}

// leadingNumber parses the first run of digits in s.
func leadingNumber(s string, fallback int) int {
	start := strings.IndexAny(s, "0123456789")
	if start < 0 {
		return fallback
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		return fallback
	}
	return n
}
