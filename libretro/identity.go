package libretro

import (
	"strings"
)

// Defaults used to derive a core's add-on id from its file name.
const (
	DefaultNamespace = "gameclient."
)

// DefaultSuffixes are stripped from a core's base name before the id is
// built. The first one that matches wins.
var DefaultSuffixes = []string{"_libretro", "_core"}

// Identity is everything the extractor knows about a bound core that the
// core itself never reports. None of the directories carry a trailing
// path separator; some cores concatenate paths with their own separator.
type Identity struct {
	ID               string
	LibraryPath      string
	LibraryDirectory string
	SystemDirectory  string
	ContentDirectory string
	SaveDirectory    string
}

// NewIdentity derives the identity of the core at libraryPath.
func NewIdentity(libraryPath, systemDir, contentDir, saveDir, namespace string, suffixes []string) Identity {
	libraryDir := StripTrailingSeparator(Directory(libraryPath))
	if !strings.ContainsAny(libraryPath, `/\`) {
		// A bare file name lives in the working directory.
		libraryDir = "."
	}
	return Identity{
		ID:               DeriveID(libraryPath, namespace, suffixes),
		LibraryPath:      libraryPath,
		LibraryDirectory: libraryDir,
		SystemDirectory:  StripTrailingSeparator(systemDir),
		ContentDirectory: StripTrailingSeparator(contentDir),
		SaveDirectory:    StripTrailingSeparator(saveDir),
	}
}

// DeriveID builds the namespaced add-on id from a core's path, e.g.
// bsnes_accuracy_libretro.dylib -> gameclient.bsnes.accuracy.
func DeriveID(path, namespace string, suffixes []string) string {
	name := RemoveExtension(Filename(path))
	for _, suffix := range suffixes {
		if suffix != "" && len(name) > len(suffix) && strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}
	return namespace + strings.ReplaceAll(name, "_", ".")
}

// Directory returns the directory part of path without a trailing
// separator, or "" when path has no separator past its first byte.
func Directory(path string) string {
	pos := strings.LastIndexAny(path, `/\`)
	if pos <= 0 {
		return ""
	}
	return path[:pos]
}

// Filename returns the part of path after the last separator.
func Filename(path string) string {
	return path[strings.LastIndexAny(path, `/\`)+1:]
}

// RemoveExtension drops the last "." and everything after it.
func RemoveExtension(filename string) string {
	if pos := strings.LastIndexByte(filename, '.'); pos >= 0 {
		return filename[:pos]
	}
	return filename
}

// StripTrailingSeparator removes trailing '/' and '\' characters.
func StripTrailingSeparator(path string) string {
	return strings.TrimRight(path, `/\`)
}
