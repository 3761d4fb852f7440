package scan

import (
	"errors"
	"fmt"

	"github.com/joncooperworks/coreextract/libretro"
)

var (
	// ErrVersionMismatch is matched by every *VersionError.
	ErrVersionMismatch = errors.New("unexpected libretro api version")

	// ErrDirectoryOpen is returned when the library directory cannot be
	// listed.
	ErrDirectoryOpen = errors.New("could not open directory")
)

// VersionError reports a core built against another API version. It
// stops the whole scan.
type VersionError struct {
	Path string
	Got  uint32
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%s: expected libretro api v%d, found version %d", e.Path, libretro.APIVersion, e.Got)
}

func (e *VersionError) Is(target error) bool {
	return target == ErrVersionMismatch
}
