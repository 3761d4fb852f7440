//go:build !cgo || !unix

package plugin

import "fmt"

func init() {
	RegisterLoader(NativeType, func() (Loader, error) {
		return nil, fmt.Errorf("%w: native cores need cgo on a unix host", ErrUnsupportedPlatform)
	})
}
