//go:build !darwin && !linux && !windows

package probe

import "fmt"

func callVersionSymbol(path, symbol string) (int32, error) {
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, path)
}
