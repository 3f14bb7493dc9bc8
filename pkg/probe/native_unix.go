//go:build darwin || linux

package probe

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// callVersionSymbol dlopens path, calls the int(void) export symbol and
// dlcloses the handle on every path out.
func callVersionSymbol(path, symbol string) (int32, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrLoadFailed, path, err)
	}
	defer purego.Dlclose(handle) //nolint:errcheck

	fn, err := purego.Dlsym(handle, symbol)
	if err != nil || fn == 0 {
		return 0, fmt.Errorf("%w: %s in %s", ErrSymbolNotFound, symbol, path)
	}

	r1, _, _ := purego.SyscallN(fn)
	return int32(r1), nil
}
