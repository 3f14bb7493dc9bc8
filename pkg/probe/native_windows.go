//go:build windows

package probe

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// callVersionSymbol loads the DLL, calls the int(void) export symbol and
// releases the module on every path out.
func callVersionSymbol(path, symbol string) (int32, error) {
	dll, err := windows.LoadDLL(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrLoadFailed, path, err)
	}
	defer dll.Release() //nolint:errcheck

	proc, err := dll.FindProc(symbol)
	if err != nil {
		return 0, fmt.Errorf("%w: %s in %s", ErrSymbolNotFound, symbol, path)
	}

	r1, _, _ := proc.Call()
	return int32(r1), nil
}
