package probe

import (
	"context"

	"jlink-update/pkg/version"
)

// NativeLoader loads the library into the current process. A library whose
// export has an unexpected signature can take the process down with it, so
// it is normally used only inside the probe helper.
type NativeLoader struct{}

// Load opens path, calls SymbolGetDLLVersion and closes the library again.
func (NativeLoader) Load(ctx context.Context, path string) (version.Code, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	raw, err := callVersionSymbol(path, SymbolGetDLLVersion)
	if err != nil {
		return 0, err
	}
	return version.Code(raw), nil
}
