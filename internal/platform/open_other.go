//go:build !windows

package platform

import (
	"context"
	"runtime"
)

// OpenURL hands rawURL to the desktop's URL handler.
func OpenURL(ctx context.Context, rawURL string) error {
	if err := checkOpenable(rawURL); err != nil {
		return err
	}
	name, args := openCommand(runtime.GOOS, rawURL)
	return runHelper(ctx, name, args...)
}
