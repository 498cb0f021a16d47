package updatecheck

import "context"

// Start runs one check in the background. The returned channel receives
// exactly one result and is then closed.
func Start(ctx context.Context, c *Checker, currentVersion string) <-chan bool {
	out := make(chan bool, 1)
	go func() {
		defer close(out)
		out <- c.CheckForUpdate(ctx, currentVersion)
	}()
	return out
}
