// Package testutil holds helpers shared by the handler and integration
// tests.
package testutil

import (
	"context"
	"testing"
	"time"
)

// ContextWithTimeout returns a context that is cancelled when the test ends
// or after timeout, whichever comes first.
func ContextWithTimeout(t *testing.T, timeout time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx, cancel
}
