package mcpserve

import (
	"context"
	"os"
	"time"

	"nlucompare/internal/logging"
)

// WatchParent monitors for parent process death in a background goroutine and
// calls cancelFn when the parent PID changes, so the server does not linger
// after the client that spawned it is gone.
//
// IMPORTANT: This must NOT read from stdin. The MCP SDK's StdioTransport owns
// stdin exclusively; reading here would steal bytes and corrupt the JSON-RPC
// stream.
//
// The goroutine exits when ctx is canceled or parent death is detected.
func WatchParent(ctx context.Context, cancelFn context.CancelFunc) {
	ppid := os.Getppid()
	log := logging.New("mcp")
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
				if os.Getppid() != ppid {
					log.Warn("parent process died, shutting down", "was_pid", ppid)
					cancelFn()
					return
				}
			}
		}
	}()
}
