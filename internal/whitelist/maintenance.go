package whitelist

import (
	"context"
	"time"
)

// expiryLoop sweeps the whitelist on every tick until Close.
func (c *Cache) expiryLoop() {
	defer c.wg.Done()
	RunJanitor(c.ctx, c, c.cleanupEvery)
}

// RunJanitor calls c.CleanUp every interval until ctx is done.
//
// It is the loop New starts when Config.CleanupInterval is set, exported for
// callers that want to own the goroutine and its lifetime themselves.
// A non-positive interval returns immediately.
func RunJanitor(ctx context.Context, c *Cache, every time.Duration) {
	if every <= 0 {
		return
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CleanUp()
		}
	}
}
