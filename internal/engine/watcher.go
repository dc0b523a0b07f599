package engine

import (
	"time"
)

// startWatcher arms the expiration timer for one session. The watcher is a
// backstop: inbound requests already settle past-deadline sessions
// synchronously, the timer handles sessions with no traffic.
func (e *Engine) startWatcher(entry *sessionEntry) {
	entry.mu.Lock()
	deadline := entry.sess.ExpiresAt
	entry.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		timer := time.NewTimer(deadline.Sub(e.now()))
		defer timer.Stop()

		select {
		case <-e.ctx.Done():
			return
		case <-timer.C:
		}

		// Takes the same per-session lock as bid processing, so a
		// last-second bid and the deadline cannot race.
		entry.mu.Lock()
		defer entry.mu.Unlock()
		e.settleIfPastDeadlineLocked(entry, e.now())
	}()
}
