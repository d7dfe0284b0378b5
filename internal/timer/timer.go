package timer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Resolution is the frequency at which the time is updated. The Date header has a
// resolution of a second, so 500ms keep it accurate enough.
const Resolution = 500 * time.Millisecond

var (
	millis = new(atomic.Int64)
	start  sync.Once
)

// Now returns the current time, updated every Resolution. The updating goroutine is
// started by the first call.
func Now() time.Time {
	start.Do(func() {
		millis.Store(time.Now().UnixMilli())

		go func() {
			for {
				time.Sleep(Resolution)
				millis.Store(time.Now().UnixMilli())
			}
		}()
	})

	ms := millis.Load()
	return time.Unix(ms/1000, (ms%1000)*1e6)
}
