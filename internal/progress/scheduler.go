package progress

import (
	"sync"
	"time"
)

// Scheduler is the animator's clock. Every calls fn once per interval until the
// returned stop function is called.
type Scheduler interface {
	Now() time.Time
	Every(interval time.Duration, fn func(now time.Time)) (stop func())
}

// RealScheduler drives frames from a time.Ticker on its own goroutine.
type RealScheduler struct{}

// Now returns the wall-clock time.
func (RealScheduler) Now() time.Time {
	return time.Now()
}

// Every starts a ticker goroutine. stop does not wait for the goroutine, so it
// is safe to call from inside fn.
func (RealScheduler) Every(interval time.Duration, fn func(now time.Time)) func() {
	ticker := time.NewTicker(interval)
	stopChan := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stopChan:
				return
			case now := <-ticker.C:
				select {
				case <-stopChan:
					return
				default:
				}
				fn(now)
			}
		}
	}()

	return func() {
		once.Do(func() { close(stopChan) })
	}
}
