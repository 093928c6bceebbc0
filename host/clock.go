package host

import "time"

// Timer is a pending callback that can be stopped.
type Timer interface {
	// Stop prevents the timer from firing. It reports whether the call stopped the timer.
	Stop() bool
}

// Clock is the time source for every timer in the library. Tests use
// hosttest.FakeClock so no test sleeps.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock is backed by the time package.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

//nolint:ireturn
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
