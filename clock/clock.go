package clock

import "time"

// Interface represents a clock with the same core functionality available
// as in the stdlib time package.  Queues take an Interface so that tests
// can substitute a mock when exercising dispatch pacing.
type Interface interface {
	Now() time.Time
	Sleep(time.Duration)
	NewTimer(time.Duration) Timer
	NewTicker(time.Duration) Ticker
}

// Timer is the analog of time.Timer.
type Timer interface {
	C() <-chan time.Time
	Reset(time.Duration) bool
	Stop() bool
}

// Ticker is the analog of time.Ticker.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// System returns a clock backed by the time package.
func System() Interface {
	return systemClock{}
}

type systemClock struct{}

func (sc systemClock) Now() time.Time {
	return time.Now()
}

func (sc systemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

func (sc systemClock) NewTimer(d time.Duration) Timer {
	return WrapTimer(time.NewTimer(d))
}

func (sc systemClock) NewTicker(d time.Duration) Ticker {
	return WrapTicker(time.NewTicker(d))
}

type systemTimer struct {
	*time.Timer
}

func (st systemTimer) C() <-chan time.Time {
	return st.Timer.C
}

// WrapTimer wraps a time.Timer in a clock.Timer.  A typical usage would be
// WrapTimer(time.NewTimer(time.Second)).
func WrapTimer(t *time.Timer) Timer {
	return systemTimer{t}
}

type systemTicker struct {
	*time.Ticker
}

func (st systemTicker) C() <-chan time.Time {
	return st.Ticker.C
}

// WrapTicker wraps a time.Ticker in a clock.Ticker.
func WrapTicker(t *time.Ticker) Ticker {
	return systemTicker{t}
}
