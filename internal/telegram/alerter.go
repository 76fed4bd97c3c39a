package telegram

import (
	"fmt"
	"sync"

	"github.com/rewired-gh/arbdash/internal/logger"
)

// Notifier delivers outage and recovery messages.
type Notifier interface {
	SendError(err error) error
	SendRecovery(failureCount int) error
}

// Alerter watches backend reads from every session. It notifies once when
// a run of consecutive failures starts and once when a read succeeds again.
type Alerter struct {
	notifier Notifier
	dispatch func(func())

	mu       sync.Mutex
	failures int
}

// NewAlerter sends notifications on their own goroutine so fetches never
// wait for Telegram.
func NewAlerter(n Notifier) *Alerter {
	return &Alerter{
		notifier: n,
		dispatch: func(f func()) { go f() },
	}
}

// ObserveFetch records the outcome of one backend read.
func (a *Alerter) ObserveFetch(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		a.failures++
		if a.failures == 1 {
			a.dispatch(func() {
				if sendErr := a.notifier.SendError(err); sendErr != nil {
					logger.Error("Failed to send backend error notification: %v", sendErr)
				}
			})
		}
		return
	}

	if a.failures > 0 {
		count := a.failures
		a.dispatch(func() {
			if sendErr := a.notifier.SendRecovery(count); sendErr != nil {
				logger.Error("Failed to send recovery notification: %v", sendErr)
			}
		})
		a.failures = 0
	}
}

// Status summarises backend health for the /status command.
func (a *Alerter) Status() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failures == 0 {
		return "Backend OK"
	}
	return fmt.Sprintf("Backend failing: %d consecutive failure(s)", a.failures)
}
