package repository

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Backend is the store a repository currently serves from
type Backend int

const (
	BackendUnknown Backend = iota
	BackendRemoteActive
	BackendFileOnly
)

func (b Backend) String() string {
	switch b {
	case BackendRemoteActive:
		return "remote"
	case BackendFileOnly:
		return "file"
	default:
		return "unknown"
	}
}

// ProbePolicy bounds how often a repository retries the remote backend
// after a failure
type ProbePolicy struct {
	Initial time.Duration
	Max     time.Duration
}

// DefaultProbePolicy retries after one second, doubling up to a minute
var DefaultProbePolicy = ProbePolicy{Initial: time.Second, Max: time.Minute}

// backendTracker is the per-repository state machine:
//
//	Unknown -> RemoteActive  first remote call succeeds
//	Unknown -> FileOnly      remote unconfigured or failing
//	FileOnly -> RemoteActive a probe after the backoff delay succeeds
//	RemoteActive -> FileOnly a remote call fails
//
// An unconfigured remote pins the tracker to FileOnly.
type backendTracker struct {
	mu       sync.Mutex
	state    Backend
	pinned   bool
	policy   *backoff.ExponentialBackOff
	retryAt  time.Time
	failures int
	now      func() time.Time
}

func newBackendTracker(configured bool, probe ProbePolicy, now func() time.Time) *backendTracker {
	if probe.Initial <= 0 {
		probe.Initial = DefaultProbePolicy.Initial
	}
	if probe.Max < probe.Initial {
		probe.Max = probe.Initial
	}
	if now == nil {
		now = time.Now
	}

	t := &backendTracker{
		policy: backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(probe.Initial),
			backoff.WithMaxInterval(probe.Max),
			backoff.WithMultiplier(2),
			backoff.WithRandomizationFactor(0),
			backoff.WithMaxElapsedTime(0),
		),
		now: now,
	}
	if !configured {
		t.state = BackendFileOnly
		t.pinned = true
	}
	return t
}

// allowRemote reports whether the next call should try the remote backend
func (t *backendTracker) allowRemote() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pinned {
		return false
	}
	if t.state != BackendFileOnly {
		return true
	}
	return !t.now().Before(t.retryAt)
}

// succeeded records a remote call that reached the backend. It reports
// whether this was a transition.
func (t *backendTracker) succeeded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	changed := t.state != BackendRemoteActive
	t.state = BackendRemoteActive
	t.failures = 0
	t.retryAt = time.Time{}
	t.policy.Reset()
	return changed
}

// failed records a remote failure and schedules the next probe. It returns
// the delay before the remote backend is tried again.
func (t *backendTracker) failed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = BackendFileOnly
	t.failures++
	delay := t.policy.NextBackOff()
	t.retryAt = t.now().Add(delay)
	return delay
}

// unconfigured pins the tracker to the file store
func (t *backendTracker) unconfigured() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = BackendFileOnly
	t.pinned = true
}

func (t *backendTracker) State() Backend {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
