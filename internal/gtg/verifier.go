package gtg

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"nexttools/internal/logger"
)

const DefaultAttemptTimeout = 5 * time.Second

var gtgLogs = logger.PackageLogger("gtg", "🩺")

// OutcomeKind is the terminal state of a poll session.
type OutcomeKind int

const (
	Healthy OutcomeKind = iota
	TimedOut
	TransportError
)

func (k OutcomeKind) String() string {
	switch k {
	case Healthy:
		return "healthy"
	case TimedOut:
		return "timed out"
	case TransportError:
		return "transport error"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is what Verify reports back. Reason is only set for TransportError.
type Outcome struct {
	Kind     OutcomeKind
	Attempts int
	Elapsed  time.Duration
	Reason   string
}

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Verifier polls a gtg endpoint until it answers 200 or the budget runs out.
type Verifier struct {
	client         Doer
	clock          Clock
	attemptTimeout time.Duration
	log            *logger.Logger
}

type Option func(*Verifier)

func WithClient(d Doer) Option { return func(v *Verifier) { v.client = d } }

func WithClock(c Clock) Option { return func(v *Verifier) { v.clock = c } }

func WithAttemptTimeout(d time.Duration) Option {
	return func(v *Verifier) { v.attemptTimeout = d }
}

func WithLogger(l *logger.Logger) Option { return func(v *Verifier) { v.log = l } }

// newHTTPClient does not follow redirects: a 3xx from /__gtg is not ready,
// whatever the redirect target answers.
func newHTTPClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func NewVerifier(opts ...Option) *Verifier {
	v := &Verifier{
		client:         newHTTPClient(),
		clock:          realClock{},
		attemptTimeout: DefaultAttemptTimeout,
		log:            gtgLogs,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify polls t sequentially. A single failed attempt (non-200 or transport
// error) is logged and retried; only budget exhaustion is reported, as a
// *TimeoutError. No request is started once elapsed >= timeout.
func (v *Verifier) Verify(ctx context.Context, t Target) (Outcome, error) {
	if t.app == "" || t.timeout <= 0 || t.interval <= 0 {
		err := invalid("target was not built with NewTarget")
		return Outcome{Kind: TransportError, Reason: err.Error()}, err
	}

	start := v.clock.Now()
	attempts := 0
	last := ""
	v.log.Info("polling %s (timeout %v, interval %v)", t.url, t.timeout, t.interval)

	for {
		remaining := t.timeout - v.clock.Now().Sub(start)
		if remaining <= 0 {
			break
		}

		attempts++
		ok, status := v.attempt(ctx, t.url, min(v.attemptTimeout, remaining))
		if ok {
			elapsed := v.clock.Now().Sub(start)
			v.log.Success("%s is good to go after %d attempt(s) in %v", t.app, attempts, elapsed.Round(time.Millisecond))
			return Outcome{Kind: Healthy, Attempts: attempts, Elapsed: elapsed}, nil
		}
		last = status
		v.log.Debug("attempt %d for %s: %s", attempts, t.app, status)

		if err := ctx.Err(); err != nil {
			return Outcome{Kind: TimedOut, Attempts: attempts, Elapsed: v.clock.Now().Sub(start)}, err
		}

		remaining = t.timeout - v.clock.Now().Sub(start)
		if remaining <= 0 {
			break
		}
		if err := v.clock.Sleep(ctx, min(t.interval, remaining)); err != nil {
			return Outcome{Kind: TimedOut, Attempts: attempts, Elapsed: v.clock.Now().Sub(start)}, err
		}
	}

	elapsed := v.clock.Now().Sub(start)
	v.log.Error("%s not good to go after %d attempt(s)", t.app, attempts)
	return Outcome{Kind: TimedOut, Attempts: attempts, Elapsed: elapsed},
		&TimeoutError{App: t.app, Attempts: attempts, Elapsed: elapsed, Last: last}
}

func (v *Verifier) attempt(ctx context.Context, url string, timeout time.Duration) (bool, string) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return false, err.Error()
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return false, err.Error()
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusOK {
		return true, resp.Status
	}
	return false, fmt.Sprintf("status %d", resp.StatusCode)
}
