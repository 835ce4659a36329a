package gtg

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultTimeout    = 60 * time.Second
	DefaultInterval   = 2 * time.Second
	DefaultHostSuffix = "herokuapp.com"
	gtgPath           = "/__gtg"
)

var appIDPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// Target is one immutable poll session description.
type Target struct {
	app      string
	url      string
	timeout  time.Duration
	interval time.Duration
}

// TargetOptions tunes NewTarget. Zero values fall back to the defaults.
type TargetOptions struct {
	Timeout    time.Duration
	Interval   time.Duration
	HostSuffix string
	Scheme     string
}

// NewTarget validates the application id and derives the gtg url
// https://<app>.<suffix>/__gtg.
func NewTarget(app string, opts TargetOptions) (Target, error) {
	app = strings.TrimSpace(app)
	if app == "" {
		return Target{}, invalid("application id is required")
	}
	if !appIDPattern.MatchString(app) {
		return Target{}, invalid("application id %q is not a valid host label", app)
	}
	if opts.Timeout < 0 || opts.Interval < 0 {
		return Target{}, invalid("timeout and interval must be positive")
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Interval == 0 {
		opts.Interval = DefaultInterval
	}
	if opts.HostSuffix == "" {
		opts.HostSuffix = DefaultHostSuffix
	}
	if opts.Scheme == "" {
		opts.Scheme = "https"
	}

	u := url.URL{
		Scheme: opts.Scheme,
		Host:   fmt.Sprintf("%s.%s", app, strings.Trim(opts.HostSuffix, ".")),
		Path:   gtgPath,
	}
	if _, err := url.Parse(u.String()); err != nil {
		return Target{}, invalid("bad gtg url: %v", err)
	}

	return Target{
		app:      app,
		url:      u.String(),
		timeout:  opts.Timeout,
		interval: opts.Interval,
	}, nil
}

func (t Target) App() string             { return t.app }
func (t Target) URL() string             { return t.url }
func (t Target) Timeout() time.Duration  { return t.timeout }
func (t Target) Interval() time.Duration { return t.interval }
