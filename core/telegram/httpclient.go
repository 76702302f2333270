package telegram

import (
	"errors"
	"net"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/m3rciful/eventbot/core/telegram/netutil"
)

const (
	defaultDialTimeout       = 5 * time.Second
	defaultTLSHandshake      = 5 * time.Second
	defaultIdleConnTimeout   = 30 * time.Second
	defaultClientTimeout     = 30 * time.Second
	defaultKeepAliveInterval = 30 * time.Second
	defaultRetryAttempts     = 3
	defaultRetryBackoff      = 500 * time.Millisecond
)

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls.
// Dial failures and timeouts are retried at the transport level; the long
// poll relies on the client timeout being above the poll timeout.
func BuildHTTPClient(pollTimeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAliveInterval}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ExpectContinueTimeout: 1 * time.Second,
	}

	timeout := defaultClientTimeout
	if floor := pollTimeout + 10*time.Second; timeout < floor {
		timeout = floor
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &retryTransport{
			base:       transport,
			maxRetries: defaultRetryAttempts,
			backoff:    defaultRetryBackoff,
		},
	}
}

var errNotReplayable = errors.New("telegram: request body cannot be replayed")

type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = t.backoff
	exp.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(t.maxRetries)), req.Context())

	attempt := 0
	var resp *http.Response
	err := backoff.Retry(func() error {
		curr := req
		if attempt > 0 {
			if req.Body != nil && req.GetBody == nil {
				return backoff.Permanent(errNotReplayable)
			}
			curr = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return backoff.Permanent(err)
				}
				curr.Body = body
			}
		}
		attempt++

		r, err := base.RoundTrip(curr)
		if err != nil {
			if netutil.ShouldRetry(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		resp = r
		return nil
	}, policy)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
