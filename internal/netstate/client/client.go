// Package client fetches live network state from the core network functions.
// Each upstream sits behind its own circuit breaker so a dead MME cannot
// exhaust the gateway while the AMF and SMF stay reachable.
package client

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	dErrors "coregw/pkg/domain-errors"
)

// Upstream identifies one of the proxied network functions.
type Upstream string

const (
	UpstreamMME Upstream = "mme"
	UpstreamAMF Upstream = "amf"
	UpstreamSMF Upstream = "smf"
)

// Result carries the upstream response verbatim. The proxy relays status,
// body, and content type without interpretation.
type Result struct {
	Status      int
	ContentType string
	Body        []byte
}

type upstream struct {
	baseURL string
	breaker *gobreaker.CircuitBreaker
}

// Client proxies requests to the MME, AMF, and SMF management endpoints.
type Client struct {
	http      *resty.Client
	upstreams map[Upstream]*upstream
}

// Config holds the base URLs of the proxied network functions.
type Config struct {
	MMEBaseURL string
	AMFBaseURL string
	SMFBaseURL string
	Timeout    time.Duration
}

func New(cfg Config) *Client {
	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)

	c := &Client{
		http:      httpClient,
		upstreams: make(map[Upstream]*upstream, 3),
	}
	for name, baseURL := range map[Upstream]string{
		UpstreamMME: cfg.MMEBaseURL,
		UpstreamAMF: cfg.AMFBaseURL,
		UpstreamSMF: cfg.SMFBaseURL,
	} {
		c.upstreams[name] = &upstream{
			baseURL: baseURL,
			breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
				Name:    string(name),
				Timeout: 30 * time.Second,
				ReadyToTrip: func(counts gobreaker.Counts) bool {
					return counts.ConsecutiveFailures >= 5
				},
			}),
		}
	}
	return c
}

// Fetch performs a GET against the named upstream, forwarding the query
// string as received. Upstream HTTP error statuses are not errors here; they
// are relayed to the caller inside the Result.
func (c *Client) Fetch(ctx context.Context, target Upstream, path string, query url.Values) (*Result, error) {
	up, ok := c.upstreams[target]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeInternal, "unknown upstream %q", target)
	}

	res, err := up.breaker.Execute(func() (any, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParamsFromValues(query).
			Get(up.baseURL + path)
		if err != nil {
			return nil, err
		}
		return &Result{
			Status:      resp.StatusCode(),
			ContentType: resp.Header().Get("Content-Type"),
			Body:        resp.Body(),
		}, nil
	})
	if err != nil {
		return nil, c.classify(target, err)
	}
	return res.(*Result), nil
}

// classify maps transport failures to the gateway's 502/504 error codes.
func (c *Client) classify(target Upstream, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return dErrors.Newf(dErrors.CodeUpstreamUnavailable, "upstream %s circuit open", target)
	}
	if isTimeout(err) {
		return dErrors.Wrapf(err, dErrors.CodeUpstreamTimeout, "upstream %s timed out", target)
	}
	return dErrors.Wrapf(err, dErrors.CodeUpstreamUnavailable, "upstream %s unreachable", target)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
