package aresilient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// NetHTTPTransport implements Transport over net/http: a plain *http.Client
// doing the physical send, with request construction (method, path join,
// body, headers) kept separate from outcome classification.
type NetHTTPTransport struct {
	client  *http.Client
	baseURL string
	headers map[string]string
}

// NewNetHTTPTransport builds a transport with the given base URL, default
// headers, and per-attempt timeout. Passing a nil http.Client builds one
// with sane pooling defaults.
func NewNetHTTPTransport(baseURL string, headers map[string]string, timeout time.Duration, client *http.Client) *NetHTTPTransport {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	if timeout > 0 {
		client.Timeout = timeout
	}
	return &NetHTTPTransport{client: client, baseURL: baseURL, headers: headers}
}

// Send builds an *http.Request from spec, issues it, and classifies the
// result into an AttemptOutcome. Network errors are split between timeout
// and generic transport error so the two exception variants can be told
// apart downstream.
func (t *NetHTTPTransport) Send(ctx context.Context, spec RequestSpec) AttemptOutcome {
	start := time.Now()

	req, err := t.buildRequest(ctx, spec)
	if err != nil {
		return NewTransportErrorOutcome("request_build", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return classifyNetError(err)
	}

	// Body ownership passes to the caller through Response.Body; the
	// caller is responsible for closing it once read.
	return NewResponseOutcome(&Response{
		Status:  resp.StatusCode,
		Header:  resp.Header,
		Body:    resp.Body,
		Elapsed: int64(time.Since(start)),
	})
}

func (t *NetHTTPTransport) buildRequest(ctx context.Context, spec RequestSpec) (*http.Request, error) {
	target := spec.Target
	if t.baseURL != "" {
		joined, err := url.JoinPath(t.baseURL, spec.Target)
		if err == nil {
			target = joined
		}
	}

	var body io.Reader
	if b, ok := spec.Params["Body"]; ok {
		switch v := b.(type) {
		case []byte:
			body = bytes.NewReader(v)
		case io.Reader:
			body = v
		case string:
			body = bytes.NewReader([]byte(v))
		default:
			return nil, fmt.Errorf("aresilient: unsupported Body param type %T", v)
		}
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, target, body)
	if err != nil {
		return nil, err
	}

	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	if hdrs, ok := spec.Params["Headers"].(map[string]string); ok {
		for k, v := range hdrs {
			req.Header.Set(k, v)
		}
	}
	return req, nil
}

// classifyNetError distinguishes a timeout (deadline exceeded, or a net.Error
// whose Timeout() is true) from any other transport failure.
func classifyNetError(err error) AttemptOutcome {
	if err == context.DeadlineExceeded {
		return NewTimeoutOutcome(err)
	}
	var netErr net.Error
	if asNetError(err, &netErr) && netErr.Timeout() {
		return NewTimeoutOutcome(err)
	}
	return NewTransportErrorOutcome("network", err)
}

// asNetError is a tiny errors.As wrapper kept local to avoid importing
// errors just for this one call site elsewhere in the file.
func asNetError(err error, target *net.Error) bool {
	for err != nil {
		if ne, ok := err.(net.Error); ok {
			*target = ne
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// Close shuts down idle connections held by the underlying http.Client.
func (t *NetHTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
