package aresilient

import (
	"context"
	"fmt"
)

// Client binds a transport handle to a default RetryConfig and offers a
// request operation with per-call overrides merged in. Construct one with
// NewClient (owned transport: Close shuts the transport down) or
// NewClientWithTransport (borrowed transport: Close is a no-op, leaving
// shutdown to whoever constructed the transport).
type Client struct {
	config    *ClientConfig
	executor  *Executor
	transport Transport
	owns      bool
}

// NewClient builds a Client that owns transport: Close releases it.
func NewClient(config *ClientConfig, transport Transport) (*Client, error) {
	return newClient(config, transport, true)
}

// NewClientWithTransport builds a Client over an externally managed
// transport: Close never touches it. Use this when several Clients (or
// other callers) share one connection pool.
func NewClientWithTransport(config *ClientConfig, transport Transport) (*Client, error) {
	return newClient(config, transport, false)
}

func newClient(config *ClientConfig, transport Transport, owns bool) (*Client, error) {
	if config == nil {
		config = DefaultClientConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, fmt.Errorf("aresilient: transport is required")
	}
	return &Client{
		config:    config,
		executor:  NewExecutor(transport),
		transport: transport,
		owns:      owns,
	}, nil
}

// Do executes spec using the client's default RetryConfig merged with
// override (pass nil for no per-call changes).
func (c *Client) Do(ctx context.Context, spec RequestSpec, override *RetryConfig) (*Response, error) {
	resolved := c.config.Retry.Merge(override)
	return c.executor.Execute(ctx, spec, resolved)
}

// Close releases the underlying transport if this Client owns it.
func (c *Client) Close() error {
	if !c.owns {
		return nil
	}
	return c.transport.Close()
}

// AsyncClient is the suspended-model counterpart of Client: Do returns a
// channel instead of blocking. It shares ClientConfig's shape and merge
// semantics with the blocking Client, differing only in execution model.
type AsyncClient struct {
	config    *ClientConfig
	executor  *AsyncExecutor
	transport AsyncTransport
	owns      bool
}

// NewAsyncClient builds an AsyncClient that owns transport.
func NewAsyncClient(config *ClientConfig, transport AsyncTransport) (*AsyncClient, error) {
	return newAsyncClient(config, transport, true)
}

// NewAsyncClientWithTransport builds an AsyncClient over a borrowed transport.
func NewAsyncClientWithTransport(config *ClientConfig, transport AsyncTransport) (*AsyncClient, error) {
	return newAsyncClient(config, transport, false)
}

func newAsyncClient(config *ClientConfig, transport AsyncTransport, owns bool) (*AsyncClient, error) {
	if config == nil {
		config = DefaultClientConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, fmt.Errorf("aresilient: transport is required")
	}
	return &AsyncClient{
		config:    config,
		executor:  NewAsyncExecutor(transport),
		transport: transport,
		owns:      owns,
	}, nil
}

// Do executes spec asynchronously and returns a channel receiving the
// single terminal Result.
func (c *AsyncClient) Do(ctx context.Context, spec RequestSpec, override *RetryConfig) <-chan Result {
	resolved := c.config.Retry.Merge(override)
	return c.executor.Execute(ctx, spec, resolved)
}

// Close releases the underlying transport if this AsyncClient owns it.
func (c *AsyncClient) Close() error {
	if !c.owns {
		return nil
	}
	return c.transport.Close()
}
