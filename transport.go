package aresilient

import "context"

// Transport is the synchronous transport capability the blocking Executor
// consumes. It supplies connection pooling, TLS, redirects, HTTP version
// negotiation, authentication, header defaulting, and cookie handling; the
// core never touches a socket directly.
type Transport interface {
	// Send issues spec and blocks until an outcome is known. Send itself
	// never returns an error; transport-level failures are reported as
	// AttemptOutcome variants so the Decider can classify them uniformly.
	Send(ctx context.Context, spec RequestSpec) AttemptOutcome

	// Close releases pooled resources. Called once by the Client that owns
	// this Transport; never called on a borrowed Transport.
	Close() error
}

// AsyncTransport is the cooperative-suspended counterpart of Transport: the
// same capability, expressed so Send is itself a suspension point rather
// than a blocking call. Any context.Context-aware Go function already
// behaves this way, so AsyncTransport and Transport share an identical
// method set; the distinction is about which Executor calls it and
// whether the underlying implementation parks a goroutine instead of an OS
// thread while waiting.
type AsyncTransport interface {
	Send(ctx context.Context, spec RequestSpec) AttemptOutcome
	Close() error
}
