// Package aresilient implements the resilience core of a client-side HTTP
// library: retry policy, backoff scheduling, circuit-breaker admission,
// wall-clock budgets, and observable lifecycle hooks, shared by a blocking
// execution model and a cooperative-suspended one.
//
// The core never dials a socket. It consumes a Transport (or AsyncTransport)
// as an injected capability and produces AttemptOutcome values that a pure
// decision function turns into Return/Retry/Fail decisions. See Client and
// AsyncClient for the entry points most callers want; Executor and
// AsyncExecutor are exposed directly for callers assembling their own
// transport stack.
package aresilient
