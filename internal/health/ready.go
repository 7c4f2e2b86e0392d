package health

import "sync/atomic"

// ready gates the readiness probe so the load balancer drains the pod
// before the server stops accepting connections. It starts true.
var ready atomic.Bool

func init() { ready.Store(true) }

// SetReady flips the readiness gate. Main sets it false at the start of
// graceful shutdown.
func SetReady(v bool) { ready.Store(v) }

// Ready reports the current gate state.
func Ready() bool { return ready.Load() }
