package server

import "context"

// HealthChecker reports whether one backing service is reachable. The API
// binds one checker per dependency on /healthz; /healthz answers 503 when
// any checker fails.
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// OkHealthChecker always reports healthy. Used where a dependency has no
// meaningful probe.
type OkHealthChecker struct {
}

func NewOkHealthChecker() *OkHealthChecker {
	return &OkHealthChecker{}
}

func (hc *OkHealthChecker) Healthy(ctx context.Context) bool {
	return true
}
