package rwpool

import "context"

// Pinger is the connectivity surface HealthCheck needs. Pools of either
// capability satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus is the response type for health check endpoints.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HealthCheck verifies database connectivity and returns a status suitable
// for health check API endpoints.
func HealthCheck(ctx context.Context, p Pinger) (*HealthStatus, error) {
	if err := p.Ping(ctx); err != nil {
		return nil, &SafeError{msg: "rwpool: health check failed", cause: err}
	}

	return &HealthStatus{Status: "ok", Database: "postgres"}, nil
}
