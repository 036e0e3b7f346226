package health

import "context"

// StorePinger checks note store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// InferenceChecker checks inference provider availability.
type InferenceChecker interface {
	HealthCheck(ctx context.Context) error
}
