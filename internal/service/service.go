// Package service contains the business logic for the Ieum planner API.
// Services validate inputs, enforce membership and place rules, and run each
// operation as one unit of work through repo.Transactor.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import "time"

// Option customises a service at construction time.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for activation and soft-delete
// timestamps. Tests use it to get deterministic values.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
