package health

import (
	"context"
)

// Checker probes one dependency
type Checker interface {
	// Name identifies the dependency in reports
	Name() string

	// Check returns nil when the dependency is usable
	Check(ctx context.Context) error
}

// Pinger is anything that can be pinged, such as a storage.Repository
type Pinger interface {
	Ping(ctx context.Context) error
}

type pingChecker struct {
	name string
	p    Pinger
}

// PingChecker wraps a Pinger as a Checker
func PingChecker(name string, p Pinger) Checker {
	return &pingChecker{name: name, p: p}
}

func (c *pingChecker) Name() string { return c.name }

func (c *pingChecker) Check(ctx context.Context) error { return c.p.Ping(ctx) }
